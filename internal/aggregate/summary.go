package aggregate

import (
	"sort"

	"github.com/ancients-collective/allurexl/internal/types"
)

// Tally counts rows per status in a single pass. Unknown statuses land in
// Other, so Total always equals the sum of the buckets. Load statistics
// (files matched, parse errors) are left for the caller to fill in.
func Tally(rows []types.ReportRow) (types.Summary, []types.SectionSummary) {
	var s types.Summary
	bySection := map[string]*types.SectionSummary{}

	for _, r := range rows {
		s.Total++
		s.DurationMS += r.DurationMS

		name := r.Section
		if name == "" {
			name = "other"
		}
		sec, ok := bySection[name]
		if !ok {
			sec = &types.SectionSummary{Name: name}
			bySection[name] = sec
		}
		sec.Total++
		sec.DurationMS += r.DurationMS

		switch r.Status {
		case types.StatusPassed:
			s.Passed++
			sec.Passed++
		case types.StatusFailed:
			s.Failed++
			sec.Failed++
		case types.StatusBroken:
			s.Broken++
			sec.Broken++
		case types.StatusSkipped:
			s.Skipped++
			sec.Skipped++
		default:
			s.Other++
			sec.Other++
		}
	}

	sections := make([]types.SectionSummary, 0, len(bySection))
	for _, sec := range bySection {
		sections = append(sections, *sec)
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Name < sections[j].Name
	})
	return s, sections
}
