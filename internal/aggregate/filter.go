package aggregate

import (
	"fmt"
	"strings"

	"github.com/ancients-collective/allurexl/internal/types"
)

// Show modes accepted by ShouldDisplay.
const (
	ShowFailures = "failures"
	ShowAll      = "all"
	ShowFailed   = "failed"
	ShowPassed   = "passed"
	ShowSkipped  = "skipped"
	ShowBroken   = "broken"
)

// ShowModes lists the valid --show values.
var ShowModes = []string{ShowFailures, ShowAll, ShowFailed, ShowPassed, ShowSkipped, ShowBroken}

// ValidateShow returns an error for an unknown show mode.
func ValidateShow(show string) error {
	for _, m := range ShowModes {
		if show == m {
			return nil
		}
	}
	return fmt.Errorf("invalid show mode %q (must be %s)", show, strings.Join(ShowModes, ", "))
}

// ShouldDisplay returns true if a row should be printed for the given show mode.
// "failures" covers failed and broken rows.
func ShouldDisplay(r types.ReportRow, show string) bool {
	switch show {
	case ShowFailures:
		return IsFailure(r)
	case ShowFailed:
		return r.Status == types.StatusFailed
	case ShowPassed:
		return r.Status == types.StatusPassed
	case ShowSkipped:
		return r.Status == types.StatusSkipped
	case ShowBroken:
		return r.Status == types.StatusBroken
	default:
		return true
	}
}

// IsFailure reports whether the row failed or broke.
func IsFailure(r types.ReportRow) bool {
	return r.Status == types.StatusFailed || r.Status == types.StatusBroken
}

// Filter returns the rows ShouldDisplay accepts, in order.
func Filter(rows []types.ReportRow, show string) []types.ReportRow {
	var out []types.ReportRow
	for _, r := range rows {
		if ShouldDisplay(r, show) {
			out = append(out, r)
		}
	}
	return out
}

// FallbackRows returns the rows whose id did not follow the naming convention.
func FallbackRows(rows []types.ReportRow) []types.ReportRow {
	var out []types.ReportRow
	for _, r := range rows {
		if !r.IDParsed() {
			out = append(out, r)
		}
	}
	return out
}

// FindByID returns every row with the given test case id. Matching is
// case-insensitive; several rows share an id when a test was retried or
// parametrized.
func FindByID(rows []types.ReportRow, id string) []types.ReportRow {
	var out []types.ReportRow
	for _, r := range rows {
		if strings.EqualFold(r.TestCaseID, id) {
			out = append(out, r)
		}
	}
	return out
}
