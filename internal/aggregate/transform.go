// Package aggregate turns Allure result records into report rows and
// tallies them into a summary.
package aggregate

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/acarl005/stripansi"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ancients-collective/allurexl/internal/types"
)

// DateLayout is the format of the Tested Date column.
const DateLayout = "2006-01-02 15:04:05"

// ellipsis marks truncated text.
const ellipsis = "…"

// maxDurationMS keeps Duration from overflowing on corrupt timestamps.
const maxDurationMS = math.MaxInt64 / int64(time.Millisecond)

// idLabels are the label names searched for a test case id, in order.
var idLabels = []string{"testId", "as_id", "tag", "story"}

// Options configure a Transformer.
type Options struct {
	// IDPattern extracts test case ids; see config.DefaultIDPattern.
	IDPattern string

	// TestCaseIDs maps test names to ids and wins over IDPattern.
	TestCaseIDs map[string]string

	// RemarksLimit bounds Remarks in runes. Zero means 500.
	RemarksLimit int

	// TraceLimit bounds how much of the trace is appended to Remarks.
	TraceLimit int

	TestedBy     string
	Precondition string
	TestData     string
	Steps        string
	Expected     string

	// Location is the zone for Tested Date. Nil means time.Local.
	Location *time.Location
}

// Transformer maps ResultRecords to ReportRows. It holds no mutable state
// and is safe to share.
type Transformer struct {
	opts      Options
	idPattern *regexp.Regexp
}

// NewTransformer compiles the id pattern and fills option defaults.
func NewTransformer(opts Options) (*Transformer, error) {
	if opts.IDPattern == "" {
		return nil, fmt.Errorf("id pattern must not be empty")
	}
	re, err := regexp.Compile(opts.IDPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid id pattern %q: %w", opts.IDPattern, err)
	}
	if opts.RemarksLimit <= 0 {
		opts.RemarksLimit = 500
	}
	if opts.TraceLimit < 0 {
		opts.TraceLimit = 0
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Transformer{
		opts:      opts,
		idPattern: re,
	}, nil
}

// Transform builds the report row for one record.
func (t *Transformer) Transform(rec types.ResultRecord) types.ReportRow {
	name := recordName(rec)
	id, src := t.ExtractID(rec)
	status := types.NormalizeStatus(rec.Status)
	sec := parseDescription(rec.Description)
	dur := Duration(rec.Start, rec.Stop)

	row := types.ReportRow{
		TestCaseID:   id,
		IDSource:     src,
		Name:         name,
		Section:      sectionOf(rec),
		Scenario:     t.scenario(name, id, src),
		Steps:        firstNonEmpty(sec.steps, numberedSteps(rec.Steps), t.opts.Steps),
		TestData:     firstNonEmpty(sec.testData, parameterText(rec.Parameters), t.opts.TestData),
		Precondition: firstNonEmpty(sec.precondition, t.opts.Precondition),
		Expected:     firstNonEmpty(sec.expected, sec.preamble, t.opts.Expected, "Test should pass"),
		Status:       status,
		Remarks:      t.remarks(rec),
		TestedBy:     t.opts.TestedBy,
		Duration:     dur,
		DurationMS:   dur.Milliseconds(),
		SourceFile:   rec.SourceFile,
	}
	row.Actual = t.actual(rec, status)

	if rec.Start > 0 {
		row.Start = time.UnixMilli(rec.Start).In(t.opts.Location)
		row.TestedDate = row.Start.Format(DateLayout)
	}
	for _, a := range rec.Attachments {
		if a.Source != "" {
			row.Attachments = append(row.Attachments, a.Source)
		}
	}
	return row
}

// TransformAll builds rows for every record and sorts them so that the
// same input always yields the same row order.
func (t *Transformer) TransformAll(records []types.ResultRecord) []types.ReportRow {
	rows := make([]types.ReportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, t.Transform(rec))
	}
	SortRows(rows)
	return rows
}

// SortRows orders rows by start time, then id, name and source file.
// Rows without a start time sort last.
func SortRows(rows []types.ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Start.IsZero() != b.Start.IsZero() {
			return !a.Start.IsZero()
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.TestCaseID != b.TestCaseID {
			return a.TestCaseID < b.TestCaseID
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.SourceFile < b.SourceFile
	})
}

// ExtractID finds the test case id for a record. The configured mapping
// wins, then the id pattern is tried against the name, the description and
// selected labels. With no match the full test name is used verbatim.
func (t *Transformer) ExtractID(rec types.ResultRecord) (string, types.IDSource) {
	name := recordName(rec)
	if id, ok := t.opts.TestCaseIDs[name]; ok && id != "" {
		return id, types.IDFromMapping
	}
	if id := t.matchID(name); id != "" {
		return id, types.IDFromName
	}
	if id := t.matchID(rec.Description); id != "" {
		return id, types.IDFromDescription
	}
	for _, label := range idLabels {
		for _, l := range rec.Labels {
			if l.Name != label {
				continue
			}
			if id := t.matchID(l.Value); id != "" {
				return id, types.IDFromLabel
			}
		}
	}
	return name, types.IDFallback
}

func (t *Transformer) matchID(s string) string {
	if s == "" {
		return ""
	}
	m := t.idPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return m[0]
}

// scenario derives a readable scenario title. snake_case names
// (test_valid_login) become "Valid Login"; names that already read as
// titles are kept as they are.
func (t *Transformer) scenario(name, id string, src types.IDSource) string {
	s := name
	if src == types.IDFromName {
		s = strings.Replace(s, id, " ", 1)
	}
	s = strings.TrimSpace(s)

	if strings.ContainsRune(s, ' ') && !strings.Contains(s, "_") {
		s = strings.Trim(s, " -:_")
		if s == "" {
			return name
		}
		return s
	}

	s = strings.TrimPrefix(s, "test_")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " -:")
	if s == "" || s == "test" {
		return name
	}
	return cases.Title(language.English).String(s)
}

// remarks joins the failure message with the head of the trace, strips
// terminal escapes and bounds the result.
func (t *Transformer) remarks(rec types.ResultRecord) string {
	msg := strings.TrimSpace(stripansi.Strip(rec.Message()))
	trace := strings.TrimSpace(stripansi.Strip(rec.Trace()))
	if trace != "" && t.opts.TraceLimit > 0 {
		trace = headRunes(trace, t.opts.TraceLimit)
		if msg == "" {
			msg = trace
		} else {
			msg += "\n" + trace
		}
	}
	return Truncate(msg, t.opts.RemarksLimit)
}

// actual is the first line of the failure message, or the status label.
func (t *Transformer) actual(rec types.ResultRecord, status types.ResultStatus) string {
	msg := strings.TrimSpace(stripansi.Strip(rec.Message()))
	if msg == "" {
		return status.Display()
	}
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = strings.TrimSpace(msg[:i])
	}
	return Truncate(msg, t.opts.RemarksLimit)
}

// Duration is stop minus start. Missing timestamps and stop-before-start
// both give zero.
func Duration(start, stop int64) time.Duration {
	if start <= 0 || stop <= 0 || stop < start {
		return 0
	}
	ms := stop - start
	if ms > maxDurationMS {
		ms = maxDurationMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Truncate bounds s to limit runes, ending in an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return headRunes(s, limit-1) + ellipsis
}

func headRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func recordName(rec types.ResultRecord) string {
	if rec.Name != "" {
		return rec.Name
	}
	if rec.FullName != "" {
		name := rec.FullName
		if i := strings.LastIndexAny(name, "#."); i >= 0 && i < len(name)-1 {
			name = name[i+1:]
		}
		return name
	}
	return rec.UUID
}

// sectionOf names the portal section a test belongs to: the feature label,
// else the suite label, else the test module from fullName.
func sectionOf(rec types.ResultRecord) string {
	for _, label := range []string{"feature", "suite", "parentSuite"} {
		if v := normalizeSection(rec.LabelValue(label)); v != "" && v != "tests" {
			return v
		}
	}
	if rec.FullName != "" {
		module := rec.FullName
		if i := strings.IndexByte(module, '#'); i >= 0 {
			module = module[:i]
		}
		if i := strings.LastIndexByte(module, '.'); i >= 0 {
			module = module[i+1:]
		}
		if v := normalizeSection(module); v != "" {
			return v
		}
	}
	return ""
}

func normalizeSection(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".py")
	s = strings.TrimPrefix(s, "test_")
	s = strings.TrimSuffix(s, "_test")
	s = strings.TrimSuffix(s, "_page")
	return strings.ReplaceAll(s, " ", "_")
}

func numberedSteps(steps []types.Step) string {
	var b strings.Builder
	n := 0
	for _, s := range steps {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		n++
		if n > 1 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", n, name)
	}
	return b.String()
}

func parameterText(params []types.Parameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		parts = append(parts, p.Name+"="+p.Value)
	}
	return strings.Join(parts, "; ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
