package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ancients-collective/allurexl/internal/aggregate"
	"github.com/ancients-collective/allurexl/internal/types"
)

// ─── Layout constants ────────────────────────────────────────────────
//
// Every row line follows a fixed column grid:
//
//	col 0    4   6        15                              maxLine
//	│margin│ I │ BADGE    │ TEST CASE ID  scenario ...  DURATION │
//
// Detail blocks start at colDetail and use labelWidth-padded labels
// so every value begins at colValue.
const (
	colMargin  = 4   // left margin (spaces) for row/detail lines
	badgeWidth = 9   // visible width of a padded badge, e.g. "[BROKEN] "
	colName    = 15  // column where the test case id starts
	colDetail  = 15  // column where detail-block lines start (= colName)
	labelWidth = 9   // fixed label field: "Actual:  " / "Remarks: " / etc.
	colValue   = 24  // column where label values start (colDetail + labelWidth)
	maxLine    = 110 // hard wrap cap, even on ultra-wide terminals
	ruleWidth  = 64  // width of horizontal divider rules

	// remarkLines bounds how many remark lines the console shows.
	remarkLines = 4
)

// TextFormatter writes a colored, human-readable report.
type TextFormatter struct {
	Show  string // "failures" (default), "all", "failed", "passed", "skipped", "broken"
	Width int    // terminal width for text wrapping; 0 = unknown
	Dumb  bool   // TERM=dumb: use single-char ASCII fallback icons
}

// Color helpers, each returns a sprint function.
var (
	cBold   = color.New(color.Bold).SprintFunc()
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cRed    = color.New(color.FgRed).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cCyan   = color.New(color.FgCyan).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()

	cRedBold    = color.New(color.FgRed, color.Bold).SprintFunc()
	cYellowBold = color.New(color.FgYellow, color.Bold).SprintFunc()
	cGreenBold  = color.New(color.FgGreen, color.Bold).SprintFunc()
)

// IsDumbTerm returns true when the terminal doesn't support Unicode.
func IsDumbTerm() bool {
	t := os.Getenv("TERM")
	return t == "dumb" || t == ""
}

// wrapWidth returns the effective line width: min(terminal, maxLine).
func (f *TextFormatter) wrapWidth() int {
	if f.Width > 0 && f.Width < maxLine {
		return f.Width
	}
	return maxLine
}

func (f *TextFormatter) show() string {
	if f.Show == "" {
		return aggregate.ShowFailures
	}
	return f.Show
}

// ─── Public entry point ──────────────────────────────────────────────

// Write renders the full text report.
func (f *TextFormatter) Write(w io.Writer, report *types.Report) error {
	f.writeHeader(w, report)
	f.writeEnvironment(w, report)
	f.writeLoading(w, report)
	f.writeSections(w, report)
	f.writeRows(w, report)
	f.writeSummary(w, report)
	f.writeHints(w, report)
	fmt.Fprintln(w)
	return nil
}

// ─── Header ──────────────────────────────────────────────────────────

func (f *TextFormatter) writeHeader(w io.Writer, r *types.Report) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  v%s\n", cBold("allurexl"), r.Version)
	fmt.Fprintf(w, "  %s\n", cDim("Allure results, spreadsheet ready"))
	fmt.Fprintf(w, "  %s %s\n", cDim("Generated:"), r.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))
	if r.RunID != "" {
		fmt.Fprintf(w, "  %s %s\n", cDim("Run:      "), r.RunID)
	}
	fmt.Fprintln(w)
}

// ─── Environment ─────────────────────────────────────────────────────

func (f *TextFormatter) writeEnvironment(w io.Writer, r *types.Report) {
	env := r.Environment
	fmt.Fprintf(w, "  %s\n", cBold(f.icon("section")+" Environment"))
	fmt.Fprintf(w, "    Host:    %s\n", env.Hostname)
	osLine := env.OS
	if env.OSVersion != "" {
		osLine += " " + env.OSVersion
	}
	if env.Arch != "" {
		osLine += fmt.Sprintf(" (%s)", env.Arch)
	}
	fmt.Fprintf(w, "    OS:      %s\n", osLine)
	if env.DistroID != "" {
		fmt.Fprintf(w, "    Distro:  %s %s\n", env.DistroID, env.DistroVersion)
	}
	if env.EnvType != "" {
		envStr := env.EnvType
		if env.EnvRuntime != "" {
			envStr += fmt.Sprintf(" (%s)", env.EnvRuntime)
		}
		fmt.Fprintf(w, "    Env:     %s\n", envStr)
	}
	if env.CI != "" {
		ciStr := env.CI
		if env.CIBuild != "" {
			ciStr += " #" + env.CIBuild
		}
		fmt.Fprintf(w, "    CI:      %s\n", ciStr)
	}
	for _, k := range sortedKeys(env.Properties) {
		fmt.Fprintf(w, "    %s\n", f.wrap(fmt.Sprintf("%s = %s", k, env.Properties[k]), 4, 6))
	}
	fmt.Fprintln(w)
}

// ─── Loading ─────────────────────────────────────────────────────────

func (f *TextFormatter) writeLoading(w io.Writer, r *types.Report) {
	s := r.Summary
	fmt.Fprintf(w, "  %s Loaded %d result(s) from %s\n", cBold(f.icon("section")), s.Total, r.ResultsDir)

	var notes []string
	if s.SkippedFiles > 0 {
		notes = append(notes, fmt.Sprintf("%d skipped", s.SkippedFiles))
	}
	if s.ParseErrors > 0 {
		notes = append(notes, fmt.Sprintf("%d unparseable", s.ParseErrors))
	}
	if len(notes) > 0 {
		fmt.Fprintf(w, "    Files:   %d matched · %s\n", s.FilesMatched, strings.Join(notes, " · "))
	}
	if show := f.show(); show != aggregate.ShowFailures {
		fmt.Fprintf(w, "    Filters: show=%s\n", show)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s %s\n", cYellow(f.icon("warn")), f.wrap(warn, 4, 4))
	}
	fmt.Fprintln(w)
}

// ─── Sections table ──────────────────────────────────────────────────

func (f *TextFormatter) writeSections(w io.Writer, r *types.Report) {
	if len(r.Sections) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	s := r.Summary
	unknown := s.Other > 0
	header := table.Row{"Section", "Tests", "Passed", "Failed", "Broken", "Skipped"}
	if unknown {
		header = append(header, "Unknown")
	}
	t.AppendHeader(append(header, "Duration"))
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Section", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Broken", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Unknown", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	counts := func(name string, total, passed, failed, broken, skipped, other int, ms int64) table.Row {
		row := table.Row{name, total, passed, failed, broken, skipped}
		if unknown {
			row = append(row, other)
		}
		return append(row, formatSeconds(ms))
	}
	for _, sec := range r.Sections {
		t.AppendRow(counts(sec.Name, sec.Total, sec.Passed, sec.Failed, sec.Broken, sec.Skipped, sec.Other, sec.DurationMS))
	}
	t.AppendFooter(counts("Total", s.Total, s.Passed, s.Failed, s.Broken, s.Skipped, s.Other, s.DurationMS))

	switch {
	case color.NoColor:
		t.SetStyle(table.StyleLight)
	case s.Failures() > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case s.Skipped > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
	fmt.Fprintln(w)
}

// ─── Rows ────────────────────────────────────────────────────────────

func (f *TextFormatter) writeRows(w io.Writer, r *types.Report) {
	show := f.show()
	rows := aggregate.Filter(r.Rows, show)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Section < rows[j].Section
	})

	if show == aggregate.ShowFailures {
		if len(rows) == 0 {
			return
		}
		fmt.Fprintf(w, "  %s\n", cRedBold(f.icon("section")+" Failures"))
	} else {
		fmt.Fprintf(w, "  %s\n", cBold(f.icon("section")+" Results"))
		if len(rows) == 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%s(no results match the current filters)\n", colPad(colMargin))
			fmt.Fprintln(w)
			return
		}
	}

	current := "\x00"
	for _, row := range rows {
		if row.Section != current {
			current = row.Section
			f.writeSectionHeader(w, current)
		}
		f.writeRowLine(w, row)
		f.writeDetailBlock(w, row)
		fmt.Fprintln(w)
	}
}

func (f *TextFormatter) writeSectionHeader(w io.Writer, section string) {
	label := strings.ToUpper(section)
	if label == "" {
		label = "OTHER"
	}
	fill := ruleWidth - 4 - len(label)
	if fill < 1 {
		fill = 1
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s %s %s\n", colPad(colMargin), cDim("──"), cBold(label), cDim(strings.Repeat("─", fill)))
	fmt.Fprintln(w)
}

// writeRowLine prints: margin icon badge id  scenario ... duration
func (f *TextFormatter) writeRowLine(w io.Writer, row types.ReportRow) {
	durRaw := durationRaw(row)
	title := row.TestCaseID
	if row.Scenario != "" && row.Scenario != row.TestCaseID {
		title += "  " + row.Scenario
	}
	avail := f.wrapWidth() - colName - 2 - len(durRaw)
	if avail > 10 && len([]rune(title)) > avail {
		title = aggregate.Truncate(title, avail)
	}
	pad := avail - len([]rune(title))
	if pad < 2 {
		pad = 2
	}
	fmt.Fprintf(w, "%s%s %s%s%s%s\n",
		colPad(colMargin),
		f.statusIcon(row.Status),
		f.statusBadge(row.Status),
		cBold(title),
		strings.Repeat(" ", pad),
		cDim(durRaw),
	)
}

func (f *TextFormatter) writeDetailBlock(w io.Writer, row types.ReportRow) {
	p := colPad(colDetail)

	if !row.IDParsed() {
		f.writeLabel(w, p, "Id:", cYellow, "no test case id found, using the test name")
	}

	switch row.Status {
	case types.StatusFailed, types.StatusBroken:
		f.writeLabel(w, p, "Actual:", cRed, row.Actual)
		if rem := remarkHead(row.Remarks, row.Actual); rem != "" {
			f.writeLabel(w, p, "Remarks:", cDim, rem)
		}
	case types.StatusSkipped:
		if row.Actual != "" && row.Actual != row.Status.Display() {
			f.writeLabel(w, p, "Skipped:", cDim, row.Actual)
		}
	}

	if row.TestedDate != "" && f.show() != aggregate.ShowFailures {
		f.writeLabel(w, p, "Tested:", cDim, row.TestedDate)
	}
	for _, a := range row.Attachments {
		f.writeLabel(w, p, "Attach:", cCyan, a)
	}
}

// writeLabel emits one detail line: prefix + colored label (padded to labelWidth) + wrapped value.
func (f *TextFormatter) writeLabel(w io.Writer, prefix, label string, colorFn func(a ...interface{}) string, value string) {
	colored := colorFn(fmt.Sprintf("%-*s", labelWidth, label))
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		wrapped := f.wrap(line, colValue, colValue)
		if i == 0 {
			fmt.Fprintf(w, "%s%s%s\n", prefix, colored, wrapped)
			continue
		}
		fmt.Fprintf(w, "%s%s\n", colPad(colValue), wrapped)
	}
}

// ─── Summary ─────────────────────────────────────────────────────────

func (f *TextFormatter) writeSummary(w io.Writer, r *types.Report) {
	rule := cDim(strings.Repeat("─", ruleWidth))
	fmt.Fprintf(w, "  %s\n", rule)

	f.writeVerdict(w, r)

	s := r.Summary
	passed := cGreenBold(fmt.Sprintf("%d passed", s.Passed))
	failed := cRedBold(fmt.Sprintf("%d failed", s.Failed))
	broken := cYellowBold(fmt.Sprintf("%d broken", s.Broken))
	skipped := cDim(fmt.Sprintf("%d skipped", s.Skipped))
	extra := ""
	if s.Other > 0 {
		extra = " · " + cDim(fmt.Sprintf("%d unknown", s.Other))
	}

	fmt.Fprintf(w, "  %s  %s · %s · %s · %s%s\n",
		cBold("Summary:"), passed, failed, broken, skipped, extra)
	fmt.Fprintf(w, "  %s  %s\n", cDim("Total duration"), cBold(formatSeconds(s.DurationMS)))
	if r.OutputPath != "" {
		fmt.Fprintf(w, "  %s  %s\n", cDim("Report:"), r.OutputPath)
	}
	fmt.Fprintf(w, "  %s\n", rule)
}

func (f *TextFormatter) writeVerdict(w io.Writer, r *types.Report) {
	s := r.Summary
	switch {
	case s.Total == 0:
		fmt.Fprintf(w, "  %s %s\n", cYellowBold(f.icon("warn")), cYellowBold("No test results found"))
	case s.Failures() == 0 && s.Other > 0:
		fmt.Fprintf(w, "  %s %s\n", cYellowBold(f.icon("warn")),
			cYellowBold(fmt.Sprintf("No failures, but %d of %d test(s) have an unknown status", s.Other, s.Total)))
	case s.Failures() == 0:
		fmt.Fprintf(w, "  %s %s\n", cGreenBold(f.icon("pass")), cGreenBold("All executed tests passed"))
	default:
		fmt.Fprintf(w, "  %s %s\n", cRedBold(f.icon("fail")),
			cRedBold(fmt.Sprintf("%d of %d test(s) need attention (%.1f%% pass rate)",
				s.Failures(), s.Total, passRate(s))))
	}
}

// ─── Hints ───────────────────────────────────────────────────────────

func (f *TextFormatter) writeHints(w io.Writer, r *types.Report) {
	var hints []string
	s := r.Summary

	if f.show() == aggregate.ShowFailures && s.Total > s.Failures() {
		hints = append(hints, "Use --show all to see every test result")
	}
	if len(aggregate.FallbackRows(r.Rows)) > 0 {
		hints = append(hints, "Run 'allurexl lint' to list tests without a test case id")
	}
	if s.ParseErrors > 0 {
		hints = append(hints, "Run with --debug to see why files were skipped")
	}

	if len(hints) == 0 {
		return
	}

	fmt.Fprintln(w)
	for _, h := range hints {
		fmt.Fprintf(w, "  %s %s\n", cDim("›"), cDim(h))
	}
}

// ─── Text wrapping ───────────────────────────────────────────────────

func (f *TextFormatter) wrap(s string, startCol, wrapCol int) string {
	w := f.wrapWidth()
	if startCol+len(s) <= w {
		return s
	}

	avail := w - startCol
	if avail < 20 {
		return s
	}

	wrapPad := strings.Repeat(" ", wrapCol)
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}

	var b strings.Builder
	lineLen := 0

	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > avail {
			b.WriteByte('\n')
			b.WriteString(wrapPad)
			b.WriteString(word)
			lineLen = len(word)
			avail = w - wrapCol
		} else {
			b.WriteByte(' ')
			b.WriteString(word)
			lineLen += 1 + len(word)
		}
	}

	return b.String()
}

// ─── Icons ───────────────────────────────────────────────────────────

func (f *TextFormatter) icon(name string) string {
	if f.Dumb {
		switch name {
		case "pass":
			return "+"
		case "fail":
			return "x"
		case "broken":
			return "!"
		case "skip":
			return "-"
		case "warn":
			return "!"
		case "section":
			return ">"
		default:
			return "?"
		}
	}
	switch name {
	case "pass":
		return "✓"
	case "fail":
		return "✗"
	case "broken":
		return "⚠"
	case "skip":
		return "○"
	case "warn":
		return "⚠"
	case "section":
		return "▸"
	default:
		return "?"
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────

func (f *TextFormatter) statusIcon(s types.ResultStatus) string {
	switch s {
	case types.StatusPassed:
		return cGreen(f.icon("pass"))
	case types.StatusFailed:
		return cRed(f.icon("fail"))
	case types.StatusBroken:
		return cYellow(f.icon("broken"))
	case types.StatusSkipped:
		return cDim(f.icon("skip"))
	default:
		return f.icon("unknown")
	}
}

func (f *TextFormatter) statusBadge(s types.ResultStatus) string {
	padded := fmt.Sprintf(" %-*s", badgeWidth, statusBadgeRaw(s))
	switch s {
	case types.StatusPassed:
		return cGreen(padded)
	case types.StatusFailed:
		return cRedBold(padded)
	case types.StatusBroken:
		return cYellowBold(padded)
	default:
		return cDim(padded)
	}
}

func statusBadgeRaw(s types.ResultStatus) string {
	switch s {
	case types.StatusPassed:
		return "[PASS]"
	case types.StatusFailed:
		return "[FAIL]"
	case types.StatusBroken:
		return "[BROKEN]"
	case types.StatusSkipped:
		return "[SKIP]"
	default:
		return "[----]"
	}
}

func durationRaw(r types.ReportRow) string {
	if r.DurationMS < 1 {
		return "(<1ms)"
	}
	if r.DurationMS < 1000 {
		return fmt.Sprintf("(%dms)", r.DurationMS)
	}
	return fmt.Sprintf("(%s)", formatSeconds(r.DurationMS))
}

// remarkHead drops the line already shown as Actual and keeps the next
// few lines of the remarks.
func remarkHead(remarks, actual string) string {
	lines := strings.Split(strings.TrimSpace(remarks), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == actual {
		lines = lines[1:]
	}
	if len(lines) > remarkLines {
		lines = append(lines[:remarkLines], "…")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func formatSeconds(ms int64) string {
	return fmt.Sprintf("%.2fs", float64(ms)/1000.0)
}

func passRate(s types.Summary) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) * 100 / float64(s.Total)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func colPad(n int) string {
	return strings.Repeat(" ", n)
}
