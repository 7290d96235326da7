package output

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ancients-collective/allurexl/internal/types"
)

// SheetName is the only sheet in the workbook.
const SheetName = "Test Results"

// Columns is the fixed column order of the results sheet.
var Columns = []string{
	"Test Case ID",
	"Test Scenario",
	"Test Steps",
	"Test Data",
	"Precondition",
	"Expected Output",
	"Actual Output",
	"Status",
	"Remarks",
	"Tested By",
	"Tested Date",
	"Duration",
}

const (
	headerFill  = "366092"
	passFill    = "C6EFCE"
	failFill    = "FFC7CE"
	brokenFill  = "FFEB9C"
	borderColor = "D9D9D9"

	headerHeight = 25
	maxColWidth  = 50

	// statusCol and durationCol are 1-based column numbers.
	statusCol   = 8
	durationCol = 12

	emptyMessage = "No test results found"
	emptyStatus  = "NO DATA"
)

// XLSXFormatter writes a report as an Excel workbook: one row per test,
// then a summary block two rows below the data.
type XLSXFormatter struct{}

type sheetStyles struct {
	header   int
	cell     int
	duration int
	pass     int
	fail     int
	broken   int
	label    int
	title    int
}

// Write renders the workbook and streams it to w.
func (f *XLSXFormatter) Write(w io.Writer, report *types.Report) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	st, err := newSheetStyles(x)
	if err != nil {
		return err
	}

	widths := make([]int, len(Columns))
	if err := writeHeader(x, st, widths); err != nil {
		return err
	}

	lastRow := 1
	if len(report.Rows) == 0 {
		if err := writeEmptyRow(x, st, widths); err != nil {
			return err
		}
		lastRow = 2
	}
	for i, row := range report.Rows {
		lastRow = i + 2
		if err := writeRow(x, st, lastRow, row, widths); err != nil {
			return err
		}
	}

	if err := writeSummaryBlock(x, st, lastRow+2, report); err != nil {
		return err
	}
	if err := applyWidths(x, widths); err != nil {
		return err
	}
	if err := x.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := x.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

type styleDef struct {
	dst   *int
	style *excelize.Style
}

func newSheetStyles(x *excelize.File) (sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: borderColor, Style: 1},
		{Type: "top", Color: borderColor, Style: 1},
		{Type: "right", Color: borderColor, Style: 1},
		{Type: "bottom", Color: borderColor, Style: 1},
	}
	wrap := &excelize.Alignment{Vertical: "top", WrapText: true}
	fill := func(c string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{c}, Pattern: 1}
	}
	twoDecimals := "0.00"

	var st sheetStyles
	defs := []styleDef{
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
			Fill:      fill(headerFill),
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    border,
		}},
		{&st.cell, &excelize.Style{Alignment: wrap, Border: border}},
		{&st.duration, &excelize.Style{Alignment: wrap, Border: border, CustomNumFmt: &twoDecimals}},
		{&st.pass, &excelize.Style{Alignment: wrap, Border: border, Fill: fill(passFill)}},
		{&st.fail, &excelize.Style{Alignment: wrap, Border: border, Fill: fill(failFill)}},
		{&st.broken, &excelize.Style{Alignment: wrap, Border: border, Fill: fill(brokenFill)}},
		{&st.label, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}}},
	}

	for _, d := range defs {
		id, err := x.NewStyle(d.style)
		if err != nil {
			return st, fmt.Errorf("creating cell style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}

func writeHeader(x *excelize.File, st sheetStyles, widths []int) error {
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
		trackWidth(widths, i, c)
	}
	if err := x.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := x.SetCellStyle(SheetName, "A1", last, st.header); err != nil {
		return err
	}
	return x.SetRowHeight(SheetName, 1, headerHeight)
}

func writeEmptyRow(x *excelize.File, st sheetStyles, widths []int) error {
	if err := x.SetCellValue(SheetName, "A2", emptyMessage); err != nil {
		return err
	}
	if err := x.MergeCell(SheetName, "A2", "G2"); err != nil {
		return fmt.Errorf("merging empty row: %w", err)
	}
	status, _ := excelize.CoordinatesToCellName(statusCol, 2)
	if err := x.SetCellValue(SheetName, status, emptyStatus); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 2)
	if err := x.SetCellStyle(SheetName, "A2", last, st.cell); err != nil {
		return err
	}
	trackWidth(widths, statusCol-1, emptyStatus)
	return nil
}

// rowValues returns the cells of one row in Columns order.
func rowValues(r types.ReportRow) []interface{} {
	return []interface{}{
		r.TestCaseID,
		r.Scenario,
		r.Steps,
		r.TestData,
		r.Precondition,
		r.Expected,
		r.Actual,
		r.Status.Display(),
		r.Remarks,
		r.TestedBy,
		r.TestedDate,
		DurationSeconds(r.DurationMS),
	}
}

func writeRow(x *excelize.File, st sheetStyles, n int, r types.ReportRow, widths []int) error {
	values := rowValues(r)
	first, _ := excelize.CoordinatesToCellName(1, n)
	if err := x.SetSheetRow(SheetName, first, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", n, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), n)
	if err := x.SetCellStyle(SheetName, first, last, st.cell); err != nil {
		return err
	}

	status, _ := excelize.CoordinatesToCellName(statusCol, n)
	if id, ok := st.forStatus(r.Status); ok {
		if err := x.SetCellStyle(SheetName, status, status, id); err != nil {
			return err
		}
	}
	dur, _ := excelize.CoordinatesToCellName(durationCol, n)
	if err := x.SetCellStyle(SheetName, dur, dur, st.duration); err != nil {
		return err
	}

	for i, v := range values {
		trackWidth(widths, i, fmt.Sprint(v))
	}
	return nil
}

func (st sheetStyles) forStatus(s types.ResultStatus) (int, bool) {
	switch s {
	case types.StatusPassed:
		return st.pass, true
	case types.StatusFailed:
		return st.fail, true
	case types.StatusBroken:
		return st.broken, true
	default:
		return 0, false
	}
}

// SummaryLabels lists the summary block rows in order.
var SummaryLabels = []string{
	"Total Tests",
	"Passed",
	"Failed",
	"Broken",
	"Skipped",
	"Other",
	"Parse Errors",
	"Pass Rate (%)",
	"Total Duration (s)",
	"Generated At",
	"Run ID",
	"Host",
}

func writeSummaryBlock(x *excelize.File, st sheetStyles, start int, r *types.Report) error {
	s := r.Summary
	rate := 0.0
	if s.Total > 0 {
		rate = math.Round(float64(s.Passed)*10000/float64(s.Total)) / 100
	}
	values := []interface{}{
		s.Total,
		s.Passed,
		s.Failed,
		s.Broken,
		s.Skipped,
		s.Other,
		s.ParseErrors,
		rate,
		DurationSeconds(s.DurationMS),
		r.GeneratedAt.Format("2006-01-02 15:04:05"),
		r.RunID,
		r.Environment.Hostname,
	}

	title, _ := excelize.CoordinatesToCellName(1, start)
	if err := x.SetCellValue(SheetName, title, "Summary"); err != nil {
		return err
	}
	if err := x.SetCellStyle(SheetName, title, title, st.title); err != nil {
		return err
	}
	for i, label := range SummaryLabels {
		row := start + 1 + i
		a, _ := excelize.CoordinatesToCellName(1, row)
		b, _ := excelize.CoordinatesToCellName(2, row)
		if err := x.SetCellValue(SheetName, a, label); err != nil {
			return err
		}
		if err := x.SetCellStyle(SheetName, a, a, st.label); err != nil {
			return err
		}
		if err := x.SetCellValue(SheetName, b, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyWidths(x *excelize.File, widths []int) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := w + 2
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := x.SetColWidth(SheetName, col, col, float64(width)); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}
	return nil
}

// trackWidth records the longest line seen in column i.
func trackWidth(widths []int, i int, v string) {
	for _, line := range strings.Split(v, "\n") {
		if n := utf8.RuneCountInString(line); n > widths[i] {
			widths[i] = n
		}
	}
}

// DurationSeconds converts milliseconds to seconds rounded to two decimals.
func DurationSeconds(ms int64) float64 {
	return math.Round(float64(ms)/10) / 100
}
