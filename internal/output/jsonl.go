package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ancients-collective/allurexl/internal/types"
)

// JSONLFormatter writes a report as newline-delimited JSON (one object per line).
// The first line is a header with run, environment and summary information.
// Subsequent lines are individual rows.
type JSONLFormatter struct{}

// Write renders the report as JSONL: header line + one line per row.
func (f *JSONLFormatter) Write(w io.Writer, report *types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	header := struct {
		Type        string                 `json:"type"`
		RunID       string                 `json:"run_id"`
		Version     string                 `json:"version"`
		Timestamp   string                 `json:"timestamp"`
		OutputPath  string                 `json:"output_path,omitempty"`
		Environment types.Environment      `json:"environment"`
		Summary     types.Summary          `json:"summary"`
		Sections    []types.SectionSummary `json:"sections,omitempty"`
		Warnings    []string               `json:"warnings,omitempty"`
	}{
		Type:        "header",
		RunID:       report.RunID,
		Version:     report.Version,
		Timestamp:   report.GeneratedAt.Format(time.RFC3339),
		OutputPath:  report.OutputPath,
		Environment: report.Environment,
		Summary:     report.Summary,
		Sections:    report.Sections,
		Warnings:    report.Warnings,
	}
	if err := enc.Encode(header); err != nil {
		return err
	}

	for _, r := range report.Rows {
		line := struct {
			Type string          `json:"type"`
			Row  types.ReportRow `json:"row"`
		}{
			Type: "row",
			Row:  r,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	return nil
}
