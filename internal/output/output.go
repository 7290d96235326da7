// Package output renders aggregation reports: the Excel workbook that is
// the primary artifact, and text, JSON and JSONL views of the same data.
package output

import (
	"fmt"
	"io"

	"github.com/ancients-collective/allurexl/internal/types"
)

// Formatter writes a report to the given writer.
type Formatter interface {
	Write(w io.Writer, report *types.Report) error
}

// Format names accepted by NewConsole.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// NewConsole returns the stdout formatter for a format name. The text
// formatter is returned with its zero settings; callers set Show, Width
// and Dumb as needed.
func NewConsole(format string) (Formatter, error) {
	switch format {
	case FormatText, "":
		return &TextFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatJSONL:
		return &JSONLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (must be text, json or jsonl)", format)
	}
}
