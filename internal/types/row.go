package types

import "time"

// IDSource records where a row's test case id came from.
type IDSource string

const (
	// IDFromMapping means the id came from the configured name → id table.
	IDFromMapping IDSource = "mapping"
	// IDFromName means the id pattern matched the test name.
	IDFromName IDSource = "name"
	// IDFromDescription means the id pattern matched the description.
	IDFromDescription IDSource = "description"
	// IDFromLabel means the id pattern matched a label value.
	IDFromLabel IDSource = "label"
	// IDFallback means no id was found and the full test name is used verbatim.
	IDFallback IDSource = "fallback"
)

// ReportRow is one spreadsheet row derived from a ResultRecord.
// Rows are built once and never modified afterwards.
type ReportRow struct {
	// TestCaseID is the PREFIX_SECTION_### id, or the test name on fallback.
	TestCaseID string `json:"test_case_id"`

	// IDSource tells how TestCaseID was obtained.
	IDSource IDSource `json:"id_source"`

	// Name is the raw test name from the record.
	Name string `json:"name"`

	// Section is the portal area the test exercises (login, users, ...).
	Section string `json:"section,omitempty"`

	Scenario     string       `json:"scenario"`
	Steps        string       `json:"steps"`
	TestData     string       `json:"test_data"`
	Precondition string       `json:"precondition"`
	Expected     string       `json:"expected"`
	Actual       string       `json:"actual"`
	Status       ResultStatus `json:"status"`

	// Remarks is the cleaned, length-bounded failure message.
	Remarks string `json:"remarks,omitempty"`

	TestedBy   string `json:"tested_by"`
	TestedDate string `json:"tested_date,omitempty"`

	// Start is when the test started; zero when the record had no start time.
	Start time.Time `json:"start,omitempty"`

	// Duration is stop minus start, never negative (not serialized to JSON).
	Duration time.Duration `json:"-"`

	// DurationMS is the duration in milliseconds for JSON serialization.
	DurationMS int64 `json:"duration_ms"`

	// Attachments lists attachment sources (screenshots, logs).
	Attachments []string `json:"attachments,omitempty"`

	// SourceFile is the result document the row came from.
	SourceFile string `json:"source_file,omitempty"`
}

// IDParsed reports whether the id follows the naming convention.
func (r ReportRow) IDParsed() bool {
	return r.IDSource != IDFallback
}
