package types

import "strings"

// ResultStatus is the outcome recorded for a single test execution.
type ResultStatus string

const (
	// StatusPassed means every assertion in the test held.
	StatusPassed ResultStatus = "passed"
	// StatusFailed means an assertion in the test did not hold.
	StatusFailed ResultStatus = "failed"
	// StatusBroken means the test raised an unexpected error before it could assert.
	StatusBroken ResultStatus = "broken"
	// StatusSkipped means the test was not run.
	StatusSkipped ResultStatus = "skipped"
	// StatusUnknown collects every status value the reporter does not recognize.
	StatusUnknown ResultStatus = "unknown"
)

// NormalizeStatus maps a raw status string onto the known set.
// Values outside passed/failed/broken/skipped become StatusUnknown.
func NormalizeStatus(raw string) ResultStatus {
	switch s := ResultStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPassed, StatusFailed, StatusBroken, StatusSkipped:
		return s
	default:
		return StatusUnknown
	}
}

// Display returns the label written into the spreadsheet's Status column.
func (s ResultStatus) Display() string {
	switch s {
	case StatusPassed:
		return "Pass"
	case StatusFailed:
		return "Fail"
	case StatusBroken:
		return "Broken"
	case StatusSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// ResultRecord is one Allure result document, as written by the test
// runner's reporter plugin (one "<uuid>-result.json" file per test).
type ResultRecord struct {
	// UUID identifies this execution.
	UUID string `json:"uuid"`

	// HistoryID is stable across reruns of the same test.
	HistoryID string `json:"historyId,omitempty"`

	// TestCaseID is Allure's hash of the test identity, not the suite's own
	// test case id.
	TestCaseID string `json:"testCaseId,omitempty"`

	// Name is the test name or its dynamic title.
	Name string `json:"name,omitempty" validate:"required_without_all=FullName UUID"`

	// FullName is the qualified test path (module and function).
	FullName string `json:"fullName,omitempty"`

	// Description is free text, usually carrying steps and expected outcome.
	Description string `json:"description,omitempty"`

	// Status is the raw status string. Use NormalizeStatus before counting.
	Status string `json:"status,omitempty"`

	// StatusDetails carries the failure message and trace.
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`

	Stage string `json:"stage,omitempty"`

	// Start and Stop are epoch milliseconds.
	Start int64 `json:"start,omitempty"`
	Stop  int64 `json:"stop,omitempty"`

	Steps       []Step       `json:"steps,omitempty"`
	Labels      []Label      `json:"labels,omitempty"`
	Parameters  []Parameter  `json:"parameters,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Links       []Link       `json:"links,omitempty"`

	// SourceFile is the path the record was read from. Not part of the document.
	SourceFile string `json:"-"`
}

// StatusDetails holds the failure information of a result or step.
type StatusDetails struct {
	Known   bool   `json:"known,omitempty"`
	Muted   bool   `json:"muted,omitempty"`
	Flaky   bool   `json:"flaky,omitempty"`
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

// Step is a recorded test step. Steps nest.
type Step struct {
	Name          string         `json:"name"`
	Status        string         `json:"status,omitempty"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
	Stage         string         `json:"stage,omitempty"`
	Steps         []Step         `json:"steps,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty"`
	Parameters    []Parameter    `json:"parameters,omitempty"`
	Start         int64          `json:"start,omitempty"`
	Stop          int64          `json:"stop,omitempty"`
}

// Label is a name/value pair such as suite, feature or tag.
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Parameter is a test parameter (pytest parametrize arguments and the like).
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attachment references a file stored next to the result, e.g. a screenshot.
type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type,omitempty"`
}

// Link is an issue or tms reference.
type Link struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// LabelValue returns the first value of the named label, or "".
func (r ResultRecord) LabelValue(name string) string {
	for _, l := range r.Labels {
		if l.Name == name {
			return l.Value
		}
	}
	return ""
}

// Message returns the failure message, or "" when there is none.
func (r ResultRecord) Message() string {
	if r.StatusDetails == nil {
		return ""
	}
	return r.StatusDetails.Message
}

// Trace returns the failure trace, or "" when there is none.
func (r ResultRecord) Trace() string {
	if r.StatusDetails == nil {
		return ""
	}
	return r.StatusDetails.Trace
}
