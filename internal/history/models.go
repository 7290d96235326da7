package history

import "time"

// Run is one stored aggregation run.
type Run struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	ResultsDir  string    `json:"results_dir"`
	OutputPath  string    `json:"output_path,omitempty"`
	Hostname    string    `json:"hostname,omitempty"`
	Total       int       `json:"total"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Broken      int       `json:"broken"`
	Skipped     int       `json:"skipped"`
	Other       int       `json:"other"`
	ParseErrors int       `json:"parse_errors"`
	DurationMS  int64     `json:"duration_ms"`
}

// PassRate returns the passed share of Total in percent.
func (r Run) PassRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) * 100 / float64(r.Total)
}

// Outcome is one test's result in a stored run.
type Outcome struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	TestCaseID  string    `json:"test_case_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	DurationMS  int64     `json:"duration_ms"`
	Remarks     string    `json:"remarks,omitempty"`
}
