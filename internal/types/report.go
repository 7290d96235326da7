package types

import "time"

// Report is the top-level structure for one aggregation run.
// It is serialized directly to JSON for the --format=json output.
type Report struct {
	// RunID identifies this aggregation run.
	RunID string `json:"run_id"`

	// Version is the allurexl version that produced this report.
	Version string `json:"version"`

	// GeneratedAt is when the report was generated.
	GeneratedAt time.Time `json:"generated_at"`

	// ResultsDir is the directory the result documents were read from.
	ResultsDir string `json:"results_dir"`

	// OutputPath is the spreadsheet path, empty until it has been written.
	OutputPath string `json:"output_path,omitempty"`

	// Environment describes the host and the suite environment.
	Environment Environment `json:"environment"`

	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Sections breaks the summary down per portal section.
	Sections []SectionSummary `json:"sections,omitempty"`

	// Rows holds one entry per parsed result document.
	Rows []ReportRow `json:"rows"`

	// Warnings lists non-fatal problems, one per skipped or unparseable file.
	Warnings []string `json:"warnings,omitempty"`
}

// Environment describes where the report was generated and, when the
// results directory carries an environment.properties file, what the
// suite ran against.
type Environment struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	OSVersion     string `json:"os_version,omitempty"`
	Arch          string `json:"arch"`
	DistroID      string `json:"distro_id,omitempty"`
	DistroVersion string `json:"distro_version,omitempty"`
	EnvType       string `json:"env_type,omitempty"`
	EnvRuntime    string `json:"env_runtime,omitempty"`
	CI            string `json:"ci,omitempty"`
	CIBuild       string `json:"ci_build,omitempty"`

	// Properties are the key/value pairs from environment.properties.
	Properties map[string]string `json:"properties,omitempty"`
}

// Summary provides aggregate statistics for a report.
// Total always equals Passed+Failed+Broken+Skipped+Other.
type Summary struct {
	// Total is the number of rows in the report.
	Total int `json:"total"`

	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Broken  int `json:"broken"`
	Skipped int `json:"skipped"`

	// Other counts rows whose status was not recognized.
	Other int `json:"other"`

	// DurationMS is the sum of all row durations in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// FilesMatched is the number of files that matched the results pattern.
	FilesMatched int `json:"files_matched"`

	// SkippedFiles counts matched files that were not read (symlinks,
	// oversized files, superseded retries).
	SkippedFiles int `json:"skipped_files"`

	// ParseErrors counts matched files that could not be decoded.
	// These never appear in the status buckets.
	ParseErrors int `json:"parse_errors"`
}

// Consistent reports whether Total equals the sum of the status buckets.
func (s Summary) Consistent() bool {
	return s.Total == s.Passed+s.Failed+s.Broken+s.Skipped+s.Other
}

// Failures returns the number of failed and broken rows.
func (s Summary) Failures() int {
	return s.Failed + s.Broken
}

// SectionSummary holds the counts for one portal section.
type SectionSummary struct {
	Name       string `json:"name"`
	Total      int    `json:"total"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Broken     int    `json:"broken"`
	Skipped    int    `json:"skipped"`
	Other      int    `json:"other"`
	DurationMS int64  `json:"duration_ms"`
}
