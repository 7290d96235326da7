package output

import (
	"time"

	"github.com/ancients-collective/allurexl/internal/types"
)

// testTimestamp is a fixed time for deterministic test output.
var testTimestamp = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

// newTestReport builds a representative Report with three rows:
// two passed and one failed.
func newTestReport() *types.Report {
	start := testTimestamp.Add(-5 * time.Minute)
	return &types.Report{
		RunID:       "5b1f6a1e-3c9d-4b7e-9f57-1d2a3b4c5d6e",
		Version:     "1.0.0",
		GeneratedAt: testTimestamp,
		ResultsDir:  "reports/allure-results",
		Environment: types.Environment{
			Hostname:      "ci-runner-01",
			OS:            "linux",
			OSVersion:     "6.1.0",
			Arch:          "amd64",
			DistroID:      "ubuntu",
			DistroVersion: "22.04",
			EnvType:       "container",
			EnvRuntime:    "docker",
			CI:            "gitlab",
			CIBuild:       "4711",
			Properties:    map[string]string{"Browser": "chromium", "Base.URL": "https://staging.example.com"},
		},
		Summary: types.Summary{
			Total:        3,
			Passed:       2,
			Failed:       1,
			DurationMS:   4750,
			FilesMatched: 4,
			ParseErrors:  1,
		},
		Sections: []types.SectionSummary{
			{Name: "dashboard", Total: 1, Passed: 1, DurationMS: 1250},
			{Name: "login", Total: 2, Passed: 1, Failed: 1, DurationMS: 3500},
		},
		Rows: []types.ReportRow{
			{
				TestCaseID:   "TC_LOGIN_001",
				IDSource:     types.IDFromName,
				Name:         "test_TC_LOGIN_001_valid_login",
				Section:      "login",
				Scenario:     "Valid Login",
				Steps:        "1. Open login page\n2. Submit credentials",
				TestData:     "Test data as per test scenario",
				Precondition: "Application is accessible",
				Expected:     "Dashboard is shown",
				Actual:       "Pass",
				Status:       types.StatusPassed,
				TestedBy:     "Automated",
				TestedDate:   start.Format("2006-01-02 15:04:05"),
				Start:        start,
				Duration:     2500 * time.Millisecond,
				DurationMS:   2500,
				SourceFile:   "a-result.json",
			},
			{
				TestCaseID:   "TC_LOGIN_002",
				IDSource:     types.IDFromName,
				Name:         "test_TC_LOGIN_002_invalid_password",
				Section:      "login",
				Scenario:     "Invalid Password",
				Steps:        "1. Open login page\n2. Submit a wrong password",
				TestData:     "Test data as per test scenario",
				Precondition: "Application is accessible",
				Expected:     "An error is shown",
				Actual:       "AssertionError: element not found",
				Status:       types.StatusFailed,
				Remarks:      "AssertionError: element not found\ntests/test_login.py:42: in test_invalid_password",
				TestedBy:     "Automated",
				TestedDate:   start.Add(3 * time.Second).Format("2006-01-02 15:04:05"),
				Start:        start.Add(3 * time.Second),
				Duration:     1000 * time.Millisecond,
				DurationMS:   1000,
				Attachments:  []string{"shot-1.png"},
				SourceFile:   "b-result.json",
			},
			{
				TestCaseID:   "test_dashboard_widgets",
				IDSource:     types.IDFallback,
				Name:         "test_dashboard_widgets",
				Section:      "dashboard",
				Scenario:     "Dashboard Widgets",
				Steps:        "1. Open application",
				TestData:     "Test data as per test scenario",
				Precondition: "Application is accessible",
				Expected:     "Test should pass",
				Actual:       "Pass",
				Status:       types.StatusPassed,
				TestedBy:     "Automated",
				Duration:     1250 * time.Millisecond,
				DurationMS:   1250,
				SourceFile:   "c-result.json",
			},
		},
		Warnings: []string{"broken-result.json: invalid character 'x' looking for beginning of value"},
	}
}

// newEmptyReport builds a report with no results.
func newEmptyReport() *types.Report {
	return &types.Report{
		RunID:       "00000000-0000-0000-0000-000000000000",
		Version:     "1.0.0",
		GeneratedAt: testTimestamp,
		ResultsDir:  "reports/allure-results",
		Environment: types.Environment{Hostname: "ci-runner-01", OS: "linux", Arch: "amd64"},
	}
}
