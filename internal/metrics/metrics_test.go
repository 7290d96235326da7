package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/allurexl/internal/types"
)

func testReport() *types.Report {
	return &types.Report{
		GeneratedAt: time.Unix(1718006400, 0),
		Summary: types.Summary{
			Total: 6, Passed: 3, Failed: 1, Broken: 1, Skipped: 1,
			DurationMS: 4500, ParseErrors: 2, SkippedFiles: 1,
		},
		Sections: []types.SectionSummary{
			{Name: "login", Total: 4, Passed: 2, Failed: 1, Broken: 1},
			{Name: "users", Total: 2, Passed: 1, Skipped: 1},
		},
	}
}

func TestObserve(t *testing.T) {
	m := New()
	m.Observe(testReport())

	assert.Equal(t, 3.0, testutil.ToFloat64(m.results.WithLabelValues("passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.results.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.results.WithLabelValues("broken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.results.WithLabelValues("skipped")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.results.WithLabelValues("unknown")))
	assert.Equal(t, 4.5, testutil.ToFloat64(m.durationSeconds))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.parseErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedFiles))
	assert.Equal(t, 1718006400.0, testutil.ToFloat64(m.lastRun))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sectionResults.WithLabelValues("login", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sectionResults.WithLabelValues("users", "skipped")))
}

func TestObserve_ResetsSections(t *testing.T) {
	m := New()
	m.Observe(testReport())

	r := testReport()
	r.Sections = r.Sections[:1]
	m.Observe(r)

	// 5 status series for the remaining section only.
	assert.Equal(t, 5, testutil.CollectAndCount(m.sectionResults))
}

func TestSeparateRegistries(t *testing.T) {
	a := New()
	b := New()
	a.Observe(testReport())
	assert.Equal(t, 0.0, testutil.ToFloat64(b.parseErrors))
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Observe(testReport())

	path := filepath.Join(t.TempDir(), "textfile", "allurexl.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `allurexl_results{status="failed"} 1`)
	assert.Contains(t, out, "allurexl_parse_errors 2")
	assert.Contains(t, out, "allurexl_duration_seconds 4.5")
	assert.Contains(t, out, "# HELP allurexl_last_run_timestamp_seconds")
}
