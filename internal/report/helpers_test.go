package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/allurexl/internal/config"
	"github.com/ancients-collective/allurexl/internal/types"
)

// fixedNow is the generation time of every test run.
var fixedNow = time.Date(2024, 6, 10, 9, 15, 0, 0, time.UTC)

// testStart is the start time of the first result document.
var testStart = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

type stubDetector struct{}

func (stubDetector) Detect() (types.SystemContext, error) {
	return types.SystemContext{
		OS:          types.OSInfo{Name: "linux", Version: "6.1.0", Arch: "amd64"},
		Distro:      types.DistroInfo{ID: "ubuntu", Version: "22.04", Family: "debian"},
		Environment: types.EnvInfo{Type: types.EnvContainer, Runtime: "docker", Hostname: "ci-runner-01", CI: "gitlab", CIBuild: "4711"},
	}, nil
}

func testOptions() Options {
	return Options{
		Version:  "test",
		Now:      func() time.Time { return fixedNow },
		Detector: stubDetector{},
	}
}

// testConfig returns a config reading dir/results and writing to dir/out.
func testConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.ResultsDir = filepath.Join(dir, "results")
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Timezone = "UTC"
	return cfg
}

// resultDoc builds a minimal result document for a test in the login
// section, offset minutes after testStart.
func resultDoc(name, status, message string, offset int) types.ResultRecord {
	start := testStart.Add(time.Duration(offset) * time.Minute).UnixMilli()
	rec := types.ResultRecord{
		UUID:     fmt.Sprintf("uuid-%d", offset),
		Name:     name,
		FullName: "tests.test_login#" + name,
		Status:   status,
		Start:    start,
		Stop:     start + 1500,
		Labels:   []types.Label{{Name: "feature", Value: "login"}},
	}
	if message != "" {
		rec.StatusDetails = &types.StatusDetails{Message: message}
	}
	return rec
}

// writeDoc stores rec as <file>-result.json in the results directory.
func writeDoc(t *testing.T, cfg config.Config, file string, rec types.ResultRecord) {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	writeRaw(t, cfg, file+"-result.json", data)
}

func writeRaw(t *testing.T, cfg config.Config, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(cfg.ResultsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ResultsDir, name), data, 0o644))
}
