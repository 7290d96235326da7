package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/allurexl/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testReport(runID string, at time.Time, statuses ...types.ResultStatus) *types.Report {
	r := &types.Report{
		RunID:       runID,
		GeneratedAt: at,
		ResultsDir:  "reports/allure-results",
		OutputPath:  "reports/Test_Results.xlsx",
		Environment: types.Environment{Hostname: "ci-runner-01"},
	}
	for i, st := range statuses {
		r.Rows = append(r.Rows, types.ReportRow{
			TestCaseID: fmt.Sprintf("TC_LOGIN_%03d", i+1),
			Name:       fmt.Sprintf("test_TC_LOGIN_%03d", i+1),
			Section:    "login",
			Status:     st,
			DurationMS: int64(100 * (i + 1)),
		})
		r.Summary.Total++
		r.Summary.DurationMS += int64(100 * (i + 1))
		switch st {
		case types.StatusPassed:
			r.Summary.Passed++
		case types.StatusFailed:
			r.Summary.Failed++
		case types.StatusBroken:
			r.Summary.Broken++
		case types.StatusSkipped:
			r.Summary.Skipped++
		default:
			r.Summary.Other++
		}
	}
	return r
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	run, err := s.Record(ctx, testReport("run-1", at, types.StatusPassed, types.StatusFailed))
	require.NoError(t, err)
	assert.Positive(t, run.ID)
	assert.Equal(t, 2, run.Total)

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 1, got.Passed)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, int64(300), got.DurationMS)
	assert.Equal(t, "ci-runner-01", got.Hostname)
	assert.True(t, at.Equal(got.GeneratedAt))
	assert.InDelta(t, 50.0, got.PassRate(), 0.001)
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecord_DuplicateRunID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	at := time.Now()

	_, err := s.Record(ctx, testReport("run-1", at, types.StatusPassed))
	require.NoError(t, err)
	_, err = s.Record(ctx, testReport("run-1", at, types.StatusPassed))
	assert.Error(t, err)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1, "failed insert is rolled back")
}

func TestRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, testReport(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour), types.StatusPassed))
		require.NoError(t, err)
	}

	runs, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-4", runs[0].RunID)
	assert.Equal(t, "run-3", runs[1].RunID)
	assert.Equal(t, "run-2", runs[2].RunID)
}

func TestRecent_Empty(t *testing.T) {
	s := openTestStore(t)
	runs, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOutcomes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	_, err := s.Record(ctx, testReport("run-a", base, types.StatusPassed, types.StatusPassed))
	require.NoError(t, err)
	_, err = s.Record(ctx, testReport("run-b", base.Add(time.Hour), types.StatusPassed, types.StatusFailed))
	require.NoError(t, err)

	out, err := s.Outcomes(ctx, "tc_login_002", 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "run-b", out[0].RunID)
	assert.Equal(t, "failed", out[0].Status)
	assert.Equal(t, "run-a", out[1].RunID)
	assert.Equal(t, "passed", out[1].Status)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		_, err := s.Record(ctx, testReport(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute), types.StatusPassed))
		require.NoError(t, err)
	}

	removed, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].RunID)

	out, err := s.Outcomes(ctx, "TC_LOGIN_001", 10)
	require.NoError(t, err)
	assert.Len(t, out, 2, "rows of pruned runs are deleted with them")
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.Record(ctx, testReport("run-1", time.Now(), types.StatusPassed))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
