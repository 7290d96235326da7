package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFileName(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 5, 9, 0, time.UTC)
	assert.Equal(t, "Test_Results_20240610_080509.xlsx", ReportFileName(now))
}

func TestNextReportPath(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 10, 8, 5, 9, 0, time.UTC)

	first, err := NextReportPath(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Test_Results_20240610_080509.xlsx"), first)

	require.NoError(t, os.WriteFile(first, []byte("x"), 0o644))
	second, err := NextReportPath(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Test_Results_20240610_080509_1.xlsx"), second)

	require.NoError(t, os.WriteFile(second, []byte("x"), 0o644))
	third, err := NextReportPath(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Test_Results_20240610_080509_2.xlsx"), third)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.xlsx")

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := fmt.Fprint(w, "complete")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "complete", string(data))
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestWriteFileAtomic_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")
	boom := errors.New("boom")

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = fmt.Fprint(w, "half")
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no partial file at the target path")
	assertNoTempFiles(t, dir)
}

func TestWriteFileAtomic_FailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	err := WriteFileAtomic(path, func(w io.Writer) error { return errors.New("boom") })
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestWriteFileAtomic_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), ReportFileName(testTimestamp))
	f := &XLSXFormatter{}
	require.NoError(t, WriteFileAtomic(path, func(w io.Writer) error {
		return f.Write(w, newTestReport())
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temporary file left behind")
	}
}
