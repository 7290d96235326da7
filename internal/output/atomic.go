package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportFilePrefix and ReportFileExt frame the generated spreadsheet name.
const (
	ReportFilePrefix = "Test_Results_"
	ReportFileExt    = ".xlsx"

	// maxNameAttempts bounds the numeric suffix search in NextReportPath.
	maxNameAttempts = 1000
)

// ReportFileName returns Test_Results_YYYYMMDD_HHMMSS.xlsx for now.
func ReportFileName(now time.Time) string {
	return ReportFilePrefix + now.Format("20060102_150405") + ReportFileExt
}

// NextReportPath returns a path in dir that does not exist yet. When the
// timestamped name is taken, _1, _2, ... is appended before the extension.
func NextReportPath(dir string, now time.Time) (string, error) {
	base := strings.TrimSuffix(ReportFileName(now), ReportFileExt)
	for i := 0; i < maxNameAttempts; i++ {
		name := base + ReportFileExt
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, ReportFileExt)
		}
		path := filepath.Join(dir, name)
		_, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("no free report name in %s after %d attempts", dir, maxNameAttempts)
}

// WriteFileAtomic writes a file through a temporary sibling and renames it
// into place. Readers never observe a partial file: on any error the
// temporary file is removed and path is left untouched.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	tmpPath := file.Name()

	writeErr := write(file)
	var syncErr error
	if writeErr == nil {
		syncErr = file.Sync()
	}
	closeErr := file.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return writeErr
	}
	if syncErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing %s: %w", tmpPath, syncErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
