package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxFileReadBytes is the largest result document we will read (10 MB).
// Allure results carry references to attachments, never the attachments
// themselves, so anything bigger is not a result document.
const MaxFileReadBytes int64 = 10 * 1024 * 1024

var (
	// ErrTooLarge is returned for files over MaxFileReadBytes.
	ErrTooLarge = errors.New("file too large")
	// ErrNotRegular is returned for devices, pipes and sockets.
	ErrNotRegular = errors.New("not a regular file")
)

// readFileLimited reads a regular file with a bounded read.
// Uses open-then-fstat to avoid TOCTOU races between stat and open.
func readFileLimited(path string) ([]byte, error) {
	cleaned := filepath.Clean(path)

	f, err := os.Open(cleaned)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w (mode: %s)", ErrNotRegular, info.Mode().Type())
	}

	if info.Size() > MaxFileReadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrTooLarge, info.Size(), MaxFileReadBytes)
	}

	limited := io.LimitReader(f, MaxFileReadBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if int64(len(data)) > MaxFileReadBytes {
		return nil, fmt.Errorf("%w: grew past the limit during read", ErrTooLarge)
	}

	return data, nil
}
