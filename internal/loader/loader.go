// Package loader discovers, reads and validates Allure result documents.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ancients-collective/allurexl/internal/types"
)

// DefaultPattern matches the file names Allure reporters give result documents.
const DefaultPattern = "*-result.json"

var (
	// ErrEmptyDocument is returned for zero-byte or whitespace-only files.
	ErrEmptyDocument = errors.New("empty document")
	// ErrNotObject is returned when the document is valid JSON but not an object.
	ErrNotObject = errors.New("document is not a JSON object")
	// ErrSuperseded marks a retry dropped in favour of a later attempt.
	ErrSuperseded = errors.New("superseded by a later retry")
)

// FileError describes why one file did not produce a record.
// Skipped errors are files deliberately passed over; the rest are parse errors.
type FileError struct {
	Path    string
	Skipped bool
	Err     error
}

func (e *FileError) Error() string {
	if e.Skipped {
		return fmt.Sprintf("skipped %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Result is everything LoadDirectory learned about a results directory.
type Result struct {
	// Records holds one entry per successfully decoded document, in file name order.
	Records []types.ResultRecord

	// Errors holds one entry per file that did not produce a record.
	Errors []error

	// FilesMatched counts files whose name matched the pattern.
	FilesMatched int

	// SkippedFiles counts files passed over without being decoded.
	SkippedFiles int

	// ParseErrors counts files that could not be decoded or validated.
	ParseErrors int

	// DirMissing is true when the directory did not exist.
	DirMissing bool
}

// Options configure a Loader.
type Options struct {
	// Pattern is the glob document names must match. Defaults to DefaultPattern.
	Pattern string

	// DedupeRetries keeps only the latest attempt per historyId.
	DedupeRetries bool
}

// Loader reads Allure result documents and validates them against the
// minimal shape the report needs.
type Loader struct {
	validate *validator.Validate
	pattern  string
	dedupe   bool
	logger   *slog.Logger
}

// New creates a Loader. A nil logger discards log output.
func New(opts Options, logger *slog.Logger) (*Loader, error) {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid results pattern %q: %w", pattern, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		validate: validator.New(),
		pattern:  pattern,
		dedupe:   opts.DedupeRetries,
		logger:   logger,
	}, nil
}

// Decode parses and validates one result document.
func (l *Loader) Decode(data []byte) (types.ResultRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return types.ResultRecord{}, ErrEmptyDocument
	}
	if trimmed[0] != '{' {
		return types.ResultRecord{}, ErrNotObject
	}

	var rec types.ResultRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return types.ResultRecord{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := l.validate.Struct(rec); err != nil {
		return types.ResultRecord{}, formatValidationErrors(err)
	}
	return rec, nil
}

// LoadRecord reads a single result document from disk.
func (l *Loader) LoadRecord(path string) (types.ResultRecord, error) {
	data, err := readFileLimited(path)
	if err != nil {
		return types.ResultRecord{}, err
	}
	rec, err := l.Decode(data)
	if err != nil {
		return types.ResultRecord{}, err
	}
	rec.SourceFile = path
	return rec, nil
}

// LoadDirectory reads every matching document directly inside dir.
// It never fails: a missing or unreadable directory yields an empty Result,
// and per-file problems are collected in Result.Errors while loading
// continues. Symlinks are skipped.
func (l *Loader) LoadDirectory(dir string) Result {
	var res Result

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Info("results directory not found, reporting zero results", "dir", dir)
			res.DirMissing = true
			return res
		}
		l.logger.Warn("cannot read results directory", "dir", dir, "error", err)
		res.Errors = append(res.Errors, fmt.Errorf("read results directory %q: %w", dir, err))
		return res
	}

	for _, entry := range entries {
		if ok, _ := filepath.Match(l.pattern, entry.Name()); !ok {
			continue
		}
		res.FilesMatched++
		path := filepath.Join(dir, entry.Name())

		if entry.Type()&fs.ModeSymlink != 0 {
			l.skip(&res, path, errors.New("symlink"))
			continue
		}
		if entry.IsDir() {
			l.skip(&res, path, errors.New("directory"))
			continue
		}

		rec, err := l.LoadRecord(path)
		if err != nil {
			if errors.Is(err, ErrTooLarge) || errors.Is(err, ErrNotRegular) {
				l.skip(&res, path, err)
				continue
			}
			res.ParseErrors++
			res.Errors = append(res.Errors, &FileError{Path: path, Err: err})
			l.logger.Warn("skipping unparseable result", "file", path, "error", err)
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if l.dedupe {
		var dropped []types.ResultRecord
		res.Records, dropped = DedupeRetries(res.Records)
		for _, d := range dropped {
			l.skip(&res, d.SourceFile, ErrSuperseded)
		}
	}

	l.logger.Debug("results loaded", "dir", dir,
		"matched", res.FilesMatched, "records", len(res.Records),
		"skipped", res.SkippedFiles, "parse_errors", res.ParseErrors)
	return res
}

func (l *Loader) skip(res *Result, path string, err error) {
	res.SkippedFiles++
	res.Errors = append(res.Errors, &FileError{Path: path, Skipped: true, Err: err})
	l.logger.Warn("skipping result file", "file", path, "reason", err)
}

// DedupeRetries collapses records sharing a non-empty historyId to the
// attempt that stopped last. Ties go to the later file. Order of the kept
// records is preserved; records without a historyId are always kept.
func DedupeRetries(records []types.ResultRecord) (kept, dropped []types.ResultRecord) {
	latest := make(map[string]int, len(records))
	for i, rec := range records {
		if rec.HistoryID == "" {
			continue
		}
		if j, ok := latest[rec.HistoryID]; !ok || rec.Stop >= records[j].Stop {
			latest[rec.HistoryID] = i
		}
	}

	for i, rec := range records {
		if rec.HistoryID != "" && latest[rec.HistoryID] != i {
			dropped = append(dropped, rec)
			continue
		}
		kept = append(kept, rec)
	}
	return kept, dropped
}

// formatValidationErrors converts validator errors into user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var messages []string
	for _, fe := range validationErrors {
		messages = append(messages, formatFieldError(fe))
	}

	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// formatFieldError converts a single field validation error to a human-readable message.
func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without_all":
		return "document has no name, fullName or uuid"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
