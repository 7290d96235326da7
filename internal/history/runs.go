package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ancients-collective/allurexl/internal/types"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Record stores a report and its rows in one transaction.
func (s *Store) Record(ctx context.Context, r *types.Report) (*Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sum := r.Summary
	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, generated_at, results_dir, output_path, hostname,
			total, passed, failed, broken, skipped, other, parse_errors, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.GeneratedAt.UnixMilli(), r.ResultsDir, r.OutputPath, r.Environment.Hostname,
		sum.Total, sum.Passed, sum.Failed, sum.Broken, sum.Skipped, sum.Other, sum.ParseErrors, sum.DurationMS,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_rows (run, test_case_id, name, section, status, duration_ms, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range r.Rows {
		if _, err := stmt.ExecContext(ctx, id, row.TestCaseID, row.Name, row.Section,
			string(row.Status), row.DurationMS, row.Remarks); err != nil {
			return nil, fmt.Errorf("failed to insert row %s: %w", row.TestCaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	return &Run{
		ID:          id,
		RunID:       r.RunID,
		GeneratedAt: time.UnixMilli(r.GeneratedAt.UnixMilli()),
		ResultsDir:  r.ResultsDir,
		OutputPath:  r.OutputPath,
		Hostname:    r.Environment.Hostname,
		Total:       sum.Total,
		Passed:      sum.Passed,
		Failed:      sum.Failed,
		Broken:      sum.Broken,
		Skipped:     sum.Skipped,
		Other:       sum.Other,
		ParseErrors: sum.ParseErrors,
		DurationMS:  sum.DurationMS,
	}, nil
}

const runColumns = `id, run_id, generated_at, results_dir, output_path, hostname,
	total, passed, failed, broken, skipped, other, parse_errors, duration_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var generatedAt int64
	if err := sc.Scan(&r.ID, &r.RunID, &generatedAt, &r.ResultsDir, &r.OutputPath, &r.Hostname,
		&r.Total, &r.Passed, &r.Failed, &r.Broken, &r.Skipped, &r.Other, &r.ParseErrors, &r.DurationMS); err != nil {
		return nil, err
	}
	r.GeneratedAt = time.UnixMilli(generatedAt)
	return &r, nil
}

// Recent returns up to limit runs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY generated_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns the run with the given run id.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// Outcomes returns the last limit recorded results for a test case id,
// most recent first.
func (s *Store) Outcomes(ctx context.Context, testCaseID string, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.generated_at, rr.test_case_id, rr.name, rr.status, rr.duration_ms, rr.remarks
		FROM run_rows rr
		JOIN runs r ON r.id = rr.run
		WHERE rr.test_case_id = ? COLLATE NOCASE
		ORDER BY r.generated_at DESC, rr.id DESC
		LIMIT ?`, testCaseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var generatedAt int64
		if err := rows.Scan(&o.RunID, &generatedAt, &o.TestCaseID, &o.Name, &o.Status, &o.DurationMS, &o.Remarks); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.GeneratedAt = time.UnixMilli(generatedAt)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Prune deletes all but the keep most recent runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY generated_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}
