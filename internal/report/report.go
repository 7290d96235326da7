// Package report runs the aggregation pipeline: load result documents,
// transform and tally them, then write the spreadsheet and the optional
// history and metrics side outputs.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ancients-collective/allurexl/internal/aggregate"
	"github.com/ancients-collective/allurexl/internal/config"
	sysdetect "github.com/ancients-collective/allurexl/internal/context"
	"github.com/ancients-collective/allurexl/internal/history"
	"github.com/ancients-collective/allurexl/internal/loader"
	"github.com/ancients-collective/allurexl/internal/metrics"
	"github.com/ancients-collective/allurexl/internal/output"
	"github.com/ancients-collective/allurexl/internal/types"
)

// ErrWrite wraps every failure to produce the spreadsheet.
var ErrWrite = errors.New("spreadsheet not written")

// Options carry the collaborators of a run. Zero values are usable.
type Options struct {
	// Version is stamped into the report.
	Version string

	// Logger receives progress and warnings. Nil discards them.
	Logger *slog.Logger

	// Now returns the generation time. Nil means time.Now.
	Now func() time.Time

	// Detector describes the host. Nil uses the gopsutil detector.
	Detector sysdetect.Detector
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Detector == nil {
		o.Detector = sysdetect.NewDetector()
	}
	return o
}

// Build loads and transforms the results directory into a report without
// writing anything. Only invalid settings fail it: a missing directory or
// unparseable documents produce warnings and an emptier report.
func Build(cfg config.Config, opts Options) (*types.Report, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	ldr, err := loader.New(loader.Options{
		Pattern:       cfg.ResultsPattern,
		DedupeRetries: cfg.DedupeRetries,
	}, log)
	if err != nil {
		return nil, err
	}
	tr, err := aggregate.NewTransformer(aggregate.Options{
		IDPattern:    cfg.IDPattern,
		TestCaseIDs:  cfg.TestCaseIDs,
		RemarksLimit: cfg.RemarksLimit,
		TraceLimit:   cfg.TraceLimit,
		TestedBy:     cfg.Defaults.TestedBy,
		Precondition: cfg.Defaults.Precondition,
		TestData:     cfg.Defaults.TestData,
		Steps:        cfg.Defaults.Steps,
		Expected:     cfg.Defaults.Expected,
		Location:     loc,
	})
	if err != nil {
		return nil, err
	}

	now := opts.Now()
	res := ldr.LoadDirectory(cfg.ResultsDir)
	rows := tr.TransformAll(res.Records)
	summary, sections := aggregate.Tally(rows)
	summary.FilesMatched = res.FilesMatched
	summary.SkippedFiles = res.SkippedFiles
	summary.ParseErrors = res.ParseErrors

	env := sysdetect.Environment(opts.Detector, log)
	props, err := sysdetect.ReadProperties(cfg.ResultsDir)
	if err != nil {
		log.Warn("ignoring environment properties", "error", err)
	}
	env.Properties = props

	r := &types.Report{
		RunID:       uuid.NewString(),
		Version:     opts.Version,
		GeneratedAt: now,
		ResultsDir:  cfg.ResultsDir,
		Environment: env,
		Summary:     summary,
		Sections:    sections,
		Rows:        rows,
	}
	for _, e := range res.Errors {
		r.Warnings = append(r.Warnings, e.Error())
	}

	log.Debug("report built", "run_id", r.RunID, "rows", len(rows),
		"parse_errors", summary.ParseErrors, "skipped", summary.SkippedFiles)
	return r, nil
}

// Generate builds the report and writes the spreadsheet, then records the
// run in the history store and the metrics textfile when configured. The
// report is returned even when writing fails so callers can still print
// the summary. Side output failures become report warnings.
func Generate(ctx context.Context, cfg config.Config, opts Options) (*types.Report, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	r, err := Build(cfg, opts)
	if err != nil {
		return nil, err
	}

	path, err := spreadsheetPath(cfg, r.GeneratedAt)
	if err != nil {
		return r, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	xlsx := &output.XLSXFormatter{}
	if err := output.WriteFileAtomic(path, func(w io.Writer) error {
		return xlsx.Write(w, r)
	}); err != nil {
		return r, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	r.OutputPath = path
	log.Info("spreadsheet written", "path", path, "rows", len(r.Rows))

	if cfg.HistoryDB != "" {
		if err := recordHistory(ctx, cfg.HistoryDB, r); err != nil {
			log.Warn("run not recorded in history", "db", cfg.HistoryDB, "error", err)
			r.Warnings = append(r.Warnings, fmt.Sprintf("history: %v", err))
		}
	}
	if cfg.MetricsFile != "" {
		m := metrics.New()
		m.Observe(r)
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("metrics not written", "file", cfg.MetricsFile, "error", err)
			r.Warnings = append(r.Warnings, fmt.Sprintf("metrics: %v", err))
		}
	}
	return r, nil
}

func spreadsheetPath(cfg config.Config, now time.Time) (string, error) {
	if cfg.OutputPath != "" {
		return cfg.OutputPath, nil
	}
	return output.NextReportPath(cfg.OutputDir, now)
}

func recordHistory(ctx context.Context, dbPath string, r *types.Report) error {
	store, err := history.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.Record(ctx, r)
	return err
}
