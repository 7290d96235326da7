package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ancients-collective/allurexl/internal/config"
	"github.com/ancients-collective/allurexl/internal/output"
	"github.com/ancients-collective/allurexl/internal/report"
	"github.com/ancients-collective/allurexl/internal/types"
)

// runReport generates the spreadsheet and prints the console report.
func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	isDumb := setupOutputOptions(cfg)

	for _, p := range []string{cfg.OutputPath, cfg.OutputDir} {
		if err := validateOutputPath(p); err != nil {
			return fmt.Errorf("unsafe output path: %w", err)
		}
	}

	r, genErr := report.Generate(cmd.Context(), cfg, report.Options{
		Version: version,
		Logger:  newLogger(stderr, cfg),
	})
	if r == nil {
		return genErr
	}

	if !cfg.Quiet {
		if err := writeConsole(cmd.OutOrStdout(), cfg, r, isDumb); err != nil {
			return fmt.Errorf("failed to write console report: %w", err)
		}
	}

	printSummaryLine(stderr, r, genErr)
	if genErr != nil {
		return &exitError{code: 1}
	}
	return nil
}

// newLogger returns a text logger on w: warnings by default, debug with
// --debug and errors only with --quiet.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case cfg.Debug:
		level = slog.LevelDebug
	case cfg.Quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setupOutputOptions configures color and reports whether the terminal is dumb.
func setupOutputOptions(cfg config.Config) (isDumb bool) {
	isDumb = output.IsDumbTerm()
	if cfg.NoColor || cfg.Format != config.FormatText || isDumb {
		color.NoColor = true
	}
	return isDumb
}

// writeConsole renders the report to w in the configured format.
func writeConsole(w io.Writer, cfg config.Config, r *types.Report, isDumb bool) error {
	formatter, err := output.NewConsole(cfg.Format)
	if err != nil {
		return err
	}
	if tf, ok := formatter.(*output.TextFormatter); ok {
		tf.Show = cfg.Show
		tf.Width = terminalWidth(w)
		tf.Dumb = isDumb
	}
	return formatter.Write(w, r)
}

// terminalWidth returns the width of w when it is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	if tw, _, err := term.GetSize(fd); err == nil && tw > 0 {
		return tw
	}
	return 0
}

// printSummaryLine prints the one-line outcome to stderr. It is printed
// even when the spreadsheet could not be written.
func printSummaryLine(w io.Writer, r *types.Report, genErr error) {
	s := r.Summary
	counts := fmt.Sprintf("%d processed · %d passed · %d failed · %d broken · %d skipped · %d unparseable",
		s.Total, s.Passed, s.Failed, s.Broken, s.Skipped, s.ParseErrors)

	if genErr != nil {
		fmt.Fprintf(w, "  ✗ %s\n", genErr)
		fmt.Fprintf(w, "  ✗ Report not written: %s\n", counts)
		return
	}
	if n := len(r.Warnings); n > 0 {
		fmt.Fprintf(w, "  ⚠ %d warning(s) during the run\n", n)
	}
	fmt.Fprintf(w, "  ✓ Report complete: %s, written to %s\n", counts, r.OutputPath)
}

// unsafeOutputPrefixes are path prefixes where writing output files is rejected.
// Prevents accidental overwrite of system files when running as root.
var unsafeOutputPrefixes = []string{"/etc/", "/proc/", "/sys/", "/dev/", "/boot/", "/sbin/", "/bin/", "/usr/"}

// errUnsafePath is returned for output paths under a system directory.
var errUnsafePath = errors.New("refusing to write to system path")

// validateOutputPath checks that the output file path is safe to write to.
func validateOutputPath(path string) error {
	if path == "" {
		return nil
	}
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		for _, prefix := range unsafeOutputPrefixes {
			if strings.HasPrefix(cleaned+"/", prefix) {
				return fmt.Errorf("%w %q", errUnsafePath, cleaned)
			}
		}
	}
	return nil
}
