package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ancients-collective/allurexl/internal/aggregate"
	"github.com/ancients-collective/allurexl/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or the details of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}
	cmd.Flags().Int("limit", 10, "number of runs to list")
	cmd.Flags().Int("keep", 0, "delete all but the most recent N runs before listing")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupOutputOptions(cfg)
	if cfg.HistoryDB == "" {
		return fmt.Errorf("no history database configured (use --history or history_db)")
	}

	ctx := cmd.Context()
	store, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		stored, err := store.Get(ctx, args[0])
		if errors.Is(err, history.ErrNotFound) {
			return &exitError{code: 1, msg: fmt.Sprintf("No run found with ID %q", args[0])}
		}
		if err != nil {
			return err
		}
		printRun(out, stored)
		return nil
	}

	if cmd.Flags().Changed("keep") {
		keep, _ := cmd.Flags().GetInt("keep")
		n, err := store.Prune(ctx, keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "  ✓ Pruned %d run(s)\n", n)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "  No runs recorded in %s\n", cfg.HistoryDB)
		return nil
	}
	renderRuns(out, runs)
	return nil
}

func renderRuns(w io.Writer, runs []*history.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Run", "Generated", "Tests", "Passed", "Failed", "Broken", "Skipped", "Pass rate", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Broken", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Pass rate", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})
	for _, r := range runs {
		t.AppendRow(table.Row{
			shortRunID(r.RunID),
			r.GeneratedAt.Local().Format(aggregate.DateLayout),
			r.Total,
			r.Passed,
			r.Failed,
			r.Broken,
			r.Skipped,
			fmt.Sprintf("%.1f%%", r.PassRate()),
			fmt.Sprintf("%.2fs", float64(r.DurationMS)/1000),
		})
	}
	if color.NoColor {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleColoredBright)
	}
	t.Render()
}

func printRun(w io.Writer, r *history.Run) {
	fmt.Fprintf(w, "\n  %s\n", cTitle(r.RunID))
	field := func(label string, value any) {
		fmt.Fprintf(w, "    %s %v\n", cLabel(fmt.Sprintf("%-13s", label+":")), value)
	}
	field("Generated", r.GeneratedAt.Local().Format(aggregate.DateLayout))
	field("Results", r.ResultsDir)
	if r.OutputPath != "" {
		field("Report", r.OutputPath)
	}
	if r.Hostname != "" {
		field("Host", r.Hostname)
	}
	field("Tests", r.Total)
	field("Passed", r.Passed)
	field("Failed", r.Failed)
	field("Broken", r.Broken)
	field("Skipped", r.Skipped)
	if r.Other > 0 {
		field("Unknown", r.Other)
	}
	if r.ParseErrors > 0 {
		field("Unparseable", r.ParseErrors)
	}
	field("Pass rate", fmt.Sprintf("%.1f%%", r.PassRate()))
	field("Duration", fmt.Sprintf("%.2fs", float64(r.DurationMS)/1000))
	fmt.Fprintln(w)
}
