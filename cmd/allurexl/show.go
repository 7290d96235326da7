package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ancients-collective/allurexl/internal/aggregate"
	"github.com/ancients-collective/allurexl/internal/config"
	"github.com/ancients-collective/allurexl/internal/history"
	"github.com/ancients-collective/allurexl/internal/report"
	"github.com/ancients-collective/allurexl/internal/types"
)

// outcomeLimit is how many past results show prints per test case.
const outcomeLimit = 10

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <test-case-id>",
		Short: "Show the report rows of one test case",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupOutputOptions(cfg)

	r, err := buildReport(cmd, cfg)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(args[0])
	rows := aggregate.FindByID(r.Rows, id)
	if len(rows) == 0 {
		printNotFound(cmd.ErrOrStderr(), id, r.Rows)
		return &exitError{code: 1}
	}

	out := cmd.OutOrStdout()
	for _, row := range rows {
		printRow(out, row)
	}

	if cfg.HistoryDB != "" {
		if err := printOutcomes(cmd, cfg.HistoryDB, rows[0].TestCaseID); err != nil {
			return err
		}
	}
	return nil
}

// buildReport loads the results directory without writing anything.
func buildReport(cmd *cobra.Command, cfg config.Config) (*types.Report, error) {
	return report.Build(cfg, report.Options{
		Version: version,
		Logger:  newLogger(cmd.ErrOrStderr(), cfg),
	})
}

func printNotFound(w io.Writer, id string, rows []types.ReportRow) {
	fmt.Fprintf(w, "  ✗ No test case found with ID %q\n", id)
	if suggestions := suggestIDs(id, rows); len(suggestions) > 0 {
		fmt.Fprintf(w, "\n  Did you mean:\n")
		for _, s := range suggestions {
			fmt.Fprintf(w, "    • %s\n", s)
		}
	}
	fmt.Fprintf(w, "\n  Run 'allurexl --show all' to list every test case in the report.\n")
}

var (
	cLabel  = color.New(color.Faint).SprintFunc()
	cTitle  = color.New(color.Bold).SprintFunc()
	cPass   = color.New(color.FgGreen).SprintFunc()
	cFail   = color.New(color.FgRed).SprintFunc()
	cBroken = color.New(color.FgYellow).SprintFunc()
)

func printRow(w io.Writer, row types.ReportRow) {
	fmt.Fprintf(w, "\n  %s  %s\n", cTitle(row.TestCaseID), statusText(row.Status, 0))
	field := func(label, value string) {
		if value == "" {
			return
		}
		lines := strings.Split(value, "\n")
		fmt.Fprintf(w, "    %s %s\n", cLabel(fmt.Sprintf("%-13s", label+":")), lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "    %-13s %s\n", "", l)
		}
	}
	field("Name", row.Name)
	field("Section", row.Section)
	field("Scenario", row.Scenario)
	field("Steps", row.Steps)
	field("Test data", row.TestData)
	field("Precondition", row.Precondition)
	field("Expected", row.Expected)
	field("Actual", row.Actual)
	field("Remarks", row.Remarks)
	field("Tested by", row.TestedBy)
	field("Tested date", row.TestedDate)
	field("Duration", fmt.Sprintf("%.2fs", row.Duration.Seconds()))
	field("Attachments", strings.Join(row.Attachments, "\n"))
	field("Source", row.SourceFile)
}

// statusText returns the colored status label padded to width.
func statusText(s types.ResultStatus, width int) string {
	label := fmt.Sprintf("%-*s", width, s.Display())
	switch s {
	case types.StatusPassed:
		return cPass(label)
	case types.StatusFailed:
		return cFail(label)
	case types.StatusBroken:
		return cBroken(label)
	default:
		return label
	}
}

func printOutcomes(cmd *cobra.Command, dbPath, id string) error {
	ctx := cmd.Context()
	store, err := history.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	outcomes, err := store.Outcomes(ctx, id, outcomeLimit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(outcomes) == 0 {
		fmt.Fprintf(w, "\n  No recorded runs for %s\n", id)
		return nil
	}
	fmt.Fprintf(w, "\n  %s\n", cTitle(fmt.Sprintf("Last %d recorded result(s)", len(outcomes))))
	for _, o := range outcomes {
		fmt.Fprintf(w, "    %s  %s  %6.2fs  %s\n",
			o.GeneratedAt.Local().Format(aggregate.DateLayout),
			statusText(types.NormalizeStatus(o.Status), 7),
			float64(o.DurationMS)/1000,
			shortRunID(o.RunID))
	}
	return nil
}

// shortRunID trims a run id to its first block for table output.
func shortRunID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
