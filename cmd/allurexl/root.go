package main

import (
	"github.com/spf13/cobra"

	"github.com/ancients-collective/allurexl/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allurexl",
		Short: "Aggregate Allure test results into an Excel report",
		Long: `allurexl reads every Allure result document in a results directory,
turns each into one report row and writes a timestamped Excel workbook
with a summary block. A console summary is printed alongside.`,
		Example: `  allurexl                                  Report on reports/allure-results
  allurexl -r ./allure-results -o out/      Custom input and output directory
  allurexl -o results.xlsx --show all       Exact output file, list every test
  allurexl --format json > report.json      Machine-readable console output
  allurexl --history runs.db                Record the run for trend queries
  allurexl show TC_LOGIN_003                Details of one test case
  allurexl lint                             List tests without a test case id`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runReport,
	}

	persistent := cmd.PersistentFlags()
	persistent.StringP("config", "c", "", "YAML config file (default: "+config.DefaultFile+" when present)")
	persistent.StringP("results", "r", "", "directory holding *-result.json documents")
	persistent.String("env-file", ".env", "dotenv file with suite settings")
	persistent.String("timezone", "", "IANA time zone for the Tested Date column (default: local)")
	persistent.Bool("dedupe-retries", false, "keep only the last attempt of retried tests")
	persistent.String("history", "", "SQLite database recording every run")
	persistent.Bool("no-color", false, "disable colored output")
	persistent.Bool("debug", false, "enable debug diagnostic output")

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "spreadsheet file (*.xlsx) or output directory (default: reports)")
	flags.StringP("format", "f", "text", "console format: text, json, jsonl")
	flags.StringP("show", "s", "failures", "rows to print: failures, all, failed, passed, skipped, broken")
	flags.BoolP("quiet", "q", false, "suppress the console report and log output")
	flags.String("metrics-file", "", "write summary gauges to a node-exporter textfile")

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newLintCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
