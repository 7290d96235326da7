package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ancients-collective/allurexl/internal/aggregate"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "List tests whose name carries no test case id",
		Long: `lint loads the results directory and lists every test whose name,
description and labels carry no PREFIX_SECTION_### test case id. It exits 1
when any are found so CI can enforce the naming convention.`,
		Args: cobra.NoArgs,
		RunE: runLint,
	}
}

func runLint(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupOutputOptions(cfg)

	r, err := buildReport(cmd, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	missing := aggregate.FallbackRows(r.Rows)
	if len(missing) == 0 {
		fmt.Fprintf(out, "  ✓ All %d test(s) carry a test case id\n", len(r.Rows))
		return nil
	}

	fmt.Fprintf(out, "\n  %s\n\n", cTitle(fmt.Sprintf("Tests without a test case id (%d):", len(missing))))
	for _, row := range missing {
		fmt.Fprintf(out, "    %s\n", row.Name)
		if row.SourceFile != "" {
			fmt.Fprintf(out, "      %s\n", cLabel(row.SourceFile))
		}
	}
	fmt.Fprintln(out)
	return &exitError{
		code: 1,
		msg:  fmt.Sprintf("%d of %d test(s) do not follow the naming convention", len(missing), len(r.Rows)),
	}
}
