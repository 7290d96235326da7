package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ancients-collective/allurexl/internal/config"
)

// gatherFlags collects the flags the user set explicitly. Flags a
// subcommand does not define are left unset.
func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	strs := []struct {
		name string
		dst  *config.StringFlag
	}{
		{"results", &values.ResultsDir},
		{"output", &values.Output},
		{"format", &values.Format},
		{"show", &values.Show},
		{"timezone", &values.Timezone},
		{"history", &values.HistoryDB},
		{"metrics-file", &values.MetricsFile},
	}
	for _, s := range strs {
		if flags.Lookup(s.name) == nil || !flags.Changed(s.name) {
			continue
		}
		v, err := flags.GetString(s.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", s.name, err)
		}
		*s.dst = config.StringFlag{Value: v, Set: true}
	}

	bools := []struct {
		name string
		dst  *config.BoolFlag
	}{
		{"no-color", &values.NoColor},
		{"quiet", &values.Quiet},
		{"debug", &values.Debug},
		{"dedupe-retries", &values.DedupeRetries},
	}
	for _, b := range bools {
		if flags.Lookup(b.name) == nil || !flags.Changed(b.name) {
			continue
		}
		v, err := flags.GetBool(b.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", b.name, err)
		}
		*b.dst = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}

// loadConfig resolves the effective configuration for cmd: defaults, the
// YAML file, the environment and finally the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("parse --config: %w", err)
	}
	cfg, err := config.Load(path, flags.Changed("config"))
	if err != nil {
		return cfg, err
	}

	envFile, err := flags.GetString("env-file")
	if err != nil {
		return cfg, fmt.Errorf("parse --env-file: %w", err)
	}
	if err := config.LoadEnv(&cfg, envFile); err != nil {
		return cfg, err
	}

	values, err := gatherFlags(cmd)
	if err != nil {
		return cfg, err
	}
	config.ApplyFlags(&cfg, values)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
