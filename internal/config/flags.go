package config

import (
	"path/filepath"
	"strings"
)

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	ResultsDir    StringFlag
	Output        StringFlag
	Format        StringFlag
	Show          StringFlag
	Timezone      StringFlag
	HistoryDB     StringFlag
	MetricsFile   StringFlag
	NoColor       BoolFlag
	Quiet         BoolFlag
	Debug         BoolFlag
	DedupeRetries BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
// An --output ending in .xlsx names the spreadsheet; anything else is a directory.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.ResultsDir.Set {
		cfg.ResultsDir = flags.ResultsDir.Value
	}
	if flags.Output.Set {
		if strings.EqualFold(filepath.Ext(flags.Output.Value), ".xlsx") {
			cfg.OutputPath = flags.Output.Value
		} else {
			cfg.OutputDir = flags.Output.Value
			cfg.OutputPath = ""
		}
	}
	if flags.Format.Set {
		cfg.Format = strings.ToLower(flags.Format.Value)
	}
	if flags.Show.Set {
		cfg.Show = strings.ToLower(flags.Show.Value)
	}
	if flags.Timezone.Set {
		cfg.Timezone = flags.Timezone.Value
	}
	if flags.HistoryDB.Set {
		cfg.HistoryDB = flags.HistoryDB.Value
	}
	if flags.MetricsFile.Set {
		cfg.MetricsFile = flags.MetricsFile.Value
	}
	if flags.NoColor.Set {
		cfg.NoColor = flags.NoColor.Value
	}
	if flags.Quiet.Set {
		cfg.Quiet = flags.Quiet.Value
	}
	if flags.Debug.Set {
		cfg.Debug = flags.Debug.Value
	}
	if flags.DedupeRetries.Set {
		cfg.DedupeRetries = flags.DedupeRetries.Value
	}
}
