// Package config holds the explicit configuration passed to every allurexl
// entry point: report generation, the CLI and the portal page objects.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory when
// --config is not given.
const DefaultFile = "allurexl.yml"

// DefaultIDPattern matches PREFIX_SECTION_### test case ids such as
// TC_LOGIN_001 or TC_USERS_CRUD_014. Upper-case tokens only, so snake_case test
// names (test_login_...) never match by accident.
const DefaultIDPattern = `(?:^|[^A-Za-z0-9])([A-Z][A-Z0-9]*_[A-Z][A-Z0-9]*(?:_[A-Z][A-Z0-9]*)*_[0-9]{3,})(?:[^0-9]|$)`

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Output formats for the console rendering.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Config captures report options sourced from defaults, a YAML file, the
// environment and CLI flags, in increasing precedence.
type Config struct {
	// ResultsDir is the directory holding Allure result documents.
	ResultsDir string `yaml:"results_dir" validate:"required"`

	// ResultsPattern is the glob result documents must match.
	ResultsPattern string `yaml:"results_pattern" validate:"required"`

	// OutputDir receives timestamped spreadsheets when OutputPath is empty.
	OutputDir string `yaml:"output_dir" validate:"required_without=OutputPath"`

	// OutputPath, when set, is the exact spreadsheet path.
	OutputPath string `yaml:"output_path"`

	Format string `yaml:"format" validate:"oneof=text json jsonl"`
	Show   string `yaml:"show" validate:"oneof=failures all failed passed skipped broken"`

	// Timezone is the IANA zone used for the Tested Date column. Empty means local.
	Timezone string `yaml:"timezone"`

	// IDPattern extracts test case ids. The first capture group, or the
	// whole match when there is none, becomes the id.
	IDPattern string `yaml:"id_pattern" validate:"required,max=1024"`

	// TestCaseIDs maps test names to ids and wins over IDPattern.
	TestCaseIDs map[string]string `yaml:"test_case_ids"`

	// RemarksLimit bounds the Remarks column, in characters.
	RemarksLimit int `yaml:"remarks_limit" validate:"gte=16,lte=32767"`

	// TraceLimit bounds how much of the failure trace is appended to Remarks.
	TraceLimit int `yaml:"trace_limit" validate:"gte=0,lte=32767"`

	// DedupeRetries keeps only the last attempt of tests sharing a historyId.
	DedupeRetries bool `yaml:"dedupe_retries"`

	Defaults RowDefaults `yaml:"defaults"`

	// HistoryDB is an optional SQLite file recording every run.
	HistoryDB string `yaml:"history_db"`

	// MetricsFile is an optional node-exporter textfile for summary gauges.
	MetricsFile string `yaml:"metrics_file"`

	NoColor bool `yaml:"no_color"`
	Quiet   bool `yaml:"quiet"`
	Debug   bool `yaml:"debug"`

	// Suite configures the portal UI suite the results come from.
	Suite SuiteConfig `yaml:"suite"`
}

// RowDefaults fill report columns the result document has nothing for.
type RowDefaults struct {
	TestedBy     string `yaml:"tested_by" validate:"required"`
	Precondition string `yaml:"precondition"`
	TestData     string `yaml:"test_data"`
	Steps        string `yaml:"steps"`
	Expected     string `yaml:"expected"`
}

// SuiteConfig describes the staging portal under test.
type SuiteConfig struct {
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	Username string `yaml:"username"`

	// Password is only ever read from the environment.
	Password string `yaml:"-"`

	NavigationTimeout time.Duration `yaml:"navigation_timeout" validate:"gt=0"`
	ElementTimeout    time.Duration `yaml:"element_timeout" validate:"gt=0"`

	// ScreenshotDir receives failure screenshots.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Default returns the baseline configuration used when no file, environment
// variable or flag specifies a value.
func Default() Config {
	return Config{
		ResultsDir:     filepath.Join("reports", "allure-results"),
		ResultsPattern: "*-result.json",
		OutputDir:      "reports",
		Format:         FormatText,
		Show:           "failures",
		IDPattern:      DefaultIDPattern,
		RemarksLimit:   500,
		TraceLimit:     200,
		Defaults: RowDefaults{
			TestedBy:     "Automated",
			Precondition: "Application is accessible",
			TestData:     "Test data as per test scenario",
			Steps:        "1. Open application\n2. Navigate to page\n3. Perform actions\n4. Verify results",
		},
		Suite: SuiteConfig{
			NavigationTimeout: 30 * time.Second,
			ElementTimeout:    10 * time.Second,
			ScreenshotDir:     "screenshots",
		},
	}
}

// Load reads the YAML config at path on top of Default. When explicit is
// false a missing file is ignored; an explicitly named file must exist.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Default(), fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Environment variables read by LoadEnv.
const (
	EnvBaseURL    = "STAGING_BASE_URL"
	EnvUsername   = "STAGING_USERNAME"
	EnvPassword   = "STAGING_PASSWORD"
	EnvResultsDir = "ALLUREXL_RESULTS_DIR"
	EnvOutputDir  = "ALLUREXL_OUTPUT_DIR"
)

// LoadEnv applies environment variables to cfg. Values from envFile (a
// dotenv file, usually ".env") are used when the process environment does
// not set the variable. A missing envFile is not an error.
func LoadEnv(cfg *Config, envFile string) error {
	fileVals := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVals = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("read env file %q: %w", envFile, err)
		}
	}

	applyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok
	})
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		cfg.Suite.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := lookup(EnvUsername); ok && v != "" {
		cfg.Suite.Username = v
	}
	if v, ok := lookup(EnvPassword); ok {
		cfg.Suite.Password = v
	}
	if v, ok := lookup(EnvResultsDir); ok && v != "" {
		cfg.ResultsDir = v
	}
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		cfg.OutputDir = v
	}
}

// Location returns the time zone used for row dates.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

var validate = validator.New()

// Validate checks struct tags plus the fields tags cannot express: the id
// pattern must compile, the results glob must be well formed and the
// timezone must exist.
func (c Config) Validate() error {
	var messages []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, fe := range verrs {
			messages = append(messages, formatFieldError(fe))
		}
	}

	if c.IDPattern != "" {
		if _, err := regexp.Compile(c.IDPattern); err != nil {
			messages = append(messages, fmt.Sprintf("id_pattern does not compile: %v", err))
		}
	}
	if c.ResultsPattern != "" {
		if _, err := filepath.Match(c.ResultsPattern, ""); err != nil {
			messages = append(messages, fmt.Sprintf("results_pattern %q is not a valid glob", c.ResultsPattern))
		}
		if strings.ContainsRune(c.ResultsPattern, filepath.Separator) {
			messages = append(messages, "results_pattern must match file names, not paths")
		}
	}
	if _, err := c.Location(); err != nil {
		messages = append(messages, err.Error())
	}

	if len(messages) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(messages, "; "))
	}
	return nil
}

// formatFieldError converts a single field validation error to a human-readable message.
func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
