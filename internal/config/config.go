// =============================================================================
// History Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
// Every setting has a default, so the converter runs without any file.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults
//   2. YAML file (config.yaml, or the path in HISTORY_CONVERTER_CONFIG)
//   3. Environment variables, optionally loaded from a .env file
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by the converter.
const EnvPrefix = "HISTORY_CONVERTER_"

// DefaultConfigFile is used when HISTORY_CONVERTER_CONFIG is not set.
const DefaultConfigFile = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is where the single history report is dropped.
	// Default: "./raw_reports"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the converted file. Created if missing.
	// Default: "./processed_output"
	OutputDir string `yaml:"output_dir"`

	// OutputFile is the fixed name of the converted file inside OutputDir.
	// Default: "output.csv"
	OutputFile string `yaml:"output_file"`

	// XLSXFile, when set, also writes the converted rows as a workbook
	// inside OutputDir.
	XLSXFile string `yaml:"xlsx_file"`

	// ArchiveInput moves the report to InputArchiveDir after a successful run.
	ArchiveInput bool `yaml:"archive_input"`

	// InputArchiveDir is where processed reports are moved.
	// Default: "./raw_reports_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// SkipReport, when set, writes the skipped rows to this file inside
	// OutputDir.
	SkipReport string `yaml:"skip_report"`

	// =========================================================================
	// OUTPUT FORMAT SETTINGS
	// =========================================================================

	// DateLayout is the Go time layout used for dates in the output.
	// Default: "01/02/2006"
	DateLayout string `yaml:"date_layout"`

	// TimePlaceholder fills the Time column, since the report carries no
	// execution time.
	// Default: "12:00:00"
	TimePlaceholder string `yaml:"time_placeholder"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// Strict aborts the run on the first unparseable row instead of
	// skipping it.
	Strict bool `yaml:"strict"`

	// DropDuplicates skips rows identical to an earlier row. Fidelity
	// occasionally repeats lines in its exports.
	// Default: true
	DropDuplicates *bool `yaml:"drop_duplicates"`

	// ActionPrefixes maps description prefixes to actions. The first
	// matching prefix wins. Replaces the built-in table when set.
	ActionPrefixes []ActionPrefix `yaml:"action_prefixes"`

	// TransformationRules are applied to source fields before normalization.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "console" or "json".
	// Default: "console"
	LogFormat string `yaml:"log_format"`
}

// ShouldDropDuplicates reports whether duplicate rows are skipped.
func (c *Config) ShouldDropDuplicates() bool {
	return c.DropDuplicates == nil || *c.DropDuplicates
}

// OutputPath returns the full path of the converted CSV file.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

// =============================================================================
// ACTION MAPPING STRUCTURE
// =============================================================================

// ActionPrefix maps a lower-case description prefix to an action name.
type ActionPrefix struct {
	Prefix string `yaml:"prefix"`

	// Action is one of: buy, sell, short, cover, dividend, other.
	Action string `yaml:"action"`
}

// DefaultActionPrefixes is the description table of Fidelity history reports.
// Longer prefixes come first so that "you bought short cover" wins over
// "you bought".
func DefaultActionPrefixes() []ActionPrefix {
	return []ActionPrefix{
		{Prefix: "you bought short cover", Action: "cover"},
		{Prefix: "bought to cover", Action: "cover"},
		{Prefix: "you sold short sale", Action: "short"},
		{Prefix: "sold short", Action: "short"},
		{Prefix: "you bought", Action: "buy"},
		{Prefix: "you sold", Action: "sell"},
		{Prefix: "dividend", Action: "dividend"},
		{Prefix: "reinvestment", Action: "dividend"},
		{Prefix: "assigned", Action: "other"},
		{Prefix: "electronic", Action: "other"},
		{Prefix: "exercised", Action: "other"},
		{Prefix: "expired", Action: "other"},
		{Prefix: "interest", Action: "other"},
		{Prefix: "transfer", Action: "other"},
		{Prefix: "journaled", Action: "other"},
		{Prefix: "fee", Action: "other"},
	}
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines a transformation to apply to a source column.
type TransformationRule struct {
	// Field is the canonical column name, e.g. "Symbol" or "Description".
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of TransformationTypes.
	Type string `yaml:"type"`

	// Value is the parameter for the transformation:
	//   - "prepend_string" / "append_string" : the string to add
	//   - "replace" / "regex_replace"        : the replacement
	Value string `yaml:"value"`

	// Find is the substring or pattern for "replace" and "regex_replace".
	Find string `yaml:"find,omitempty"`

	// LookupTable maps input values to output values for "lookup".
	// Example:
	//   lookup_table:
	//     "BRKB": "BRK.B"
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// TransformationTypes lists the supported transformation action types.
var TransformationTypes = []string{
	"trim",
	"uppercase",
	"lowercase",
	"prepend_string",
	"append_string",
	"replace",
	"regex_replace",
	"lookup",
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load builds the configuration from a .env file, the YAML file and the
// environment.
//
// The YAML path comes from HISTORY_CONVERTER_CONFIG, falling back to
// config.yaml. A missing .env or YAML file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	path := os.Getenv(EnvPrefix + "CONFIG")
	if path == "" {
		path = DefaultConfigFile
	}

	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = &Config{}
	} else if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFile reads and parses a YAML configuration file.
// Defaults are not applied; Load does that after the environment overrides.
func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return &config, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyEnvOverrides copies HISTORY_CONVERTER_* variables over the file values.
func applyEnvOverrides(config *Config) error {
	strs := map[string]*string{
		"INPUT_DIR":   &config.InputDir,
		"OUTPUT_DIR":  &config.OutputDir,
		"OUTPUT_FILE": &config.OutputFile,
		"XLSX_FILE":   &config.XLSXFile,
		"LOG_LEVEL":   &config.LogLevel,
		"LOG_FORMAT":  &config.LogFormat,
	}
	for key, target := range strs {
		if value, ok := os.LookupEnv(EnvPrefix + key); ok {
			*target = value
		}
	}

	if value, ok := os.LookupEnv(EnvPrefix + "STRICT"); ok {
		strict, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %sSTRICT value %q: %w", EnvPrefix, value, err)
		}
		config.Strict = strict
	}

	return nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.InputDir == "" {
		config.InputDir = "./raw_reports"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./processed_output"
	}
	if config.OutputFile == "" {
		config.OutputFile = "output.csv"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./raw_reports_archive"
	}
	if config.DateLayout == "" {
		config.DateLayout = "01/02/2006"
	}
	if config.TimePlaceholder == "" {
		config.TimePlaceholder = "12:00:00"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if len(config.ActionPrefixes) == 0 {
		config.ActionPrefixes = DefaultActionPrefixes()
	}
}

// Validate checks the configuration for values the converter cannot use.
func Validate(config *Config) error {
	for name, file := range map[string]string{
		"output_file": config.OutputFile,
		"xlsx_file":   config.XLSXFile,
		"skip_report": config.SkipReport,
	} {
		if file != "" && filepath.Base(file) != file {
			return fmt.Errorf("%s must be a file name, not a path: %q", name, file)
		}
	}

	if config.OutputFile == "" {
		return fmt.Errorf("output_file must not be empty")
	}

	if config.LogFormat != "console" && config.LogFormat != "json" {
		return fmt.Errorf("log_format must be \"console\" or \"json\", got %q", config.LogFormat)
	}

	for i, ap := range config.ActionPrefixes {
		if strings.TrimSpace(ap.Prefix) == "" {
			return fmt.Errorf("action_prefixes[%d]: empty prefix", i)
		}
		switch ap.Action {
		case "buy", "sell", "short", "cover", "dividend", "other":
		default:
			return fmt.Errorf("action_prefixes[%d]: unknown action %q", i, ap.Action)
		}
	}

	for _, rule := range config.TransformationRules {
		if rule.Field == "" {
			return fmt.Errorf("transformation rule without field")
		}
		for _, action := range rule.Actions {
			if !isTransformationType(action.Type) {
				return fmt.Errorf("unknown transformation type %q for field %s", action.Type, rule.Field)
			}
		}
	}

	return nil
}

func isTransformationType(name string) bool {
	for _, t := range TransformationTypes {
		if t == name {
			return true
		}
	}
	return false
}
