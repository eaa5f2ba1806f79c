// =============================================================================
// Invoice Compliance Checker - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults
//   2. Main Config (config.yaml)
//   3. Environment variables, optionally loaded from a .env file
//
// ENVIRONMENT OVERRIDES:
//   INVCHECK_INPUT_DIR      -> input_dir
//   INVCHECK_OUTPUT_DIR     -> output_dir
//   INVCHECK_REGISTRY_FILE  -> registry_file
//   INVCHECK_LOG_LEVEL      -> log_level
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Report formats understood by the report package.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatXLSX = "xlsx"
)

// SupportedFormats lists every valid report format.
var SupportedFormats = []string{FormatText, FormatJSON, FormatXML, FormatXLSX}

var supportedLogLevels = []string{"debug", "info", "warn", "error"}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for invoice files when no files are given.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// InputPatterns are glob patterns matched against file names in InputDir.
	// Default: ["*.json", "*.csv", "*.xlsx"]
	InputPatterns []string `yaml:"input_patterns"`

	// OutputDir receives report files, summaries and error logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after a successful run.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveOnSuccess moves processed input files to InputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// ReportFormats selects the report sinks.
	// Valid values: "text", "json", "xml", "xlsx"
	// Default: ["text"]
	ReportFormats []string `yaml:"report_formats"`

	// ReportFileFormat names report files. The format extension is appended.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {run}       - The run ID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {time}      - Current time (HHMMSS)
	// Default: "compliance_{timestamp}_{run}"
	ReportFileFormat string `yaml:"report_file_format"`

	// WriteSummary writes a processing summary file to OutputDir.
	// Default: true
	WriteSummary *bool `yaml:"write_summary"`

	// =========================================================================
	// CHECK SETTINGS
	// =========================================================================

	// RegistryFile is a YAML GSTIN registry. Empty uses the built-in one.
	RegistryFile string `yaml:"registry_file"`

	// Checks controls which checks run.
	Checks ChecksConfig `yaml:"checks"`

	// CSVSettings controls how CSV invoice files are read.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log handler: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`
}

// ChecksConfig selects the checks the runner executes.
type ChecksConfig struct {
	// GSTIN enables the GSTIN checks. Default: true
	GSTIN *bool `yaml:"gstin"`

	// Disabled lists check names to skip, e.g. "Duplicate Invoice".
	Disabled []string `yaml:"disabled"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows. Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row where data begins. Default: 2
	DataStartRow int `yaml:"data_start_row"`
}

// GSTINEnabled reports whether GSTIN checks are on.
func (c *MainConfig) GSTINEnabled() bool {
	return c.Checks.GSTIN == nil || *c.Checks.GSTIN
}

// SummaryEnabled reports whether a summary file should be written.
func (c *MainConfig) SummaryEnabled() bool {
	return c.WriteSummary == nil || *c.WriteSummary
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - optional:   When true, a missing file yields the defaults instead of
//                 an error.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string, optional bool) (*MainConfig, error) {
	// Values from .env never override variables already set in the process.
	_ = godotenv.Load()

	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(&config)
	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyEnvOverrides copies INVCHECK_* variables into the configuration.
func applyEnvOverrides(config *MainConfig) {
	overrides := map[string]*string{
		"INVCHECK_INPUT_DIR":     &config.InputDir,
		"INVCHECK_OUTPUT_DIR":    &config.OutputDir,
		"INVCHECK_REGISTRY_FILE": &config.RegistryFile,
		"INVCHECK_LOG_LEVEL":     &config.LogLevel,
	}
	for key, target := range overrides {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*target = value
		}
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if len(config.InputPatterns) == 0 {
		config.InputPatterns = []string{"*.json", "*.csv", "*.xlsx"}
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if len(config.ReportFormats) == 0 {
		config.ReportFormats = []string{FormatText}
	}
	if config.ReportFileFormat == "" {
		config.ReportFileFormat = "compliance_{timestamp}_{run}"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}

	// CSV settings defaults.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.HeaderRows == 0 {
		config.CSVSettings.HeaderRows = 1
	}
	if config.CSVSettings.DataStartRow == 0 {
		config.CSVSettings.DataStartRow = config.CSVSettings.HeaderRows + 1
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	for i, format := range config.ReportFormats {
		format = strings.ToLower(strings.TrimSpace(format))
		if !slices.Contains(SupportedFormats, format) {
			return fmt.Errorf("%w: unknown report format %q", ErrInvalidConfig, format)
		}
		config.ReportFormats[i] = format
	}

	config.LogLevel = strings.ToLower(config.LogLevel)
	if !slices.Contains(supportedLogLevels, config.LogLevel) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, config.LogLevel)
	}

	if config.LogFormat != "text" && config.LogFormat != "json" {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, config.LogFormat)
	}

	if config.CSVSettings.HeaderRows < 1 {
		return fmt.Errorf("%w: csv_settings.header_rows must be at least 1", ErrInvalidConfig)
	}
	if config.CSVSettings.DataStartRow <= config.CSVSettings.HeaderRows {
		return fmt.Errorf("%w: csv_settings.data_start_row must come after the header rows", ErrInvalidConfig)
	}

	return nil
}
