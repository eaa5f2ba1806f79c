// =============================================================================
// Invoice Compliance Checker - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invcheck)
//   ├── checkCmd   (invcheck check)
//   ├── gstinCmd   (invcheck gstin)
//   ├── resolveCmd (invcheck resolve)
//   └── versionCmd (invcheck version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration for subcommands
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-compliance/internal/config"
	"github.com/ginjaninja78/invoice-compliance/internal/gstin"
	"github.com/ginjaninja78/invoice-compliance/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invcheck",
	Short: "Invoice Compliance Checker - Validate invoices and score their compliance",
	Long: `Invoice Compliance Checker reads invoice records from JSON, CSV or XLSX
files, runs a fixed set of compliance checks against each invoice, and reports
a final PASS/FAIL status with a confidence score.

Checks:
  - Invoice ID Format   (INV-YYYY-NNNN)
  - Duplicate Invoice   (first occurrence in the run passes)
  - Vendor Validation   (vendor is present)
  - Total Amount Valid  (amount is a positive number)
  - GSTIN Format, GSTIN Active, GSTIN State Match (when a GSTIN is present)

Example Usage:
  invcheck check                        # Check all files in the input directory
  invcheck check invoices.json          # Check specific files
  invcheck check --dry-run --format json
  invcheck gstin 27ABCDE1234F1Z5 --vendor-state 27
  invcheck resolve results.json`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig loads the main configuration. The default config.yaml may be
// missing; a path given with --config must exist.
func loadConfig() (*config.MainConfig, error) {
	optional := !rootCmd.PersistentFlags().Changed("config")

	cfg, err := config.LoadMainConfig(cfgFile, optional)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger builds the run logger. Logs go to w, which is stderr for the CLI
// so that reports on stdout stay clean.
func newLogger(cfg *config.MainConfig, w io.Writer) *slog.Logger {
	return logger.New(cfg.LogLevel, cfg.LogFormat, w)
}

// loadRegistry returns the GSTIN registry named in the configuration, or the
// built-in one.
func loadRegistry(cfg *config.MainConfig) (gstin.Registry, error) {
	if cfg.RegistryFile == "" {
		return gstin.DefaultRegistry(), nil
	}
	registry, err := gstin.LoadRegistry(cfg.RegistryFile)
	if err != nil {
		return nil, err
	}
	return registry, nil
}
