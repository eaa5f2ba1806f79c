// =============================================================================
// Invoice Compliance Checker - Check Command
// =============================================================================
//
// This file defines the 'check' command, which is the main command for
// checking invoice files. It orchestrates the entire compliance run.
//
// COMMAND USAGE:
//   invcheck check [files...] [flags]
//
// FLAGS:
//   --dry-run        : Print the console report only; no files are written
//                      and nothing is archived
//   --format         : Report format, repeatable (overrides report_formats)
//   --no-gstin       : Skip the GSTIN checks
//   --disable-check  : Skip a check by name, repeatable
//
// PROCESSING PIPELINE:
//   1. Load configuration and the GSTIN registry
//   2. Use the given files, or discover files in the input directory
//   3. Open the report sinks
//   4. For each file, in order:
//      a. Extract the invoices
//      b. Run the checks and resolve each invoice
//      c. Write each invoice to the report sinks
//   5. Close the sinks, archive processed files
//   6. Write the error log and processing summary
//
// EXIT STATUS:
//   Non-zero when any file could not be processed. Invoices that FAIL their
//   checks do not change the exit status.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-compliance/internal/checks"
	"github.com/ginjaninja78/invoice-compliance/internal/config"
	"github.com/ginjaninja78/invoice-compliance/internal/extractor"
	"github.com/ginjaninja78/invoice-compliance/internal/pipeline"
	"github.com/ginjaninja78/invoice-compliance/internal/report"
	"github.com/ginjaninja78/invoice-compliance/internal/resolver"
	"github.com/ginjaninja78/invoice-compliance/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// checkOptions holds the flags of the check command.
type checkOptions struct {
	DryRun   bool
	Formats  []string
	NoGSTIN  bool
	Disabled []string
}

var checkFlags checkOptions

// =============================================================================
// CHECK COMMAND DEFINITION
// =============================================================================

// checkCmd represents the 'check' command.
var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Check invoice files and report their compliance",
	Long: `The check command reads invoices from the given files, or from every file
in the input directory matching input_patterns, and runs the compliance
checks against each invoice.

Files are processed in order and share one duplicate tracker, so an invoice
number seen in an earlier file fails the duplicate check in a later one.

On completion:
  - The report is printed to stdout and written in each report format
  - Successfully processed inputs are archived (archive_on_success)
  - A processing summary is written to the output directory

On error:
  - An error log is created in the output directory
  - The failed file remains in the input directory
  - Processing continues for other files`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runCheck(cfg, checkFlags, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the check command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(
		&checkFlags.DryRun,
		"dry-run",
		false,
		"Print the report without writing report files or archiving inputs",
	)

	checkCmd.Flags().StringSliceVar(
		&checkFlags.Formats,
		"format",
		nil,
		"Report format: text, json, xml, xlsx (repeatable)",
	)

	checkCmd.Flags().BoolVar(
		&checkFlags.NoGSTIN,
		"no-gstin",
		false,
		"Skip the GSTIN Format, Active and State Match checks",
	)

	checkCmd.Flags().StringArrayVar(
		&checkFlags.Disabled,
		"disable-check",
		nil,
		"Skip a check by name (repeatable). One of: "+quotedList(checks.Names()),
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runCheck runs the compliance pipeline over the input files.
func runCheck(cfg *config.MainConfig, opts checkOptions, args []string, stdout, stderr io.Writer) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: APPLY FLAGS AND BUILD THE RUNNER
	// =========================================================================

	if len(opts.Formats) > 0 {
		for _, format := range opts.Formats {
			if !isSupportedFormat(format) {
				return fmt.Errorf("%w: unknown report format %q", config.ErrInvalidConfig, format)
			}
		}
		cfg.ReportFormats = opts.Formats
	}

	log := newLogger(cfg, stderr)

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	runnerOpts := checks.Options{
		GSTIN:    cfg.GSTINEnabled() && !opts.NoGSTIN,
		Disabled: append(append([]string{}, cfg.Checks.Disabled...), opts.Disabled...),
	}
	runner, err := checks.NewRunner(checks.NewContext(registry), runnerOpts, log)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: RESOLVE INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ArchiveOnSuccess && !opts.DryRun

	inputFiles := args
	if len(inputFiles) == 0 {
		inputFiles, err = fm.DiscoverInputFiles(cfg.InputPatterns)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(stdout, "No invoice files found in the input directory.")
		return nil
	}

	log.Info("starting run", "files", len(inputFiles), "dry_run", opts.DryRun)

	// =========================================================================
	// STEP 3: OPEN REPORT SINKS
	// =========================================================================

	runID := utils.NewRunID()

	var (
		formats     []string
		outputPath  func(ext string) string
		reportFiles []string
	)
	if !opts.DryRun {
		if err := fm.EnsureOutputDir(); err != nil {
			return err
		}

		baseName := utils.GenerateOutputFileName(cfg.ReportFileFormat, map[string]string{
			"run":    runID,
			"source": sourceName(inputFiles),
		})
		outputPath = func(ext string) string {
			path := filepath.Join(cfg.OutputDir, baseName+ext)
			reportFiles = append(reportFiles, path)
			return path
		}
		formats = cfg.ReportFormats
	}

	sinks, err := report.NewSinks(runID, formats, outputPath, stdout)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: PROCESS FILES
	// =========================================================================

	p := pipeline.New(cfg, runner, sinks, log)
	results := p.RunFiles(inputFiles)

	sinkErr := report.CloseAll(sinks)
	if sinkErr != nil {
		log.Error("failed to finish reports", "error", sinkErr)
	}

	// =========================================================================
	// STEP 5: ARCHIVE AND SUMMARIZE
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:       runID,
		StartTime:   startTime,
		TotalFiles:  len(results),
		ReportFiles: reportFiles,
	}
	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
				ErrorType:    errorType(result.Error),
			})
			errorEntries = append(errorEntries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     result.FilePath,
				ErrorType:    errorType(result.Error),
				ErrorMessage: result.Error.Error(),
			})
			continue
		}

		archivePath, err := fm.ArchiveInputFile(result.FilePath)
		if err != nil {
			log.Warn("failed to archive input file", "file", result.FilePath, "error", err)
			archivePath = ""
		}

		summary.SuccessfulFiles++
		summary.TotalInvoices += result.Stats.Invoices
		summary.PassedInvoices += result.Stats.Passed
		summary.FailedInvoices += result.Stats.Failed
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			ArchivePath: archivePath,
			Invoices:    result.Stats.Invoices,
			Passed:      result.Stats.Passed,
			Failed:      result.Stats.Failed,
			ProcessTime: result.Stats.ProcessingTime,
		})
	}
	summary.EndTime = time.Now()

	if !opts.DryRun {
		if path, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir); err != nil {
			log.Error("failed to write error log", "error", err)
		} else if path != "" {
			log.Info("wrote error log", "path", path)
		}

		if cfg.SummaryEnabled() {
			if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
				log.Error("failed to write summary", "error", err)
			} else {
				log.Info("wrote summary", "path", path)
			}
		}
	}

	printSummary(stdout, summary)

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	if sinkErr != nil {
		return fmt.Errorf("failed to write reports: %w", sinkErr)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func isSupportedFormat(format string) bool {
	for _, supported := range config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// quotedList renders names as a comma separated list of quoted strings.
func quotedList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strconv.Quote(name)
	}
	return strings.Join(quoted, ", ")
}

// sourceName fills the {source} placeholder: the input file name without its
// extension for a single file, "batch" otherwise.
func sourceName(files []string) string {
	if len(files) != 1 {
		return "batch"
	}
	base := filepath.Base(files[0])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// errorType classifies a file failure for the error log.
func errorType(err error) string {
	switch {
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return "UnsupportedFormat"
	case errors.Is(err, resolver.ErrMalformedCheckResult):
		return "MalformedCheckResult"
	default:
		return "ExtractionError"
	}
}

// printSummary prints the run totals after the per-invoice reports.
func printSummary(w io.Writer, summary utils.ProcessingSummary) {
	fmt.Fprintln(w, "\n=== Processing Complete ===")
	fmt.Fprintf(w, "Run ID:          %s\n", summary.RunID)
	fmt.Fprintf(w, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(w, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(w, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(w, "Invoices:        %d (%d PASS, %d FAIL)\n",
		summary.TotalInvoices, summary.PassedInvoices, summary.FailedInvoices)
	fmt.Fprintf(w, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	for _, ff := range summary.FailedFilesList {
		fmt.Fprintf(w, "  ✗ %s: %s\n", filepath.Base(ff.InputFile), ff.ErrorMessage)
	}
}
