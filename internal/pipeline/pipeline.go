// =============================================================================
// Invoice Compliance Checker - Pipeline Module
// =============================================================================
//
// This module orchestrates the compliance run for a single invoice file, from
// extraction to report output.
//
// PIPELINE:
//   1. Extract the invoice records from the file
//   2. For each invoice, in file order:
//      a. Run the applicable checks
//      b. Resolve the check results into a final status and confidence
//      c. Hand the invoice and its resolution to every report sink
//
// ORDERING:
//   Invoices are processed one at a time in file order. The duplicate check
//   depends on that order: the first occurrence of an invoice number passes
//   and every later occurrence fails. Files are processed in the order they
//   are given and share the runner's duplicate tracker.
//
// =============================================================================

package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ginjaninja78/invoice-compliance/internal/checks"
	"github.com/ginjaninja78/invoice-compliance/internal/config"
	"github.com/ginjaninja78/invoice-compliance/internal/extractor"
	"github.com/ginjaninja78/invoice-compliance/internal/report"
	"github.com/ginjaninja78/invoice-compliance/internal/resolver"
	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Outcome is the processed state of one invoice.
type Outcome struct {
	Invoice    types.Invoice
	Results    []types.CheckResult
	Resolution types.Resolution
}

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Outcomes holds one entry per invoice, in file order.
	Outcomes []Outcome

	// Success indicates whether the file could be processed. An invoice that
	// fails its checks does not make the file unsuccessful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// Stats contains statistics about the processing of one file.
type Stats struct {
	// Invoices is the number of invoice records read.
	Invoices int

	// Passed and Failed count invoices by final status.
	Passed int
	Failed int

	// SinkErrors counts report writes that failed.
	SinkErrors int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs invoices from files through the checks and into the sinks.
type Pipeline struct {
	cfg    *config.MainConfig
	runner *checks.Runner
	sinks  []report.Sink
	logger *slog.Logger
}

// New creates a new Pipeline.
//
// PARAMETERS:
//   - cfg: The main configuration (CSV settings are used for extraction).
//   - runner: The check runner. Its tracker is shared by every file.
//   - sinks: The report sinks. They are not closed by the pipeline.
//   - logger: The logger, or nil to discard logs.
func New(cfg *config.MainConfig, runner *checks.Runner, sinks []report.Sink, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{cfg: cfg, runner: runner, sinks: sinks, logger: logger}
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// RunFiles processes the files in order and returns one result per file.
// A failed file does not stop the others.
func (p *Pipeline) RunFiles(paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, p.RunFile(path))
	}
	return results
}

// RunFile executes the pipeline for one file.
func (p *Pipeline) RunFile(filePath string) Result {
	startTime := time.Now()
	result := Result{FilePath: filePath}

	log := p.logger.With("file", filePath)
	log.Info("processing file")

	// =========================================================================
	// STEP 1: EXTRACT INVOICES
	// =========================================================================

	invoices, err := extractor.Load(filePath, p.cfg.CSVSettings)
	if err != nil {
		result.Error = fmt.Errorf("failed to extract invoices: %w", err)
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Error("file failed", "error", result.Error)
		return result
	}

	result.Stats.Invoices = len(invoices)
	log.Debug("extracted invoices", "count", len(invoices))

	// =========================================================================
	// STEP 2: CHECK, RESOLVE AND REPORT EACH INVOICE
	// =========================================================================

	result.Outcomes = make([]Outcome, 0, len(invoices))
	for _, inv := range invoices {
		outcome, err := p.ProcessInvoice(inv)
		if err != nil {
			result.Error = fmt.Errorf("invoice %s: %w", inv.Label(), err)
			result.Stats.ProcessingTime = time.Since(startTime)
			log.Error("file failed", "error", result.Error)
			return result
		}

		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Resolution.FinalStatus == types.StatusPASS {
			result.Stats.Passed++
		} else {
			result.Stats.Failed++
		}

		result.Stats.SinkErrors += p.emit(log, outcome)
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	log.Info("file processed",
		"invoices", result.Stats.Invoices,
		"passed", result.Stats.Passed,
		"failed", result.Stats.Failed,
		"duration", result.Stats.ProcessingTime)

	return result
}

// ProcessInvoice runs the checks for one invoice and resolves them. It does
// not write to the sinks.
func (p *Pipeline) ProcessInvoice(inv types.Invoice) (Outcome, error) {
	results := p.runner.Run(inv)

	resolution, err := resolver.Resolve(results)
	if err != nil {
		return Outcome{}, err
	}

	p.logger.Debug("invoice resolved",
		"invoice", inv.Label(),
		"final_status", resolution.FinalStatus,
		"confidence", resolution.Confidence,
		"failed_checks", resolution.FailedCheckNames())

	return Outcome{Invoice: inv, Results: results, Resolution: resolution}, nil
}

// emit hands the outcome to every sink and returns the number of failures.
// Sink failures are logged; they never change the resolution.
func (p *Pipeline) emit(log *slog.Logger, outcome Outcome) int {
	failures := 0
	for _, sink := range p.sinks {
		if err := sink.Write(outcome.Invoice, outcome.Resolution); err != nil {
			failures++
			log.Warn("report sink failed", "invoice", outcome.Invoice.Label(), "error", err)
		}
	}
	return failures
}
