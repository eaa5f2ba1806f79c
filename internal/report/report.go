// =============================================================================
// Invoice Compliance Checker - Report Module
// =============================================================================
//
// This module renders resolved invoices for human consumption. Each output
// format is a Sink that accepts one invoice and its resolution per call.
//
// SINKS:
//
//   | Format  | Destination          | Written                  |
//   |---------|----------------------|--------------------------|
//   | console | io.Writer (stdout)   | immediately, per invoice |
//   | text    | <report>.txt         | immediately, per invoice |
//   | json    | <report>.json        | on Close (one array)     |
//   | xml     | <report>.xml         | on Close (one document)  |
//   | xlsx    | <report>.xlsx        | on Close (one workbook)  |
//
// Sinks never change the resolution they are given, and a failing sink does
// not affect the others.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/invoice-compliance/internal/config"
	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

// Sink consumes resolved invoices.
type Sink interface {
	// Write renders one invoice and its resolution.
	Write(inv types.Invoice, res types.Resolution) error

	// Close flushes buffered output and releases the destination.
	Close() error
}

// NewSinks creates one sink per report format, plus a console sink when
// console is not nil.
//
// PARAMETERS:
//   - runID: Identifies the run inside the generated documents.
//   - formats: Report formats from the configuration (text, json, xml, xlsx).
//   - outputPath: Returns the report file path for an extension such as ".json".
//   - console: Destination for the console report, or nil for none.
//
// RETURNS:
//   - The sinks in the order of formats, console first.
//   - An error if a format is unknown or a report file cannot be created.
//     Sinks created before the failure are closed.
func NewSinks(runID string, formats []string, outputPath func(ext string) string, console io.Writer) ([]Sink, error) {
	var sinks []Sink
	if console != nil {
		sinks = append(sinks, NewTextSink(console))
	}

	fail := func(err error) ([]Sink, error) {
		_ = CloseAll(sinks)
		return nil, err
	}

	for _, format := range formats {
		switch strings.ToLower(format) {
		case config.FormatText:
			path := outputPath(".txt")
			file, err := os.Create(path)
			if err != nil {
				return fail(fmt.Errorf("failed to create text report: %w", err))
			}
			sinks = append(sinks, &textSink{w: file, closer: file})
		case config.FormatJSON:
			sinks = append(sinks, NewJSONSink(outputPath(".json")))
		case config.FormatXML:
			sinks = append(sinks, NewXMLSink(outputPath(".xml"), runID))
		case config.FormatXLSX:
			sinks = append(sinks, NewXLSXSink(outputPath(".xlsx")))
		default:
			return fail(fmt.Errorf("unknown report format: %s", format))
		}
	}

	return sinks, nil
}

// CloseAll closes every sink and joins their errors.
func CloseAll(sinks []Sink) error {
	var errs []error
	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

const notAvailable = "N/A"

// row is the flat view of one resolved invoice shared by the sinks.
type row struct {
	SourceFile   string
	Position     int
	InvoiceID    string
	Vendor       string
	Date         string
	Total        string
	FinalStatus  string
	Confidence   float64
	FailedChecks []string
}

func newRow(inv types.Invoice, res types.Resolution) row {
	return row{
		SourceFile:   inv.SourceFile,
		Position:     inv.Position,
		InvoiceID:    fieldOrNA(inv, types.FieldInvoiceID),
		Vendor:       inv.VendorName(),
		Date:         fieldOrNA(inv, types.FieldInvoiceDate),
		Total:        fieldOrNA(inv, types.FieldTotalAmount),
		FinalStatus:  string(res.FinalStatus),
		Confidence:   res.Confidence,
		FailedChecks: res.FailedCheckNames(),
	}
}

func fieldOrNA(inv types.Invoice, key string) string {
	v, ok := inv.Lookup(key)
	if !ok || v == nil {
		return notAvailable
	}
	return types.Stringify(v)
}

// formatPercent renders a confidence as a percentage, e.g. 0.75 -> "75.0%".
func formatPercent(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}
