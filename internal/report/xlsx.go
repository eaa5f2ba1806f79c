package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

const xlsxSheetName = "Compliance"

var xlsxHeaders = []any{
	"Source File", "Position", "Invoice ID", "Vendor", "Date", "Total",
	"Final Status", "Confidence", "Failed Checks",
}

// xlsxSink writes one worksheet row per invoice and saves the workbook on
// Close. Failed check names are joined with "; " in the last column.
type xlsxSink struct {
	path   string
	file   *excelize.File
	next   int
	err    error
	closed bool
}

// NewXLSXSink returns a sink writing a workbook to path.
func NewXLSXSink(path string) Sink {
	s := &xlsxSink{path: path, file: excelize.NewFile(), next: 2}
	s.err = s.writeHeader()
	return s
}

func (s *xlsxSink) writeHeader() error {
	if err := s.file.SetSheetName(s.file.GetSheetName(0), xlsxSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := s.file.SetSheetRow(xlsxSheetName, "A1", &xlsxHeaders); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	style, err := s.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(xlsxHeaders))
	if err != nil {
		return err
	}
	if err := s.file.SetCellStyle(xlsxSheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}
	return nil
}

func (s *xlsxSink) Write(inv types.Invoice, res types.Resolution) error {
	if s.err != nil {
		return s.err
	}

	r := newRow(inv, res)
	values := []any{
		r.SourceFile, r.Position, r.InvoiceID, r.Vendor, r.Date, r.Total,
		r.FinalStatus, r.Confidence, strings.Join(r.FailedChecks, "; "),
	}

	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		return err
	}
	if err := s.file.SetSheetRow(xlsxSheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", s.next, err)
	}
	s.next++
	return nil
}

func (s *xlsxSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.file.Close()

	if s.err != nil {
		return s.err
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save XLSX report: %w", err)
	}
	return nil
}
