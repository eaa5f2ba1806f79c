// =============================================================================
// Invoice Compliance Checker - Invoice Extractor
// =============================================================================
//
// This module reads invoice records from a file and returns them in file
// order. The format is chosen by file extension:
//
//   | Extension | Reader                 | Record shape                        |
//   |-----------|------------------------|-------------------------------------|
//   | .json     | encoding/json          | array of objects, or one object     |
//   | .csv      | encoding/csv           | header row + one record per row     |
//   | .xlsx     | excelize (first sheet) | header row + one record per row     |
//
// TABULAR SOURCES (CSV, XLSX):
//   - Header names become field keys.
//   - An empty cell means the field is absent, so checks needing it are skipped.
//   - Dotted headers build nested mappings: "vendor.name", "vendor.gstin" and
//     "vendor.state_code" produce a vendor mapping.
//   - Cell text is kept exactly as read, surrounding whitespace included.
//     Whitespace only decides whether a cell counts as empty.
//   - total_amount cells holding a number become float64; any other text
//     stays a string and fails the amount check like a JSON string would.
//
// Records are read once and never modified afterwards.
//
// =============================================================================

package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/invoice-compliance/internal/config"
	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported invoice file format")

// Load reads every invoice record from filePath.
//
// PARAMETERS:
//   - filePath: The invoice file to read.
//   - settings: CSV parsing settings (ignored for other formats).
//
// RETURNS:
//   - The invoices in file order, each tagged with its source and position.
//   - An error if the file cannot be read or parsed.
func Load(filePath string, settings config.CSVSettings) ([]types.Invoice, error) {
	var (
		records []map[string]any
		err     error
	)

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		records, err = parseJSON(filePath)
	case ".csv":
		records, err = parseCSV(filePath, settings)
	case ".xlsx":
		records, err = parseXLSX(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(filePath))
	}
	if err != nil {
		return nil, err
	}

	invoices := make([]types.Invoice, 0, len(records))
	for i, record := range records {
		invoices = append(invoices, types.Invoice{
			Fields:     record,
			SourceFile: filePath,
			Position:   i + 1,
		})
	}

	return invoices, nil
}

// recordFromRow converts one tabular row into an invoice record.
//
// Blank cells are dropped; other cells keep their raw text. A dotted header
// such as "vendor.name" is stored under a nested mapping. If a plain "vendor" column also has a value, the
// plain value wins and dotted vendor columns are ignored for that row.
func recordFromRow(headers []string, row []string) map[string]any {
	record := make(map[string]any)
	cell := func(col int) string {
		if col >= len(row) {
			return ""
		}
		return row[col]
	}
	blank := func(value string) bool {
		return strings.TrimSpace(value) == ""
	}

	// Plain columns first so they take precedence over dotted ones.
	for col, header := range headers {
		if _, _, nested := splitHeader(header); nested {
			continue
		}
		if value := cell(col); !blank(value) {
			record[header] = plainValue(header, value)
		}
	}

	for col, header := range headers {
		parent, child, nested := splitHeader(header)
		if !nested {
			continue
		}
		value := cell(col)
		if blank(value) {
			continue
		}

		existing, ok := record[parent]
		if !ok {
			existing = make(map[string]any)
			record[parent] = existing
		}
		if m, isMap := existing.(map[string]any); isMap {
			m[child] = value
		}
	}

	return record
}

// plainValue converts a numeric total_amount cell to float64. Spreadsheet
// padding around the number is ignored; text that is not a number is kept.
func plainValue(header, value string) any {
	if header != types.FieldTotalAmount {
		return value
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	return amount
}

// splitHeader splits "parent.child" headers.
func splitHeader(header string) (parent, child string, nested bool) {
	parent, child, nested = strings.Cut(header, ".")
	if parent == "" || child == "" {
		return "", "", false
	}
	return parent, child, nested
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanHeaders trims header names and names blank ones by column index.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}
