package extractor

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads invoice records from the first sheet of a workbook.
// Row 1 holds the headers; every following non-empty row is a record.
func parseXLSX(filePath string) ([]map[string]any, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	headers := cleanHeaders(rows[0])

	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}
		records = append(records, recordFromRow(headers, row))
	}

	return records, nil
}
