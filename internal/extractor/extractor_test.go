package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/invoice-compliance/internal/config"
)

func defaultCSV() config.CSVSettings {
	return config.CSVSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 2}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_JSONArray(t *testing.T) {
	path := writeFile(t, "invoices.json", `[
		{"invoice_id": "INV-2024-0001", "vendor": {"name": "Acme", "gstin": "27ABCDE1234F1Z5"}, "total_amount": 100},
		{"invoice_id": "INV-2024-0002", "vendor": "Globex", "invoice_date": "2024-03-01", "total_amount": 12.5}
	]`)

	invoices, err := Load(path, defaultCSV())
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	first := invoices[0]
	assert.Equal(t, path, first.SourceFile)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 100.0, first.Fields["total_amount"])
	assert.Equal(t, "Acme", first.VendorName())
	gstin, ok := first.GSTIN()
	require.True(t, ok)
	assert.Equal(t, "27ABCDE1234F1Z5", gstin)

	second := invoices[1]
	assert.Equal(t, 2, second.Position)
	assert.Equal(t, 12.5, second.Fields["total_amount"])
	assert.Equal(t, "Globex", second.VendorName())
	date, ok := second.InvoiceDate()
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", date)
}

func TestLoad_JSONSingleObject(t *testing.T) {
	path := writeFile(t, "one.json", `{"invoice_id": "INV-2024-0001"}`)

	invoices, err := Load(path, defaultCSV())
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	id, ok := invoices[0].InvoiceID()
	require.True(t, ok)
	assert.Equal(t, "INV-2024-0001", id)
}

func TestLoad_JSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `[{"invoice_id": }]`},
		{"array of scalars", `[1, 2]`},
		{"scalar document", `"INV-2024-0001"`},
		{"trailing garbage", `[{"invoice_id": "INV-2024-0001"}] garbage`},
		{"second document", `{"invoice_id": "INV-2024-0001"} {"invoice_id": "INV-2024-0002"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.json", tt.content), defaultCSV())
			assert.Error(t, err)
		})
	}
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "invoices.csv", ""+
		"invoice_id,vendor.name,vendor.gstin,vendor.state_code,invoice_date,total_amount\n"+
		"INV-2024-0001,Acme,27ABCDE1234F1Z5,27,2024-01-05,100\n"+
		",,,,,\n"+
		"INV-2024-0002,Globex,,,,\n")

	invoices, err := Load(path, defaultCSV())
	require.NoError(t, err)
	require.Len(t, invoices, 2, "blank rows are skipped")

	first := invoices[0]
	assert.Equal(t, 100.0, first.Fields["total_amount"])
	assert.Equal(t, map[string]any{"name": "Acme", "gstin": "27ABCDE1234F1Z5", "state_code": "27"}, first.Fields["vendor"])
	state, ok := first.VendorState()
	require.True(t, ok)
	assert.Equal(t, "27", state)

	second := invoices[1]
	assert.Equal(t, 2, second.Position)
	_, ok = second.TotalAmount()
	assert.False(t, ok, "empty cells are absent fields")
	_, ok = second.GSTIN()
	assert.False(t, ok)
	assert.Equal(t, "Globex", second.VendorName())
}

func TestLoad_JSONTrailingWhitespace(t *testing.T) {
	invoices, err := Load(writeFile(t, "ok.json", "[{\"invoice_id\": \"INV-2024-0001\"}]\n\n"), defaultCSV())
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestLoad_CSVKeepsRawText(t *testing.T) {
	path := writeFile(t, "invoices.csv", ""+
		"invoice_id,vendor.name,total_amount\n"+
		"\" INV-2024-0001 \", Acme , 250.50 \n"+
		"INV-2024-0002,Globex,abc\n"+
		"INV-2024-0003,  ,1e2\n")

	invoices, err := Load(path, defaultCSV())
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	id, ok := invoices[0].InvoiceID()
	require.True(t, ok)
	assert.Equal(t, " INV-2024-0001 ", id)
	assert.Equal(t, map[string]any{"name": " Acme "}, invoices[0].Fields["vendor"])
	assert.Equal(t, 250.5, invoices[0].Fields["total_amount"])

	assert.Equal(t, "abc", invoices[1].Fields["total_amount"], "non-numeric amounts stay text")

	_, ok = invoices[2].Vendor()
	assert.False(t, ok, "whitespace-only cells are absent fields")
	assert.Equal(t, 100.0, invoices[2].Fields["total_amount"])
}

func TestLoad_CSVPlainVendorWins(t *testing.T) {
	path := writeFile(t, "invoices.csv", "vendor.name,vendor\nNested,Plain\n")

	invoices, err := Load(path, defaultCSV())
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "Plain", invoices[0].Fields["vendor"])
}

func TestLoad_CSVSemicolonAndMultiHeader(t *testing.T) {
	path := writeFile(t, "invoices.csv", ""+
		"invoice;total\n"+
		"id;amount\n"+
		"INV-2024-0003;9.99\n")

	settings := config.CSVSettings{Delimiter: ";", HeaderRows: 2, DataStartRow: 3}
	invoices, err := Load(path, settings)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-2024-0003", invoices[0].Fields["invoice id"])
	assert.Equal(t, "9.99", invoices[0].Fields["total amount"])
}

func TestLoad_CSVEmptyFile(t *testing.T) {
	_, err := Load(writeFile(t, "empty.csv", ""), defaultCSV())
	assert.Error(t, err)
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"invoice_id", "vendor", "total_amount"},
		{"INV-2024-0001", "Acme", "100"},
		{"INV-2024-0002", "", "-4"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	invoices, err := Load(path, defaultCSV())
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	assert.Equal(t, "INV-2024-0001", invoices[0].Fields["invoice_id"])
	assert.Equal(t, "Acme", invoices[0].Fields["vendor"])
	assert.Equal(t, 100.0, invoices[0].Fields["total_amount"])

	_, ok := invoices[1].Vendor()
	assert.False(t, ok)
	assert.Equal(t, -4.0, invoices[1].Fields["total_amount"])
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "invoices.pdf", "%PDF"), defaultCSV())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), defaultCSV())
	assert.Error(t, err)
}
