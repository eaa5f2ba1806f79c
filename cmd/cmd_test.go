package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/invoice-compliance/internal/checks"
	"github.com/ginjaninja78/invoice-compliance/internal/config"
	"github.com/ginjaninja78/invoice-compliance/internal/gstin"
	"github.com/ginjaninja78/invoice-compliance/internal/resolver"
)

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "archive")
	cfg.LogLevel = "error"
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	return cfg
}

func writeInput(t *testing.T, cfg *config.MainConfig, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func outputFiles(t *testing.T, dir, prefix string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*"))
	require.NoError(t, err)
	return matches
}

func TestRunCheck_DiscoversReportsAndArchives(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveOnSuccess = true
	cfg.ReportFormats = []string{config.FormatJSON}

	jan := writeInput(t, cfg, "a_jan.json", `[{"invoice_id": "INV-2024-0001", "vendor": "Acme", "total_amount": 100}]`)
	feb := writeInput(t, cfg, "b_feb.csv", "invoice_id,vendor,total_amount\nINV-2024-0001,Acme,100\n")
	bad := writeInput(t, cfg, "c_bad.json", `{not json`)

	var stdout, stderr bytes.Buffer
	err := runCheck(cfg, checkOptions{}, nil, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 file(s) failed")

	out := stdout.String()
	assert.Equal(t, 2, strings.Count(out, "===== COMPLIANCE REPORT ====="))
	assert.Contains(t, out, "- Duplicate Invoice")
	assert.Contains(t, out, "Invoices:        2 (1 PASS, 1 FAIL)")

	assert.NoFileExists(t, jan)
	assert.NoFileExists(t, feb)
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, "a_jan.json"))
	assert.FileExists(t, bad, "failed files stay in place")

	assert.Len(t, outputFiles(t, cfg.OutputDir, "error_log_"), 1)
	assert.Len(t, outputFiles(t, cfg.OutputDir, "processing_summary_"), 1)

	reports := outputFiles(t, cfg.OutputDir, "compliance_")
	require.Len(t, reports, 1)
	data, err := os.ReadFile(reports[0])
	require.NoError(t, err)

	var entries []struct {
		Resolution struct {
			FinalStatus string  `json:"final_status"`
			Confidence  float64 `json:"confidence"`
		} `json:"resolution"`
	}
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "PASS", entries[0].Resolution.FinalStatus)
	assert.Equal(t, "FAIL", entries[1].Resolution.FinalStatus)
	assert.Equal(t, 0.75, entries[1].Resolution.Confidence)
}

func TestRunCheck_DryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveOnSuccess = true
	path := writeInput(t, cfg, "jan.json", `[{"invoice_id": "INV-2024-0001", "vendor": "Acme", "total_amount": 100}]`)

	var stdout, stderr bytes.Buffer
	err := runCheck(cfg, checkOptions{DryRun: true, Formats: []string{"xml"}}, []string{path}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "[SUCCESS] All checks passed!")
	assert.FileExists(t, path)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestRunCheck_DisabledChecks(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "jan.json", `[
		{"invoice_id": "INV-2024-0001", "vendor": "Acme", "total_amount": 100},
		{"invoice_id": "INV-2024-0001", "vendor": "Acme", "total_amount": 100, "gstin": "BAD"}
	]`)

	opts := checkOptions{DryRun: true, NoGSTIN: true, Disabled: []string{checks.DuplicateInvoice}}
	var stdout, stderr bytes.Buffer
	require.NoError(t, runCheck(cfg, opts, []string{path}, &stdout, &stderr))

	assert.Equal(t, 2, strings.Count(stdout.String(), "[SUCCESS] All checks passed!"))
}

func TestRunCheck_Errors(t *testing.T) {
	t.Run("unknown disabled check", func(t *testing.T) {
		cfg := testConfig(t)
		err := runCheck(cfg, checkOptions{Disabled: []string{"Vendor Check"}}, nil, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, checks.ErrUnknownCheck)
	})

	t.Run("unknown format flag", func(t *testing.T) {
		cfg := testConfig(t)
		err := runCheck(cfg, checkOptions{Formats: []string{"pdf"}}, nil, &bytes.Buffer{}, &bytes.Buffer{})
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("no input files", func(t *testing.T) {
		cfg := testConfig(t)
		var stdout bytes.Buffer
		require.NoError(t, runCheck(cfg, checkOptions{}, nil, &stdout, &bytes.Buffer{}))
		assert.Contains(t, stdout.String(), "No invoice files found")
	})
}

func TestDisableCheckFlagListsChecks(t *testing.T) {
	usage := checkCmd.Flags().Lookup("disable-check").Usage
	for _, name := range checks.Names() {
		assert.Contains(t, usage, `"`+name+`"`)
	}
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "jan", sourceName([]string{"input/jan.json"}))
	assert.Equal(t, "batch", sourceName([]string{"a.json", "b.json"}))
}

func TestRunGSTIN(t *testing.T) {
	registry := gstin.DefaultRegistry()

	t.Run("active and matching", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runGSTIN(registry, "27ABCDE1234F1Z5", "27", &out))
		assert.Contains(t, out.String(), "Format:       valid")
		assert.Contains(t, out.String(), "Registry:     active (state 27)")
		assert.Contains(t, out.String(), "State Match:  yes")
	})

	t.Run("inactive", func(t *testing.T) {
		var out bytes.Buffer
		assert.Error(t, runGSTIN(registry, "29ABCDE1234F1Z5", "", &out))
		assert.Contains(t, out.String(), "Registry:     inactive (state 29)")
		assert.NotContains(t, out.String(), "State Match")
	})

	t.Run("unknown and malformed", func(t *testing.T) {
		var out bytes.Buffer
		assert.Error(t, runGSTIN(registry, "12345", "12", &out))
		assert.Contains(t, out.String(), "Format:       invalid")
		assert.Contains(t, out.String(), "Registry:     not found")
		assert.Contains(t, out.String(), "State Match:  yes (vendor 12, GSTIN 12)")
	})
}

func TestRunResolve(t *testing.T) {
	t.Run("from stdin", func(t *testing.T) {
		in := strings.NewReader(`[
			{"check": "Invoice ID Format", "status": true},
			{"check": "Duplicate Invoice", "status": false}
		]`)
		var out bytes.Buffer
		require.NoError(t, runResolve("-", in, &out))

		var got map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "FAIL", got["final_status"])
		assert.Equal(t, 0.5, got["confidence"])
		assert.Len(t, got["failed_checks"], 1)
	})

	t.Run("empty list", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runResolve("-", strings.NewReader(`[]`), &out))
		assert.Contains(t, out.String(), `"final_status": "FAIL"`)
		assert.Contains(t, out.String(), `"failed_checks": []`)
	})

	t.Run("missing status", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "results.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"check": "Vendor Validation"}]`), 0o644))

		err := runResolve(path, nil, &bytes.Buffer{})
		assert.ErrorIs(t, err, resolver.ErrMalformedCheckResult)
	})

	t.Run("non-boolean status", func(t *testing.T) {
		err := runResolve("-", strings.NewReader(`[{"check": "x", "status": "yes"}]`), &bytes.Buffer{})
		assert.Error(t, err)
	})
}
