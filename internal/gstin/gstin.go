// =============================================================================
// Invoice Compliance Checker - GSTIN Validator
// =============================================================================
//
// This module checks Goods and Services Tax Identification Numbers (GSTIN).
// A GSTIN is a 15-character structured tax ID:
//
//   | Pos   | Content                         | Example |
//   |-------|---------------------------------|---------|
//   | 1-2   | State code (digits)             | 27      |
//   | 3-7   | PAN letters                     | ABCDE   |
//   | 8-11  | PAN digits                      | 1234    |
//   | 12    | PAN check letter                | F       |
//   | 13    | Entity number [1-9A-Z]          | 1       |
//   | 14    | Literal "Z"                     | Z       |
//   | 15    | Checksum [0-9A-Z]               | 5       |
//
// All functions here are pure: no state, no side effects. Registry lookups
// are read-only.
//
// =============================================================================

package gstin

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// formatPattern is anchored at both ends; no surrounding whitespace is tolerated.
var formatPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// ValidateFormat reports whether s is a structurally valid GSTIN.
func ValidateFormat(s string) bool {
	return formatPattern.MatchString(s)
}

// MatchState reports whether two state codes are equal. No normalization is
// applied, so "27" and " 27" do not match.
func MatchState(gstinState, vendorState string) bool {
	return gstinState == vendorState
}

// StateCode returns the state code embedded in the first two characters of
// a GSTIN, or "" when the input is too short.
func StateCode(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}

// =============================================================================
// REGISTRY
// =============================================================================

// Record is the registry entry for one GSTIN.
type Record struct {
	Active    bool   `yaml:"active" json:"active"`
	StateCode string `yaml:"state_code" json:"state_code"`
}

// Registry resolves a GSTIN to its registration record.
type Registry interface {
	Lookup(gstin string) (Record, bool)
}

// MapRegistry is an in-memory registry keyed by GSTIN.
type MapRegistry map[string]Record

// Lookup implements Registry.
func (r MapRegistry) Lookup(gstin string) (Record, bool) {
	rec, ok := r[gstin]
	return rec, ok
}

// DefaultRegistry returns the built-in registry used when no registry file
// is configured.
func DefaultRegistry() MapRegistry {
	return MapRegistry{
		"27ABCDE1234F1Z5": {Active: true, StateCode: "27"},
		"29ABCDE1234F1Z5": {Active: false, StateCode: "29"},
	}
}

// LoadRegistry reads a YAML registry file of the form:
//
//	27ABCDE1234F1Z5:
//	  active: true
//	  state_code: "27"
func LoadRegistry(path string) (MapRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	registry := MapRegistry{}
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	return registry, nil
}

// VerifyActive looks a GSTIN up in the registry. The boolean is false when
// the GSTIN is unknown; callers treat that as inactive.
func VerifyActive(reg Registry, gstin string) (Record, bool) {
	if reg == nil {
		return Record{}, false
	}
	return reg.Lookup(gstin)
}
