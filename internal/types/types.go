// =============================================================================
// Invoice Compliance Checker - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - extractor
//   - checks
//   - resolver
//   - report
//   - pipeline
//
// =============================================================================

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// INVOICE
// =============================================================================

// Well-known invoice field names.
const (
	FieldInvoiceID   = "invoice_id"
	FieldVendor      = "vendor"
	FieldInvoiceDate = "invoice_date"
	FieldTotalAmount = "total_amount"
	FieldGSTIN       = "gstin"
	FieldStateCode   = "state_code"
	FieldVendorName  = "name"
)

// Invoice is a single invoice record as read from an input file.
// Records are never mutated after extraction; a field that is missing from
// Fields is absent, which is distinct from a field holding an empty value.
type Invoice struct {
	// Fields holds the raw record. Values are strings, float64, bool, nil,
	// nested map[string]any or []any.
	Fields map[string]any

	// SourceFile is the path of the file the record was read from.
	SourceFile string

	// Position is the 1-based position of the record within SourceFile.
	Position int
}

// Lookup returns a top-level field and whether it is present.
func (inv Invoice) Lookup(key string) (any, bool) {
	if inv.Fields == nil {
		return nil, false
	}
	v, ok := inv.Fields[key]
	return v, ok
}

// InvoiceID returns the invoice number as a string. Non-string values are
// rendered with their default formatting.
func (inv Invoice) InvoiceID() (string, bool) {
	v, ok := inv.Lookup(FieldInvoiceID)
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// Vendor returns the raw vendor value, which is either a string or a mapping.
func (inv Invoice) Vendor() (any, bool) {
	return inv.Lookup(FieldVendor)
}

// VendorField returns a key from the vendor mapping. It reports false when
// the vendor is not a mapping or does not carry the key.
func (inv Invoice) VendorField(key string) (any, bool) {
	v, ok := inv.Vendor()
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	field, ok := m[key]
	return field, ok
}

// VendorName returns a display name for the vendor, or "N/A".
func (inv Invoice) VendorName() string {
	v, ok := inv.Vendor()
	if !ok || v == nil {
		return "N/A"
	}
	if _, isMap := v.(map[string]any); isMap {
		name, ok := inv.VendorField(FieldVendorName)
		if !ok {
			return "N/A"
		}
		return Stringify(name)
	}
	return Stringify(v)
}

// InvoiceDate returns the invoice date as a string.
func (inv Invoice) InvoiceDate() (string, bool) {
	v, ok := inv.Lookup(FieldInvoiceDate)
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// TotalAmount returns the raw total amount value.
func (inv Invoice) TotalAmount() (any, bool) {
	return inv.Lookup(FieldTotalAmount)
}

// GSTIN returns the vendor tax ID. A top-level "gstin" wins over the one
// nested in the vendor mapping.
func (inv Invoice) GSTIN() (string, bool) {
	if v, ok := inv.Lookup(FieldGSTIN); ok {
		return Stringify(v), true
	}
	if v, ok := inv.VendorField(FieldGSTIN); ok {
		return Stringify(v), true
	}
	return "", false
}

// VendorState returns the two-digit state code of the vendor address.
func (inv Invoice) VendorState() (string, bool) {
	if v, ok := inv.VendorField(FieldStateCode); ok {
		return Stringify(v), true
	}
	if v, ok := inv.Lookup(FieldStateCode); ok {
		return Stringify(v), true
	}
	return "", false
}

// Label identifies the invoice in logs and reports.
func (inv Invoice) Label() string {
	if id, ok := inv.InvoiceID(); ok && id != "" {
		return id
	}
	return fmt.Sprintf("record #%d", inv.Position)
}

// Stringify renders a field value for display and keying.
// Whole floats are printed without a fractional part.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// =============================================================================
// CHECK RESULTS
// =============================================================================

// Status is the outcome of a single check. The zero value means the status
// was never set, which the resolver rejects.
type Status uint8

const (
	StatusUnset Status = iota
	StatusPass
	StatusFail
)

// StatusOf converts a predicate result into a Status.
func StatusOf(passed bool) Status {
	if passed {
		return StatusPass
	}
	return StatusFail
}

// IsSet reports whether the status carries a value.
func (s Status) IsSet() bool { return s == StatusPass || s == StatusFail }

// Passed reports whether the check passed.
func (s Status) Passed() bool { return s == StatusPass }

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "true"
	case StatusFail:
		return "false"
	default:
		return "unset"
	}
}

// MarshalJSON encodes the status as a JSON boolean, or null when unset.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.IsSet() {
		return []byte("null"), nil
	}
	return []byte(s.String()), nil
}

// UnmarshalJSON decodes a JSON boolean. null leaves the status unset.
func (s *Status) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "null":
		*s = StatusUnset
	case "true":
		*s = StatusPass
	case "false":
		*s = StatusFail
	default:
		return fmt.Errorf("status must be a boolean, got %s", data)
	}
	return nil
}

// CheckResult is the named outcome of one check against one invoice.
type CheckResult struct {
	Check  string `json:"check"`
	Status Status `json:"status"`
}

// =============================================================================
// RESOLUTION
// =============================================================================

// FinalStatus is the aggregated verdict for an invoice.
type FinalStatus string

const (
	StatusPASS FinalStatus = "PASS"
	StatusFAIL FinalStatus = "FAIL"
)

// Resolution is the aggregated outcome of all checks run against one invoice.
type Resolution struct {
	FinalStatus  FinalStatus   `json:"final_status"`
	Confidence   float64       `json:"confidence"`
	FailedChecks []CheckResult `json:"failed_checks"`
}

// FailedCheckNames returns the names of the failed checks in order.
func (r Resolution) FailedCheckNames() []string {
	names := make([]string, 0, len(r.FailedChecks))
	for _, fc := range r.FailedChecks {
		names = append(names, fc.Check)
	}
	return names
}

// compile-time checks
var (
	_ json.Marshaler   = Status(0)
	_ json.Unmarshaler = (*Status)(nil)
)
