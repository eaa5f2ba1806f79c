// =============================================================================
// Invoice Compliance Checker - Invoice Field Validators
// =============================================================================
//
// This module provides the field-level predicates used by the check runner:
//   - Invoice number format (INV-YYYY-NNNN)
//   - Vendor presence
//   - Positive total amount
//
// VALIDATION STRATEGY:
//   Every predicate is pure and returns a plain boolean. A mismatch is a
//   normal false, never an error. Values arrive untyped (from JSON, CSV or
//   XLSX), so each predicate decides which shapes it accepts.
//
// =============================================================================

package validation

import (
	"math"
	"regexp"
)

// invoiceNumberPattern matches "INV-" + 4 digits + "-" + 4 digits, anchored.
var invoiceNumberPattern = regexp.MustCompile(`^INV-[0-9]{4}-[0-9]{4}$`)

// ValidateInvoiceNumber reports whether s matches INV-YYYY-NNNN exactly.
// Matching is case-sensitive and no surrounding whitespace is tolerated.
func ValidateInvoiceNumber(s string) bool {
	return invoiceNumberPattern.MatchString(s)
}

// VendorPresent reports whether a vendor value is non-empty.
//
// ACCEPTED SHAPES:
//   - string: length > 0
//   - mapping: at least one key
//   - list: at least one element
//
// Anything else (null, numbers, booleans) counts as empty.
func VendorPresent(value any) bool {
	switch v := value.(type) {
	case string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return false
	}
}

// PositiveAmount reports whether a total amount is a number greater than zero.
//
// Only numeric values count. Text is never parsed here: tabular extractors
// convert amount cells to numbers before the checks run, so a string amount
// from JSON fails. Booleans, NaN and infinities are rejected.
func PositiveAmount(value any) bool {
	amount, ok := asFloat(value)
	return ok && amount > 0
}

// asFloat widens the numeric types an extractor can produce to float64.
func asFloat(value any) (float64, bool) {
	var amount float64

	switch v := value.(type) {
	case float64:
		amount = v
	case float32:
		amount = float64(v)
	case int:
		amount = float64(v)
	case int64:
		amount = float64(v)
	default:
		return 0, false
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}
