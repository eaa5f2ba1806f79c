// =============================================================================
// Invoice Compliance Checker - Resolver
// =============================================================================
//
// This module aggregates the named check results for one invoice into a
// final verdict and a confidence score.
//
// ALGORITHM:
//   1. No results at all -> FAIL with confidence 0.0. An invoice with zero
//      applicable checks is never reported as passing.
//   2. Partition the results into failed (status false) and passed.
//   3. confidence = 1 - failed/total, rounded to 2 decimals.
//   4. final status is PASS iff nothing failed.
//   5. failed checks keep their input order.
//
// ROUNDING:
//   Confidence is rounded half-to-even on the hundredths digit, so a tie such
//   as 0.125 becomes 0.12 and 0.875 becomes 0.88.
//
// =============================================================================

package resolver

import (
	"errors"
	"fmt"
	"math"

	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

// ErrMalformedCheckResult is returned when a result carries no status.
var ErrMalformedCheckResult = errors.New("malformed check result")

// Resolve aggregates check results into a Resolution.
// It fails fast on the first entry without a status; no partial resolution
// is returned in that case.
func Resolve(results []types.CheckResult) (types.Resolution, error) {
	if len(results) == 0 {
		return types.Resolution{
			FinalStatus:  types.StatusFAIL,
			Confidence:   0.0,
			FailedChecks: []types.CheckResult{},
		}, nil
	}

	failed := make([]types.CheckResult, 0, len(results))
	for i, r := range results {
		if !r.Status.IsSet() {
			return types.Resolution{}, fmt.Errorf("%w: entry %d (%q) has no status", ErrMalformedCheckResult, i, r.Check)
		}
		if !r.Status.Passed() {
			failed = append(failed, r)
		}
	}

	confidence := 1 - float64(len(failed))/float64(len(results))

	final := types.StatusPASS
	if len(failed) > 0 {
		final = types.StatusFAIL
	}

	return types.Resolution{
		FinalStatus:  final,
		Confidence:   RoundConfidence(confidence),
		FailedChecks: failed,
	}, nil
}

// RoundConfidence rounds a fraction to 2 decimal places, half-to-even.
func RoundConfidence(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
