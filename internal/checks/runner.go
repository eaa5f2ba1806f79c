// =============================================================================
// Invoice Compliance Checker - Check Runner
// =============================================================================
//
// This module runs the per-invoice compliance checks and assembles the list
// of named results handed to the resolver.
//
// CHECK TABLE (fixed order):
//   1. Invoice ID Format   - invoice_id matches INV-YYYY-NNNN
//   2. Duplicate Invoice   - first occurrence of invoice_id in this run
//   3. Vendor Validation   - vendor is non-empty
//   4. Total Amount Valid  - total_amount is a number > 0
//   5. GSTIN Format        - vendor GSTIN is structurally valid
//   6. GSTIN Active        - vendor GSTIN is registered and active
//   7. GSTIN State Match   - GSTIN state equals the vendor state
//
// APPLICABILITY:
//   A check only runs when the field it needs is present on the invoice.
//   Inapplicable or disabled checks are omitted from the result list; they
//   are never reported as failed.
//
// STATE:
//   The only shared state is the duplicate tracker, carried in an explicitly
//   constructed Context. Tests build their own Context for isolation.
//
// =============================================================================

package checks

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ginjaninja78/invoice-compliance/internal/gstin"
	"github.com/ginjaninja78/invoice-compliance/internal/tracker"
	"github.com/ginjaninja78/invoice-compliance/internal/types"
	"github.com/ginjaninja78/invoice-compliance/internal/validation"
)

// Check names as they appear in results and reports.
const (
	InvoiceIDFormat  = "Invoice ID Format"
	DuplicateInvoice = "Duplicate Invoice"
	VendorValidation = "Vendor Validation"
	TotalAmountValid = "Total Amount Valid"
	GSTINFormat      = "GSTIN Format"
	GSTINActive      = "GSTIN Active"
	GSTINStateMatch  = "GSTIN State Match"
)

// ErrUnknownCheck is returned when a check name is not in the table.
var ErrUnknownCheck = errors.New("unknown check")

// Context carries the collaborators checks depend on.
type Context struct {
	// Tracker records invoice numbers seen during the run.
	Tracker *tracker.StateStore

	// Registry resolves GSTINs to their registration records.
	Registry gstin.Registry
}

// NewContext returns a Context with a fresh tracker and the given registry.
func NewContext(registry gstin.Registry) Context {
	return Context{
		Tracker:  tracker.NewStateStore(),
		Registry: registry,
	}
}

// =============================================================================
// CHECK TABLE
// =============================================================================

// check is one entry in the dispatch table.
type check struct {
	// applies reports whether the invoice carries what the check needs.
	applies func(inv types.Invoice) bool

	// run evaluates the check. It is only called when applies is true.
	run func(ctx Context, inv types.Invoice) bool

	// gst marks checks that are switched off together with GSTIN checking.
	gst bool
}

// order is the fixed order checks run in.
var order = []string{
	InvoiceIDFormat,
	DuplicateInvoice,
	VendorValidation,
	TotalAmountValid,
	GSTINFormat,
	GSTINActive,
	GSTINStateMatch,
}

// table maps a check name to its implementation.
var table = map[string]check{
	InvoiceIDFormat: {
		applies: hasField(types.FieldInvoiceID),
		run: func(_ Context, inv types.Invoice) bool {
			id, _ := inv.InvoiceID()
			return validation.ValidateInvoiceNumber(id)
		},
	},
	DuplicateInvoice: {
		applies: hasField(types.FieldInvoiceID),
		run: func(ctx Context, inv types.Invoice) bool {
			id, _ := inv.InvoiceID()
			return ctx.Tracker.CheckAndMark(id)
		},
	},
	VendorValidation: {
		applies: hasField(types.FieldVendor),
		run: func(_ Context, inv types.Invoice) bool {
			v, _ := inv.Vendor()
			return validation.VendorPresent(v)
		},
	},
	TotalAmountValid: {
		applies: hasField(types.FieldTotalAmount),
		run: func(_ Context, inv types.Invoice) bool {
			v, _ := inv.TotalAmount()
			return validation.PositiveAmount(v)
		},
	},
	GSTINFormat: {
		applies: hasGSTIN,
		run: func(_ Context, inv types.Invoice) bool {
			id, _ := inv.GSTIN()
			return gstin.ValidateFormat(id)
		},
		gst: true,
	},
	GSTINActive: {
		applies: hasGSTIN,
		run: func(ctx Context, inv types.Invoice) bool {
			id, _ := inv.GSTIN()
			rec, found := gstin.VerifyActive(ctx.Registry, id)
			return found && rec.Active
		},
		gst: true,
	},
	GSTINStateMatch: {
		applies: func(inv types.Invoice) bool {
			_, hasState := inv.VendorState()
			return hasGSTIN(inv) && hasState
		},
		run: func(ctx Context, inv types.Invoice) bool {
			id, _ := inv.GSTIN()
			vendorState, _ := inv.VendorState()

			gstinState := gstin.StateCode(id)
			if rec, found := gstin.VerifyActive(ctx.Registry, id); found && rec.StateCode != "" {
				gstinState = rec.StateCode
			}
			return gstin.MatchState(gstinState, vendorState)
		},
		gst: true,
	},
}

func hasField(key string) func(types.Invoice) bool {
	return func(inv types.Invoice) bool {
		_, ok := inv.Lookup(key)
		return ok
	}
}

func hasGSTIN(inv types.Invoice) bool {
	_, ok := inv.GSTIN()
	return ok
}

// Names returns every known check name in run order.
func Names() []string {
	names := make([]string, len(order))
	copy(names, order)
	return names
}

// IsKnown reports whether name is in the check table.
func IsKnown(name string) bool {
	_, ok := table[name]
	return ok
}

// =============================================================================
// RUNNER
// =============================================================================

// Options controls which checks the runner executes.
type Options struct {
	// GSTIN enables the GSTIN Format, Active and State Match checks.
	GSTIN bool

	// Disabled lists check names to skip entirely.
	Disabled []string
}

// DefaultOptions enables every check.
func DefaultOptions() Options {
	return Options{GSTIN: true}
}

// Runner executes the check table against invoices.
type Runner struct {
	ctx      Context
	disabled map[string]bool
	logger   *slog.Logger
}

// NewRunner creates a Runner. Unknown names in opts.Disabled are rejected.
func NewRunner(ctx Context, opts Options, logger *slog.Logger) (*Runner, error) {
	if ctx.Tracker == nil {
		ctx.Tracker = tracker.NewStateStore()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	disabled := make(map[string]bool)
	for _, name := range opts.Disabled {
		if !IsKnown(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCheck, name)
		}
		disabled[name] = true
	}
	if !opts.GSTIN {
		for name, c := range table {
			if c.gst {
				disabled[name] = true
			}
		}
	}

	return &Runner{ctx: ctx, disabled: disabled, logger: logger}, nil
}

// Run executes every enabled, applicable check in table order.
func (r *Runner) Run(inv types.Invoice) []types.CheckResult {
	results := make([]types.CheckResult, 0, len(order))

	for _, name := range order {
		if r.disabled[name] {
			continue
		}
		c := table[name]
		if !c.applies(inv) {
			r.logger.Debug("check skipped: field missing",
				slog.String("invoice", inv.Label()),
				slog.String("check", name))
			continue
		}
		results = append(results, types.CheckResult{
			Check:  name,
			Status: types.StatusOf(c.run(r.ctx, inv)),
		})
	}

	return results
}
