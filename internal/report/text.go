package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

// textSink prints the compliance report block for each invoice:
//
//	===== COMPLIANCE REPORT =====
//	Invoice ID     : INV-2024-0001
//	Vendor         : Acme Supplies
//	Date           : 2024-01-15
//	Total          : 1500
//
//	Final Status   : FAIL
//	Confidence     : 75.0%
//
//	Failed Checks:
//	- Duplicate Invoice
type textSink struct {
	w      io.Writer
	closer io.Closer
}

// NewTextSink returns a sink printing reports to w. The writer is not closed.
func NewTextSink(w io.Writer) Sink {
	return &textSink{w: w}
}

func (s *textSink) Write(inv types.Invoice, res types.Resolution) error {
	r := newRow(inv, res)

	bw := bufio.NewWriter(s.w)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "===== COMPLIANCE REPORT =====")
	fmt.Fprintf(bw, "Invoice ID     : %s\n", r.InvoiceID)
	fmt.Fprintf(bw, "Vendor         : %s\n", r.Vendor)
	fmt.Fprintf(bw, "Date           : %s\n", r.Date)
	fmt.Fprintf(bw, "Total          : %s\n", r.Total)
	fmt.Fprintf(bw, "\nFinal Status   : %s\n", r.FinalStatus)
	fmt.Fprintf(bw, "Confidence     : %s\n", formatPercent(r.Confidence))

	if len(r.FailedChecks) > 0 {
		fmt.Fprintln(bw, "\nFailed Checks:")
		for _, name := range r.FailedChecks {
			fmt.Fprintf(bw, "- %s\n", name)
		}
	} else {
		fmt.Fprintln(bw, "\n[SUCCESS] All checks passed!")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	return nil
}

func (s *textSink) Close() error {
	if s.closer == nil {
		return nil
	}
	closer := s.closer
	s.closer = nil
	return closer.Close()
}
