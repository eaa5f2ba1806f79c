// =============================================================================
// Invoice Compliance Checker - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Invoice Compliance Checker CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   invcheck check      - Check invoice files and print the compliance report
//   invcheck gstin      - Verify a single GSTIN
//   invcheck resolve    - Resolve a list of check results
//   invcheck version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Checks, resolution, extraction and reporting
//   - pkg/           : File management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/invoice-compliance/cmd"
)

func main() {
	cmd.Execute()
}
