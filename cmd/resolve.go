package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-compliance/internal/resolver"
	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

// resolveCmd aggregates check results produced elsewhere.
//
// INPUT ("-" reads stdin):
//   [
//     {"check": "Invoice ID Format", "status": true},
//     {"check": "Duplicate Invoice", "status": false}
//   ]
//
// OUTPUT:
//   {"final_status": "FAIL", "confidence": 0.5, "failed_checks": [...]}
var resolveCmd = &cobra.Command{
	Use:   "resolve FILE",
	Short: "Resolve a JSON list of check results",
	Long: `Read a JSON array of {"check", "status"} entries and print the resolution:
final status, confidence and failed checks.

An entry without a boolean status is rejected as a malformed check result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(args[0], cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(path string, stdin io.Reader, w io.Writer) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read check results: %w", err)
	}

	var results []types.CheckResult
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("failed to parse check results: %w", err)
	}

	resolution, err := resolver.Resolve(results)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resolution)
}
