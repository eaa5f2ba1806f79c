package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-compliance/internal/gstin"
)

// vendorState is the optional state code compared against the GSTIN.
var vendorState string

// gstinCmd verifies a single GSTIN against the configured registry.
//
// OUTPUT:
//   GSTIN:        27ABCDE1234F1Z5
//   Format:       valid
//   Registry:     active (state 27)
//   State Match:  yes (vendor 27, GSTIN 27)
var gstinCmd = &cobra.Command{
	Use:   "gstin GSTIN",
	Short: "Verify a single GSTIN",
	Long: `Verify a GSTIN: structural format, registry status and, with
--vendor-state, whether its state code matches the vendor's state.

Exits non-zero when any of the checks fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}
		return runGSTIN(registry, args[0], vendorState, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(gstinCmd)

	gstinCmd.Flags().StringVar(
		&vendorState,
		"vendor-state",
		"",
		"Two-digit state code of the vendor address",
	)
}

// runGSTIN prints the verification of one GSTIN and returns an error when it
// does not pass.
func runGSTIN(registry gstin.Registry, id, state string, w io.Writer) error {
	passed := true

	fmt.Fprintf(w, "GSTIN:        %s\n", id)

	if gstin.ValidateFormat(id) {
		fmt.Fprintln(w, "Format:       valid")
	} else {
		fmt.Fprintln(w, "Format:       invalid")
		passed = false
	}

	rec, found := gstin.VerifyActive(registry, id)
	switch {
	case !found:
		fmt.Fprintln(w, "Registry:     not found")
		passed = false
	case rec.Active:
		fmt.Fprintf(w, "Registry:     active (state %s)\n", rec.StateCode)
	default:
		fmt.Fprintf(w, "Registry:     inactive (state %s)\n", rec.StateCode)
		passed = false
	}

	if state != "" {
		gstinState := gstin.StateCode(id)
		if found && rec.StateCode != "" {
			gstinState = rec.StateCode
		}
		if gstin.MatchState(gstinState, state) {
			fmt.Fprintf(w, "State Match:  yes (vendor %s, GSTIN %s)\n", state, gstinState)
		} else {
			fmt.Fprintf(w, "State Match:  no (vendor %s, GSTIN %s)\n", state, gstinState)
			passed = false
		}
	}

	if !passed {
		return fmt.Errorf("GSTIN %s failed verification", strings.TrimSpace(id))
	}
	return nil
}
