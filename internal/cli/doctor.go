package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/doctor"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the local setup",
	Long: `Check the local setup: data directory, configuration store, device
identity, and cloud connectivity.

Exits non-zero when any check fails. Warnings (like not being logged in)
don't affect the exit code.

Examples:
  sshdeck doctor
  sshdeck doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand()
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
}

func doctorCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	results := doctor.RunAll(doctor.Checks(cfg))

	if doctorJSON {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		lastCategory := ""
		for _, r := range results {
			if r.Category != lastCategory {
				fmt.Printf("\n%s\n", r.Category)
				lastCategory = r.Category
			}
			fmt.Printf("  %s %s: %s\n", statusSymbol(r.Status), r.Name, r.Message)
			if r.Suggestion != "" {
				fmt.Printf("      %s\n", r.Suggestion)
			}
		}
		fmt.Printf("\n%s\n", doctor.Summary(results))
	}

	if doctor.HasFailures(results) {
		os.Exit(1)
	}
	return nil
}

func statusSymbol(s doctor.CheckStatus) string {
	switch s {
	case doctor.StatusPass:
		return ui.SymbolSuccess
	case doctor.StatusWarn:
		return ui.SymbolSkipped
	default:
		return ui.SymbolFail
	}
}
