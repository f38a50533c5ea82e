package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/config"
	"github.com/sshdeck/sshdeck/internal/ui"
)

// Global flags available to all subcommands.
var (
	configFlag  string
	noColorFlag bool
)

// rootCmd is the base command for sshdeck.
var rootCmd = &cobra.Command{
	Use:   "sshdeck",
	Short: "SSH profiles, saved commands, and multi-device sync",
	Long: `sshdeck keeps your SSH connection profiles and reusable shell commands
in one place, runs them against the right host with a single invocation,
and keeps every installation in sync through an optional cloud account.

Profiles name a host + credentials; commands name a shell line bound to a
profile. Sync is a deliberate whole-document push or pull - no merging,
no surprises.

Examples:
  sshdeck profile add --title web --host 10.0.0.1 --user deploy
  sshdeck cmd add --title deploy --command "make deploy" --profile web
  sshdeck run deploy
  sshdeck sync push`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorFlag {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}

// Execute runs the root command. Structured errors render their own
// suggestion block, so they are printed as-is.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadConfig loads the effective config for the current invocation.
func loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(configFlag)
}
