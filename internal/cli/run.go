package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/exec"
	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/ui"
	"github.com/sshdeck/sshdeck/pkg/sshx"
)

var runTimeoutFlag string

var runCmd = &cobra.Command{
	Use:   "run [title]",
	Short: "Run a saved command over SSH",
	Long: `Run a saved command against its profile over SSH.

Without a title, an interactive picker lists the saved commands. Output
is the remote stdout and stderr combined, in arrival order. A command
that exceeds the timeout is cut off and reported as timed out; partial
output is discarded.

Examples:
  sshdeck run
  sshdeck run deploy
  sshdeck run deploy --timeout 1m`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := ""
		if len(args) > 0 {
			title = args[0]
		}
		return runCommand(title, runTimeoutFlag)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runTimeoutFlag, "timeout", "", "command timeout (e.g. 30s, 2m); overrides config")
}

func runCommand(title, timeoutFlag string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	command, err := resolveCommand(s, title)
	if err != nil {
		return err
	}
	if command == nil {
		fmt.Println("Cancelled.")
		return nil
	}

	timeout := cfg.CommandTimeout
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil || d <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' doesn't look like a valid timeout", timeoutFlag),
				"Try something like 30s, 2m, or 500ms.")
		}
		timeout = d
	}

	executor := exec.New(s, sshx.NewNetDialer(), exec.WithTimeout(timeout))

	spinner := ui.NewSpinner(fmt.Sprintf("Running '%s' on %s", command.Title, command.Profile))
	spinner.Start()

	result, err := executor.Run(command.Command, command.Profile)
	if err != nil {
		spinner.Fail()
		return err
	}
	if result.TimedOut {
		spinner.Fail()
	} else {
		spinner.Success()
	}

	fmt.Println(result.Output)
	if command.URL != "" {
		fmt.Printf("\nLink: %s\n", command.URL)
	}
	return nil
}

// resolveCommand finds the command to run, via the picker when no title
// was given. A nil command with nil error means the user cancelled.
func resolveCommand(s store.Store, title string) (*store.Command, error) {
	if title != "" {
		c, err := s.GetCommand(title)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}

	commands, err := s.ListCommands()
	if err != nil {
		return nil, err
	}
	return ui.PickCommand(commands)
}
