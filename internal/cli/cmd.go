package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var (
	cmdAddFlags  cmdFlags
	cmdEditFlags cmdFlags
)

// cmdFlags holds the field flags shared by cmd add and cmd edit.
type cmdFlags struct {
	Title   string
	Command string
	Profile string
	URL     string
}

func addCmdFlags(cmd *cobra.Command, f *cmdFlags) {
	cmd.Flags().StringVar(&f.Title, "title", "", "command title (unique)")
	cmd.Flags().StringVar(&f.Command, "command", "", "shell command to run")
	cmd.Flags().StringVar(&f.Profile, "profile", "", "profile title to run against")
	cmd.Flags().StringVar(&f.URL, "url", "", "companion link shown in listings")
}

var cmdCmd = &cobra.Command{
	Use:   "cmd",
	Short: "Manage saved commands",
	Long: `Manage the reusable shell commands bound to connection profiles.

Commands keep a stable display order via line numbers; 'cmd reorder'
rewrites the order and renumbers densely from 1.`,
}

var cmdAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a command",
	Long: `Save a shell command bound to a profile.

Examples:
  sshdeck cmd add --title deploy --command "make deploy" --profile web
  sshdeck cmd add --title logs --command "tail -n100 /var/log/app.log" --profile web --url https://logs.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdAddCommand(cmdAddFlags)
	},
}

var cmdListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved commands in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		commands, err := s.ListCommands()
		if err != nil {
			return err
		}
		fmt.Println(ui.RenderCommandTable(commands))
		return nil
	},
}

var cmdEditCmd = &cobra.Command{
	Use:   "edit <title>",
	Short: "Update a saved command",
	Long: `Update the fields of a saved command. The line number is kept.

Examples:
  sshdeck cmd edit deploy --command "make deploy-prod"
  sshdeck cmd edit deploy --title release --profile prod`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmdEditCommand(args[0], cmdEditFlags, cmd)
	},
}

var cmdRemoveCmd = &cobra.Command{
	Use:   "remove <title>",
	Short: "Remove a saved command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		if err := s.DeleteCommand(args[0]); err != nil {
			return err
		}
		fmt.Printf("%s Removed command '%s'\n", ui.SymbolSuccess, args[0])
		return nil
	},
}

var cmdReorderCmd = &cobra.Command{
	Use:   "reorder <line-number>...",
	Short: "Reorder saved commands",
	Long: `Reorder saved commands by listing their current line numbers in the
desired order. Every current line number must appear exactly once;
afterwards commands are renumbered 1..N.

Examples:
  sshdeck cmd reorder 3 1 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := parseLineNumbers(args)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		if err := s.ReorderCommands(order); err != nil {
			return err
		}

		commands, err := s.ListCommands()
		if err != nil {
			return err
		}
		fmt.Println(ui.RenderCommandTable(commands))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cmdCmd)
	cmdCmd.AddCommand(cmdAddCmd, cmdListCmd, cmdEditCmd, cmdRemoveCmd, cmdReorderCmd)

	addCmdFlags(cmdAddCmd, &cmdAddFlags)
	addCmdFlags(cmdEditCmd, &cmdEditFlags)
}

func cmdAddCommand(f cmdFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	if err := promptIfEmpty(&f.Title, "Command title", false); err != nil {
		return err
	}
	if err := promptIfEmpty(&f.Command, "Shell command", false); err != nil {
		return err
	}
	if err := promptIfEmpty(&f.Profile, "Profile", false); err != nil {
		return err
	}

	c := store.Command{
		Title:   f.Title,
		Command: f.Command,
		Profile: f.Profile,
		URL:     f.URL,
	}
	if err := s.AddCommand(c); err != nil {
		return err
	}
	fmt.Printf("%s Saved command '%s'\n", ui.SymbolSuccess, f.Title)
	return nil
}

func cmdEditCommand(title string, f cmdFlags, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	existing, err := s.GetCommand(title)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("title") {
		existing.Title = f.Title
	}
	if cmd.Flags().Changed("command") {
		existing.Command = f.Command
	}
	if cmd.Flags().Changed("profile") {
		existing.Profile = f.Profile
	}
	if cmd.Flags().Changed("url") {
		existing.URL = f.URL
	}

	if err := s.UpdateCommand(title, existing); err != nil {
		return err
	}
	fmt.Printf("%s Updated command '%s'\n", ui.SymbolSuccess, existing.Title)
	return nil
}

// parseLineNumbers converts reorder arguments into line numbers.
func parseLineNumbers(args []string) ([]int, error) {
	order := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, errors.New(errors.ErrStore,
				fmt.Sprintf("'%s' is not a line number", arg),
				"Pass the current line numbers from 'sshdeck cmd list' in the desired order.")
		}
		order[i] = n
	}
	return order, nil
}
