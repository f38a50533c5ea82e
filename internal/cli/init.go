package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/config"
	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the sshdeck configuration",
	Long: `Initialize the sshdeck configuration file and local data directory.

Writes ~/.config/sshdeck/config.yaml with defaults and creates the data
directory that holds your profiles and commands.

Examples:
  sshdeck init
  sshdeck init --force
  sshdeck init --config ./sshdeck.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForce)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func initCommand(force bool) error {
	path := configFlag
	if path == "" {
		path = config.GlobalPath()
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"Cannot determine the config location",
			"Pass an explicit path with --config")
	}

	if _, err := os.Stat(path); err == nil && !force {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Could not create data directory: "+cfg.DataDir,
			"Check directory permissions")
	}

	fmt.Printf("%s Wrote %s\n", ui.SymbolSuccess, path)
	fmt.Printf("%s Data directory %s\n", ui.SymbolSuccess, cfg.DataDir)
	fmt.Println("\nNext: add a profile with 'sshdeck profile add'.")
	return nil
}
