package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var (
	profileAddFlags  profileFlags
	profileEditFlags profileFlags
	profileRemoveYes bool
)

// profileFlags holds the field flags shared by add and edit.
type profileFlags struct {
	Title    string
	Host     string
	User     string
	Password string
	Port     int
}

func addProfileFlags(cmd *cobra.Command, f *profileFlags) {
	cmd.Flags().StringVar(&f.Title, "title", "", "profile title (unique)")
	cmd.Flags().StringVar(&f.Host, "host", "", "host name or address")
	cmd.Flags().StringVar(&f.User, "user", "", "SSH user")
	cmd.Flags().StringVar(&f.Password, "password", "", "SSH password (prompted if omitted)")
	cmd.Flags().IntVar(&f.Port, "port", 0, "SSH port (default 22)")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage SSH connection profiles",
	Long: `Manage the named SSH connection profiles that saved commands run against.

A profile couples a title with host, user, password, and port. Commands
reference profiles by title; renaming a profile updates every command
that points at it.`,
}

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection profile",
	Long: `Add a new SSH connection profile.

Examples:
  sshdeck profile add --title web --host 10.0.0.1 --user deploy
  sshdeck profile add --title db --host db.internal --user admin --port 2222`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileAddCommand(profileAddFlags)
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connection profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		profiles, err := s.ListProfiles()
		if err != nil {
			return err
		}
		fmt.Println(ui.RenderProfileTable(profiles))
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <title>",
	Short: "Update a profile's connection fields",
	Long: `Update the host, user, password, or port of an existing profile.

The title itself is changed with 'sshdeck profile rename'.

Examples:
  sshdeck profile edit web --host 10.0.0.9
  sshdeck profile edit db --port 2222`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileEditCommand(args[0], profileEditFlags, cmd)
	},
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <old-title> <new-title>",
	Short: "Rename a profile and update commands that use it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		if err := s.RenameProfile(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s Renamed '%s' to '%s' (commands updated)\n", ui.SymbolSuccess, args[0], args[1])
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <title>",
	Short: "Remove a profile",
	Long: `Remove a connection profile.

Commands referencing the profile are kept; they will fail at run time
until pointed at another profile.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return profileRemoveCommand(args[0], profileRemoveYes)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileAddCmd, profileListCmd, profileEditCmd, profileRenameCmd, profileRemoveCmd, profileImportCmd)

	addProfileFlags(profileAddCmd, &profileAddFlags)
	addProfileFlags(profileEditCmd, &profileEditFlags)
	profileRemoveCmd.Flags().BoolVar(&profileRemoveYes, "yes", false, "skip the confirmation prompt")
}

func profileAddCommand(f profileFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	if err := promptIfEmpty(&f.Title, "Profile title", false); err != nil {
		return err
	}
	if err := promptIfEmpty(&f.Host, "Host", false); err != nil {
		return err
	}
	if err := promptIfEmpty(&f.User, "User", false); err != nil {
		return err
	}
	if err := promptIfEmpty(&f.Password, "Password", true); err != nil {
		return err
	}

	profile := store.Profile{
		Title:    f.Title,
		Host:     f.Host,
		Username: f.User,
		Password: f.Password,
		Port:     f.Port,
	}
	if err := s.AddProfile(profile); err != nil {
		return err
	}
	fmt.Printf("%s Added profile '%s'\n", ui.SymbolSuccess, f.Title)
	return nil
}

func profileEditCommand(title string, f profileFlags, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	profile, err := s.GetProfile(title)
	if err != nil {
		return err
	}

	// Only flags the user actually set are applied.
	if cmd.Flags().Changed("host") {
		profile.Host = f.Host
	}
	if cmd.Flags().Changed("user") {
		profile.Username = f.User
	}
	if cmd.Flags().Changed("password") {
		profile.Password = f.Password
	}
	if cmd.Flags().Changed("port") {
		profile.Port = f.Port
	}

	if err := s.UpdateProfile(profile); err != nil {
		return err
	}
	fmt.Printf("%s Updated profile '%s'\n", ui.SymbolSuccess, title)
	return nil
}

func profileRemoveCommand(title string, yes bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	// Fail fast on unknown titles before prompting.
	if _, err := s.GetProfile(title); err != nil {
		return err
	}

	if !yes {
		confirmed, err := ui.Confirm(
			fmt.Sprintf("Remove profile '%s'?", title),
			"Commands using it will stop working until reassigned.")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := s.DeleteProfile(title); err != nil {
		return err
	}
	fmt.Printf("%s Removed profile '%s'\n", ui.SymbolSuccess, title)
	return nil
}
