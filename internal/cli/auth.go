package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/deviceid"
	"github.com/sshdeck/sshdeck/internal/syncer"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var (
	authURLFlag      string
	authEmailFlag    string
	authPasswordFlag string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a cloud account and link this device",
	Long: `Create a cloud sync account, store its token in the config, and
register this device.

Examples:
  sshdeck register --url https://sync.example.com --email you@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authCommand(true)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the cloud account on this device",
	Long: `Log in to an existing cloud account, store the fresh token in the
config, and (re-)register this device. Logging in also brings a device
back online after an explicit logout.

Examples:
  sshdeck login --email you@example.com
  sshdeck login --url https://sync.example.com --email you@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authCommand(false)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log this device out of the cloud account",
	Long: `Mark this device offline in the cloud and drop the stored token.

The device stays registered; heartbeats from stale timers won't bring it
back online until the next login.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutCommand()
	},
}

func init() {
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
	for _, cmd := range []*cobra.Command{registerCmd, loginCmd} {
		cmd.Flags().StringVar(&authURLFlag, "url", "", "sync server base URL (defaults to the configured one)")
		cmd.Flags().StringVar(&authEmailFlag, "email", "", "account email")
		cmd.Flags().StringVar(&authPasswordFlag, "password", "", "account password (prompted if omitted)")
	}
}

func authCommand(register bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	url := authURLFlag
	if url == "" {
		url = cfg.Cloud.URL
	}
	if err := promptIfEmpty(&url, "Sync server URL", false); err != nil {
		return err
	}

	email := authEmailFlag
	if email == "" {
		email = cfg.Cloud.Email
	}
	if err := promptIfEmpty(&email, "Email", false); err != nil {
		return err
	}

	password := authPasswordFlag
	if err := promptIfEmpty(&password, "Password", true); err != nil {
		return err
	}

	client := syncer.NewClient(url, "")
	var token string
	if register {
		token, err = client.Register(email, password)
	} else {
		token, err = client.Login(email, password)
	}
	if err != nil {
		return err
	}

	cfg.Cloud.URL = url
	cfg.Cloud.Email = email
	cfg.Cloud.Token = token
	if err := saveConfig(cfg); err != nil {
		return err
	}

	// Link this machine to the account; same machine always registers
	// under the same deterministic id.
	authed := syncer.NewClient(url, token)
	if err := authed.RegisterDevice(deviceid.ID(), deviceName(cfg)); err != nil {
		return err
	}

	fmt.Printf("%s Logged in as %s\n", ui.SymbolSuccess, email)
	fmt.Printf("%s Device '%s' registered\n", ui.SymbolSuccess, deviceName(cfg))
	return nil
}

func logoutCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Cloud.LoggedIn() {
		client, err := cloudClient(cfg)
		if err != nil {
			return err
		}
		// Best effort: the token is dropped locally even if the server is
		// unreachable.
		if err := client.DeviceLogout(deviceid.ID()); err != nil {
			fmt.Printf("%s Could not mark device offline: %v\n", ui.SymbolSkipped, err)
		}
	}

	cfg.Cloud.Token = ""
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Printf("%s Logged out\n", ui.SymbolSuccess)
	return nil
}
