package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var (
	syncPushYes bool
	syncPullYes bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync configuration with the cloud",
	Long: `Push or pull the whole configuration document between this device and
the cloud account.

Both directions replace the target wholesale; there is no merging. Push
overwrites the cloud copy, pull overwrites the local one.`,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Replace the cloud configuration with the local one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return syncPushCommand(syncPushYes)
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local configuration with the cloud one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return syncPullCommand(syncPullYes)
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare local and cloud configuration counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return syncStatusCommand()
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncPushCmd, syncPullCmd, syncStatusCmd)

	syncPushCmd.Flags().BoolVar(&syncPushYes, "yes", false, "skip the confirmation prompt")
	syncPullCmd.Flags().BoolVar(&syncPullYes, "yes", false, "skip the confirmation prompt")
}

func syncPushCommand(yes bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	client, err := cloudClient(cfg)
	if err != nil {
		return err
	}

	snap, err := localSnapshot(s)
	if err != nil {
		return err
	}

	if !yes {
		confirmed, err := ui.Confirm(
			"Push local configuration to the cloud?",
			fmt.Sprintf("The cloud copy will be replaced with %d profile(s) and %d command(s).",
				len(snap.Profiles), len(snap.Commands)))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := client.Push(snap); err != nil {
		return err
	}
	fmt.Printf("%s Pushed %d profile(s) and %d command(s)\n",
		ui.SymbolSuccess, len(snap.Profiles), len(snap.Commands))
	return nil
}

func syncPullCommand(yes bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	client, err := cloudClient(cfg)
	if err != nil {
		return err
	}

	if !yes {
		confirmed, err := ui.Confirm(
			"Pull the cloud configuration?",
			"The local configuration will be replaced wholesale.")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	snap, _, err := client.Pull()
	if err != nil {
		return err
	}
	if err := s.ReplaceAll(snap.Profiles, snap.Commands); err != nil {
		return err
	}
	fmt.Printf("%s Pulled %d profile(s) and %d command(s)\n",
		ui.SymbolSuccess, len(snap.Profiles), len(snap.Commands))
	return nil
}

func syncStatusCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	client, err := cloudClient(cfg)
	if err != nil {
		return err
	}

	local, err := localSnapshot(s)
	if err != nil {
		return err
	}
	stats, err := client.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Local:  %d profile(s), %d command(s)\n", len(local.Profiles), len(local.Commands))
	fmt.Printf("Cloud:  %d profile(s), %d command(s)\n", stats.ProfileCount, stats.CommandCount)
	if stats.LastSyncedAt != nil {
		fmt.Printf("Last synced: %s\n", stats.LastSyncedAt.Local().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Last synced: never")
	}
	return nil
}

// localSnapshot reads the whole local document.
func localSnapshot(s store.Store) (store.Snapshot, error) {
	profiles, err := s.ListProfiles()
	if err != nil {
		return store.Snapshot{}, err
	}
	commands, err := s.ListCommands()
	if err != nil {
		return store.Snapshot{}, err
	}
	return store.Snapshot{Profiles: profiles, Commands: commands}, nil
}
