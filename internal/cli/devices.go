package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/deviceid"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var devicesRemoveYes bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage devices linked to the cloud account",
	Long: `List, push to, and remove the devices registered under the cloud
account.

A device shows as online while it has heartbeated within the last five
minutes and hasn't explicitly logged out.`,
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := cloudClient(cfg)
		if err != nil {
			return err
		}
		devices, err := client.ListDevices()
		if err != nil {
			return err
		}
		fmt.Print(ui.RenderDeviceTable(devices, deviceid.ID()))
		return nil
	},
}

var devicesPushCmd = &cobra.Command{
	Use:   "push <device-id>...",
	Short: "Stage the cloud configuration for other devices",
	Long: `Stage the current cloud configuration for the listed devices. Each
device applies it the next time it polls (the agent polls every 30s by
default). Unknown device ids are skipped.

Examples:
  sshdeck devices push 3f2a9c...
  sshdeck devices push 3f2a9c... 81be07...`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := cloudClient(cfg)
		if err != nil {
			return err
		}
		if err := client.PushToDevices(args); err != nil {
			return err
		}
		fmt.Printf("%s Staged push for %d device(s)\n", ui.SymbolSuccess, len(args))
		return nil
	},
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <device-id>",
	Short: "Remove a device from the account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return devicesRemoveCommand(args[0], devicesRemoveYes)
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd, devicesPushCmd, devicesRemoveCmd)
	devicesRemoveCmd.Flags().BoolVar(&devicesRemoveYes, "yes", false, "skip the confirmation prompt")
}

func devicesRemoveCommand(deviceID string, yes bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := cloudClient(cfg)
	if err != nil {
		return err
	}

	if !yes {
		confirmed, err := ui.Confirm(
			fmt.Sprintf("Remove device %s?", deviceID),
			"It can re-register on its next login.")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := client.RemoveDevice(deviceID); err != nil {
		return err
	}
	fmt.Printf("%s Removed device %s\n", ui.SymbolSuccess, deviceID)
	return nil
}
