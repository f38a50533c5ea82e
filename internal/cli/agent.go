package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/deviceid"
	"github.com/sshdeck/sshdeck/internal/session"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the sync agent in the foreground",
	Long: `Keep this device's cloud session alive: heartbeat on an interval so
the device shows as online, and poll for configurations pushed from
other devices, applying them to the local store as they arrive.

Runs until interrupted. Intervals come from the config (heartbeat 2m,
poll 30s by default).

Examples:
  sshdeck agent`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return agentCommand()
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
}

func agentCommand() error {
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

	id := deviceid.ID()
	if err := client.RegisterDevice(id, deviceName(cfg)); err != nil {
		return err
	}

	sess := session.New(client, s, id,
		session.WithIntervals(cfg.Cloud.HeartbeatInterval, cfg.Cloud.PollInterval))
	sess.OnPushApplied = func() {
		fmt.Printf("%s Applied configuration pushed from another device\n", ui.SymbolSuccess)
	}

	sess.Start()
	fmt.Printf("%s Agent running as '%s' (heartbeat %s, poll %s). Ctrl-C to stop.\n",
		ui.SymbolProgress, deviceName(cfg), cfg.Cloud.HeartbeatInterval, cfg.Cloud.PollInterval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Println("\nStopping...")
	sess.Stop()

	// Mark the device offline instead of leaving it to age out.
	if err := client.DeviceLogout(id); err != nil {
		fmt.Printf("%s Could not mark device offline: %v\n", ui.SymbolSkipped, err)
	}
	fmt.Printf("%s Agent stopped\n", ui.SymbolSuccess)
	return nil
}
