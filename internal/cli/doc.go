// Package cli implements the sshdeck command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to the internal packages for the actual work:
//
//   - Command definitions (cobra.Command instances)
//   - Local state (internal/store), remote execution (internal/exec)
//   - Cloud sync (internal/syncer) and the sync server (internal/cloud)
//
// # Command Structure
//
// The root command is "sshdeck" with subcommands for different operations:
//
//	sshdeck init                 - Create the config file and data dir
//	sshdeck profile ...          - Manage SSH connection profiles
//	sshdeck cmd ...              - Manage saved commands
//	sshdeck run [title]          - Run a saved command over SSH
//	sshdeck register/login/logout - Cloud account and device session
//	sshdeck sync push|pull|status - Whole-document configuration sync
//	sshdeck devices ...          - Inspect and push to registered devices
//	sshdeck agent                - Run heartbeat and pending-push timers
//	sshdeck serve                - Run the sync server
//	sshdeck doctor               - Diagnose the local setup
//
// # Flag Handling
//
// Global flags (--config, --no-color) are defined on the root command and
// available to all subcommands. Command-specific flags are defined next to
// their command. Destructive operations (sync push, profile remove, device
// remove) prompt for confirmation unless --yes is given.
package cli
