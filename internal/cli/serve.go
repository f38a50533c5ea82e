package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sshdeck/sshdeck/internal/cloud"
	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/ui"
)

var (
	serveAddrFlag   string
	serveDBFlag     string
	serveMemoryFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync server",
	Long: `Run the cloud sync server that accounts, devices, and configuration
sync talk to.

State lives in a SQLite database; --memory keeps it in RAM for local
experiments. Prometheus metrics are exposed on /metrics.

Examples:
  sshdeck serve
  sshdeck serve --addr :9090 --db /var/lib/sshdeck/sync.db
  sshdeck serve --memory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCommand()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveDBFlag, "db", "", "SQLite database path (default ~/.config/sshdeck/sync.db)")
	serveCmd.Flags().BoolVar(&serveMemoryFlag, "memory", false, "keep state in memory only")
}

func serveCommand() error {
	dsn := serveDBFlag
	switch {
	case serveMemoryFlag:
		dsn = cloud.MemoryDSN
	case dsn == "":
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot locate home directory", "Pass --db explicitly")
		}
		dsn = filepath.Join(home, ".config", "sshdeck", "sync.db")
	}

	db, err := cloud.Open(dsn)
	if err != nil {
		return err
	}

	srv := cloud.NewServer(db, prometheus.DefaultRegisterer)

	fmt.Printf("%s Sync server listening on %s (db: %s)\n", ui.SymbolComplete, serveAddrFlag, dsn)
	if err := http.ListenAndServe(serveAddrFlag, srv); err != nil {
		return errors.WrapWithCode(err, errors.ErrSync,
			"Sync server stopped", "Check that the address is free: "+serveAddrFlag)
	}
	return nil
}
