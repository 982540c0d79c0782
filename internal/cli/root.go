// Package cli implements the gauntlet command line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/me/gauntlet/internal/logging"
	"github.com/me/gauntlet/internal/store"
)

var (
	flagDB        string
	flagLogLevel  string
	flagLogFormat string
	flagDebug     bool

	logger *slog.Logger
)

// defaultDBPath returns the default database location, checking the
// GAUNTLET_DB env var first.
func defaultDBPath() string {
	if p := os.Getenv("GAUNTLET_DB"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "gauntlet.db"
	}
	return filepath.Join(home, ".gauntlet", "gauntlet.db")
}

// openStore opens and migrates the run database.
func openStore() (store.Store, error) {
	path := flagDB
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrating store: %w", err)
	}
	return st, nil
}

// NewRootCmd creates the root cobra command for the gauntlet CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gauntlet",
		Short: "gauntlet: concurrent test scheduler and history recorder",
		Long:  "gauntlet schedules generator-driven operation streams across worker fleets,\nrecords the resulting histories, and reports on them.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagDB, "db", defaultDBPath(), "Run database path (or GAUNTLET_DB env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newListCmd(),
		newShowCmd(),
		newServeCmd(),
	)

	return root
}
