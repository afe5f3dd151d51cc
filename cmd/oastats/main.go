// Command oastats computes player statistics from OpenArena and Quake 3
// games.log files.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oastats/oastats-go/internal/config"
	"github.com/oastats/oastats-go/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "oastats",
		Short: "Player statistics from OpenArena games.log files",
		Long: `oastats reads an OpenArena or Quake 3 games.log and reports cumulative
per-player statistics: frags, deaths, wins, weapon usage, awards and more.

Runs are incremental: a snapshot of the totals is kept between runs and only
the lines appended since the previous run are read.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "",
		"config file (default $XDG_CONFIG_HOME/oastats/config.yaml)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(newProcessCmd(g))
	root.AddCommand(newWatchCmd(g))
	root.AddCommand(newInitCmd(g))
	root.AddCommand(newCompletionCmd())

	return root
}

// loadConfig reads the configuration file and validates it.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the text logger written to w. --verbose forces debug.
func (g *globalFlags) newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// openStore opens the snapshot store selected by the configuration.
func openStore(ctx context.Context, cfg *config.Config) (store.SnapshotStore, error) {
	path := cfg.Store.Path
	if cfg.Store.Backend == config.BackendSQLite && path == "" {
		p, err := config.DefaultDatabasePath()
		if err != nil {
			return nil, fmt.Errorf("database path: %w", err)
		}
		path = p
	}
	return store.Open(ctx, cfg.Store.Backend, path)
}
