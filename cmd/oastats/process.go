package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oastats/oastats-go/pkg/oastats"
)

func newProcessCmd(g *globalFlags) *cobra.Command {
	var (
		rf      runFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "process [games.log]",
		Short: "Process new games and print cumulative statistics",
		Long: `Process the games appended to a games.log since the previous run and print
the cumulative statistics.

The log is taken from the argument, the log_path config key, the OASTATS_LOG
environment variable or the newest games.log in the default OpenArena and
Quake 3 directories, in that order.

Examples:
  # Process the auto-detected log
  oastats process

  # Keep snapshots in SQLite and print JSON Lines
  oastats process --store sqlite --format jsonl ~/.openarena/baseoa/games.log

  # Reprocess everything without reading or writing a snapshot
  oastats process --no-cache`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runProcess(ctx, cmd, g, &rf, noCache, args)
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false,
		"Ignore any snapshot and do not save one")

	return cmd
}

func runProcess(ctx context.Context, cmd *cobra.Command, g *globalFlags, rf *runFlags, noCache bool, args []string) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if err := rf.apply(cmd, cfg); err != nil {
		return err
	}
	logger, err := g.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	explicit := cfg.LogPath
	if len(args) > 0 {
		explicit = args[0]
	}
	path, err := oastats.FindLogFile(explicit)
	if err != nil {
		return err
	}
	logger.Debug("processing log", "path", path, "store", cfg.Store.Backend, "no_cache", noCache)

	var st oastats.SnapshotStore
	if !noCache {
		s, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		st = s
	}

	res, err := oastats.Run(ctx, path, st,
		oastats.WithMinPlay(cfg.MinPlay),
		oastats.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	return writeReport(rf.format, newReport(res, cfg.GameTypeLabel), cmd.OutOrStdout())
}
