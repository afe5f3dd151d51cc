package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oastats/oastats-go/pkg/oastats"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	var (
		rf   runFlags
		poll bool
	)

	cmd := &cobra.Command{
		Use:   "watch [games.log]",
		Short: "Update statistics every time a game ends",
		Long: `Follow a live games.log. The log is processed once at start and again
every time a game shuts down; each run prints the cumulative statistics.

Examples:
  # Print a JSON Lines report after every game
  oastats watch --format jsonl

  # Poll instead of using filesystem notifications (NFS, containers)
  oastats watch --poll /srv/openarena/baseoa/games.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, g, &rf, poll, args)
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&poll, "poll", false, "Poll the log instead of using filesystem notifications")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, g *globalFlags, rf *runFlags, poll bool, args []string) error {
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

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	watcher, err := oastats.NewWatcher(path, st,
		oastats.WithMinPlay(cfg.MinPlay),
		oastats.WithLogger(logger),
		oastats.WithPolling(poll),
	)
	if err != nil {
		return err
	}
	defer watcher.Close()

	results, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("watching log", "path", path)

	out := cmd.OutOrStdout()
	for {
		select {
		case res, ok := <-results:
			if !ok {
				return nil
			}
			if err := writeReport(rf.format, newReport(res, cfg.GameTypeLabel), out); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			var we *oastats.WatchError
			if errors.As(err, &we) && we.Op == oastats.WatchOpTail {
				return err
			}
			logger.Warn("run failed", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}
