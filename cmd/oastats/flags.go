package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oastats/oastats-go/internal/config"
)

// runFlags are the flags of the commands that process a log. Flags left
// unset keep the configuration file values.
type runFlags struct {
	format        string
	backend       string
	storePath     string
	minPlay       float64
	gameTypeLabel string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "pretty",
		"Output format: jsonl, pretty, yaml")
	cmd.Flags().StringVar(&f.backend, "store", "",
		"Snapshot store: file, sqlite (default from config)")
	cmd.Flags().StringVar(&f.storePath, "store-path", "",
		"Snapshot file or database path (default from config)")
	cmd.Flags().Float64Var(&f.minPlay, "min-play", config.Default().MinPlay,
		"Fraction of a game a player must have played to be counted")
	cmd.Flags().StringVar(&f.gameTypeLabel, "game-type-label", "",
		"Label reported instead of the game type name")
}

// apply overrides cfg with the flags given on the command line and
// validates the result.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if !validFormats[f.format] {
		return fmt.Errorf("invalid format %q: must be jsonl, pretty or yaml", f.format)
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Backend = f.backend
	}
	if flags.Changed("store-path") {
		cfg.Store.Path = f.storePath
	}
	if flags.Changed("min-play") {
		cfg.MinPlay = f.minPlay
	}
	if flags.Changed("game-type-label") {
		cfg.GameTypeLabel = f.gameTypeLabel
	}
	return cfg.Validate()
}
