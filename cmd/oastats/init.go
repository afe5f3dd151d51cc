package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oastats/oastats-go/internal/config"
	"github.com/oastats/oastats-go/internal/safefile"
)

func newInitCmd(g *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.configPath
			if path == "" {
				path = config.DefaultPath()
			}

			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintln(cmd.OutOrStdout(), "exists", path)
				return nil
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			data, err := yaml.Marshal(config.Default())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := safefile.WriteAtomic(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
