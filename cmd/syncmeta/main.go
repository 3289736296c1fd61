// Package main provides the syncmeta CLI.
//
// syncmeta works with the metadata side of entity synchronization:
//   - describe: derive mapping descriptors from gorm models
//   - check: validate descriptors and build the catalog
//   - catalog: write the metadata document clients load
//   - send: post a prepared save bundle and report the outcome
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "syncmeta",
		Short:         "Metadata catalog and save bundle tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}

			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	cmd.AddGroup(
		&cobra.Group{ID: "metadata", Title: "Metadata:"},
		&cobra.Group{ID: "save", Title: "Saving:"},
	)

	cmd.AddCommand(
		newDescribeCmd(opts),
		newCheckCmd(opts),
		newCatalogCmd(opts),
		newSendCmd(opts),
	)

	return cmd
}
