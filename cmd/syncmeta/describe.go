package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"entity-sync/internal/descriptor"
)

func newDescribeCmd(root *rootOptions) *cobra.Command {
	var (
		source sourceFlags
		out    string
	)

	cmd := &cobra.Command{
		Use:     "describe",
		GroupID: "metadata",
		Short:   "Derive mapping descriptors from gorm models",
		Long: `Derive mapping descriptors from gorm models and write them as YAML.

With --package the models are read from source; with --sample the built-in
northwind models are parsed by gorm itself. The output can be edited and
fed back through --descriptor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := source.load(cmd.Context(), root.logger)
			if err != nil {
				return err
			}

			data, err := descriptor.Marshal(set)
			if err != nil {
				return fmt.Errorf("failed to marshal descriptors: %w", err)
			}

			w, done, err := output(cmd, out)
			if err != nil {
				return err
			}

			if _, err := w.Write(data); err != nil {
				_ = done()
				return fmt.Errorf("failed to write descriptors: %w", err)
			}

			return done()
		},
	}

	source.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")

	return cmd
}
