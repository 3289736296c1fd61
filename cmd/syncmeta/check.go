package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"entity-sync/internal/descriptor"
	"entity-sync/internal/metadata"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var source sourceFlags

	cmd := &cobra.Command{
		Use:     "check",
		GroupID: "metadata",
		Short:   "Validate descriptors and build the catalog",
		Long: `Validate descriptors and build the catalog without writing it.

Diagnostics are listed one per line. The command fails when validation
reports errors or a foreign key cannot be resolved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := source.load(cmd.Context(), root.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			diags := descriptor.Validate(set)
			for _, d := range diags.Errors {
				fmt.Fprintf(out, "error   %s\n", d)
			}

			for _, d := range diags.Warnings {
				fmt.Fprintf(out, "warning %s\n", d)
			}

			if diags.HasErrors() {
				return fmt.Errorf("%d descriptor errors", len(diags.Errors))
			}

			cat, err := metadata.Build(set, metadata.WithLogger(root.logger))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "ok: %d entity types, %d structural types, %d foreign keys\n",
				len(cat.EntityTypes()), len(cat.Types()), len(cat.ForeignKeyMap()))

			return nil
		},
	}

	source.register(cmd)

	return cmd
}
