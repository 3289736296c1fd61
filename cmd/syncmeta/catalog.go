package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"entity-sync/internal/metadata"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	var (
		source sourceFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:     "catalog",
		GroupID: "metadata",
		Short:   "Build the metadata document clients load",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := source.load(cmd.Context(), root.logger)
			if err != nil {
				return err
			}

			cat, err := metadata.Build(set, metadata.WithLogger(root.logger))
			if err != nil {
				return err
			}

			data, err := encodeCatalog(cat, format)
			if err != nil {
				return err
			}

			w, done, err := output(cmd, out)
			if err != nil {
				return err
			}

			if _, err := w.Write(data); err != nil {
				_ = done()
				return fmt.Errorf("failed to write catalog: %w", err)
			}

			return done()
		},
	}

	source.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")

	return cmd
}

func encodeCatalog(cat *metadata.Catalog, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cat, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}

		return append(data, '\n'), nil

	case "yaml", "yml":
		data, err := yaml.Marshal(cat)
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}

		return data, nil

	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
