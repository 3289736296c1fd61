package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"entity-sync/internal/analyze"
	"entity-sync/internal/descriptor"
	"entity-sync/internal/ormschema"
	"entity-sync/northwind"
)

const defaultNamespace = "Northwind.Model"

// sourceFlags selects where descriptors come from. Exactly one of
// descriptor, pkg or sample is set.
type sourceFlags struct {
	descriptor string
	pkg        string
	sample     bool
	namespace  string
	dir        string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.descriptor, "descriptor", "d", "", "descriptor YAML file")
	flags.StringVarP(&f.pkg, "package", "p", "", "Go package with gorm models, read from source")
	flags.BoolVar(&f.sample, "sample", false, "use the built-in northwind models")
	flags.StringVarP(&f.namespace, "namespace", "n", defaultNamespace, "namespace for types derived from models")
	flags.StringVar(&f.dir, "dir", "", "directory relative package patterns resolve against")

	cmd.MarkFlagsMutuallyExclusive("descriptor", "package", "sample")
	cmd.MarkFlagsOneRequired("descriptor", "package", "sample")
}

func (f *sourceFlags) load(ctx context.Context, logger *slog.Logger) (*descriptor.MappingSet, error) {
	switch {
	case f.descriptor != "":
		return descriptor.LoadFile(f.descriptor)

	case f.pkg != "":
		analyzer := analyze.NewAnalyzer(analyze.WithDir(f.dir))

		paths, err := analyzer.LoadPackages(ctx, f.pkg)
		if err != nil {
			return nil, err
		}

		if len(paths) != 1 {
			return nil, fmt.Errorf("pattern %q matched %d packages, want one", f.pkg, len(paths))
		}

		return analyze.NewDescriber(analyzer.Graph(), f.namespace, analyze.WithLogger(logger)).Describe(paths[0])

	case f.sample:
		return ormschema.New(f.namespace, ormschema.WithLogger(logger)).Describe(northwind.Models()...)

	default:
		return nil, errors.New("no descriptor source given")
	}
}

// output opens the -o target, or stdout when it is empty.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return f, f.Close, nil
}
