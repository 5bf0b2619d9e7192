package cli

import (
	"context"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kastman/sbml-diff/pkg/buildinfo"
	"github.com/kastman/sbml-diff/pkg/cache"
	"github.com/kastman/sbml-diff/pkg/pipeline"
)

// Execute runs the sbml-diff CLI and returns an error if any command
// fails. This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext. The passed context cancels in-flight work on
// SIGINT/SIGTERM.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "sbml-diff",
		Short:        "sbml-diff visualizes differences between reaction network models",
		Long:         `sbml-diff compares two or more SBML documents and draws a combined network diagram in which color encodes which models contain each species, reaction, rule or event.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newCompareCmd())
	root.AddCommand(newTablesCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

// newRunner creates a pipeline runner backed by the file cache, or the
// null cache when caching is disabled.
func newRunner(ctx context.Context, cfg Config, noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(newFileCache(cfg, noCache), loggerFromContext(ctx))
}

func newFileCache(cfg Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

// readDocuments loads the model files given on the command line.
func readDocuments(paths []string) ([]pipeline.Document, error) {
	docs := make([]pipeline.Document, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs[i] = pipeline.Document{Name: filepath.Base(path), Data: data}
	}
	return docs, nil
}
