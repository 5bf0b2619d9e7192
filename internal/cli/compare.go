package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kastman/sbml-diff/pkg/observability"
	"github.com/kastman/sbml-diff/pkg/pipeline"
)

// compareOpts holds the command-line flags for the compare command.
type compareOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: "dot", "svg", "png", "txt"
	cartoon     bool     // apply the cartoon elision heuristic
	showParams  bool     // draw modified parameters and their arrows
	hideRules   bool     // omit rate and assignment rules
	align       bool     // align elements by annotation before comparing
	colors      []string // per-model diagram colors
	label       string   // reaction label mode
	selected    int      // 1-based model to highlight; others drawn invisible
	stoich      bool     // label arrows with stoichiometric coefficients
	rankdir     string   // layout direction
	interactive bool     // pick the highlighted model interactively
	noCache     bool     // disable the artifact cache
	refresh     bool     // bypass cached renders
	configPath  string   // explicit config file
}

// newCompareCmd creates the compare command for diffing model files.
func newCompareCmd() *cobra.Command {
	var formatsStr, colorsStr string
	opts := compareOpts{}

	cmd := &cobra.Command{
		Use:   "compare <model.xml> [model.xml...]",
		Short: "Compare model documents and draw a combined diagram",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			opts.colors = parseColors(colorsStr)
			return runCompare(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot (default), svg, png, txt (comma-separated)")
	cmd.Flags().BoolVar(&opts.cartoon, "cartoon", false, "elide intermediates and draw genetic glyphs")
	cmd.Flags().BoolVar(&opts.showParams, "params", false, "show modified parameters")
	cmd.Flags().BoolVar(&opts.hideRules, "hide-rules", false, "omit rate and assignment rules")
	cmd.Flags().BoolVar(&opts.align, "align", false, "align elements by annotation before comparing")
	cmd.Flags().StringVar(&colorsStr, "colors", "", "per-model colors (comma-separated)")
	cmd.Flags().StringVar(&opts.label, "label", "", "reaction label mode: name (default), none, rate, name+rate")
	cmd.Flags().IntVar(&opts.selected, "select", 0, "highlight one model (1-based); features it lacks are hidden")
	cmd.Flags().BoolVar(&opts.stoich, "stoich", false, "label arrows with stoichiometric coefficients")
	cmd.Flags().StringVar(&opts.rankdir, "rankdir", "", "layout direction: TB (default), LR, BT, RL")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the highlighted model interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/sbml-diff/sbml-diff.toml)")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["dot"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDOT}
	}
	return strings.Split(s, ",")
}

// parseColors parses the --colors flag into a slice of colors.
func parseColors(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// pipelineOptions merges the config file with the command flags. Flags
// win when set.
func pipelineOptions(cfg Config, opts *compareOpts) pipeline.Options {
	colors := cfg.Colors
	if len(opts.colors) > 0 {
		colors = opts.colors
	}
	label := cfg.ReactionLabel
	if opts.label != "" {
		label = opts.label
	}
	rankdir := cfg.RankDir
	if opts.rankdir != "" {
		rankdir = opts.rankdir
	}

	return pipeline.Options{
		Cartoon:           opts.cartoon,
		ShowParams:        opts.showParams,
		HideRules:         opts.hideRules,
		Align:             opts.align,
		Formats:           opts.formats,
		Colors:            colors,
		ReactionLabel:     label,
		SelectedModel:     opts.selected,
		ShowStoichiometry: opts.stoich,
		RankDir:           rankdir,
		Refresh:           opts.refresh,
	}
}

// runCompare reads the input models, runs the pipeline, and writes one
// file per requested format.
func runCompare(ctx context.Context, paths []string, opts *compareOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	docs, err := readDocuments(paths)
	if err != nil {
		return err
	}

	if opts.interactive {
		selected, err := selectModel(docNames(docs))
		if err != nil {
			return err
		}
		opts.selected = selected
	}

	prog := newProgress(logger)
	sp := startSpinner(ctx, "Reading documents")
	observability.SetPipelineHooks(spinnerHooks{spinner: sp})
	defer observability.Reset()

	runner := newRunner(ctx, cfg, opts.noCache)
	result, err := runner.Execute(ctx, docs, pipelineOptions(cfg, opts))
	sp.stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compared %d models", len(docs)))

	printStats(len(docs), result.Comparison.HasDifferences, result.CacheInfo.RenderHit)
	if result.Renamed > 0 {
		printDetail("aligned %d elements by annotation", result.Renamed)
	}

	return writeArtifacts(paths[0], result.Artifacts, opts)
}

func docNames(docs []pipeline.Document) []string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names
}

// writeArtifacts writes each rendered format. A single DOT artifact
// with no --output goes to stdout so the command composes with the
// Graphviz tools.
func writeArtifacts(firstInput string, artifacts map[string][]byte, opts *compareOpts) error {
	if len(opts.formats) == 1 {
		format := opts.formats[0]
		data := artifacts[format]

		if opts.output == "" && (format == pipeline.FormatDOT || format == pipeline.FormatTables) {
			_, err := os.Stdout.Write(data)
			return err
		}

		path := opts.output
		if path == "" {
			path = basePath("", firstInput) + "." + format
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		printFile(path)
		return nil
	}

	base := basePath(opts.output, firstInput)
	for _, format := range opts.formats {
		path := base + "." + format
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path from the output and input file
// paths, stripping a known format extension if present.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
