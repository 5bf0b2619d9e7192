package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kastman/sbml-diff/pkg/align"
	"github.com/kastman/sbml-diff/pkg/cache"
	"github.com/kastman/sbml-diff/pkg/diff"
	"github.com/kastman/sbml-diff/pkg/observability"
	"github.com/kastman/sbml-diff/pkg/render/dot"
	"github.com/kastman/sbml-diff/pkg/render/tables"
	"github.com/kastman/sbml-diff/pkg/sbml"
)

// Document is one input model file.
type Document struct {
	Name string
	Data []byte
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Comparison is the accumulated diff.
	Comparison *diff.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Renamed counts species/reaction ids rewritten by alignment.
	Renamed int

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks whether rendered artifacts came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ParseTime   time.Duration
	CompareTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool
}

// Runner executes the comparison pipeline with artifact caching. It is
// stateless apart from the cache and logger, so one Runner serves
// concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil
// logger falls back to the default.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute parses the documents, optionally aligns them by annotation,
// compares them, and renders the requested formats.
func (r *Runner) Execute(ctx context.Context, docs []Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	parseStart := time.Now()
	observability.Pipeline().OnParseStart(ctx, len(docs))
	models, err := parseAll(docs)
	result.Stats.ParseTime = time.Since(parseStart)
	observability.Pipeline().OnParseComplete(ctx, len(docs), result.Stats.ParseTime, err)
	if err != nil {
		return nil, err
	}

	if opts.Align {
		result.Renamed = align.Models(models)
		if result.Renamed > 0 {
			logger.Info("aligned models by annotation", "renamed", result.Renamed)
		}
	}

	compareStart := time.Now()
	observability.Pipeline().OnCompareStart(ctx, len(models))
	comparison, err := diff.Compare(asDiffModels(models), diff.Options{
		Cartoon:    opts.Cartoon,
		ShowParams: opts.ShowParams,
		HideRules:  opts.HideRules,
	})
	result.Stats.CompareTime = time.Since(compareStart)
	hasDiffs := err == nil && comparison.HasDifferences
	observability.Pipeline().OnCompareComplete(ctx, len(models), hasDiffs, result.Stats.CompareTime, err)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	result.Comparison = comparison

	logger.Info("compared models",
		"models", len(models),
		"differences", comparison.HasDifferences,
		"duration", result.Stats.CompareTime)

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	err = r.render(ctx, docs, models, comparison, opts, result)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", result.CacheInfo.RenderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

func parseAll(docs []Document) ([]*sbml.Model, error) {
	if len(docs) == 0 {
		return nil, diff.ErrNoModels
	}
	models := make([]*sbml.Model, len(docs))
	for i, doc := range docs {
		m, err := sbml.Parse(doc.Name, doc.Data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", doc.Name, err)
		}
		models[i] = m
	}
	return models, nil
}

func asDiffModels(models []*sbml.Model) []diff.Model {
	out := make([]diff.Model, len(models))
	for i, m := range models {
		out[i] = m
	}
	return out
}

// render produces each requested format. The DOT text is generated
// once; SVG and PNG layouts go through the artifact cache keyed by the
// document hashes and the option fingerprint.
func (r *Runner) render(ctx context.Context, docs []Document, models []*sbml.Model, comparison *diff.Result, opts Options, result *Result) error {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name()
	}

	dotText := dot.Generate(comparison, dot.Options{
		Colors:            opts.Colors,
		ModelNames:        names,
		ReactionLabel:     opts.ReactionLabel,
		SelectedModel:     opts.SelectedModel,
		ShowStoichiometry: opts.ShowStoichiometry,
		RankDir:           opts.RankDir,
	})

	hashes := make([]string, len(docs))
	for i, doc := range docs {
		hashes[i] = cache.Hash(doc.Data)
	}

	allHit := true
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			result.Artifacts[FormatDOT] = []byte(dotText)
		case FormatTables:
			rateLaws, _ := tables.RateLaws(asDiffModels(models))
			params, _ := tables.Parameters(asDiffModels(models))
			result.Artifacts[FormatTables] = []byte(rateLaws + "\n" + params)
		case FormatSVG, FormatPNG:
			data, hit, err := r.renderGraphviz(ctx, format, dotText, hashes, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			result.Artifacts[format] = data
			allHit = allHit && hit
		}
	}
	result.CacheInfo.RenderHit = allHit
	return nil
}

func (r *Runner) renderGraphviz(ctx context.Context, format, dotText string, hashes []string, opts Options) ([]byte, bool, error) {
	key := cache.DiagramKey(hashes, format, opts.cacheFingerprint())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, format)
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, format)
	}

	var data []byte
	var err error
	switch format {
	case FormatSVG:
		data, err = dot.RenderSVG(ctx, dotText)
	case FormatPNG:
		data, err = dot.RenderPNG(ctx, dotText)
	}
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, 0); err != nil {
		r.Logger.Warn("artifact cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
	return data, false, nil
}
