// Package render groups the output renderers for comparison results.
//
// # Overview
//
// A [diff.Result] can be rendered two ways:
//
//   - Network diagrams (in [dot] subpackage)
//   - Text tables (in [tables] subpackage)
//
// # Network Diagrams
//
// The [dot] subpackage emits Graphviz DOT where each element's color encodes
// the subset of models containing it, then rasterizes to SVG or PNG with the
// embedded Graphviz engine.
//
//	text := dot.Generate(result, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, text)
//	png, err := dot.RenderPNG(ctx, text)
//
// # Tables
//
// The [tables] subpackage builds aligned plain-text tables of rate laws and
// parameter values across models, one column per model.
//
//	table, ok := tables.RateLaws(models)
//	table, ok = tables.Parameters(models)
//
// [diff.Result]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/diff#Result
// [dot]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/render/dot
// [tables]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/render/tables
package render
