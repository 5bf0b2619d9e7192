// Package pkg provides the core libraries for comparing SBML reaction networks.
//
// # Overview
//
// sbml-diff compares any number of SBML documents and reports, per model
// element, which models contain it and whether its attributes agree. The pkg
// directory is organized into four main areas:
//
//  1. [sbml], [mathml] - Document parsing (SBML structure, kinetic-law math)
//  2. [diff], [align] - Comparison logic (element accumulation, annotation alignment)
//  3. [render/dot], [render/tables] - Output generation (Graphviz diagrams, text tables)
//  4. [pipeline], [cache] - Orchestration and result caching
//
// # Architecture
//
// The typical data flow:
//
//	SBML documents
//	         ↓
//	    [sbml] package (parse models, extract kinetic laws via [mathml])
//	         ↓
//	    [align] package (optional: unify species IDs by MIRIAM annotation)
//	         ↓
//	    [diff] package (accumulate per-element model subsets, compare attributes)
//	         ↓
//	    [render/dot] / [render/tables] (DOT, SVG, PNG, rate-law and parameter tables)
//
// # Quick Start
//
// Parse two models and render their differences as DOT:
//
//	import (
//	    "github.com/kastman/sbml-diff/pkg/diff"
//	    "github.com/kastman/sbml-diff/pkg/render/dot"
//	    "github.com/kastman/sbml-diff/pkg/sbml"
//	)
//
//	a, _ := sbml.Parse("wild_type.xml", wildType)
//	b, _ := sbml.Parse("mutant.xml", mutant)
//
//	result, _ := diff.Compare([]diff.Model{a, b}, diff.Options{})
//	text := dot.Generate(result, dot.Options{})
//
// # Main Packages
//
// [sbml] - SBML level 2/3 parsing into a comparable model: compartments,
// species, reactions, rules, events, parameters, and MIRIAM annotations.
// Species and reactions can be renamed in place, which [align] uses to give
// equivalent elements the same ID across documents.
//
// [mathml] - A small MathML content parser with deterministic infix
// printing, numeric evaluation, and monotonicity classification. The diff
// engine uses the classification to label regulatory arrows as activating
// or inhibiting.
//
// [diff] - The comparison engine. Elements are gathered into a [diff.Tree]
// of records keyed by compartment; each record tracks which models contain
// the element and what attribute values each model reported. Options control
// cartoon elision (hiding mRNA intermediates), parameter display, and rule
// hiding.
//
// [align] - Cross-document species and reaction alignment driven by
// bqbiol:is annotations. Models annotated with the same resource URI are
// renamed to a shared canonical ID before comparison.
//
// [render/dot] - DOT generation from a comparison result, plus SVG and PNG
// rasterization through the embedded Graphviz engine.
//
// [render/tables] - Plain-text rate-law and parameter tables listing each
// element's value per model.
//
// [pipeline] - The complete compare pipeline (parse → align → diff → render)
// used by CLI and server. Rendered diagrams are cached by document content
// hash through [cache].
//
// [cache] - Cache backends: filesystem for the CLI, Redis for the server,
// and a null cache for tests.
//
// [errors] - Coded errors shared by the server and CLI, including document
// name validation.
//
// [observability] - Optional hooks invoked around pipeline phases and cache
// operations.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/diff/...      # Specific package
//
// [sbml]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/sbml
// [mathml]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/mathml
// [diff]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/diff
// [align]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/align
// [render/dot]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/render/dot
// [render/tables]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/render/tables
// [pipeline]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/cache
// [errors]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/errors
// [observability]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/buildinfo
// [diff.Tree]: https://pkg.go.dev/github.com/kastman/sbml-diff/pkg/diff#Tree
package pkg
