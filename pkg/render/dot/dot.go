// Package dot renders a finalized diff tree as a Graphviz DOT diagram.
//
// The traversal order is fixed: compartment clusters (species, then
// reactions with their arrows, then rules, then regulatory arrows),
// followed by top-level events and modified-parameter nodes. Element
// colors encode the model set that reported each fact.
package dot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kastman/sbml-diff/pkg/diff"
)

// Reaction label modes.
const (
	LabelName     = "name"
	LabelNone     = "none"
	LabelRate     = "rate"
	LabelNameRate = "name+rate"
)

// defaultColors extends a short user palette using a categorical
// 12-step scheme.
var defaultColors = []string{
	"#FFBF7F", "#FF7F00", "#FFFF99", "#FFFF32", "#B2FF8C", "#32FF00",
	"#A5EDFF", "#19B2FF", "#CCBFFF", "#654CFF", "#FF99BF", "#E51932",
}

// Options configures diagram generation.
type Options struct {
	// Colors assigns one color per model index. Extended from the
	// default categorical palette when shorter than the model count.
	Colors []string

	// ModelNames appear in the legend footer.
	ModelNames []string

	// ReactionLabel selects how reaction nodes are labelled: LabelName
	// (default), LabelNone, LabelRate or LabelNameRate.
	ReactionLabel string

	// SelectedModel, when in [1, N], draws features absent from that
	// model with style invis. Zero selects nothing.
	SelectedModel int

	// ShowStoichiometry labels species/reaction arrows with their
	// stoichiometric coefficients.
	ShowStoichiometry bool

	// RankDir is the graph layout direction (default "TB").
	RankDir string
}

// writer carries the state of one diagram generation pass.
type writer struct {
	buf  bytes.Buffer
	opts Options
	n    int

	// paramsDrawn gates parameter arrows: only parameters with a
	// top-level node are wired into the diagram.
	paramsDrawn map[string]bool
}

// Generate renders the result as a DOT digraph. The tree is only read.
func Generate(result *diff.Result, opts Options) string {
	if opts.ReactionLabel == "" {
		opts.ReactionLabel = LabelName
	}
	if opts.RankDir == "" {
		opts.RankDir = "TB"
	}
	opts.Colors = extendColors(opts.Colors, result.NumModels)

	w := &writer{opts: opts, n: result.NumModels, paramsDrawn: map[string]bool{}}
	for _, entry := range result.Tree.ModifiedParams.Entries() {
		w.paramsDrawn[entry.Key()[0]] = true
	}

	w.header()
	for _, compartment := range result.Tree.Compartments() {
		w.compartment(compartment)
	}
	for _, event := range result.Tree.Events() {
		w.event(event)
	}
	for _, entry := range result.Tree.ModifiedParams.Entries() {
		w.paramNode(entry)
	}
	w.footer()
	return w.buf.String()
}

func extendColors(colors []string, n int) []string {
	out := append([]string(nil), colors...)
	for _, c := range defaultColors {
		if len(out) >= n {
			break
		}
		if !contains(out, c) {
			out = append(out, c)
		}
	}
	// Degenerate fallback when the user palette exhausts the scheme.
	for len(out) < n {
		out = append(out, "black")
	}
	return out
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// color maps a model set to its display color: neutral black for a
// single-model run, the model's color for a singleton set, grey when
// shared by all, black when shared by some.
func (w *writer) color(modelSet []int) string {
	switch {
	case w.n == 1:
		return "black"
	case len(modelSet) == 1:
		return w.opts.Colors[modelSet[0]]
	case len(modelSet) == w.n:
		return "grey"
	default:
		return "black"
	}
}

// style renders the style attribute: bold when the feature is not in
// every model, invis when a selected model lacks it.
func (w *writer) style(modelSet []int, base string) string {
	styles := []string{}
	if w.opts.SelectedModel > 0 && !contains2(modelSet, w.opts.SelectedModel-1) {
		styles = append(styles, "invis")
	} else if len(modelSet) < w.n {
		styles = append(styles, "bold")
	}
	if base != "" {
		styles = append(styles, base)
	}
	if len(styles) == 0 {
		return ""
	}
	return fmt.Sprintf(", style=%q", strings.Join(styles, ","))
}

func contains2(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func arrowhead(direction string) string {
	switch direction {
	case diff.DirectionIncreasing:
		return "vee"
	case diff.DirectionDecreasing:
		return "tee"
	default:
		return "none"
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// comparisonText renders a comparison for use inside a label: the
// shared value, "different" on disagreement, or absent's fallback.
func comparisonText(c diff.Comparison, fallback string) string {
	if c.IsDifferent() {
		return "different"
	}
	return c.StringOr(fallback)
}

func (w *writer) header() {
	fmt.Fprintf(&w.buf, "digraph comparison {\n")
	fmt.Fprintf(&w.buf, "rankdir = %s;\n", w.opts.RankDir)
}

func (w *writer) footer() {
	legends := make([]string, 0, len(w.opts.ModelNames))
	for i, name := range w.opts.ModelNames {
		legends = append(legends, fmt.Sprintf("<font color='%s'>%s</font>", w.color([]int{i}), name))
	}
	fmt.Fprintf(&w.buf, "label=<Files: %s>;\n", strings.Join(legends, ", "))
	fmt.Fprintf(&w.buf, "}\n")
}

func (w *writer) compartment(c *diff.Compartment) {
	clustered := c.ID != diff.NoCompartment
	if clustered {
		fmt.Fprintf(&w.buf, "\nsubgraph cluster_%s {\n", c.ID)
		fmt.Fprintf(&w.buf, "graph[style=dotted];\n")
		fmt.Fprintf(&w.buf, "label=\"%s\";\n", escape(c.ID))
	}

	for _, species := range c.AllSpecies() {
		w.species(species)
	}
	for _, reaction := range c.AllReactions() {
		w.reaction(reaction)
	}
	for _, rule := range c.AllRules() {
		w.rule(rule)
	}
	for _, entry := range c.Regulatory.Entries() {
		w.regulatoryArrow(entry)
	}

	if clustered {
		fmt.Fprintf(&w.buf, "}\n")
	}
}

func (w *writer) species(s *diff.Species) {
	// Elided in every model that contains it: the node disappears from
	// the cartoon entirely.
	if s.Node.Compare(diff.AttrElided).BoolValue() {
		return
	}

	modelSet := s.Node.AllModels()
	name := comparisonText(s.Node.Compare(diff.AttrDisplayName), s.ID)

	boundary := s.Node.Compare(diff.AttrBoundary)
	base, peripheries := "", ""
	if boundary.IsDifferent() {
		base = "dashed"
	} else if strings.EqualFold(boundary.StringOr(""), "true") {
		peripheries = " peripheries=2"
	}

	fmt.Fprintf(&w.buf, "\"%s\" [color=%q,label=%q%s%s];\n",
		s.ID, w.color(modelSet), escape(name), peripheries, w.style(modelSet, base))
}

func (w *writer) reaction(r *diff.Reaction) {
	// One model flagging the reaction as transcription is enough to pick
	// the promoter/CDS glyph. Models without the flag recorded their
	// product arrows under Products, so both renditions appear and each
	// keeps its own model coloring.
	if len(r.Node.FindModels(diff.AttrTranscription, true)) > 0 {
		w.transcriptionReaction(r)
	} else {
		w.plainReaction(r)
	}

	for _, entry := range r.Reactants.Entries() {
		w.stoichArrow(entry, entry.Key()[0], r.ID)
	}
	for _, entry := range r.Parameters.Entries() {
		if !w.paramsDrawn[entry.Key()[0]] {
			continue
		}
		modelSet := entry.Models()
		fmt.Fprintf(&w.buf, "%s -> %s [color=%q%s];\n",
			entry.Key()[0], r.ID, w.color(modelSet), w.style(modelSet, "dashed"))
	}
	for _, entry := range r.Products.Entries() {
		w.stoichArrow(entry, r.ID, entry.Key()[0])
	}
	for _, entry := range r.TranscriptionProducts.Entries() {
		product := entry.Key()[0]
		w.stoichArrow(entry, fmt.Sprintf("cds_%s_%s", r.ID, product), product)
	}
}

// stoichArrow draws a species/reaction arrow labelled with its
// stoichiometric coefficient. Disagreeing coefficients render as a red
// "?" on a black arrow.
func (w *writer) stoichArrow(entry *diff.Entry, from, to string) {
	modelSet := entry.Models()
	color := w.color(modelSet)

	stoich := entry.Compare(diff.AttrStoich)
	value := stoich.StringOr("?")

	label := ""
	if w.opts.ShowStoichiometry || stoich.IsDifferent() {
		label = fmt.Sprintf(", headlabel=%q, labelfontcolor=red", value)
	}
	if stoich.IsDifferent() {
		color = "black"
	}

	fmt.Fprintf(&w.buf, "%s -> %s [color=%q%s%s];\n", from, to, color, label, w.style(modelSet, ""))
}

func (w *writer) plainReaction(r *diff.Reaction) {
	modelSet := r.Node.AllModels()

	rateLaw := r.Node.Compare(diff.AttrRateLaw)
	base := ""
	if rateLaw.IsDifferent() {
		base = "dashed"
	}

	label := w.reactionLabel(r, rateLaw)
	label = w.reactionMarkers(label,
		r.Node.FindModels(diff.AttrIrreversible, true),
		r.Node.FindModels(diff.AttrFast, true))

	fmt.Fprintf(&w.buf, "%s [shape=\"rectangle\", color=%q, label=%s%s];\n",
		r.ID, w.color(modelSet), label, w.style(modelSet, base))
}

// reactionLabel resolves the label text per the configured mode.
func (w *writer) reactionLabel(r *diff.Reaction, rateLaw diff.Comparison) string {
	name := comparisonText(r.Node.Compare(diff.AttrDisplayName), r.ID)
	rate := comparisonText(rateLaw, "")

	switch w.opts.ReactionLabel {
	case LabelNone:
		return ""
	case LabelRate:
		return rate
	case LabelNameRate:
		return name + "<br/>" + rate
	default:
		return name
	}
}

// reactionMarkers appends colored IR/F markers for irreversible and
// fast reactions, and wraps the label as an HTML-like string.
func (w *writer) reactionMarkers(label string, irreversible, fast []int) string {
	var markers []string
	if len(irreversible) > 0 {
		markers = append(markers, fmt.Sprintf("<font color='%s'>IR</font>", w.color(irreversible)))
	}
	if len(fast) > 0 {
		markers = append(markers, fmt.Sprintf("<font color='%s'>F</font>", w.color(fast)))
	}

	if len(markers) > 0 {
		return fmt.Sprintf("<%s<br/>(%s)>", escape(label), strings.Join(markers, ","))
	}
	if label == "" {
		return `""`
	}
	return fmt.Sprintf("<%s>", escape(label))
}

// transcriptionReaction draws the cartoon promoter/CDS glyph cluster:
// a promoter node for the reaction and one CDS block per transcription
// product, each colored by its own model set.
func (w *writer) transcriptionReaction(r *diff.Reaction) {
	modelSet := r.Node.AllModels()

	rateLaw := r.Node.Compare(diff.AttrRateLaw)
	base := ""
	if rateLaw.IsDifferent() {
		base = "dashed"
	}

	products := r.TranscriptionProducts.Entries()

	fmt.Fprintf(&w.buf, "subgraph cluster_%s {\n", r.ID)
	fmt.Fprintf(&w.buf, "label=%q;\n", escape(w.reactionLabel(r, rateLaw)))
	if s := w.style(modelSet, base); s != "" {
		fmt.Fprintf(&w.buf, "%s;\n", strings.TrimPrefix(s, ", "))
	}
	fmt.Fprintf(&w.buf, "color=%q;\n", w.color(modelSet))

	for _, entry := range products {
		fmt.Fprintf(&w.buf, "cds_%s_%s [fillcolor=%q, style=filled, color=\"black\", shape=\"cds\", label=\"\"];\n",
			r.ID, entry.Key()[0], w.color(entry.Models()))
	}

	fmt.Fprintf(&w.buf, "%s [shape=promoter, label=\"\"];\n", r.ID)
	if len(products) > 0 {
		fmt.Fprintf(&w.buf, "%s -> cds_%s_%s [arrowhead=\"none\"];\n", r.ID, r.ID, products[0].Key()[0])
	}
	for i := 1; i < len(products); i++ {
		fmt.Fprintf(&w.buf, "cds_%s_%s -> cds_%s_%s;\n",
			r.ID, products[i-1].Key()[0], r.ID, products[i].Key()[0])
	}
	fmt.Fprintf(&w.buf, "}\n")
}

func (w *writer) rule(r *diff.Rule) {
	w.ruleNode("rule_"+r.ID, r.Node.AllModels(), r.Node.Compare(diff.AttrRateLaw))

	for _, entry := range r.Algebraic.Entries() {
		modelSet := entry.Models()
		fmt.Fprintf(&w.buf, "rule_%s -> %s [color=%q, dir=\"none\"%s];\n",
			r.ID, entry.Key()[0], w.color(modelSet), w.style(modelSet, ""))
	}
	for _, entry := range r.Modifiers.Entries() {
		w.modifierArrow(entry.Key()[0], "rule_"+r.ID, entry)
	}
	for _, entry := range r.Targets.Entries() {
		modelSet := entry.Models()
		fmt.Fprintf(&w.buf, "rule_%s -> %s [color=%q, style=\"dotted\"%s];\n",
			r.ID, entry.Key()[0], w.color(modelSet), w.style(modelSet, ""))
	}
	for _, entry := range r.Parameters.Entries() {
		if !w.paramsDrawn[entry.Key()[0]] {
			continue
		}
		w.modifierArrow(entry.Key()[0], "rule_"+r.ID, entry)
	}
}

// ruleNode draws the parallelogram shared by rules and event
// assignments; a grey fill marks a disagreeing expression.
func (w *writer) ruleNode(nodeID string, modelSet []int, rateLaw diff.Comparison) {
	fill, base := "", ""
	if rateLaw.IsDifferent() {
		fill = "fillcolor=\"grey\", "
		base = "filled"
	}

	label := ""
	if w.opts.ReactionLabel == LabelRate || w.opts.ReactionLabel == LabelNameRate {
		label = comparisonText(rateLaw, "")
	}

	fmt.Fprintf(&w.buf, "%s [shape=\"parallelogram\", color=%q, %slabel=%q%s];\n",
		nodeID, w.color(modelSet), fill, escape(label), w.style(modelSet, base))
}

// modifierArrow draws a dashed influence arrow whose head encodes the
// monotonic direction stored in the entry key.
func (w *writer) modifierArrow(from, to string, entry *diff.Entry) {
	modelSet := entry.Models()
	direction := ""
	if parts := entry.Key(); len(parts) > 1 {
		direction = parts[1]
	}
	fmt.Fprintf(&w.buf, "%s -> %s [color=%q, arrowhead=%q%s];\n",
		from, to, w.color(modelSet), arrowhead(direction), w.style(modelSet, "dashed"))
}

func (w *writer) regulatoryArrow(entry *diff.Entry) {
	modelSet := entry.Models()
	key := entry.Key()
	fmt.Fprintf(&w.buf, "\"%s\" -> \"%s\" [color=%q, arrowhead=%q%s];\n",
		key[0], key[1], w.color(modelSet), arrowhead(key[2]), w.style(modelSet, "dashed"))
}

func (w *writer) event(e *diff.Event) {
	assignments := e.Assignments()

	for _, entry := range e.TriggerParams.Entries() {
		if w.paramsDrawn[entry.Key()[0]] {
			w.triggerArrow(entry.Key()[0], e.ID, entry.Models())
		}
	}

	// One assignment renders inline; several get their own cluster with
	// per-assignment expression nodes.
	if len(assignments) < 2 {
		w.eventNode(e)
		for _, entry := range e.TriggerSpecies.Entries() {
			w.triggerArrow(entry.Key()[0], e.ID, entry.Models())
		}
		for _, assignment := range assignments {
			modelSet := assignment.Expr.AllModels()
			fmt.Fprintf(&w.buf, "\"%s\" -> %s [color=%q];\n", e.ID, assignment.Target, w.color(modelSet))

			for _, entry := range assignment.AffectSpecies.Entries() {
				w.affectArrow(entry.Key(), e.ID, entry.Models())
			}
			for _, entry := range assignment.AffectParams.Entries() {
				if w.paramsDrawn[entry.Key()[0]] {
					w.affectArrow(entry.Key(), e.ID, entry.Models())
				}
			}
		}
		return
	}

	fmt.Fprintf(&w.buf, "subgraph cluster_event_%s {\n", e.ID)
	w.eventNode(e)
	for _, entry := range e.TriggerSpecies.Entries() {
		w.triggerArrow(entry.Key()[0], e.ID, entry.Models())
	}

	for _, assignment := range assignments {
		nodeID := fmt.Sprintf("rule_%s_%s", e.ID, assignment.Target)
		modelSet := assignment.Expr.AllModels()
		expr := assignment.Expr.Compare(diff.AttrExpr)

		w.ruleNode(nodeID, modelSet, expr)
		fmt.Fprintf(&w.buf, "%s -> \"%s\" [color=%q, style=\"dotted\"%s];\n",
			nodeID, assignment.Target, w.color(modelSet), w.style(modelSet, ""))

		for _, entry := range assignment.AffectSpecies.Entries() {
			w.modifierArrow(entry.Key()[0], nodeID, entry)
		}
		for _, entry := range assignment.AffectParams.Entries() {
			if w.paramsDrawn[entry.Key()[0]] {
				w.modifierArrow(entry.Key()[0], nodeID, entry)
			}
		}
	}
	fmt.Fprintf(&w.buf, "}\n")
}

func (w *writer) eventNode(e *diff.Event) {
	modelSet := e.Node.AllModels()

	trigger := e.Node.Compare(diff.AttrTrigger)
	base := ""
	if trigger.IsDifferent() {
		base = "dashed"
	}

	name := comparisonText(e.Node.Compare(diff.AttrDisplayName), e.ID)
	switch w.opts.ReactionLabel {
	case LabelNone:
		name = ""
	case LabelRate:
		name = comparisonText(trigger, "")
	case LabelNameRate:
		name = name + "\\n" + comparisonText(trigger, "")
	}

	fmt.Fprintf(&w.buf, "\"%s\" [label=%q, shape=\"diamond\", color=%q%s];\n",
		e.ID, escape(name), w.color(modelSet), w.style(modelSet, base))
}

func (w *writer) triggerArrow(source, eventID string, modelSet []int) {
	fmt.Fprintf(&w.buf, "\"%s\" -> \"%s\" [arrowhead=\"odot\", color=%q, style=\"dashed\"];\n",
		source, eventID, w.color(modelSet))
}

func (w *writer) affectArrow(key []string, eventID string, modelSet []int) {
	direction := ""
	if len(key) > 1 {
		direction = key[1]
	}
	fmt.Fprintf(&w.buf, "%s -> \"%s\" [color=%q, arrowhead=%q, style=\"dashed\"];\n",
		key[0], eventID, w.color(modelSet), arrowhead(direction))
}

func (w *writer) paramNode(entry *diff.Entry) {
	modelSet := entry.Models()
	name := comparisonText(entry.Compare(diff.AttrDisplayName), entry.Key()[0])
	fmt.Fprintf(&w.buf, "%s [label=%q, shape=none, color=%q];\n",
		entry.Key()[0], escape(name), w.color(modelSet))
}
