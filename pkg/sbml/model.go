package sbml

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/kastman/sbml-diff/pkg/diff"
	"github.com/kastman/sbml-diff/pkg/mathml"
)

// Model wraps a parsed document with the lookup indexes the accessor
// methods need. It implements [diff.Model].
type Model struct {
	name string
	doc  *Document

	speciesByID        map[string]*SpeciesEl
	speciesCompartment map[string]string
	reactionByID       map[string]*ReactionEl
	initialValues      map[string]float64
	paramValues        map[string]string
	paramNames         map[string]string
}

// Parse decodes, validates and indexes one SBML document. The name is
// used in legends and table headers.
func Parse(name string, data []byte) (*Model, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	m := &Model{name: name, doc: doc}
	m.reindex()
	return m, nil
}

// reindex rebuilds the lookup maps from the document. Called after
// parsing and after alignment renames elements.
func (m *Model) reindex() {
	m.speciesByID = map[string]*SpeciesEl{}
	m.speciesCompartment = map[string]string{}
	m.reactionByID = map[string]*ReactionEl{}
	m.initialValues = map[string]float64{}
	m.paramValues = map[string]string{}
	m.paramNames = map[string]string{}

	model := m.doc.Model
	declared := map[string]bool{}
	if model.Compartments != nil {
		for _, c := range model.Compartments.Compartments {
			if c.ID != "" {
				declared[c.ID] = true
			}
		}
	}
	if model.Species != nil {
		for i := range model.Species.Species {
			s := &model.Species.Species[i]
			m.speciesByID[s.ID] = s

			// Species with no compartment, or one the document never
			// declares, live in the NONE bucket.
			compartment := s.Compartment
			if !declared[compartment] {
				compartment = diff.NoCompartment
			}
			m.speciesCompartment[s.ID] = compartment

			initial := s.InitialConcentration
			if initial == "" {
				initial = s.InitialAmount
			}
			if v, err := strconv.ParseFloat(initial, 64); err == nil {
				m.initialValues[s.ID] = v
			}
		}
	}
	if model.Reactions != nil {
		for i := range model.Reactions.Reactions {
			r := &model.Reactions.Reactions[i]
			m.reactionByID[r.ID] = r

			if r.KineticLaw != nil && r.KineticLaw.Parameters != nil {
				m.indexParameters(r.KineticLaw.Parameters)
			}
		}
	}
	if model.Parameters != nil {
		m.indexParameters(model.Parameters)
	}
}

func (m *Model) indexParameters(list *ParametersEl) {
	for _, p := range list.Parameters {
		if p.ID == "" {
			continue
		}
		m.paramValues[p.ID] = p.Value
		m.paramNames[p.ID] = p.Name
		if v, err := strconv.ParseFloat(p.Value, 64); err == nil {
			m.initialValues[p.ID] = v
		}
	}
}

// Name returns the model's display name.
func (m *Model) Name() string { return m.name }

// CompartmentIDs returns the declared compartment ids, sorted.
func (m *Model) CompartmentIDs() []string {
	if m.doc.Model.Compartments == nil {
		return nil
	}
	ids := make([]string, 0, len(m.doc.Model.Compartments.Compartments))
	for _, c := range m.doc.Model.Compartments.Compartments {
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// SpeciesIn returns the ids of species in a compartment, sorted.
func (m *Model) SpeciesIn(compartment string) []string {
	var ids []string
	for id, c := range m.speciesCompartment {
		if c == compartment {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// HasSpecies reports whether id names a species.
func (m *Model) HasSpecies(id string) bool {
	_, ok := m.speciesByID[id]
	return ok
}

// SpeciesDisplayName returns the species name, falling back to id.
func (m *Model) SpeciesDisplayName(id string) string {
	if s, ok := m.speciesByID[id]; ok && s.Name != "" {
		return s.Name
	}
	return id
}

// BoundaryCondition returns the boundary flag string as written.
func (m *Model) BoundaryCondition(id string) string {
	if s, ok := m.speciesByID[id]; ok {
		return s.BoundaryCondition
	}
	return ""
}

// ReactionIDs returns every reaction id, sorted.
func (m *Model) ReactionIDs() []string {
	ids := make([]string, 0, len(m.reactionByID))
	for id := range m.reactionByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReactionDetails returns the reaction's facts for the drivers.
func (m *Model) ReactionDetails(id string) (diff.ReactionDetails, bool) {
	r, ok := m.reactionByID[id]
	if !ok {
		return diff.ReactionDetails{}, false
	}

	d := diff.ReactionDetails{
		ID:           id,
		Name:         id,
		Fast:         isTrue(r.Fast),
		Irreversible: isFalse(r.Reversible),
		SBOTerm:      r.SBOTerm,
	}
	if r.Name != "" {
		d.Name = r.Name
	}

	compartment := diff.UnknownCompartment()
	if r.Reactants != nil {
		for _, ref := range r.Reactants.Refs {
			d.Reactants = append(d.Reactants, ref.Species)
			d.ReactantStoich = append(d.ReactantStoich, ref.Stoichiometry)
			compartment = m.foldCompartment(compartment, ref.Species)
		}
	}
	if r.Products != nil {
		for _, ref := range r.Products.Refs {
			d.Products = append(d.Products, ref.Species)
			d.ProductStoich = append(d.ProductStoich, ref.Stoichiometry)
			// A reaction with no reactants is bucketed by its products.
			compartment = m.foldCompartment(compartment, ref.Species)
		}
	}
	if r.Modifiers != nil {
		for _, ref := range r.Modifiers.Refs {
			d.Modifiers = append(d.Modifiers, ref.Species)
		}
	}
	d.Compartment = compartment

	if fragment := rateLawFragment(r); fragment != "" {
		if expr, err := mathml.Parse(fragment); err == nil {
			d.RateLaw = expr.Infix()
			d.RateIdentifiers = m.classifyIdentifiers(expr)
		}
	}

	return d, true
}

// foldCompartment folds one participant species into the compartment
// inference outcome.
func (m *Model) foldCompartment(ref diff.CompartmentRef, species string) diff.CompartmentRef {
	c, ok := m.speciesCompartment[species]
	if !ok || c == diff.NoCompartment {
		// Compartment-less participants do not constrain the reaction.
		return ref
	}
	switch ref.Kind {
	case diff.CompartmentNone:
		return diff.SingleCompartment(c)
	case diff.CompartmentSingle:
		if ref.ID != c {
			return diff.IncompatibleCompartment()
		}
	}
	return ref
}

func rateLawFragment(r *ReactionEl) string {
	if r.KineticLaw == nil {
		return ""
	}
	return strings.TrimSpace(r.KineticLaw.Math.Fragment())
}

// classifyIdentifiers resolves each identifier in an expression to a
// species/parameter reference with its monotonic direction.
func (m *Model) classifyIdentifiers(expr mathml.Expr) []diff.EntityRef {
	names := mathml.Identifiers(expr)
	refs := make([]diff.EntityRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, diff.EntityRef{
			ID:        name,
			IsSpecies: m.HasSpecies(name),
			Direction: mathml.Classify(expr, name, m.initialValues).String(),
		})
	}
	return refs
}

// RuleTargetIDs returns the variables set by rate or assignment rules,
// sorted.
func (m *Model) RuleTargetIDs() []string {
	if m.doc.Model.Rules == nil {
		return nil
	}
	var ids []string
	for _, r := range m.doc.Model.Rules.Assignment {
		if r.Variable != "" {
			ids = append(ids, r.Variable)
		}
	}
	for _, r := range m.doc.Model.Rules.Rate {
		if r.Variable != "" {
			ids = append(ids, r.Variable)
		}
	}
	sort.Strings(ids)
	return ids
}

// RuleDetails returns the rate or assignment rule setting target.
func (m *Model) RuleDetails(target string) (diff.RuleDetails, bool) {
	rule := m.findVariableRule(target)
	if rule == nil {
		return diff.RuleDetails{}, false
	}

	d := diff.RuleDetails{
		Target:          target,
		TargetIsSpecies: m.HasSpecies(target),
		Compartment:     diff.NoCompartment,
	}
	if c, ok := m.speciesCompartment[target]; ok && c != diff.NoCompartment {
		d.Compartment = c
	}

	fragment := strings.TrimSpace(rule.Math.Fragment())
	if fragment != "" {
		if expr, err := mathml.Parse(fragment); err == nil {
			d.RateLaw = expr.Infix()
			d.Entities = m.classifyIdentifiers(expr)
		}
	}
	return d, true
}

func (m *Model) findVariableRule(target string) *VariableRuleEl {
	if m.doc.Model.Rules == nil {
		return nil
	}
	for i := range m.doc.Model.Rules.Assignment {
		if m.doc.Model.Rules.Assignment[i].Variable == target {
			return &m.doc.Model.Rules.Assignment[i]
		}
	}
	for i := range m.doc.Model.Rules.Rate {
		if m.doc.Model.Rules.Rate[i].Variable == target {
			return &m.doc.Model.Rules.Rate[i]
		}
	}
	return nil
}

// AlgebraicRules returns every algebraic rule in document order. Rules
// without a metaid get a deterministic id derived from the species they
// mention.
func (m *Model) AlgebraicRules() []diff.AlgebraicRuleDetails {
	if m.doc.Model.Rules == nil {
		return nil
	}
	var rules []diff.AlgebraicRuleDetails
	for _, r := range m.doc.Model.Rules.Algebraic {
		d := diff.AlgebraicRuleDetails{ID: r.MetaID}

		fragment := strings.TrimSpace(r.Math.Fragment())
		if fragment != "" {
			if expr, err := mathml.Parse(fragment); err == nil {
				d.RateLaw = expr.Infix()
				for _, name := range mathml.Identifiers(expr) {
					if m.HasSpecies(name) {
						d.Species = append(d.Species, name)
					} else {
						d.Params = append(d.Params, name)
					}
				}
			}
		}
		if d.ID == "" {
			d.ID = "algebraicRule_" + contentHash(d.RateLaw+"|"+strings.Join(d.Species, ","))
		}
		rules = append(rules, d)
	}
	return rules
}

// Events returns every event in document order. Events without an id
// get a deterministic content hash covering trigger and assignments.
func (m *Model) Events() []diff.EventDetails {
	if m.doc.Model.Events == nil {
		return nil
	}
	var events []diff.EventDetails
	for _, e := range m.doc.Model.Events.Events {
		d := diff.EventDetails{ID: e.ID, Name: e.Name}

		var triggerExpr mathml.Expr
		if e.Trigger != nil {
			fragment := strings.TrimSpace(e.Trigger.Math.Fragment())
			if fragment != "" {
				if expr, err := mathml.Parse(fragment); err == nil {
					triggerExpr = expr
					d.Trigger = expr.Infix()
				}
			}
		}
		if triggerExpr != nil {
			for _, name := range mathml.Identifiers(triggerExpr) {
				if m.HasSpecies(name) {
					d.TriggerSpecies = append(d.TriggerSpecies, name)
				} else {
					d.TriggerParams = append(d.TriggerParams, name)
				}
			}
		}

		if e.Assignments != nil {
			for _, a := range e.Assignments.Assignments {
				ad := diff.EventAssignmentDetails{
					Target:          a.Variable,
					TargetIsSpecies: m.HasSpecies(a.Variable),
				}
				fragment := strings.TrimSpace(a.Math.Fragment())
				if fragment != "" {
					if expr, err := mathml.Parse(fragment); err == nil {
						ad.Expr = expr.Infix()
						ad.Entities = m.classifyIdentifiers(expr)
					}
				}
				d.Assignments = append(d.Assignments, ad)
			}
		}

		if d.ID == "" {
			d.ID = "event_" + contentHash(eventContent(d))
		}
		events = append(events, d)
	}
	return events
}

// eventContent canonicalizes an event for hashing: trigger plus sorted
// target=expression pairs. Two structurally identical events hash the
// same regardless of model or assignment order.
func eventContent(d diff.EventDetails) string {
	parts := make([]string, 0, len(d.Assignments)+1)
	for _, a := range d.Assignments {
		parts = append(parts, a.Target+"="+a.Expr)
	}
	sort.Strings(parts)
	return d.Trigger + "|" + strings.Join(parts, "|")
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:6])
}

// RegulatoryArrows finds species→reaction interactions in a compartment:
// a kinetic law referencing a species that is not one of the reaction's
// reactants. Reactions in skipReactions are ignored.
func (m *Model) RegulatoryArrows(compartment string, skipReactions map[string]bool) []diff.RegulatoryArrow {
	inCompartment := map[string]bool{}
	for _, id := range m.SpeciesIn(compartment) {
		inCompartment[id] = true
	}

	var arrows []diff.RegulatoryArrow
	for _, reactionID := range m.ReactionIDs() {
		if skipReactions[reactionID] {
			continue
		}
		r := m.reactionByID[reactionID]

		fragment := rateLawFragment(r)
		if fragment == "" {
			continue
		}
		expr, err := mathml.Parse(fragment)
		if err != nil {
			continue
		}

		reactants := map[string]bool{}
		if r.Reactants != nil {
			for _, ref := range r.Reactants.Refs {
				reactants[ref.Species] = true
			}
		}

		for _, name := range mathml.Identifiers(expr) {
			if !inCompartment[name] || reactants[name] {
				continue
			}
			arrows = append(arrows, diff.RegulatoryArrow{
				Source:    name,
				Target:    reactionID,
				Direction: mathml.Classify(expr, name, m.initialValues).String(),
			})
		}
	}
	return arrows
}

// ParameterIDs returns every parameter id, sorted.
func (m *Model) ParameterIDs() []string {
	ids := make([]string, 0, len(m.paramValues))
	for id := range m.paramValues {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ParameterValue returns a parameter's initial value as written.
func (m *Model) ParameterValue(id string) (string, bool) {
	v, ok := m.paramValues[id]
	return v, ok
}

// ParameterDisplayName returns the parameter name, falling back to id.
func (m *Model) ParameterDisplayName(id string) string {
	if name := m.paramNames[id]; name != "" {
		return name
	}
	return id
}

// isTrue reports whether an SBML boolean attribute is set.
func isTrue(v string) bool { return v == "true" || v == "1" }

// isFalse reports whether an SBML boolean attribute is explicitly unset.
// Distinct from !isTrue: an absent attribute is neither.
func isFalse(v string) bool { return v == "false" || v == "0" }
