package diff

import "sort"

// Attribute names used across the node and arrow records. Shared
// between the drivers that write them and the render layers that
// compare them.
const (
	AttrBoundary      = "is_boundary"
	AttrDisplayName   = "display_name"
	AttrElided        = "elided"
	AttrRateLaw       = "rate_law"
	AttrFast          = "is_fast"
	AttrIrreversible  = "is_irreversible"
	AttrTranscription = "is_transcription"
	AttrStoich        = "stoich"
	AttrTrigger       = "trigger"
	AttrExpr          = "expr"
)

// Species is the diff entity for one species id within a compartment.
// The node record has a single key (the id) and carries the boundary
// flag, display name and elided flag per model.
type Species struct {
	ID   string
	Node *Record
}

// Reaction is the diff entity for one reaction id within a compartment.
type Reaction struct {
	ID   string
	Node *Record

	// Arrow accumulators, keyed by the related species/parameter id.
	// The reaction id is fixed per entity, so the stored key is the
	// other half of the (related, reaction) fact tuple.
	Reactants             *Record
	Products              *Record
	TranscriptionProducts *Record
	Parameters            *Record
}

// Rule is the diff entity for one rule. ID is the target variable for
// rate/assignment rules, or the content-derived id for algebraic rules.
type Rule struct {
	ID   string
	Node *Record

	// Modifier and parameter arrows are keyed by (entity, direction):
	// models disagreeing on the direction of an influence produce
	// distinct arrows, each with its own model set.
	Modifiers  *Record
	Targets    *Record
	Parameters *Record
	Algebraic  *Record
}

// Assignment is one event assignment, keyed by its target variable.
type Assignment struct {
	Target string
	Expr   *Record

	// Affect arrows are keyed by (entity, direction), as for rules.
	AffectSpecies *Record
	AffectParams  *Record
}

// Event is the diff entity for one event id (explicit or content hash).
type Event struct {
	ID   string
	Node *Record

	TriggerSpecies *Record
	TriggerParams  *Record

	assignments map[string]*Assignment
}

// Assignment returns (lazily creating) the sub-record for one target
// variable.
func (e *Event) Assignment(target string) *Assignment {
	a, ok := e.assignments[target]
	if !ok {
		a = &Assignment{
			Target:        target,
			Expr:          NewRecord(),
			AffectSpecies: NewRecord(),
			AffectParams:  NewRecord(),
		}
		e.assignments[target] = a
	}
	return a
}

// AssignmentTargets returns the sorted target ids.
func (e *Event) AssignmentTargets() []string {
	out := make([]string, 0, len(e.assignments))
	for t := range e.assignments {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Assignments returns the assignment sub-records sorted by target.
func (e *Event) Assignments() []*Assignment {
	targets := e.AssignmentTargets()
	out := make([]*Assignment, len(targets))
	for i, t := range targets {
		out[i] = e.assignments[t]
	}
	return out
}

// Compartment buckets the species, reactions and rules that live in one
// compartment, plus the compartment's regulatory arrows. The NONE
// bucket holds compartment-less elements.
type Compartment struct {
	ID string

	species   map[string]*Species
	reactions map[string]*Reaction
	rules     map[string]*Rule

	// Regulatory arrows are keyed by (source, target, direction).
	Regulatory *Record
}

func newCompartment(id string) *Compartment {
	return &Compartment{
		ID:         id,
		species:    map[string]*Species{},
		reactions:  map[string]*Reaction{},
		rules:      map[string]*Rule{},
		Regulatory: NewRecord(),
	}
}

// Species returns (lazily creating) the diff entity for a species id.
func (c *Compartment) Species(id string) *Species {
	s, ok := c.species[id]
	if !ok {
		s = &Species{ID: id, Node: NewRecord()}
		c.species[id] = s
	}
	return s
}

// Reaction returns (lazily creating) the diff entity for a reaction id.
func (c *Compartment) Reaction(id string) *Reaction {
	r, ok := c.reactions[id]
	if !ok {
		r = &Reaction{
			ID:                    id,
			Node:                  NewRecord(),
			Reactants:             NewRecord(),
			Products:              NewRecord(),
			TranscriptionProducts: NewRecord(),
			Parameters:            NewRecord(),
		}
		c.reactions[id] = r
	}
	return r
}

// Rule returns (lazily creating) the diff entity for a rule id.
func (c *Compartment) Rule(id string) *Rule {
	r, ok := c.rules[id]
	if !ok {
		r = &Rule{
			ID:         id,
			Node:       NewRecord(),
			Modifiers:  NewRecord(),
			Targets:    NewRecord(),
			Parameters: NewRecord(),
			Algebraic:  NewRecord(),
		}
		c.rules[id] = r
	}
	return r
}

// SpeciesIDs returns the bucket's species ids, sorted.
func (c *Compartment) SpeciesIDs() []string { return sortedKeys(c.species) }

// ReactionIDs returns the bucket's reaction ids, sorted.
func (c *Compartment) ReactionIDs() []string { return sortedKeys(c.reactions) }

// RuleIDs returns the bucket's rule ids, sorted.
func (c *Compartment) RuleIDs() []string { return sortedKeys(c.rules) }

// AllSpecies returns the bucket's species entities sorted by id.
func (c *Compartment) AllSpecies() []*Species {
	out := make([]*Species, 0, len(c.species))
	for _, id := range c.SpeciesIDs() {
		out = append(out, c.species[id])
	}
	return out
}

// AllReactions returns the bucket's reaction entities sorted by id.
func (c *Compartment) AllReactions() []*Reaction {
	out := make([]*Reaction, 0, len(c.reactions))
	for _, id := range c.ReactionIDs() {
		out = append(out, c.reactions[id])
	}
	return out
}

// AllRules returns the bucket's rule entities sorted by id.
func (c *Compartment) AllRules() []*Rule {
	out := make([]*Rule, 0, len(c.rules))
	for _, id := range c.RuleIDs() {
		out = append(out, c.rules[id])
	}
	return out
}

// Tree is the diff registry: compartment buckets created lazily by the
// drivers, top-level events, and modified-parameter nodes. After the
// drivers finish it is traversed read-only.
type Tree struct {
	compartments map[string]*Compartment
	events       map[string]*Event

	// ModifiedParams records rule/event targets that are parameters
	// rather than species, keyed by parameter id with a display_name
	// attribute.
	ModifiedParams *Record
}

// NewTree returns an empty diff tree.
func NewTree() *Tree {
	return &Tree{
		compartments:   map[string]*Compartment{},
		events:         map[string]*Event{},
		ModifiedParams: NewRecord(),
	}
}

// Compartment returns (lazily creating) a compartment bucket. The empty
// id maps to the NONE bucket.
func (t *Tree) Compartment(id string) *Compartment {
	if id == "" {
		id = NoCompartment
	}
	c, ok := t.compartments[id]
	if !ok {
		c = newCompartment(id)
		t.compartments[id] = c
	}
	return c
}

// CompartmentIDs returns the bucket ids sorted, with NONE last so the
// compartment-less bucket renders after the named clusters.
func (t *Tree) CompartmentIDs() []string {
	ids := make([]string, 0, len(t.compartments))
	hasNone := false
	for id := range t.compartments {
		if id == NoCompartment {
			hasNone = true
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if hasNone {
		ids = append(ids, NoCompartment)
	}
	return ids
}

// Compartments returns the buckets in CompartmentIDs order.
func (t *Tree) Compartments() []*Compartment {
	ids := t.CompartmentIDs()
	out := make([]*Compartment, len(ids))
	for i, id := range ids {
		out[i] = t.compartments[id]
	}
	return out
}

// Event returns (lazily creating) the diff entity for an event id.
func (t *Tree) Event(id string) *Event {
	e, ok := t.events[id]
	if !ok {
		e = &Event{
			ID:             id,
			Node:           NewRecord(),
			TriggerSpecies: NewRecord(),
			TriggerParams:  NewRecord(),
			assignments:    map[string]*Assignment{},
		}
		t.events[id] = e
	}
	return e
}

// Events returns the event entities sorted by id.
func (t *Tree) Events() []*Event {
	ids := make([]string, 0, len(t.events))
	for id := range t.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Event, len(ids))
	for i, id := range ids {
		out[i] = t.events[id]
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
