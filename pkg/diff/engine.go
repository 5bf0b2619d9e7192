package diff

import (
	"errors"
	"sort"
)

// ErrNoModels is returned by [Compare] when called without any models.
var ErrNoModels = errors.New("no models to compare")

// Options configures a comparison run.
type Options struct {
	// Cartoon enables the elision heuristic: translation intermediates
	// are hidden, transcription reactions render as promoter glyphs and
	// degradation reactions disappear.
	Cartoon bool

	// ShowParams includes parameter nodes and their arrows.
	ShowParams bool

	// HideRules drops rate, assignment and algebraic rules from the diff.
	HideRules bool
}

// Result is the outcome of a comparison: the finalized diff tree plus
// the explicit differences-found flag. The tree must not be mutated
// after Compare returns.
type Result struct {
	Tree           *Tree
	NumModels      int
	HasDifferences bool
}

// engine runs the per-kind diff drivers over all models, accumulating
// into one tree.
type engine struct {
	models []Model
	opts   Options
	plan   *elisionPlan
	tree   *Tree

	// modifiedParams tracks rule targets that are parameters rather
	// than species: parameter id -> reporting models.
	modifiedParams map[string]map[int]bool
}

// Compare diffs the given models and returns the finalized result. The
// models are scanned kind by kind in deterministic id order; every
// model must already have passed structural validation (the sbml parser
// enforces this).
func Compare(models []Model, opts Options) (*Result, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}

	e := &engine{
		models:         models,
		opts:           opts,
		plan:           noElision(len(models)),
		tree:           NewTree(),
		modifiedParams: map[string]map[int]bool{},
	}
	if opts.Cartoon {
		e.plan = planElision(models)
	}

	e.diffReactions()
	if !opts.HideRules {
		e.diffRules()
		e.diffAlgebraicRules()
	}
	e.diffCompartments()
	e.diffEvents()
	if opts.ShowParams {
		e.recordModifiedParams()
	}

	return &Result{
		Tree:           e.tree,
		NumModels:      len(models),
		HasDifferences: e.findDifferences(),
	}, nil
}

// diffReactions scans every reaction id used by any model.
func (e *engine) diffReactions() {
	for _, id := range e.candidateIDs(Model.ReactionIDs) {
		e.diffReaction(id)
	}
}

func (e *engine) diffReaction(reactionID string) {
	for i, model := range e.models {
		details, ok := model.ReactionDetails(reactionID)
		if !ok || details.Empty() {
			continue
		}

		if e.opts.Cartoon {
			if e.plan.isElidedReaction(i, reactionID) {
				continue
			}
			// A reaction consuming a hidden intermediate disappears with it.
			if len(details.Reactants) == 1 && e.plan.isElided(i, details.Reactants[0]) {
				continue
			}
			// Degradation adds no information to a cartoon.
			if len(details.Reactants) == 1 && len(details.Products) == 0 {
				continue
			}
		}

		transcription := e.opts.Cartoon && isTranscription(details.SBOTerm)

		bucket := e.tree.Compartment(details.Compartment.Bucket())
		reaction := bucket.Reaction(reactionID)
		reaction.Node.Add(i, Attrs{
			AttrRateLaw:       details.RateLaw,
			AttrDisplayName:   details.Name,
			AttrFast:          details.Fast,
			AttrIrreversible:  details.Irreversible,
			AttrTranscription: transcription,
		}, reactionID)

		for idx, reactant := range details.Reactants {
			reaction.Reactants.Add(i, Attrs{AttrStoich: details.ReactantStoich[idx]}, reactant)
		}

		for idx, product := range details.Products {
			if e.opts.Cartoon {
				product = e.plan.redirect(i, product)
			}
			attrs := Attrs{AttrStoich: details.ProductStoich[idx]}
			if transcription {
				reaction.TranscriptionProducts.Add(i, attrs, product)
			} else {
				reaction.Products.Add(i, attrs, product)
			}
		}

		for _, entity := range details.RateIdentifiers {
			if entity.IsSpecies {
				continue
			}
			reaction.Parameters.Add(i, nil, entity.ID)
		}
	}
}

// diffRules scans every rate/assignment rule target used by any model.
func (e *engine) diffRules() {
	for _, target := range e.candidateIDs(Model.RuleTargetIDs) {
		e.diffRule(target)
	}
}

func (e *engine) diffRule(target string) {
	for i, model := range e.models {
		details, ok := model.RuleDetails(target)
		if !ok {
			continue
		}

		if !details.TargetIsSpecies {
			e.trackModifiedParam(target, i)
		}

		// Rules bucketed by different compartments stay distinct even
		// when they share a target.
		rule := e.tree.Compartment(details.Compartment).Rule(target)
		rule.Node.Add(i, Attrs{AttrRateLaw: details.RateLaw}, target)

		for _, entity := range details.Entities {
			if entity.IsSpecies {
				rule.Modifiers.Add(i, nil, entity.ID, entity.Direction)
			} else {
				rule.Parameters.Add(i, nil, entity.ID, entity.Direction)
			}
		}

		if e.opts.ShowParams || details.TargetIsSpecies {
			rule.Targets.Add(i, nil, target)
		}
	}
}

// diffAlgebraicRules accumulates algebraic rules into the NONE bucket;
// they constrain the model globally rather than one compartment.
func (e *engine) diffAlgebraicRules() {
	for i, model := range e.models {
		for _, details := range model.AlgebraicRules() {
			rule := e.tree.Compartment(NoCompartment).Rule(details.ID)
			rule.Node.Add(i, Attrs{AttrRateLaw: details.RateLaw}, details.ID)

			for _, species := range details.Species {
				rule.Algebraic.Add(i, nil, species)
			}
			for _, param := range details.Params {
				rule.Parameters.Add(i, nil, param, DirectionOther)
			}
		}
	}
}

// diffCompartments populates species nodes and regulatory arrows for
// every compartment declared by any model, plus the NONE bucket, so
// compartment-less species are recorded rather than silently dropped.
func (e *engine) diffCompartments() {
	compartments := e.candidateIDs(Model.CompartmentIDs)
	hasNone := false
	for _, id := range compartments {
		if id == NoCompartment {
			hasNone = true
			break
		}
	}
	if !hasNone {
		compartments = append(compartments, NoCompartment)
	}

	for _, compartmentID := range compartments {
		bucket := e.tree.Compartment(compartmentID)

		for i, model := range e.models {
			for _, speciesID := range model.SpeciesIn(compartmentID) {
				bucket.Species(speciesID).Node.Add(i, Attrs{
					AttrBoundary:    model.BoundaryCondition(speciesID),
					AttrDisplayName: model.SpeciesDisplayName(speciesID),
					AttrElided:      e.opts.Cartoon && e.plan.isElided(i, speciesID),
				}, speciesID)
			}
		}

		for i, model := range e.models {
			for _, arrow := range model.RegulatoryArrows(compartmentID, e.plan.skipReactions(i)) {
				bucket.Regulatory.Add(i, nil, arrow.Source, arrow.Target, arrow.Direction)
			}
		}
	}
}

// diffEvents accumulates events by resolved id across all models.
func (e *engine) diffEvents() {
	byID := map[string]map[int]EventDetails{}
	for i, model := range e.models {
		for _, details := range model.Events() {
			if byID[details.ID] == nil {
				byID[details.ID] = map[int]EventDetails{}
			}
			byID[details.ID][i] = details
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		event := e.tree.Event(id)

		for i := 0; i < len(e.models); i++ {
			details, ok := byID[id][i]
			if !ok {
				continue
			}

			name := details.Name
			if name == "" {
				name = id
			}
			event.Node.Add(i, Attrs{
				AttrTrigger:     details.Trigger,
				AttrDisplayName: name,
			}, id)

			for _, species := range details.TriggerSpecies {
				event.TriggerSpecies.Add(i, nil, species)
			}
			for _, param := range details.TriggerParams {
				event.TriggerParams.Add(i, nil, param)
			}

			for _, assignment := range details.Assignments {
				if !assignment.TargetIsSpecies && !e.opts.ShowParams {
					continue
				}
				a := event.Assignment(assignment.Target)
				a.Expr.Add(i, Attrs{AttrExpr: assignment.Expr}, assignment.Target)

				for _, entity := range assignment.Entities {
					if entity.IsSpecies {
						a.AffectSpecies.Add(i, nil, entity.ID, entity.Direction)
					} else {
						a.AffectParams.Add(i, nil, entity.ID, entity.Direction)
					}
				}
			}
		}
	}
}

func (e *engine) trackModifiedParam(id string, model int) {
	if e.modifiedParams[id] == nil {
		e.modifiedParams[id] = map[int]bool{}
	}
	e.modifiedParams[id][model] = true
}

// recordModifiedParams turns the tracked rule-target parameters into
// top-level parameter nodes, named by the lowest-indexed model that
// contains them.
func (e *engine) recordModifiedParams() {
	ids := make([]string, 0, len(e.modifiedParams))
	for id := range e.modifiedParams {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		models := make([]int, 0, len(e.modifiedParams[id]))
		for m := range e.modifiedParams[id] {
			models = append(models, m)
		}
		sort.Ints(models)

		name := id
		for _, m := range models {
			if n := e.models[m].ParameterDisplayName(id); n != "" {
				name = n
				break
			}
		}
		for _, m := range models {
			e.tree.ModifiedParams.Add(m, Attrs{AttrDisplayName: name}, id)
		}
	}
}

// candidateIDs unions an id enumeration over every model, sorted.
func (e *engine) candidateIDs(enumerate func(Model) []string) []string {
	seen := map[string]bool{}
	for _, model := range e.models {
		for _, id := range enumerate(model) {
			seen[id] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
