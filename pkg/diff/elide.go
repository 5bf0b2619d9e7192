package diff

import "sort"

// SBO terms that drive cartoon-mode decisions.
const (
	sboTranscriptionTemplate = "SBO:0000183"
	sboTranscriptionProcess  = "SBO:0000589"
	sboTranslation           = "SBO:0000184"
	sboDegradation           = "SBO:0000179"
)

// isTranscription reports whether a reaction is tagged as transcription
// and should render as a promoter/CDS glyph in cartoon mode.
func isTranscription(sboTerm string) bool {
	return sboTerm == sboTranscriptionTemplate || sboTerm == sboTranscriptionProcess
}

// elisionPlan is the per-model result of the cartoon heuristic: which
// intermediate species are hidden, which reactions disappear with them,
// and where arrows referencing a hidden species are redirected.
type elisionPlan struct {
	elidedSpecies   []map[string]bool
	elidedReactions []map[string]bool
	downstream      []map[string]string
}

// noElision returns an empty plan for n models, used when cartoon mode
// is off so drivers can query the plan unconditionally.
func noElision(n int) *elisionPlan {
	return &elisionPlan{
		elidedSpecies:   make([]map[string]bool, n),
		elidedReactions: make([]map[string]bool, n),
		downstream:      make([]map[string]string, n),
	}
}

// planElision runs the cartoon heuristic over every model. A reaction
// is elidable iff:
//   - it is tagged translation (SBO:0000184);
//   - its rate law is identical in every model that contains it, so
//     eliding it cannot hide a real difference;
//   - it has exactly one combined reactant/modifier species and, not
//     counting that species on the product side, exactly one product;
//   - that sole input species is not a reactant or modifier of any
//     reaction other than translation/degradation ones.
//
// Eliding the reaction hides its input species and redirects later
// arrow references to the product.
func planElision(models []Model) *elisionPlan {
	plan := noElision(len(models))

	for i, model := range models {
		plan.elidedSpecies[i] = map[string]bool{}
		plan.elidedReactions[i] = map[string]bool{}
		plan.downstream[i] = map[string]string{}

		nonIntermediates := collectNonIntermediates(model)

		for _, reactionID := range model.ReactionIDs() {
			details, ok := model.ReactionDetails(reactionID)
			if !ok || details.SBOTerm != sboTranslation {
				continue
			}
			if rateLawDiffers(models, reactionID) {
				continue
			}

			inputs := combinedInputs(details)
			if len(inputs) != 1 {
				continue
			}
			input := inputs[0]
			if nonIntermediates[input] {
				continue
			}

			products := productsExcluding(details, input)
			if len(products) != 1 {
				continue
			}

			plan.elidedSpecies[i][input] = true
			plan.elidedReactions[i][reactionID] = true
			plan.downstream[i][input] = products[0]
		}
	}

	return plan
}

// collectNonIntermediates gathers every species appearing as reactant
// or modifier of a reaction that is not translation or degradation.
// Such species carry meaning beyond plumbing and must stay visible.
func collectNonIntermediates(model Model) map[string]bool {
	out := map[string]bool{}
	for _, reactionID := range model.ReactionIDs() {
		details, ok := model.ReactionDetails(reactionID)
		if !ok {
			continue
		}
		if details.SBOTerm == sboTranslation || details.SBOTerm == sboDegradation {
			continue
		}
		for _, s := range details.Reactants {
			out[s] = true
		}
		for _, s := range details.Modifiers {
			out[s] = true
		}
	}
	return out
}

// rateLawDiffers reports whether the reaction's rate law disagrees
// between any two models that contain it. Models without the reaction
// or without a kinetic law are ignored.
func rateLawDiffers(models []Model, reactionID string) bool {
	var seen string
	for _, model := range models {
		details, ok := model.ReactionDetails(reactionID)
		if !ok || details.RateLaw == "" {
			continue
		}
		if seen == "" {
			seen = details.RateLaw
			continue
		}
		if details.RateLaw != seen {
			return true
		}
	}
	return false
}

// combinedInputs returns the reaction's reactant and modifier species,
// deduplicated and sorted. A reactant that also appears among the
// products still counts as an input (mRNA -> mRNA + protein models
// translation with the template on both sides); the self-loop is
// handled on the product side by productsExcluding.
func combinedInputs(details ReactionDetails) []string {
	seen := map[string]bool{}
	for _, s := range details.Modifiers {
		seen[s] = true
	}
	for _, s := range details.Reactants {
		seen[s] = true
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// productsExcluding returns the reaction's products other than the
// input species, deduplicated and sorted. Sorting makes the downstream
// choice deterministic if the single-product requirement were ever
// relaxed: the lexicographically smallest id would win.
func productsExcluding(details ReactionDetails, input string) []string {
	seen := map[string]bool{}
	for _, p := range details.Products {
		if p != input {
			seen[p] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// isElided reports whether a species is hidden in the given model.
func (p *elisionPlan) isElided(model int, species string) bool {
	if p.elidedSpecies[model] == nil {
		return false
	}
	return p.elidedSpecies[model][species]
}

// isElidedReaction reports whether a reaction is hidden in the given model.
func (p *elisionPlan) isElidedReaction(model int, reaction string) bool {
	if p.elidedReactions[model] == nil {
		return false
	}
	return p.elidedReactions[model][reaction]
}

// redirect maps an arrow endpoint through the downstream substitution.
// A species without a downstream mapping is returned unchanged, so the
// caller never produces a dangling reference.
func (p *elisionPlan) redirect(model int, species string) string {
	if p.downstream[model] == nil {
		return species
	}
	if to, ok := p.downstream[model][species]; ok {
		return to
	}
	return species
}

// skipReactions returns the hidden-reaction set for one model, for the
// accessor's regulatory-arrow scan.
func (p *elisionPlan) skipReactions(model int) map[string]bool {
	return p.elidedReactions[model]
}
