package diff

// findDifferences walks the finalized tree and decides the process-wide
// differences-found outcome. The walk mirrors what the render contract
// exposes: an element hidden from every consumer (an elided species, an
// undrawn parameter arrow) cannot contribute a difference.
func (e *engine) findDifferences() bool {
	n := len(e.models)
	if n <= 1 {
		return false
	}

	partial := func(r *Record) bool {
		if r.Len() == 0 {
			return false
		}
		models := r.AllModels()
		return len(models) > 0 && len(models) < n
	}
	partialEntries := func(r *Record) bool {
		for _, entry := range r.Entries() {
			if len(entry.Models()) < n {
				return true
			}
		}
		return false
	}

	paramsDrawn := map[string]bool{}
	for _, entry := range e.tree.ModifiedParams.Entries() {
		paramsDrawn[entry.Key()[0]] = true
	}
	partialParamEntries := func(r *Record) bool {
		for _, entry := range r.Entries() {
			if !paramsDrawn[entry.Key()[0]] {
				continue
			}
			if len(entry.Models()) < n {
				return true
			}
		}
		return false
	}

	for _, compartment := range e.tree.Compartments() {
		for _, species := range compartment.AllSpecies() {
			if species.Node.Compare(AttrElided).BoolValue() {
				continue
			}
			if partial(species.Node) {
				return true
			}
		}

		for _, reaction := range compartment.AllReactions() {
			if partial(reaction.Node) {
				return true
			}
			if reaction.Node.Compare(AttrRateLaw).IsDifferent() {
				return true
			}
			for _, arrows := range []*Record{reaction.Reactants, reaction.Products, reaction.TranscriptionProducts} {
				if partialEntries(arrows) {
					return true
				}
				for _, entry := range arrows.Entries() {
					if entry.Compare(AttrStoich).IsDifferent() {
						return true
					}
				}
			}
			if partialParamEntries(reaction.Parameters) {
				return true
			}
		}

		for _, rule := range compartment.AllRules() {
			if partial(rule.Node) {
				return true
			}
			if rule.Node.Compare(AttrRateLaw).IsDifferent() {
				return true
			}
			if partialEntries(rule.Modifiers) || partialEntries(rule.Targets) || partialEntries(rule.Algebraic) {
				return true
			}
			if partialParamEntries(rule.Parameters) {
				return true
			}
		}

		if partialEntries(compartment.Regulatory) {
			return true
		}
	}

	for _, event := range e.tree.Events() {
		if partial(event.Node) {
			return true
		}
		if event.Node.Compare(AttrTrigger).IsDifferent() {
			return true
		}
		if partialEntries(event.TriggerSpecies) || partialParamEntries(event.TriggerParams) {
			return true
		}
		for _, assignment := range event.Assignments() {
			if partial(assignment.Expr) {
				return true
			}
			if assignment.Expr.Compare(AttrExpr).IsDifferent() {
				return true
			}
			if partialEntries(assignment.AffectSpecies) || partialParamEntries(assignment.AffectParams) {
				return true
			}
		}
	}

	return partialEntries(e.tree.ModifiedParams)
}
