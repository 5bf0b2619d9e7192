// Package align pre-normalizes element ids across models using MIRIAM
// semantic annotations, so the id-exact diff engine matches elements
// that different models name differently.
//
// An element annotated with a bqbiol:is resource URI adopts the id of
// the first element (lowest model index, then lexicographic id) seen
// with that URI. Renames rewrite the whole document: references,
// targets and math identifiers included.
package align

import (
	"github.com/kastman/sbml-diff/pkg/sbml"
)

// Models aligns the given models in place and returns the number of
// elements renamed. Models without annotations are left untouched.
func Models(models []*sbml.Model) int {
	// canonical[kind][resource] = id of the first element carrying it.
	canonical := map[string]map[string]string{
		"species":  {},
		"reaction": {},
	}

	for _, model := range models {
		for _, el := range model.AnnotatedElements() {
			byResource := canonical[el.Kind]
			if byResource == nil {
				continue
			}
			for _, resource := range el.Resources {
				if _, ok := byResource[resource]; !ok {
					byResource[resource] = el.ID
				}
			}
		}
	}

	renames := 0
	for _, model := range models {
		// Snapshot first: renaming invalidates the iteration source.
		elements := model.AnnotatedElements()
		for _, el := range elements {
			target := ""
			for _, resource := range el.Resources {
				if id, ok := canonical[el.Kind][resource]; ok {
					target = id
					break
				}
			}
			if target == "" || target == el.ID {
				continue
			}
			switch el.Kind {
			case "species":
				model.RenameSpecies(el.ID, target)
			case "reaction":
				model.RenameReaction(el.ID, target)
			}
			renames++
		}
	}
	return renames
}
