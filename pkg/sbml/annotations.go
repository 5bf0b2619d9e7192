package sbml

import (
	"encoding/xml"
	"io"
	"regexp"
	"sort"
	"strings"
)

// AnnotatedElement is one model element carrying MIRIAM identity
// annotations (bqbiol:is resource URIs).
type AnnotatedElement struct {
	Kind      string // "species" or "reaction"
	ID        string
	Resources []string
}

// AnnotatedElements returns every species and reaction that carries at
// least one bqbiol:is resource, sorted by (kind, id).
func (m *Model) AnnotatedElements() []AnnotatedElement {
	var out []AnnotatedElement

	if m.doc.Model.Species != nil {
		for _, s := range m.doc.Model.Species.Species {
			if res := miriamResources(s.Annotation); len(res) > 0 {
				out = append(out, AnnotatedElement{Kind: "species", ID: s.ID, Resources: res})
			}
		}
	}
	if m.doc.Model.Reactions != nil {
		for _, r := range m.doc.Model.Reactions.Reactions {
			if res := miriamResources(r.Annotation); len(res) > 0 {
				out = append(out, AnnotatedElement{Kind: "reaction", ID: r.ID, Resources: res})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// miriamResources extracts rdf:resource URIs from rdf:li elements nested
// under a bqbiol:is qualifier. Malformed annotations yield nothing.
func miriamResources(ann *AnnotationEl) []string {
	if ann == nil || ann.Raw == "" {
		return nil
	}

	dec := xml.NewDecoder(strings.NewReader(ann.Raw))
	var resources []string
	depth := 0 // nesting depth inside a bqbiol:is element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "is" {
				depth++
				continue
			}
			if depth > 0 && t.Name.Local == "li" {
				for _, attr := range t.Attr {
					if attr.Name.Local == "resource" {
						resources = append(resources, attr.Value)
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "is" && depth > 0 {
				depth--
			}
		}
	}

	sort.Strings(resources)
	return resources
}

// RenameSpecies rewrites every occurrence of a species id: the species
// declaration, reactant/product/modifier references, rule and event
// assignment targets, and <ci> leaves inside math fragments. Used by
// the annotation aligner; a no-op when old is not a species.
func (m *Model) RenameSpecies(old, new string) {
	if old == new {
		return
	}
	s, ok := m.speciesByID[old]
	if !ok {
		return
	}
	s.ID = new

	model := m.doc.Model
	if model.Reactions != nil {
		for i := range model.Reactions.Reactions {
			r := &model.Reactions.Reactions[i]
			renameRefs(r.Reactants, old, new)
			renameRefs(r.Products, old, new)
			if r.Modifiers != nil {
				for j := range r.Modifiers.Refs {
					if r.Modifiers.Refs[j].Species == old {
						r.Modifiers.Refs[j].Species = new
					}
				}
			}
			if r.KineticLaw != nil {
				renameMath(r.KineticLaw.Math, old, new)
			}
		}
	}
	if model.Rules != nil {
		for i := range model.Rules.Assignment {
			renameVariableRule(&model.Rules.Assignment[i], old, new)
		}
		for i := range model.Rules.Rate {
			renameVariableRule(&model.Rules.Rate[i], old, new)
		}
		for i := range model.Rules.Algebraic {
			renameMath(model.Rules.Algebraic[i].Math, old, new)
		}
	}
	if model.Events != nil {
		for i := range model.Events.Events {
			e := &model.Events.Events[i]
			if e.Trigger != nil {
				renameMath(e.Trigger.Math, old, new)
			}
			if e.Assignments != nil {
				for j := range e.Assignments.Assignments {
					a := &e.Assignments.Assignments[j]
					if a.Variable == old {
						a.Variable = new
					}
					renameMath(a.Math, old, new)
				}
			}
		}
	}

	m.reindex()
}

// RenameReaction rewrites a reaction's id. A no-op when old is not a
// reaction.
func (m *Model) RenameReaction(old, new string) {
	if old == new {
		return
	}
	r, ok := m.reactionByID[old]
	if !ok {
		return
	}
	r.ID = new
	m.reindex()
}

func renameVariableRule(r *VariableRuleEl, old, new string) {
	if r.Variable == old {
		r.Variable = new
	}
	renameMath(r.Math, old, new)
}

func renameRefs(refs *SpeciesRefsEl, old, new string) {
	if refs == nil {
		return
	}
	for i := range refs.Refs {
		if refs.Refs[i].Species == old {
			refs.Refs[i].Species = new
		}
	}
}

// renameMath substitutes an identifier inside a raw MathML fragment by
// rewriting matching <ci> leaves.
func renameMath(math *MathEl, old, new string) {
	if math == nil || math.Raw == "" {
		return
	}
	re := regexp.MustCompile(`(<ci[^>]*>\s*)` + regexp.QuoteMeta(old) + `(\s*</ci>)`)
	math.Raw = re.ReplaceAllString(math.Raw, "${1}"+new+"${2}")
}
