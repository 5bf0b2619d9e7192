package align

import (
	"reflect"
	"testing"

	"github.com/kastman/sbml-diff/pkg/sbml"
)

// annotatedModel builds a one-species, one-reaction document whose
// species carries a ChEBI identity annotation under the given id.
func annotatedModel(t *testing.T, name, speciesID string) *sbml.Model {
	t.Helper()
	doc := `<sbml xmlns="http://www.sbml.org/sbml/level2" level="2">
  <model id="m">
    <listOfSpecies>
      <species id="` + speciesID + `" compartment="cell" initialConcentration="1">
        <annotation>
          <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:bqbiol="http://biomodels.net/biology-qualifiers/">
            <rdf:Description>
              <bqbiol:is>
                <rdf:Bag>
                  <rdf:li rdf:resource="http://identifiers.org/chebi/CHEBI:17234"/>
                </rdf:Bag>
              </bqbiol:is>
            </rdf:Description>
          </rdf:RDF>
        </annotation>
      </species>
    </listOfSpecies>
    <listOfReactions>
      <reaction id="deg">
        <listOfReactants>
          <speciesReference species="` + speciesID + `"/>
        </listOfReactants>
        <kineticLaw>
          <math xmlns="http://www.w3.org/1998/Math/MathML">
            <apply><times/><ci>k</ci><ci>` + speciesID + `</ci></apply>
          </math>
        </kineticLaw>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`
	m, err := sbml.Parse(name, []byte(doc))
	if err != nil {
		t.Fatalf("Parse(%s): %v", name, err)
	}
	return m
}

func TestModelsAlignsByResource(t *testing.T) {
	a := annotatedModel(t, "a", "glc")
	b := annotatedModel(t, "b", "glucose")

	renames := Models([]*sbml.Model{a, b})
	if renames != 1 {
		t.Fatalf("renames = %d, want 1", renames)
	}

	// The first model's id is canonical; the second adopts it everywhere.
	if !b.HasSpecies("glc") || b.HasSpecies("glucose") {
		t.Error("model b should now use the canonical species id")
	}
	d, ok := b.ReactionDetails("deg")
	if !ok {
		t.Fatal("ReactionDetails(deg) not found")
	}
	if !reflect.DeepEqual(d.Reactants, []string{"glc"}) {
		t.Errorf("Reactants = %v, want renamed reference", d.Reactants)
	}
	if d.RateLaw != "(k * glc)" {
		t.Errorf("RateLaw = %q, want renamed math identifier", d.RateLaw)
	}

	// The canonical model itself is untouched.
	if !a.HasSpecies("glc") {
		t.Error("model a should keep its original id")
	}
}

func TestModelsAlreadyAligned(t *testing.T) {
	a := annotatedModel(t, "a", "glc")
	b := annotatedModel(t, "b", "glc")

	if renames := Models([]*sbml.Model{a, b}); renames != 0 {
		t.Errorf("renames = %d, want 0 for matching ids", renames)
	}
}

func TestModelsWithoutAnnotations(t *testing.T) {
	doc := `<sbml xmlns="http://www.sbml.org/sbml/level2" level="2">
  <model id="m">
    <listOfSpecies>
      <species id="A" compartment="cell"/>
    </listOfSpecies>
  </model>
</sbml>`
	m, err := sbml.Parse("plain", []byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if renames := Models([]*sbml.Model{m}); renames != 0 {
		t.Errorf("renames = %d, want 0 without annotations", renames)
	}
}
