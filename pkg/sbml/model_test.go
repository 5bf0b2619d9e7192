package sbml

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/kastman/sbml-diff/pkg/diff"
)

const testDoc = `<?xml version="1.0" encoding="UTF-8"?>
<sbml xmlns="http://www.sbml.org/sbml/level2" level="2" version="1">
  <model id="m1" name="Model One">
    <listOfCompartments>
      <compartment id="cell"/>
      <compartment id="nucleus"/>
    </listOfCompartments>
    <listOfSpecies>
      <species id="A" name="Alpha" compartment="cell" initialConcentration="2" boundaryCondition="true"/>
      <species id="B" compartment="cell"/>
      <species id="X" compartment="nucleus"/>
    </listOfSpecies>
    <listOfParameters>
      <parameter id="k1" name="rate one" value="0.5"/>
    </listOfParameters>
    <listOfReactions>
      <reaction id="r1" reversible="false" fast="true">
        <listOfReactants>
          <speciesReference species="A" stoichiometry="1"/>
        </listOfReactants>
        <listOfProducts>
          <speciesReference species="B" stoichiometry="2"/>
        </listOfProducts>
        <kineticLaw>
          <math xmlns="http://www.w3.org/1998/Math/MathML">
            <apply><times/><ci>k1</ci><ci>A</ci></apply>
          </math>
          <listOfParameters>
            <parameter id="kLocal" value="3"/>
          </listOfParameters>
        </kineticLaw>
      </reaction>
      <reaction id="r2">
        <listOfReactants>
          <speciesReference species="B"/>
        </listOfReactants>
        <listOfProducts>
          <speciesReference species="X"/>
        </listOfProducts>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`

func parseTestModel(t *testing.T, name, doc string) *Model {
	t.Helper()
	m, err := Parse(name, []byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"not xml", "not xml at all", ErrNotSBML},
		{"missing xmlns", `<sbml level="2"><model id="m"/></sbml>`, ErrNotSBML},
		{"level 1 attr", `<sbml xmlns="http://www.sbml.org/sbml/level2" level="1"><model id="m"/></sbml>`, ErrUnsupportedLevel},
		{"level 1 namespace", `<sbml xmlns="http://www.sbml.org/sbml/level1"><model id="m"/></sbml>`, ErrUnsupportedLevel},
		{"missing model", `<sbml xmlns="http://www.sbml.org/sbml/level2" level="2"/>`, ErrNotSBML},
		{
			"reactions without species",
			`<sbml xmlns="http://www.sbml.org/sbml/level2" level="2"><model id="m"><listOfReactions><reaction id="r"/></listOfReactions></model></sbml>`,
			ErrMissingSpeciesList,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("m", []byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestModelAccessors(t *testing.T) {
	m := parseTestModel(t, "one", testDoc)

	if m.Name() != "one" {
		t.Errorf("Name() = %q", m.Name())
	}
	if got := m.CompartmentIDs(); !reflect.DeepEqual(got, []string{"cell", "nucleus"}) {
		t.Errorf("CompartmentIDs() = %v", got)
	}
	if got := m.SpeciesIn("cell"); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("SpeciesIn(cell) = %v", got)
	}
	if got := m.SpeciesIn("nucleus"); !reflect.DeepEqual(got, []string{"X"}) {
		t.Errorf("SpeciesIn(nucleus) = %v", got)
	}
	if got := m.SpeciesIn(diff.NoCompartment); got != nil {
		t.Errorf("SpeciesIn(NONE) = %v, want none for fully bucketed species", got)
	}
	if !m.HasSpecies("A") || m.HasSpecies("k1") {
		t.Error("HasSpecies should cover species only")
	}
	if got := m.SpeciesDisplayName("A"); got != "Alpha" {
		t.Errorf("SpeciesDisplayName(A) = %q", got)
	}
	if got := m.SpeciesDisplayName("B"); got != "B" {
		t.Errorf("SpeciesDisplayName(B) = %q, want id fallback", got)
	}
	if got := m.BoundaryCondition("A"); got != "true" {
		t.Errorf("BoundaryCondition(A) = %q", got)
	}
	if got := m.BoundaryCondition("B"); got != "" {
		t.Errorf("BoundaryCondition(B) = %q, want empty as written", got)
	}
	if got := m.ReactionIDs(); !reflect.DeepEqual(got, []string{"r1", "r2"}) {
		t.Errorf("ReactionIDs() = %v", got)
	}
}

const looseCompartmentDoc = `<?xml version="1.0" encoding="UTF-8"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="loose">
    <listOfCompartments>
      <compartment id="cell"/>
    </listOfCompartments>
    <listOfSpecies>
      <species id="A" compartment="cell" initialAmount="1"/>
      <species id="floating" initialAmount="1"/>
      <species id="stray" compartment="ghost" initialAmount="1"/>
    </listOfSpecies>
    <listOfReactions>
      <reaction id="r1">
        <listOfReactants>
          <speciesReference species="A"/>
        </listOfReactants>
        <listOfProducts>
          <speciesReference species="floating"/>
        </listOfProducts>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`

func TestSpeciesWithoutDeclaredCompartment(t *testing.T) {
	m := parseTestModel(t, "loose", looseCompartmentDoc)

	// Species with no compartment attribute, or one the document never
	// declares, land in the NONE bucket instead of disappearing.
	if got := m.SpeciesIn(diff.NoCompartment); !reflect.DeepEqual(got, []string{"floating", "stray"}) {
		t.Errorf("SpeciesIn(NONE) = %v, want [floating stray]", got)
	}
	if got := m.SpeciesIn("cell"); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("SpeciesIn(cell) = %v, want [A]", got)
	}
	if got := m.SpeciesIn(""); got != nil {
		t.Errorf("SpeciesIn(\"\") = %v, want none after bucketing", got)
	}

	// The compartment-less product does not constrain the reaction.
	d, ok := m.ReactionDetails("r1")
	if !ok {
		t.Fatal("ReactionDetails(r1) not found")
	}
	if d.Compartment.Bucket() != "cell" {
		t.Errorf("r1 bucket = %q, want cell", d.Compartment.Bucket())
	}
}

func TestCompareDistinctCompartmentlessSpecies(t *testing.T) {
	const skeleton = `<?xml version="1.0" encoding="UTF-8"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="m">
    <listOfSpecies>
      <species id="%s" initialAmount="1"/>
    </listOfSpecies>
  </model>
</sbml>`

	a := parseTestModel(t, "a", fmt.Sprintf(skeleton, "X"))
	b := parseTestModel(t, "b", fmt.Sprintf(skeleton, "Y"))

	result, err := diff.Compare([]diff.Model{a, b}, diff.Options{})
	if err != nil {
		t.Fatal(err)
	}
	none := result.Tree.Compartment(diff.NoCompartment)
	if got := none.SpeciesIDs(); !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Errorf("NONE species = %v, want [X Y]", got)
	}
	if !result.HasDifferences {
		t.Error("distinct species sets must report differences")
	}
}

func TestReactionDetails(t *testing.T) {
	m := parseTestModel(t, "one", testDoc)

	d, ok := m.ReactionDetails("r1")
	if !ok {
		t.Fatal("ReactionDetails(r1) not found")
	}
	if !reflect.DeepEqual(d.Reactants, []string{"A"}) || !reflect.DeepEqual(d.Products, []string{"B"}) {
		t.Errorf("participants = %v -> %v", d.Reactants, d.Products)
	}
	if !reflect.DeepEqual(d.ReactantStoich, []string{"1"}) || !reflect.DeepEqual(d.ProductStoich, []string{"2"}) {
		t.Errorf("stoichiometry = %v / %v", d.ReactantStoich, d.ProductStoich)
	}
	if !d.Fast {
		t.Error("fast=\"true\" should set Fast")
	}
	if !d.Irreversible {
		t.Error("reversible=\"false\" should set Irreversible")
	}
	if d.Compartment.Bucket() != "cell" {
		t.Errorf("compartment = %q, want cell", d.Compartment.Bucket())
	}
	if d.RateLaw != "(k1 * A)" {
		t.Errorf("RateLaw = %q, want (k1 * A)", d.RateLaw)
	}

	byID := map[string]diff.EntityRef{}
	for _, ref := range d.RateIdentifiers {
		byID[ref.ID] = ref
	}
	if ref := byID["A"]; !ref.IsSpecies || ref.Direction != diff.DirectionIncreasing {
		t.Errorf("A classified as %+v", ref)
	}
	if ref := byID["k1"]; ref.IsSpecies || ref.Direction != diff.DirectionIncreasing {
		t.Errorf("k1 classified as %+v", ref)
	}

	if _, ok := m.ReactionDetails("missing"); ok {
		t.Error("ReactionDetails(missing) ok = true")
	}
}

func TestReactionCompartmentIncompatible(t *testing.T) {
	m := parseTestModel(t, "one", testDoc)

	// r2 spans cell (B) and nucleus (X).
	d, ok := m.ReactionDetails("r2")
	if !ok {
		t.Fatal("ReactionDetails(r2) not found")
	}
	if d.Compartment.Kind != diff.CompartmentIncompatible {
		t.Errorf("Kind = %v, want incompatible", d.Compartment.Kind)
	}
	if d.Compartment.Bucket() != diff.NoCompartment {
		t.Errorf("Bucket() = %q, want NONE", d.Compartment.Bucket())
	}
	if d.Irreversible {
		t.Error("absent reversible attribute is not irreversible")
	}
}

func TestRuleDetails(t *testing.T) {
	doc := `<sbml xmlns="http://www.sbml.org/sbml/level2" level="2">
  <model id="m">
    <listOfSpecies>
      <species id="A" compartment="cell" initialConcentration="1"/>
    </listOfSpecies>
    <listOfParameters>
      <parameter id="k" value="2"/>
    </listOfParameters>
    <listOfRules>
      <assignmentRule variable="A">
        <math xmlns="http://www.w3.org/1998/Math/MathML">
          <apply><times/><cn>2</cn><ci>k</ci></apply>
        </math>
      </assignmentRule>
      <rateRule variable="k">
        <math xmlns="http://www.w3.org/1998/Math/MathML">
          <ci>A</ci>
        </math>
      </rateRule>
    </listOfRules>
  </model>
</sbml>`
	m := parseTestModel(t, "m", doc)

	if got := m.RuleTargetIDs(); !reflect.DeepEqual(got, []string{"A", "k"}) {
		t.Fatalf("RuleTargetIDs() = %v", got)
	}

	d, ok := m.RuleDetails("A")
	if !ok {
		t.Fatal("RuleDetails(A) not found")
	}
	if !d.TargetIsSpecies {
		t.Error("A is a species target")
	}
	if d.Compartment != "cell" {
		t.Errorf("compartment = %q, want cell", d.Compartment)
	}
	if d.RateLaw != "(2 * k)" {
		t.Errorf("RateLaw = %q", d.RateLaw)
	}

	d, ok = m.RuleDetails("k")
	if !ok {
		t.Fatal("RuleDetails(k) not found")
	}
	if d.TargetIsSpecies {
		t.Error("k is a parameter target")
	}
	if d.Compartment != diff.NoCompartment {
		t.Errorf("parameter rule compartment = %q, want NONE", d.Compartment)
	}

	if _, ok := m.RuleDetails("missing"); ok {
		t.Error("RuleDetails(missing) ok = true")
	}
}

func TestAlgebraicRuleIDs(t *testing.T) {
	doc := `<sbml xmlns="http://www.sbml.org/sbml/level2" level="2">
  <model id="m">
    <listOfSpecies>
      <species id="A" compartment="cell"/>
      <species id="B" compartment="cell"/>
    </listOfSpecies>
    <listOfRules>
      <algebraicRule>
        <math xmlns="http://www.w3.org/1998/Math/MathML">
          <apply><minus/><ci>A</ci><ci>B</ci></apply>
        </math>
      </algebraicRule>
      <algebraicRule metaid="conservation">
        <math xmlns="http://www.w3.org/1998/Math/MathML">
          <apply><plus/><ci>A</ci><ci>k</ci></apply>
        </math>
      </algebraicRule>
    </listOfRules>
  </model>
</sbml>`
	rules := parseTestModel(t, "m", doc).AlgebraicRules()
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}

	if !strings.HasPrefix(rules[0].ID, "algebraicRule_") {
		t.Errorf("anonymous rule id = %q, want content-derived", rules[0].ID)
	}
	if rules[1].ID != "conservation" {
		t.Errorf("metaid rule id = %q", rules[1].ID)
	}
	if !reflect.DeepEqual(rules[1].Species, []string{"A"}) || !reflect.DeepEqual(rules[1].Params, []string{"k"}) {
		t.Errorf("participants = %v / %v", rules[1].Species, rules[1].Params)
	}

	// Content-derived ids are stable across parses.
	again := parseTestModel(t, "m", doc).AlgebraicRules()
	if rules[0].ID != again[0].ID {
		t.Errorf("anonymous rule id not deterministic: %q vs %q", rules[0].ID, again[0].ID)
	}
}

const eventDoc = `<sbml xmlns="http://www.sbml.org/sbml/level2" level="2">
  <model id="m">
    <listOfSpecies>
      <species id="A" compartment="cell" initialConcentration="1"/>
      <species id="B" compartment="cell"/>
    </listOfSpecies>
    <listOfParameters>
      <parameter id="threshold" value="5"/>
    </listOfParameters>
    <listOfEvents>
      <event>
        <trigger>
          <math xmlns="http://www.w3.org/1998/Math/MathML">
            <apply><gt/><ci>A</ci><ci>threshold</ci></apply>
          </math>
        </trigger>
        <listOfEventAssignments>
          <eventAssignment variable="B">
            <math xmlns="http://www.w3.org/1998/Math/MathML"><cn>0</cn></math>
          </eventAssignment>
        </listOfEventAssignments>
      </event>
    </listOfEvents>
  </model>
</sbml>`

func TestEvents(t *testing.T) {
	events := parseTestModel(t, "m", eventDoc).Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	ev := events[0]

	if !strings.HasPrefix(ev.ID, "event_") {
		t.Errorf("anonymous event id = %q, want content hash", ev.ID)
	}
	if ev.Trigger != "(A > threshold)" {
		t.Errorf("Trigger = %q", ev.Trigger)
	}
	if !reflect.DeepEqual(ev.TriggerSpecies, []string{"A"}) {
		t.Errorf("TriggerSpecies = %v", ev.TriggerSpecies)
	}
	if !reflect.DeepEqual(ev.TriggerParams, []string{"threshold"}) {
		t.Errorf("TriggerParams = %v", ev.TriggerParams)
	}
	if len(ev.Assignments) != 1 || ev.Assignments[0].Target != "B" || !ev.Assignments[0].TargetIsSpecies {
		t.Errorf("Assignments = %+v", ev.Assignments)
	}
	if ev.Assignments[0].Expr != "0" {
		t.Errorf("assignment expr = %q", ev.Assignments[0].Expr)
	}

	// Structurally identical events hash the same in another document.
	again := parseTestModel(t, "m2", eventDoc).Events()
	if ev.ID != again[0].ID {
		t.Errorf("event hash not stable: %q vs %q", ev.ID, again[0].ID)
	}
}

func TestRegulatoryArrows(t *testing.T) {
	doc := `<sbml xmlns="http://www.sbml.org/sbml/level2" level="2">
  <model id="m">
    <listOfSpecies>
      <species id="S" compartment="cell" initialConcentration="1"/>
      <species id="I" compartment="cell" initialConcentration="1"/>
    </listOfSpecies>
    <listOfReactions>
      <reaction id="r1">
        <listOfReactants>
          <speciesReference species="S"/>
        </listOfReactants>
        <kineticLaw>
          <math xmlns="http://www.w3.org/1998/Math/MathML">
            <apply><divide/><ci>S</ci><ci>I</ci></apply>
          </math>
        </kineticLaw>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`
	m := parseTestModel(t, "m", doc)

	arrows := m.RegulatoryArrows("cell", nil)
	if len(arrows) != 1 {
		t.Fatalf("arrows = %+v, want one (S is a reactant, I is not)", arrows)
	}
	if arrows[0].Source != "I" || arrows[0].Target != "r1" {
		t.Errorf("arrow = %+v", arrows[0])
	}
	if arrows[0].Direction != diff.DirectionDecreasing {
		t.Errorf("Direction = %q, want decreasing for a divisor", arrows[0].Direction)
	}

	if got := m.RegulatoryArrows("cell", map[string]bool{"r1": true}); len(got) != 0 {
		t.Errorf("skipped reaction still produced arrows: %+v", got)
	}
}

func TestParameters(t *testing.T) {
	m := parseTestModel(t, "one", testDoc)

	if got := m.ParameterIDs(); !reflect.DeepEqual(got, []string{"k1", "kLocal"}) {
		t.Errorf("ParameterIDs() = %v, want global and kinetic-law locals", got)
	}
	if v, ok := m.ParameterValue("k1"); !ok || v != "0.5" {
		t.Errorf("ParameterValue(k1) = %q, %v", v, ok)
	}
	if _, ok := m.ParameterValue("missing"); ok {
		t.Error("ParameterValue(missing) ok = true")
	}
	if got := m.ParameterDisplayName("k1"); got != "rate one" {
		t.Errorf("ParameterDisplayName(k1) = %q", got)
	}
	if got := m.ParameterDisplayName("kLocal"); got != "kLocal" {
		t.Errorf("ParameterDisplayName(kLocal) = %q, want id fallback", got)
	}
}
