package tables

import (
	"strings"
	"testing"

	"github.com/kastman/sbml-diff/pkg/diff"
	"github.com/kastman/sbml-diff/pkg/sbml"
)

const modelA = `<?xml version="1.0"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="a">
    <listOfCompartments><compartment id="cell"/></listOfCompartments>
    <listOfSpecies>
      <species id="X" compartment="cell"/>
    </listOfSpecies>
    <listOfParameters>
      <parameter id="k1" value="0.5"/>
    </listOfParameters>
    <listOfReactions>
      <reaction id="production">
        <listOfProducts><speciesReference species="X"/></listOfProducts>
        <kineticLaw>
          <math xmlns="http://www.w3.org/1998/Math/MathML">
            <ci>k1</ci>
          </math>
        </kineticLaw>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`

const modelB = `<?xml version="1.0"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="b">
    <listOfCompartments><compartment id="cell"/></listOfCompartments>
    <listOfSpecies>
      <species id="X" compartment="cell"/>
    </listOfSpecies>
    <listOfParameters>
      <parameter id="k1" value="2"/>
    </listOfParameters>
    <listOfReactions>
      <reaction id="production">
        <listOfProducts><speciesReference species="X"/></listOfProducts>
        <kineticLaw>
          <math xmlns="http://www.w3.org/1998/Math/MathML">
            <apply><times/><ci>k1</ci><ci>X</ci></apply>
          </math>
        </kineticLaw>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`

func parseModels(t *testing.T, docs ...string) []diff.Model {
	t.Helper()
	out := make([]diff.Model, len(docs))
	for i, doc := range docs {
		m, err := sbml.Parse("m"+string(rune('1'+i))+".xml", []byte(doc))
		if err != nil {
			t.Fatalf("parse model %d: %v", i, err)
		}
		out[i] = m
	}
	return out
}

func TestRateLaws(t *testing.T) {
	models := parseModels(t, modelA, modelB)

	out, hasDiff := RateLaws(models)
	if !hasDiff {
		t.Error("rate laws differ but hasDiff is false")
	}
	for _, want := range []string{"production", "k1", "(k1 * X)", "m1.xml", "m2.xml"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRateLawsIdentical(t *testing.T) {
	models := parseModels(t, modelA, modelA)

	_, hasDiff := RateLaws(models)
	if hasDiff {
		t.Error("identical models reported as differing")
	}
}

func TestParameters(t *testing.T) {
	models := parseModels(t, modelA, modelB)

	out, hasDiff := Parameters(models)
	if !hasDiff {
		t.Error("parameter values differ but hasDiff is false")
	}
	for _, want := range []string{"k1", "0.5", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestParametersAbsent(t *testing.T) {
	const noParams = `<?xml version="1.0"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="c"><listOfSpecies><species id="X"/></listOfSpecies></model>
</sbml>`
	models := parseModels(t, modelA, noParams)

	out, hasDiff := Parameters(models)
	if !hasDiff {
		t.Error("absent parameter must count as a difference")
	}
	if !strings.Contains(out, "-") {
		t.Errorf("absent cell marker missing:\n%s", out)
	}
}
