package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kastman/sbml-diff/pkg/diff"
)

const docA = `<?xml version="1.0"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="a">
    <listOfCompartments><compartment id="cell"/></listOfCompartments>
    <listOfSpecies>
      <species id="X" compartment="cell"/>
      <species id="Y" compartment="cell"/>
    </listOfSpecies>
    <listOfParameters><parameter id="k" value="1"/></listOfParameters>
    <listOfReactions>
      <reaction id="conv">
        <listOfReactants><speciesReference species="X"/></listOfReactants>
        <listOfProducts><speciesReference species="Y"/></listOfProducts>
        <kineticLaw>
          <math xmlns="http://www.w3.org/1998/Math/MathML">
            <apply><times/><ci>k</ci><ci>X</ci></apply>
          </math>
        </kineticLaw>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`

const docB = `<?xml version="1.0"?>
<sbml xmlns="http://www.sbml.org/sbml/level2/version4" level="2" version="4">
  <model id="b">
    <listOfCompartments><compartment id="cell"/></listOfCompartments>
    <listOfSpecies>
      <species id="X" compartment="cell"/>
      <species id="Z" compartment="cell"/>
    </listOfSpecies>
    <listOfReactions>
      <reaction id="conv">
        <listOfReactants><speciesReference species="X"/></listOfReactants>
        <listOfProducts><speciesReference species="Z"/></listOfProducts>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`

func TestExecuteDOT(t *testing.T) {
	runner := NewRunner(nil, nil)
	docs := []Document{
		{Name: "a.xml", Data: []byte(docA)},
		{Name: "b.xml", Data: []byte(docB)},
	}

	result, err := runner.Execute(context.Background(), docs, Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !result.Comparison.HasDifferences {
		t.Error("models differ but HasDifferences is false")
	}
	dot := string(result.Artifacts[FormatDOT])
	for _, want := range []string{"digraph comparison", `"Y"`, `"Z"`, "a.xml", "b.xml"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestExecuteTables(t *testing.T) {
	runner := NewRunner(nil, nil)
	docs := []Document{
		{Name: "a.xml", Data: []byte(docA)},
		{Name: "b.xml", Data: []byte(docB)},
	}

	result, err := runner.Execute(context.Background(), docs, Options{Formats: []string{FormatTables}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out := string(result.Artifacts[FormatTables])
	if !strings.Contains(out, "conv") || !strings.Contains(out, "k") {
		t.Errorf("tables output incomplete:\n%s", out)
	}
}

func TestExecuteNoDocuments(t *testing.T) {
	runner := NewRunner(nil, nil)

	_, err := runner.Execute(context.Background(), nil, Options{})
	if !errors.Is(err, diff.ErrNoModels) {
		t.Errorf("Execute(nil) error = %v, want ErrNoModels", err)
	}
}

func TestExecuteParseError(t *testing.T) {
	runner := NewRunner(nil, nil)
	docs := []Document{{Name: "bad.xml", Data: []byte("<html></html>")}}

	_, err := runner.Execute(context.Background(), docs, Options{})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "bad.xml") {
		t.Errorf("error should name the document: %v", err)
	}
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"explicit formats", Options{Formats: []string{FormatSVG, FormatPNG}}, false},
		{"bad format", Options{Formats: []string{"pdf"}}, true},
		{"bad label mode", Options{ReactionLabel: "rates"}, true},
		{"negative selection", Options{SelectedModel: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatDOT {
		t.Errorf("default formats = %v", opts.Formats)
	}
	if opts.ReactionLabel != "name" || opts.RankDir != "TB" {
		t.Errorf("defaults = %q %q", opts.ReactionLabel, opts.RankDir)
	}
}
