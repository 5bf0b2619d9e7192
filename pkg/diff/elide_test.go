package diff

import (
	"reflect"
	"testing"
)

// cartoonModel is a central-dogma chain: transcription produces mRNA,
// translation turns mRNA into P, degradation consumes P.
func cartoonModel(name string) *fakeModel {
	return &fakeModel{
		name:         name,
		compartments: []string{"cell"},
		species:      map[string][]string{"cell": {"P", "mRNA"}},
		reactions: map[string]ReactionDetails{
			"tx": {
				ID:            "tx",
				Name:          "tx",
				Products:      []string{"mRNA"},
				ProductStoich: []string{"1"},
				Compartment:   SingleCompartment("cell"),
				SBOTerm:       "SBO:0000589",
			},
			"tl": {
				ID:             "tl",
				Name:           "tl",
				Reactants:      []string{"mRNA"},
				Products:       []string{"P"},
				ReactantStoich: []string{"1"},
				ProductStoich:  []string{"1"},
				Compartment:    SingleCompartment("cell"),
				SBOTerm:        "SBO:0000184",
			},
			"deg": {
				ID:             "deg",
				Name:           "deg",
				Reactants:      []string{"P"},
				ReactantStoich: []string{"1"},
				Compartment:    SingleCompartment("cell"),
				SBOTerm:        "SBO:0000179",
			},
		},
	}
}

func TestCartoonElidesTranslation(t *testing.T) {
	models := []Model{cartoonModel("a"), cartoonModel("b")}
	result, err := Compare(models, Options{Cartoon: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.HasDifferences {
		t.Error("identical cartoon models should not differ")
	}

	cell := result.Tree.Compartment("cell")

	// Translation and degradation disappear; transcription stays.
	if got := cell.ReactionIDs(); !reflect.DeepEqual(got, []string{"tx"}) {
		t.Errorf("reactions = %v, want only [tx]", got)
	}

	// The intermediate is flagged elided, the protein is not.
	if !cell.Species("mRNA").Node.Compare(AttrElided).BoolValue() {
		t.Error("mRNA should be marked elided")
	}
	if cell.Species("P").Node.Compare(AttrElided).BoolValue() {
		t.Error("P should not be marked elided")
	}

	// Transcription output is redirected through the hidden intermediate.
	tx := cell.Reaction("tx")
	if !tx.Node.Compare(AttrTranscription).BoolValue() {
		t.Error("tx should carry the transcription flag in cartoon mode")
	}
	if tx.TranscriptionProducts.Entry("P") == nil {
		t.Error("tx product should be redirected to P")
	}
	if tx.TranscriptionProducts.Entry("mRNA") != nil {
		t.Error("tx should not keep an arrow to the hidden intermediate")
	}
}

func TestCartoonOffKeepsChain(t *testing.T) {
	result, err := Compare([]Model{cartoonModel("a")}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	cell := result.Tree.Compartment("cell")
	if got := cell.ReactionIDs(); !reflect.DeepEqual(got, []string{"deg", "tl", "tx"}) {
		t.Errorf("reactions = %v, want the full chain without cartoon mode", got)
	}
	if cell.Species("mRNA").Node.Compare(AttrElided).BoolValue() {
		t.Error("mRNA should stay visible without cartoon mode")
	}
	// Transcription glyphs are cartoon-only; the plain diagram keeps a
	// regular product arrow.
	tx := cell.Reaction("tx")
	if tx.Node.Compare(AttrTranscription).BoolValue() {
		t.Error("tx should not be flagged transcription without cartoon mode")
	}
	if tx.Products.Entry("mRNA") == nil {
		t.Error("tx should keep its direct product arrow")
	}
}

func TestCartoonKeepsReferencedIntermediate(t *testing.T) {
	a := cartoonModel("a")
	// mRNA also feeds a regular reaction, so it carries meaning beyond
	// plumbing and must stay visible.
	a.reactions["bind"] = ReactionDetails{
		ID:             "bind",
		Name:           "bind",
		Reactants:      []string{"mRNA"},
		Products:       []string{"P"},
		ReactantStoich: []string{"1"},
		ProductStoich:  []string{"1"},
		Compartment:    SingleCompartment("cell"),
	}

	result, err := Compare([]Model{a}, Options{Cartoon: true})
	if err != nil {
		t.Fatal(err)
	}
	cell := result.Tree.Compartment("cell")
	if cell.Species("mRNA").Node.Compare(AttrElided).BoolValue() {
		t.Error("an intermediate referenced outside translation must not be elided")
	}
	if cell.Reaction("tl").Node.Len() == 0 {
		t.Error("translation should stay when its input cannot be hidden")
	}
}

func TestCartoonKeepsDifferingRateLaw(t *testing.T) {
	a := cartoonModel("a")
	b := cartoonModel("b")
	da := a.reactions["tl"]
	da.RateLaw = "(k1 * mRNA)"
	a.reactions["tl"] = da
	db := b.reactions["tl"]
	db.RateLaw = "(k2 * mRNA)"
	b.reactions["tl"] = db

	result, err := Compare([]Model{a, b}, Options{Cartoon: true})
	if err != nil {
		t.Fatal(err)
	}
	cell := result.Tree.Compartment("cell")
	if cell.Reaction("tl").Node.Len() == 0 {
		t.Error("translation with disagreeing rate laws must stay visible")
	}
	if !result.HasDifferences {
		t.Error("the rate law disagreement must survive cartoon mode")
	}
}

func TestCartoonSelfLoopTemplate(t *testing.T) {
	// Translation written with the template on both sides: the reactant
	// is the sole input even though it reappears among the products, and
	// only the protein counts as a product.
	tests := []struct {
		name string
		tl   ReactionDetails
	}{
		{"reactant only", ReactionDetails{
			ID:             "tl",
			Name:           "tl",
			Reactants:      []string{"mRNA"},
			Products:       []string{"mRNA", "P"},
			ReactantStoich: []string{"1"},
			ProductStoich:  []string{"1", "1"},
			Compartment:    SingleCompartment("cell"),
			SBOTerm:        "SBO:0000184",
		}},
		{"reactant and modifier", ReactionDetails{
			ID:             "tl",
			Name:           "tl",
			Reactants:      []string{"mRNA"},
			Products:       []string{"mRNA", "P"},
			Modifiers:      []string{"mRNA"},
			ReactantStoich: []string{"1"},
			ProductStoich:  []string{"1", "1"},
			Compartment:    SingleCompartment("cell"),
			SBOTerm:        "SBO:0000184",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := cartoonModel("a")
			a.reactions["tl"] = tt.tl

			result, err := Compare([]Model{a}, Options{Cartoon: true})
			if err != nil {
				t.Fatal(err)
			}
			cell := result.Tree.Compartment("cell")
			if !cell.Species("mRNA").Node.Compare(AttrElided).BoolValue() {
				t.Error("self-loop template should still be elidable")
			}
			if got := cell.ReactionIDs(); !reflect.DeepEqual(got, []string{"tx"}) {
				t.Errorf("reactions = %v, want only [tx]", got)
			}
			tx := cell.Reaction("tx")
			if tx.TranscriptionProducts.Entry("P") == nil {
				t.Error("tx product should be redirected to P")
			}
		})
	}
}

func TestCartoonSkipsElidedReactionRegulatory(t *testing.T) {
	a := cartoonModel("a")
	a.regulatory = map[string][]RegulatoryArrow{
		"cell": {{Source: "P", Target: "tl", Direction: DirectionIncreasing}},
	}

	result, err := Compare([]Model{a}, Options{Cartoon: true})
	if err != nil {
		t.Fatal(err)
	}
	reg := result.Tree.Compartment("cell").Regulatory
	if reg.Len() != 0 {
		t.Error("regulatory arrows onto an elided reaction should be dropped")
	}
}
