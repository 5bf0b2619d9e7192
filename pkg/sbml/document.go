// Package sbml parses SBML model documents and exposes the scalar and
// structural facts the diff engine consumes.
//
// Parsing uses encoding/xml struct tags over the SBML level 2/3 core
// schema subset that matters for comparison: compartments, species,
// parameters, reactions, rules and events. Math elements are kept as
// raw fragments and handed to pkg/mathml on demand.
package sbml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotSBML is returned when the document lacks an <sbml> root with
	// an xmlns declaration.
	ErrNotSBML = errors.New("document is not an SBML model")

	// ErrUnsupportedLevel is returned for SBML level 1 documents, which
	// predate required id attributes and cannot be diffed by id.
	ErrUnsupportedLevel = errors.New("SBML level 1 is not supported, use level 2 or higher")

	// ErrMissingSpeciesList is returned when a model declares reactions
	// but no species list, which leaves reaction participants dangling.
	ErrMissingSpeciesList = errors.New("model with a listOfReactions must include a listOfSpecies")
)

// Document is the root <sbml> element.
type Document struct {
	XMLName xml.Name      `xml:"sbml"`
	XMLNS   string        `xml:"xmlns,attr"`
	Level   string        `xml:"level,attr"`
	Model   *ModelElement `xml:"model"`
}

// ModelElement is the <model> element. List containers are pointers so
// validation can distinguish an absent list from an empty one.
type ModelElement struct {
	ID           string          `xml:"id,attr"`
	Name         string          `xml:"name,attr"`
	Compartments *CompartmentsEl `xml:"listOfCompartments"`
	Species      *SpeciesListEl  `xml:"listOfSpecies"`
	Parameters   *ParametersEl   `xml:"listOfParameters"`
	Reactions    *ReactionsEl    `xml:"listOfReactions"`
	Rules        *RulesEl        `xml:"listOfRules"`
	Events       *EventsEl       `xml:"listOfEvents"`
}

// CompartmentsEl is <listOfCompartments>.
type CompartmentsEl struct {
	Compartments []CompartmentEl `xml:"compartment"`
}

// CompartmentEl is one <compartment>.
type CompartmentEl struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// SpeciesListEl is <listOfSpecies>.
type SpeciesListEl struct {
	Species []SpeciesEl `xml:"species"`
}

// SpeciesEl is one <species>.
type SpeciesEl struct {
	ID                   string        `xml:"id,attr"`
	Name                 string        `xml:"name,attr"`
	Compartment          string        `xml:"compartment,attr"`
	BoundaryCondition    string        `xml:"boundaryCondition,attr"`
	InitialConcentration string        `xml:"initialConcentration,attr"`
	InitialAmount        string        `xml:"initialAmount,attr"`
	Annotation           *AnnotationEl `xml:"annotation"`
}

// ParametersEl is <listOfParameters>, global or local to a kinetic law.
type ParametersEl struct {
	Parameters []ParameterEl `xml:"parameter"`
}

// ParameterEl is one <parameter>.
type ParameterEl struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ReactionsEl is <listOfReactions>.
type ReactionsEl struct {
	Reactions []ReactionEl `xml:"reaction"`
}

// ReactionEl is one <reaction>.
type ReactionEl struct {
	ID         string         `xml:"id,attr"`
	Name       string         `xml:"name,attr"`
	Reversible string         `xml:"reversible,attr"`
	Fast       string         `xml:"fast,attr"`
	SBOTerm    string         `xml:"sboTerm,attr"`
	Reactants  *SpeciesRefsEl `xml:"listOfReactants"`
	Products   *SpeciesRefsEl `xml:"listOfProducts"`
	Modifiers  *ModifiersEl   `xml:"listOfModifiers"`
	KineticLaw *KineticLawEl  `xml:"kineticLaw"`
	Annotation *AnnotationEl  `xml:"annotation"`
}

// SpeciesRefsEl is <listOfReactants> or <listOfProducts>.
type SpeciesRefsEl struct {
	Refs []SpeciesRefEl `xml:"speciesReference"`
}

// SpeciesRefEl is one <speciesReference>.
type SpeciesRefEl struct {
	Species       string `xml:"species,attr"`
	Stoichiometry string `xml:"stoichiometry,attr"`
}

// ModifiersEl is <listOfModifiers>.
type ModifiersEl struct {
	Refs []ModifierRefEl `xml:"modifierSpeciesReference"`
}

// ModifierRefEl is one <modifierSpeciesReference>.
type ModifierRefEl struct {
	Species string `xml:"species,attr"`
}

// KineticLawEl is <kineticLaw>.
type KineticLawEl struct {
	Math       *MathEl       `xml:"math"`
	Parameters *ParametersEl `xml:"listOfParameters"`
}

// MathEl captures a MathML element as a raw fragment for pkg/mathml.
type MathEl struct {
	Raw string `xml:",innerxml"`
}

// Fragment returns the raw inner MathML, or "" for a nil element.
func (m *MathEl) Fragment() string {
	if m == nil {
		return ""
	}
	return m.Raw
}

// RulesEl is <listOfRules>. The three rule kinds are distinct elements.
type RulesEl struct {
	Assignment []VariableRuleEl  `xml:"assignmentRule"`
	Rate       []VariableRuleEl  `xml:"rateRule"`
	Algebraic  []AlgebraicRuleEl `xml:"algebraicRule"`
}

// VariableRuleEl is an <assignmentRule> or <rateRule>.
type VariableRuleEl struct {
	Variable string  `xml:"variable,attr"`
	Math     *MathEl `xml:"math"`
}

// AlgebraicRuleEl is an <algebraicRule>.
type AlgebraicRuleEl struct {
	MetaID string  `xml:"metaid,attr"`
	Math   *MathEl `xml:"math"`
}

// EventsEl is <listOfEvents>.
type EventsEl struct {
	Events []EventEl `xml:"event"`
}

// EventEl is one <event>.
type EventEl struct {
	ID          string         `xml:"id,attr"`
	Name        string         `xml:"name,attr"`
	Trigger     *TriggerEl     `xml:"trigger"`
	Assignments *AssignmentsEl `xml:"listOfEventAssignments"`
}

// TriggerEl is <trigger>.
type TriggerEl struct {
	Math *MathEl `xml:"math"`
}

// AssignmentsEl is <listOfEventAssignments>.
type AssignmentsEl struct {
	Assignments []EventAssignmentEl `xml:"eventAssignment"`
}

// EventAssignmentEl is one <eventAssignment>.
type EventAssignmentEl struct {
	Variable string  `xml:"variable,attr"`
	Math     *MathEl `xml:"math"`
}

// AnnotationEl keeps the annotation subtree raw; MIRIAM resource URIs
// are extracted lazily by miriamResources.
type AnnotationEl struct {
	Raw string `xml:",innerxml"`
}

// parseDocument decodes and validates an SBML document.
func parseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSBML, err)
	}
	if err := validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validate enforces the structural preconditions from the comparison
// contract: partial or pre-level-2 input is rejected before any diffing.
func validate(doc *Document) error {
	if doc.XMLNS == "" {
		return ErrNotSBML
	}
	if doc.Level == "1" || strings.Contains(doc.XMLNS, "level1") {
		return ErrUnsupportedLevel
	}
	if doc.Model == nil {
		return fmt.Errorf("%w: missing <model>", ErrNotSBML)
	}
	if doc.Model.Reactions != nil && doc.Model.Species == nil {
		return ErrMissingSpeciesList
	}
	return nil
}
