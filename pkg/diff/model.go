package diff

// Wire values for regulatory/modifier arrow directions, as produced by
// the monotonicity classifier.
const (
	DirectionIncreasing = "monotonic_increasing"
	DirectionDecreasing = "monotonic_decreasing"
	DirectionOther      = "other"
)

// NoCompartment is the bucket id for elements that belong to no single
// compartment, either because they reference none or because their
// participants disagree.
const NoCompartment = "NONE"

// CompartmentKind enumerates the outcomes of compartment inference.
type CompartmentKind int

const (
	// CompartmentSingle means every participant agreed on one compartment.
	CompartmentSingle CompartmentKind = iota
	// CompartmentNone means no participant carried compartment information.
	CompartmentNone
	// CompartmentIncompatible means participants named different
	// compartments; the element lands in the NONE bucket rather than
	// being dropped.
	CompartmentIncompatible
)

// CompartmentRef is the result of inferring an element's compartment
// from its participants.
type CompartmentRef struct {
	Kind CompartmentKind
	ID   string
}

// SingleCompartment returns a reference to one agreed compartment.
func SingleCompartment(id string) CompartmentRef {
	return CompartmentRef{Kind: CompartmentSingle, ID: id}
}

// UnknownCompartment returns the no-information reference.
func UnknownCompartment() CompartmentRef {
	return CompartmentRef{Kind: CompartmentNone}
}

// IncompatibleCompartment returns the participants-disagree reference.
func IncompatibleCompartment() CompartmentRef {
	return CompartmentRef{Kind: CompartmentIncompatible}
}

// Bucket returns the diff-tree compartment id this reference maps to.
func (c CompartmentRef) Bucket() string {
	if c.Kind == CompartmentSingle && c.ID != "" {
		return c.ID
	}
	return NoCompartment
}

// EntityRef is an identifier occurring in a math expression, classified
// by kind and by its monotonic effect on the expression.
type EntityRef struct {
	ID        string
	IsSpecies bool
	Direction string
}

// ReactionDetails carries every reaction fact the drivers consume.
type ReactionDetails struct {
	ID              string
	Name            string
	Reactants       []string
	Products        []string
	Modifiers       []string
	ReactantStoich  []string
	ProductStoich   []string
	Compartment     CompartmentRef
	RateLaw         string // infix rendering, "" when no kinetic law
	RateIdentifiers []EntityRef
	Fast            bool
	Irreversible    bool
	SBOTerm         string
}

// Empty reports whether the reaction carries no usable facts, in which
// case the model is omitted from the reaction's accumulators.
func (d ReactionDetails) Empty() bool {
	return len(d.Reactants) == 0 && len(d.Products) == 0 && d.RateLaw == ""
}

// RuleDetails describes a rate or assignment rule.
type RuleDetails struct {
	Target          string
	TargetIsSpecies bool
	Compartment     string // bucket id; NoCompartment for parameter targets
	RateLaw         string
	Entities        []EntityRef
}

// AlgebraicRuleDetails describes an algebraic rule. ID is the metaid
// when present, else a deterministic content-derived id.
type AlgebraicRuleDetails struct {
	ID      string
	Species []string
	Params  []string
	RateLaw string
}

// EventAssignmentDetails is one assignment within an event.
type EventAssignmentDetails struct {
	Target          string
	TargetIsSpecies bool
	Expr            string
	Entities        []EntityRef
}

// EventDetails describes an event. ID is the explicit id when present,
// else a deterministic content hash.
type EventDetails struct {
	ID             string
	Name           string
	Trigger        string
	TriggerSpecies []string
	TriggerParams  []string
	Assignments    []EventAssignmentDetails
}

// RegulatoryArrow is a species→reaction interaction implied by a
// kinetic law referencing a non-reactant species.
type RegulatoryArrow struct {
	Source    string
	Target    string
	Direction string
}

// Model is the per-document accessor contract the diff engine depends
// on. One adapter exists per concrete parsing library; pkg/sbml
// provides the production implementation.
type Model interface {
	// Name returns a display name for legends and table headers.
	Name() string

	// CompartmentIDs returns the declared compartment ids, sorted.
	CompartmentIDs() []string

	// SpeciesIn returns the ids of species in a compartment, sorted.
	SpeciesIn(compartment string) []string

	// HasSpecies reports whether id names a species in this model.
	HasSpecies(id string) bool

	// SpeciesDisplayName returns the species name, falling back to id.
	SpeciesDisplayName(id string) string

	// BoundaryCondition returns the species boundary flag as written
	// ("true"/"false"/"").
	BoundaryCondition(id string) string

	// ReactionIDs returns every reaction id, sorted.
	ReactionIDs() []string

	// ReactionDetails returns the reaction's facts; ok is false when the
	// model has no reaction with that id.
	ReactionDetails(id string) (ReactionDetails, bool)

	// RuleTargetIDs returns the variables set by rate or assignment
	// rules, sorted.
	RuleTargetIDs() []string

	// RuleDetails returns the rule targeting the given variable; ok is
	// false when no such rule exists.
	RuleDetails(target string) (RuleDetails, bool)

	// AlgebraicRules returns every algebraic rule, in document order.
	AlgebraicRules() []AlgebraicRuleDetails

	// Events returns every event, in document order.
	Events() []EventDetails

	// RegulatoryArrows returns the regulatory interactions whose source
	// species lives in the given compartment. Reactions named in
	// skipReactions are ignored (used when cartoon mode elides them).
	RegulatoryArrows(compartment string, skipReactions map[string]bool) []RegulatoryArrow

	// ParameterIDs returns every global parameter id, sorted.
	ParameterIDs() []string

	// ParameterValue returns a parameter's initial value as written.
	ParameterValue(id string) (string, bool)

	// ParameterDisplayName returns the parameter name, falling back to id.
	ParameterDisplayName(id string) string
}
