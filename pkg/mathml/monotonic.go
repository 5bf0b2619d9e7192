package mathml

import "math"

// Direction classifies the effect a variable has on an expression's
// value: always increasing, always decreasing, or mixed/unknown.
type Direction int

const (
	// DirectionOther means the effect is non-monotonic or could not be
	// determined (non-evaluable expression, variable absent).
	DirectionOther Direction = iota
	// DirectionIncreasing means increasing the variable never decreases
	// the expression's value.
	DirectionIncreasing
	// DirectionDecreasing means increasing the variable never increases
	// the expression's value.
	DirectionDecreasing
)

// String returns the wire form used in diagrams and reports.
func (d Direction) String() string {
	switch d {
	case DirectionIncreasing:
		return "monotonic_increasing"
	case DirectionDecreasing:
		return "monotonic_decreasing"
	default:
		return "other"
	}
}

// sampleMultipliers spans four orders of magnitude around the variable's
// base value. Enough to catch the sign changes of the Hill and
// Michaelis-Menten forms that dominate kinetic laws.
var sampleMultipliers = []float64{0.01, 0.1, 0.5, 1, 2, 10, 100}

// Classify determines the monotonic effect of variable on expr by
// numeric sampling. Unbound identifiers other than the variable are
// fixed at their initial value when known, else at 1. The variable is
// swept across several magnitudes of its base value; a consistently
// non-decreasing (non-increasing) response classifies as increasing
// (decreasing). Sampling failures classify as [DirectionOther].
func Classify(expr Expr, variable string, initial map[string]float64) Direction {
	env := make(map[string]float64)
	for _, name := range Identifiers(expr) {
		if v, ok := initial[name]; ok {
			env[name] = v
		} else {
			env[name] = 1
		}
	}
	if _, ok := env[variable]; !ok {
		return DirectionOther
	}

	base := env[variable]
	if base <= 0 {
		base = 1
	}

	values := make([]float64, 0, len(sampleMultipliers))
	for _, m := range sampleMultipliers {
		env[variable] = base * m
		v, err := Eval(expr, env)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return DirectionOther
		}
		values = append(values, v)
	}

	nonDecreasing, nonIncreasing, constant := true, true, true
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			nonDecreasing = false
		}
		if values[i] > values[i-1] {
			nonIncreasing = false
		}
		if values[i] != values[i-1] {
			constant = false
		}
	}

	switch {
	case constant:
		return DirectionOther
	case nonDecreasing:
		return DirectionIncreasing
	case nonIncreasing:
		return DirectionDecreasing
	default:
		return DirectionOther
	}
}

// ClassifyFragment parses a raw MathML fragment and classifies it.
// Unparseable fragments classify as [DirectionOther].
func ClassifyFragment(fragment, variable string, initial map[string]float64) Direction {
	expr, err := Parse(fragment)
	if err != nil {
		return DirectionOther
	}
	return Classify(expr, variable, initial)
}
