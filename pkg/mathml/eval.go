package mathml

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnboundSymbol is returned by [Eval] when the expression references
// an identifier that is missing from the environment.
var ErrUnboundSymbol = errors.New("unbound symbol")

// ErrNotEvaluable is returned by [Eval] for operators without a numeric
// interpretation (user-defined function calls, unknown operators).
var ErrNotEvaluable = errors.New("expression is not numerically evaluable")

// Eval computes the numeric value of an expression under the given
// variable bindings. Boolean subexpressions evaluate to 1 (true) or 0
// (false).
func Eval(e Expr, env map[string]float64) (float64, error) {
	switch v := e.(type) {
	case Num:
		return v.Value, nil

	case Sym:
		switch v.Name {
		case "pi":
			return math.Pi, nil
		case "e":
			return math.E, nil
		case "true":
			return 1, nil
		case "false":
			return 0, nil
		}
		val, ok := env[v.Name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnboundSymbol, v.Name)
		}
		return val, nil

	case Apply:
		return evalApply(v, env)

	case Piecewise:
		for _, p := range v.Pieces {
			cond, err := Eval(p.Cond, env)
			if err != nil {
				return 0, err
			}
			if cond != 0 {
				return Eval(p.Value, env)
			}
		}
		if v.Otherwise != nil {
			return Eval(v.Otherwise, env)
		}
		return 0, fmt.Errorf("%w: piecewise with no matching branch", ErrNotEvaluable)

	default:
		return 0, ErrNotEvaluable
	}
}

func evalApply(a Apply, env map[string]float64) (float64, error) {
	args := make([]float64, len(a.Args))
	for i, arg := range a.Args {
		v, err := Eval(arg, env)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	switch a.Op {
	case "plus":
		sum := 0.0
		for _, v := range args {
			sum += v
		}
		return sum, nil
	case "minus":
		if len(args) == 1 {
			return -args[0], nil
		}
		if len(args) == 2 {
			return args[0] - args[1], nil
		}
	case "times":
		product := 1.0
		for _, v := range args {
			product *= v
		}
		return product, nil
	case "divide":
		if len(args) == 2 {
			return args[0] / args[1], nil
		}
	case "power":
		if len(args) == 2 {
			return math.Pow(args[0], args[1]), nil
		}
	case "root":
		switch len(args) {
		case 1:
			return math.Sqrt(args[0]), nil
		case 2:
			// First argument is the degree qualifier.
			return math.Pow(args[1], 1/args[0]), nil
		}
	case "exp":
		if len(args) == 1 {
			return math.Exp(args[0]), nil
		}
	case "ln":
		if len(args) == 1 {
			return math.Log(args[0]), nil
		}
	case "log":
		switch len(args) {
		case 1:
			return math.Log10(args[0]), nil
		case 2:
			// First argument is the logbase qualifier.
			return math.Log(args[1]) / math.Log(args[0]), nil
		}
	case "abs":
		if len(args) == 1 {
			return math.Abs(args[0]), nil
		}
	case "floor":
		if len(args) == 1 {
			return math.Floor(args[0]), nil
		}
	case "ceiling":
		if len(args) == 1 {
			return math.Ceil(args[0]), nil
		}
	case "eq":
		return boolToFloat(len(args) == 2 && args[0] == args[1]), nil
	case "neq":
		return boolToFloat(len(args) == 2 && args[0] != args[1]), nil
	case "gt":
		return boolToFloat(len(args) == 2 && args[0] > args[1]), nil
	case "lt":
		return boolToFloat(len(args) == 2 && args[0] < args[1]), nil
	case "geq":
		return boolToFloat(len(args) == 2 && args[0] >= args[1]), nil
	case "leq":
		return boolToFloat(len(args) == 2 && args[0] <= args[1]), nil
	case "and":
		for _, v := range args {
			if v == 0 {
				return 0, nil
			}
		}
		return 1, nil
	case "or":
		for _, v := range args {
			if v != 0 {
				return 1, nil
			}
		}
		return 0, nil
	case "not":
		if len(args) == 1 {
			return boolToFloat(args[0] == 0), nil
		}
	}

	return 0, fmt.Errorf("%w: %s/%d", ErrNotEvaluable, a.Op, len(args))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
