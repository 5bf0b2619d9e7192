// Package mathml parses the content-MathML subset that SBML uses for
// kinetic laws, rule expressions and event triggers.
//
// Expressions are parsed into a small tree ([Num], [Sym], [Apply],
// [Piecewise]) that supports three consumers: deterministic infix
// rendering for display and equality checks ([Expr.Infix]), identifier
// extraction for arrow generation ([Identifiers]), and numeric
// evaluation for monotonicity classification ([Classify]).
package mathml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrEmptyExpression is returned by [Parse] when the fragment contains
	// no expression element.
	ErrEmptyExpression = errors.New("empty math expression")

	// ErrMalformedMath is returned by [Parse] for fragments that are not
	// well-formed content MathML.
	ErrMalformedMath = errors.New("malformed math expression")
)

// Expr is a parsed content-MathML expression.
type Expr interface {
	// Infix renders the expression as a deterministic human-readable
	// string. Two expressions render identically iff their trees are
	// structurally equal, so the string doubles as an equality key.
	Infix() string

	isExpr()
}

// Num is a numeric literal (<cn>).
type Num struct {
	Value float64
}

// Sym is an identifier leaf (<ci> or <csymbol>).
type Sym struct {
	Name string
}

// Apply is an operator or function application (<apply>).
type Apply struct {
	Op   string
	Args []Expr
}

// Piece is one (value, condition) branch of a piecewise expression.
type Piece struct {
	Value Expr
	Cond  Expr
}

// Piecewise is a conditional expression (<piecewise>).
type Piecewise struct {
	Pieces    []Piece
	Otherwise Expr
}

func (Num) isExpr()       {}
func (Sym) isExpr()       {}
func (Apply) isExpr()     {}
func (Piecewise) isExpr() {}

// Parse decodes a content-MathML fragment. The fragment may start at a
// <math> element or directly at an expression element.
func Parse(fragment string) (Expr, error) {
	dec := xml.NewDecoder(strings.NewReader(fragment))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyExpression
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "math" {
			return parseChild(dec)
		}
		return parseElement(dec, start)
	}
}

// parseChild parses the next expression element, skipping whitespace,
// and consumes the parent's end tag.
func parseChild(dec *xml.Decoder) (Expr, error) {
	var expr Expr
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if expr == nil {
				return nil, ErrEmptyExpression
			}
			return expr, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if expr != nil {
				return nil, fmt.Errorf("%w: unexpected second expression <%s>", ErrMalformedMath, t.Name.Local)
			}
			e, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			expr = e
		case xml.EndElement:
			if expr == nil {
				return nil, ErrEmptyExpression
			}
			return expr, nil
		}
	}
}

// nullaryConstants maps leaf operator elements to their symbolic names.
var nullaryConstants = map[string]string{
	"true":         "true",
	"false":        "false",
	"pi":           "pi",
	"exponentiale": "e",
	"infinity":     "inf",
	"notanumber":   "nan",
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (Expr, error) {
	switch start.Name.Local {
	case "ci", "csymbol":
		text, err := elementText(dec, start)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(text)
		if name == "" {
			return nil, fmt.Errorf("%w: empty <%s>", ErrMalformedMath, start.Name.Local)
		}
		return Sym{Name: name}, nil

	case "cn":
		return parseNumber(dec, start)

	case "apply":
		return parseApply(dec)

	case "piecewise":
		return parsePiecewise(dec)

	case "logbase", "degree":
		// Qualifier wrappers around a single expression.
		return parseChild(dec)

	default:
		if name, ok := nullaryConstants[start.Name.Local]; ok {
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
			}
			return Sym{Name: name}, nil
		}
		return nil, fmt.Errorf("%w: unsupported element <%s>", ErrMalformedMath, start.Name.Local)
	}
}

// parseNumber handles <cn>, including e-notation and rational values
// whose parts are separated by <sep/>.
func parseNumber(dec *xml.Decoder, start xml.StartElement) (Expr, error) {
	var cnType string
	for _, attr := range start.Attr {
		if attr.Name.Local == "type" {
			cnType = attr.Value
		}
	}

	var parts []string
	var current strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			current.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local != "sep" {
				return nil, fmt.Errorf("%w: unexpected <%s> in <cn>", ErrMalformedMath, t.Name.Local)
			}
			parts = append(parts, current.String())
			current.Reset()
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
			}
		case xml.EndElement:
			parts = append(parts, current.String())
			return numberFromParts(cnType, parts)
		}
	}
}

func numberFromParts(cnType string, parts []string) (Expr, error) {
	nums := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrMalformedMath, strings.TrimSpace(p))
		}
		nums[i] = v
	}

	switch {
	case cnType == "e-notation" && len(nums) == 2:
		return Num{Value: nums[0] * pow10(nums[1])}, nil
	case cnType == "rational" && len(nums) == 2:
		if nums[1] == 0 {
			return nil, fmt.Errorf("%w: rational with zero denominator", ErrMalformedMath)
		}
		return Num{Value: nums[0] / nums[1]}, nil
	case len(nums) == 1:
		return Num{Value: nums[0]}, nil
	default:
		return nil, fmt.Errorf("%w: <cn> with %d parts", ErrMalformedMath, len(nums))
	}
}

func pow10(exp float64) float64 {
	v := 1.0
	if exp >= 0 {
		for i := 0; i < int(exp); i++ {
			v *= 10
		}
		return v
	}
	for i := 0; i < int(-exp); i++ {
		v /= 10
	}
	return v
}

// parseApply decodes an <apply> element: the first child names the
// operator (or is a <ci> for user-defined function calls), the rest are
// the arguments.
func parseApply(dec *xml.Decoder) (Expr, error) {
	var op string
	var args []Expr

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if op == "" {
				switch t.Name.Local {
				case "ci", "csymbol":
					text, err := elementText(dec, t)
					if err != nil {
						return nil, err
					}
					op = "call:" + strings.TrimSpace(text)
				default:
					op = t.Name.Local
					if err := dec.Skip(); err != nil {
						return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
					}
				}
				continue
			}
			arg, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		case xml.EndElement:
			if op == "" {
				return nil, fmt.Errorf("%w: <apply> without operator", ErrMalformedMath)
			}
			return Apply{Op: op, Args: args}, nil
		}
	}
}

func parsePiecewise(dec *xml.Decoder) (Expr, error) {
	var pw Piecewise
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "piece":
				value, err := parseChildExpr(dec)
				if err != nil {
					return nil, err
				}
				cond, err := parseChild(dec)
				if err != nil {
					return nil, err
				}
				pw.Pieces = append(pw.Pieces, Piece{Value: value, Cond: cond})
			case "otherwise":
				otherwise, err := parseChild(dec)
				if err != nil {
					return nil, err
				}
				pw.Otherwise = otherwise
			default:
				return nil, fmt.Errorf("%w: unexpected <%s> in <piecewise>", ErrMalformedMath, t.Name.Local)
			}
		case xml.EndElement:
			if len(pw.Pieces) == 0 && pw.Otherwise == nil {
				return nil, fmt.Errorf("%w: empty <piecewise>", ErrMalformedMath)
			}
			return pw, nil
		}
	}
}

// parseChildExpr parses exactly one expression element without consuming
// the enclosing end tag (used for the first child of <piece>).
func parseChildExpr(dec *xml.Decoder) (Expr, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMath, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return parseElement(dec, start)
		}
		if _, ok := tok.(xml.EndElement); ok {
			return nil, ErrEmptyExpression
		}
	}
}

func elementText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedMath, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.WriteString(string(t))
		case xml.EndElement:
			return sb.String(), nil
		case xml.StartElement:
			return "", fmt.Errorf("%w: unexpected <%s> in <%s>", ErrMalformedMath, t.Name.Local, start.Name.Local)
		}
	}
}

// Identifiers returns the sorted set of identifier names occurring in
// the expression. Function names from user-defined calls are excluded.
func Identifiers(e Expr) []string {
	seen := map[string]bool{}
	collectIdentifiers(e, seen)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectIdentifiers(e Expr, seen map[string]bool) {
	switch v := e.(type) {
	case Sym:
		seen[v.Name] = true
	case Apply:
		for _, arg := range v.Args {
			collectIdentifiers(arg, seen)
		}
	case Piecewise:
		for _, p := range v.Pieces {
			collectIdentifiers(p.Value, seen)
			collectIdentifiers(p.Cond, seen)
		}
		if v.Otherwise != nil {
			collectIdentifiers(v.Otherwise, seen)
		}
	}
}

// infixOperators maps MathML operator names to their display symbol.
var infixOperators = map[string]string{
	"plus":   "+",
	"minus":  "-",
	"times":  "*",
	"divide": "/",
	"power":  "^",
	"eq":     "==",
	"neq":    "!=",
	"gt":     ">",
	"lt":     "<",
	"geq":    ">=",
	"leq":    "<=",
	"and":    "&&",
	"or":     "||",
}

// Infix renders a numeric literal. Integral values print without a
// decimal point so 2.0 and 2 compare equal.
func (n Num) Infix() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (s Sym) Infix() string { return s.Name }

func (a Apply) Infix() string {
	if sym, ok := infixOperators[a.Op]; ok {
		if a.Op == "minus" && len(a.Args) == 1 {
			return "-" + a.Args[0].Infix()
		}
		parts := make([]string, len(a.Args))
		for i, arg := range a.Args {
			parts[i] = arg.Infix()
		}
		return "(" + strings.Join(parts, " "+sym+" ") + ")"
	}

	name := strings.TrimPrefix(a.Op, "call:")
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.Infix()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func (p Piecewise) Infix() string {
	var sb strings.Builder
	sb.WriteString("piecewise(")
	for i, piece := range p.Pieces {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(piece.Value.Infix())
		sb.WriteString(" if ")
		sb.WriteString(piece.Cond.Infix())
	}
	if p.Otherwise != nil {
		if len(p.Pieces) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Otherwise.Infix())
		sb.WriteString(" otherwise")
	}
	sb.WriteString(")")
	return sb.String()
}

// InfixOr parses and renders a fragment, returning fallback when the
// fragment is empty or unparseable. Convenience for callers that treat
// a missing expression as an empty string.
func InfixOr(fragment, fallback string) string {
	if strings.TrimSpace(fragment) == "" {
		return fallback
	}
	expr, err := Parse(fragment)
	if err != nil {
		return fallback
	}
	return expr.Infix()
}
