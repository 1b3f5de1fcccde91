package symbolic

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Expr is an immutable symbolic formula. All operations return new
// expressions; an Expr is never mutated after construction.
type Expr interface {
	// Diff returns the partial derivative with respect to the named variable.
	Diff(name string) Expr

	// Sub replaces every occurrence of the named variable with value.
	Sub(name string, value Expr) Expr

	// Eval returns the numeric value of a constant expression.
	// The second return is false if any free variable remains.
	Eval() (float64, bool)

	// Simplify returns a canonical, constant-folded form.
	Simplify() Expr

	String() string
	Equal(other Expr) bool

	collectVars(out map[string]struct{})
}

// Number returns a constant expression.
func Number(v float64) Expr { return num{v: v} }

// Symbol returns a variable expression.
func Symbol(name string) Expr { return sym{name: name} }

// Sum returns the simplified sum of terms.
func Sum(terms ...Expr) Expr { return add{terms: terms}.Simplify() }

// Product returns the simplified product of factors.
func Product(factors ...Expr) Expr { return mul{factors: factors}.Simplify() }

// Power returns the simplified power base^exp.
func Power(base, exp Expr) Expr { return pow{base: base, exp: exp}.Simplify() }

// Neg returns -e.
func Neg(e Expr) Expr { return Product(Number(-1), e) }

// Div returns a/b as a * b^-1.
func Div(a, b Expr) Expr { return Product(a, Power(b, Number(-1))) }

// Vars returns the sorted free variables of e.
func Vars(e Expr) []string {
	set := make(map[string]struct{})
	e.collectVars(set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DependsOn reports whether e contains the named variable.
func DependsOn(e Expr, name string) bool {
	set := make(map[string]struct{})
	e.collectVars(set)
	_, ok := set[name]
	return ok
}

// num

type num struct{ v float64 }

func (n num) Diff(string) Expr          { return num{v: 0} }
func (n num) Sub(string, Expr) Expr     { return n }
func (n num) Eval() (float64, bool)     { return n.v, true }
func (n num) Simplify() Expr            { return n }
func (n num) collectVars(map[string]struct{}) {}

func (n num) String() string {
	if n.v < 0 {
		return "(" + strconv.FormatFloat(n.v, 'g', -1, 64) + ")"
	}
	return strconv.FormatFloat(n.v, 'g', -1, 64)
}

func (n num) Equal(other Expr) bool {
	o, ok := other.(num)
	return ok && n.v == o.v
}

// sym

type sym struct{ name string }

func (s sym) Diff(name string) Expr {
	if s.name == name {
		return num{v: 1}
	}
	return num{v: 0}
}

func (s sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

func (s sym) Eval() (float64, bool) { return 0, false }
func (s sym) Simplify() Expr        { return s }
func (s sym) String() string        { return s.name }

func (s sym) Equal(other Expr) bool {
	o, ok := other.(sym)
	return ok && s.name == o.name
}

func (s sym) collectVars(out map[string]struct{}) { out[s.name] = struct{}{} }

// add

type add struct{ terms []Expr }

func (a add) Diff(name string) Expr {
	parts := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.Diff(name)
	}
	return add{terms: parts}.Simplify()
}

func (a add) Sub(name string, value Expr) Expr {
	parts := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.Sub(name, value)
	}
	return add{terms: parts}.Simplify()
}

func (a add) Eval() (float64, bool) {
	var sum float64
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum, true
}

func (a add) Simplify() Expr {
	var flat []Expr
	var c float64
	for _, t := range a.terms {
		t = t.Simplify()
		switch v := t.(type) {
		case add:
			for _, inner := range v.terms {
				if n, ok := inner.(num); ok {
					c += n.v
				} else {
					flat = append(flat, inner)
				}
			}
		case num:
			c += v.v
		default:
			flat = append(flat, t)
		}
	}

	// Collect like terms: each non-constant term is split into a numeric
	// coefficient and a remainder keyed by its printed form.
	type group struct {
		coeff float64
		rest  Expr
	}
	groups := make(map[string]*group)
	var order []string
	for _, t := range flat {
		coeff, rest := splitCoeff(t)
		key := rest.String()
		if g, ok := groups[key]; ok {
			g.coeff += coeff
		} else {
			groups[key] = &group{coeff: coeff, rest: rest}
			order = append(order, key)
		}
	}
	sort.Strings(order)

	out := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		if g.coeff == 0 {
			continue
		}
		if g.coeff == 1 {
			out = append(out, g.rest)
		} else if rm, ok := g.rest.(mul); ok {
			out = append(out, mul{factors: append([]Expr{num{v: g.coeff}}, rm.factors...)})
		} else {
			out = append(out, mul{factors: []Expr{num{v: g.coeff}, g.rest}})
		}
	}
	if c != 0 {
		out = append(out, num{v: c})
	}

	switch len(out) {
	case 0:
		return num{v: 0}
	case 1:
		return out[0]
	}
	return add{terms: out}
}

func (a add) String() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

func (a add) Equal(other Expr) bool {
	o, ok := other.(add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a add) collectVars(out map[string]struct{}) {
	for _, t := range a.terms {
		t.collectVars(out)
	}
}

// splitCoeff separates a simplified term into a numeric coefficient and
// the remaining factor product.
func splitCoeff(e Expr) (float64, Expr) {
	m, ok := e.(mul)
	if !ok {
		return 1, e
	}
	coeff := 1.0
	var rest []Expr
	for _, f := range m.factors {
		if n, isNum := f.(num); isNum {
			coeff *= n.v
		} else {
			rest = append(rest, f)
		}
	}
	switch len(rest) {
	case 0:
		return coeff, num{v: 1}
	case 1:
		return coeff, rest[0]
	}
	return coeff, mul{factors: rest}
}

// mul

type mul struct{ factors []Expr }

func (m mul) Diff(name string) Expr {
	// Product rule: sum over factors of f_i' * prod(f_j, j != i).
	terms := make([]Expr, 0, len(m.factors))
	for i := range m.factors {
		parts := make([]Expr, 0, len(m.factors))
		parts = append(parts, m.factors[i].Diff(name))
		for j, f := range m.factors {
			if j != i {
				parts = append(parts, f)
			}
		}
		terms = append(terms, mul{factors: parts}.Simplify())
	}
	return add{terms: terms}.Simplify()
}

func (m mul) Sub(name string, value Expr) Expr {
	parts := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		parts[i] = f.Sub(name, value)
	}
	return mul{factors: parts}.Simplify()
}

func (m mul) Eval() (float64, bool) {
	prod := 1.0
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return 0, false
		}
		prod *= v
	}
	return prod, true
}

func (m mul) Simplify() Expr {
	var flat []Expr
	c := 1.0
	for _, f := range m.factors {
		f = f.Simplify()
		switch v := f.(type) {
		case mul:
			for _, inner := range v.factors {
				if n, ok := inner.(num); ok {
					c *= n.v
				} else {
					flat = append(flat, inner)
				}
			}
		case num:
			c *= v.v
		default:
			flat = append(flat, f)
		}
	}
	if c == 0 {
		return num{v: 0}
	}

	sort.Slice(flat, func(i, j int) bool { return flat[i].String() < flat[j].String() })

	out := make([]Expr, 0, len(flat)+1)
	if c != 1 {
		out = append(out, num{v: c})
	}
	out = append(out, flat...)

	switch len(out) {
	case 0:
		return num{v: 1}
	case 1:
		return out[0]
	}
	return mul{factors: out}
}

func (m mul) String() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, "*") + ")"
}

func (m mul) Equal(other Expr) bool {
	o, ok := other.(mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m mul) collectVars(out map[string]struct{}) {
	for _, f := range m.factors {
		f.collectVars(out)
	}
}

// pow

type pow struct{ base, exp Expr }

func (p pow) Diff(name string) Expr {
	if !DependsOn(p.exp, name) {
		// d(b^c) = c * b^(c-1) * b'
		return mul{factors: []Expr{
			p.exp,
			pow{base: p.base, exp: add{terms: []Expr{p.exp, num{v: -1}}}.Simplify()}.Simplify(),
			p.base.Diff(name),
		}}.Simplify()
	}
	// General case: b^e = exp(e*ln b), d = b^e * (e'*ln b + e*b'/b).
	inner := add{terms: []Expr{
		mul{factors: []Expr{p.exp.Diff(name), call{fn: "ln", arg: p.base}}}.Simplify(),
		mul{factors: []Expr{p.exp, p.base.Diff(name), pow{base: p.base, exp: num{v: -1}}}}.Simplify(),
	}}.Simplify()
	return mul{factors: []Expr{p, inner}}.Simplify()
}

func (p pow) Sub(name string, value Expr) Expr {
	return pow{base: p.base.Sub(name, value), exp: p.exp.Sub(name, value)}.Simplify()
}

func (p pow) Eval() (float64, bool) {
	b, ok := p.base.Eval()
	if !ok {
		return 0, false
	}
	e, ok := p.exp.Eval()
	if !ok {
		return 0, false
	}
	return math.Pow(b, e), true
}

func (p pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if e, ok := exp.(num); ok {
		if e.v == 0 {
			return num{v: 1}
		}
		if e.v == 1 {
			return base
		}
		if b, ok := base.(num); ok {
			return num{v: math.Pow(b.v, e.v)}
		}
	}
	if b, ok := base.(num); ok {
		if b.v == 1 {
			return num{v: 1}
		}
		if b.v == 0 {
			if e, ok := exp.(num); ok && e.v > 0 {
				return num{v: 0}
			}
		}
	}
	return pow{base: base, exp: exp}
}

func (p pow) String() string { return "(" + p.base.String() + "^" + p.exp.String() + ")" }

func (p pow) Equal(other Expr) bool {
	o, ok := other.(pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p pow) collectVars(out map[string]struct{}) {
	p.base.collectVars(out)
	p.exp.collectVars(out)
}

// call

type call struct {
	fn  string
	arg Expr
}

// Call returns the simplified application of a named function to arg.
// The function must be one of the names accepted by the parser.
func Call(fn string, arg Expr) Expr { return call{fn: fn, arg: arg}.Simplify() }

func (c call) Diff(name string) Expr {
	var outer Expr
	switch c.fn {
	case "sin":
		outer = call{fn: "cos", arg: c.arg}
	case "cos":
		outer = mul{factors: []Expr{num{v: -1}, call{fn: "sin", arg: c.arg}}}
	case "tan":
		outer = pow{base: call{fn: "cos", arg: c.arg}, exp: num{v: -2}}
	case "exp":
		outer = c
	case "ln", "log":
		outer = pow{base: c.arg, exp: num{v: -1}}
	case "sqrt":
		outer = mul{factors: []Expr{num{v: 0.5}, pow{base: c.arg, exp: num{v: -0.5}}}}
	case "abs":
		outer = mul{factors: []Expr{c.arg, pow{base: c, exp: num{v: -1}}}}
	case "asin":
		outer = pow{
			base: add{terms: []Expr{num{v: 1}, mul{factors: []Expr{num{v: -1}, pow{base: c.arg, exp: num{v: 2}}}}}},
			exp:  num{v: -0.5},
		}
	case "acos":
		outer = mul{factors: []Expr{num{v: -1}, pow{
			base: add{terms: []Expr{num{v: 1}, mul{factors: []Expr{num{v: -1}, pow{base: c.arg, exp: num{v: 2}}}}}},
			exp:  num{v: -0.5},
		}}}
	case "atan":
		outer = pow{
			base: add{terms: []Expr{num{v: 1}, pow{base: c.arg, exp: num{v: 2}}}},
			exp:  num{v: -1},
		}
	case "sinh":
		outer = call{fn: "cosh", arg: c.arg}
	case "cosh":
		outer = call{fn: "sinh", arg: c.arg}
	case "tanh":
		outer = add{terms: []Expr{num{v: 1}, mul{factors: []Expr{num{v: -1}, pow{base: c, exp: num{v: 2}}}}}}
	default:
		outer = num{v: 0}
	}
	return mul{factors: []Expr{outer, c.arg.Diff(name)}}.Simplify()
}

func (c call) Sub(name string, value Expr) Expr {
	return call{fn: c.fn, arg: c.arg.Sub(name, value)}.Simplify()
}

func (c call) Eval() (float64, bool) {
	v, ok := c.arg.Eval()
	if !ok {
		return 0, false
	}
	fn, ok := numericFuncs[c.fn]
	if !ok {
		return 0, false
	}
	return fn(v), true
}

func (c call) Simplify() Expr {
	arg := c.arg.Simplify()
	if n, ok := arg.(num); ok {
		if fn, known := numericFuncs[c.fn]; known {
			return num{v: fn(n.v)}
		}
	}
	return call{fn: c.fn, arg: arg}
}

func (c call) String() string { return c.fn + "(" + c.arg.String() + ")" }

func (c call) Equal(other Expr) bool {
	o, ok := other.(call)
	return ok && c.fn == o.fn && c.arg.Equal(o.arg)
}

func (c call) collectVars(out map[string]struct{}) { c.arg.collectVars(out) }

var numericFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"exp":  math.Exp,
	"ln":   math.Log,
	"log":  math.Log,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
}
