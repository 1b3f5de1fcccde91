package symbolic

import (
	"math"
	"sort"
)

// residualTol is the magnitude under which a constant equation residual is
// accepted as zero.
const residualTol = 1e-9

// maxSolveDepth bounds the elimination recursion; case splits on a
// vanishing pivot coefficient can re-expand the system.
const maxSolveDepth = 32

// Solution maps each unknown to its real value.
type Solution map[string]float64

// SolveSystem finds all real solutions of the simultaneous equations
// eqs[i] = 0 over the given unknowns. Solutions are returned in canonical
// order: ascending lexicographic on the unknown values taken in the given
// unknown order.
//
// The solver works by symbolic elimination: it repeatedly isolates an
// unknown that some equation is affine in, substitutes, and recurses.
// When the pivot coefficient itself contains unknowns the elimination
// splits into a branch where the coefficient is nonzero (with the
// denominator cleared so the reduced system stays polynomial) and a
// branch where it vanishes. Equations univariate in a single unknown
// branch over their real polynomial roots. Systems outside that class
// yield an empty solution set.
func SolveSystem(eqs []Expr, unknowns []string) []Solution {
	sols := solveRec(eqs, unknowns, 0)
	sort.Slice(sols, func(i, j int) bool {
		for _, u := range unknowns {
			if sols[i][u] != sols[j][u] {
				return sols[i][u] < sols[j][u]
			}
		}
		return false
	})
	return sols
}

func solveRec(eqs []Expr, unknowns []string, depth int) []Solution {
	if depth > maxSolveDepth {
		return nil
	}

	// Drop identically-zero equations; a non-zero constant residual means
	// the system is inconsistent.
	var active []Expr
	for _, eq := range eqs {
		eq = eq.Simplify()
		if c, ok := eq.Eval(); ok {
			if math.Abs(c) > residualTol {
				return nil
			}
			continue
		}
		active = append(active, eq)
	}

	if len(unknowns) == 0 {
		if len(active) > 0 {
			return nil
		}
		return []Solution{{}}
	}

	// Prefer an affine pivot: an equation whose derivative with respect to
	// some unknown no longer contains that unknown, so eq = a*v + b.
	for _, v := range unknowns {
		for i, eq := range active {
			if !DependsOn(eq, v) {
				continue
			}
			a := eq.Diff(v).Simplify()
			if DependsOn(a, v) {
				continue
			}
			b := eq.Sub(v, Number(0)).Simplify()
			if c, ok := a.Eval(); ok {
				if math.Abs(c) <= residualTol {
					continue
				}
				return constPivot(active, unknowns, i, v, Product(Number(-1/c), b), depth)
			}
			return pivotBranch(active, unknowns, i, v, a, b, depth)
		}
	}

	// Otherwise branch over the real roots of an equation univariate in
	// one unknown.
	for i, eq := range active {
		free := unknownsIn(eq, unknowns)
		if len(free) != 1 {
			continue
		}
		v := free[0]
		roots, ok := RealRoots(eq, v)
		if !ok {
			continue
		}
		var out []Solution
		rest := removeEq(active, i)
		for _, r := range roots {
			sub := substituteAll(rest, v, Number(r))
			for _, s := range solveRec(sub, removeName(unknowns, v), depth+1) {
				s[v] = r
				out = append(out, s)
			}
		}
		return out
	}

	return nil
}

// constPivot eliminates unknown v using the replacement rep, whose pivot
// coefficient is a nonzero constant, solves the reduced system, and
// back-substitutes v into each solution.
func constPivot(eqs []Expr, unknowns []string, eqIdx int, v string, rep Expr, depth int) []Solution {
	rest := substituteAll(removeEq(eqs, eqIdx), v, rep)
	var out []Solution
	for _, s := range solveRec(rest, removeName(unknowns, v), depth+1) {
		vval, ok := evalWith(rep, s)
		if !ok {
			continue
		}
		s[v] = vval
		out = append(out, s)
	}
	return out
}

// pivotBranch eliminates unknown v from the pivot equation a*v + b = 0
// when the coefficient a still contains other unknowns. Two disjoint
// branches are solved: one assuming a != 0, where v = -b/a and the
// denominators this introduces are cleared symbolically, and one where
// a = 0, so the pivot equation degenerates to b = 0 and v remains an
// unknown of the rest of the system.
func pivotBranch(eqs []Expr, unknowns []string, eqIdx int, v string, a, b Expr, depth int) []Solution {
	rest := removeEq(eqs, eqIdx)
	var out []Solution

	cleared := make([]Expr, len(rest))
	ok := true
	for i, eq := range rest {
		cleared[i], ok = clearPivot(eq, v, a, b)
		if !ok {
			break
		}
	}
	if ok {
		// Multiplying by powers of a introduces spurious roots on the
		// a = 0 locus; those belong to the other branch and are dropped
		// here.
		rep := Product(Number(-1), b, Power(a, Number(-1)))
		for _, s := range solveRec(cleared, removeName(unknowns, v), depth+1) {
			aval, ok := evalWith(a, s)
			if !ok || math.Abs(aval) <= residualTol {
				continue
			}
			vval, ok := evalWith(rep, s)
			if !ok {
				continue
			}
			s[v] = vval
			out = append(out, s)
		}
	}

	degenerate := append([]Expr{a, b}, rest...)
	out = append(out, solveRec(degenerate, unknowns, depth+1)...)
	return out
}

// clearPivot substitutes v = -b/a into eq and multiplies through by a
// raised to eq's degree in v, keeping the result polynomial. With
// coefficients c_k of v^k extracted by repeated differentiation, the
// cleared equation is sum_k c_k * (-b)^k * a^(deg-k). Fails when eq is
// not polynomial in v.
func clearPivot(eq Expr, v string, a, b Expr) (Expr, bool) {
	deg, ok := Degree(eq, v)
	if !ok {
		return nil, false
	}
	negb := Neg(b)
	terms := make([]Expr, 0, deg+1)
	cur := eq
	factorial := 1.0
	for k := 0; k <= deg; k++ {
		if k > 0 {
			cur = cur.Diff(v).Simplify()
			factorial *= float64(k)
		}
		ck := cur.Sub(v, Number(0)).Simplify()
		terms = append(terms, Product(
			Number(1/factorial),
			ck,
			Power(negb, Number(float64(k))),
			Power(a, Number(float64(deg-k))),
		))
	}
	return Sum(terms...).Simplify(), true
}

// evalWith evaluates e after substituting every binding of s.
func evalWith(e Expr, s Solution) (float64, bool) {
	for name, val := range s {
		e = e.Sub(name, Number(val))
	}
	return e.Simplify().Eval()
}

func unknownsIn(e Expr, unknowns []string) []string {
	var out []string
	for _, u := range unknowns {
		if DependsOn(e, u) {
			out = append(out, u)
		}
	}
	return out
}

func substituteAll(eqs []Expr, name string, value Expr) []Expr {
	out := make([]Expr, len(eqs))
	for i, eq := range eqs {
		out[i] = eq.Sub(name, value).Simplify()
	}
	return out
}

func removeEq(eqs []Expr, i int) []Expr {
	out := make([]Expr, 0, len(eqs)-1)
	out = append(out, eqs[:i]...)
	return append(out, eqs[i+1:]...)
}

func removeName(names []string, name string) []string {
	out := make([]string, 0, len(names)-1)
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
