package symbolic

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// rootImagTol bounds the imaginary part under which a companion-matrix
// eigenvalue is accepted as a real root.
const rootImagTol = 1e-8

// coeffZeroTol treats trailing leading coefficients below this magnitude
// as zero when normalizing a polynomial.
const coeffZeroTol = 1e-12

// Degree returns the degree of e viewed as a polynomial in the named
// variable. The second return is false when e is not polynomial in it
// (the variable appears inside a function call, a fractional power, or
// an exponent).
func Degree(e Expr, name string) (int, bool) {
	switch v := e.(type) {
	case num:
		return 0, true
	case sym:
		if v.name == name {
			return 1, true
		}
		return 0, true
	case add:
		maxDeg := 0
		for _, t := range v.terms {
			d, ok := Degree(t, name)
			if !ok {
				return 0, false
			}
			if d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg, true
	case mul:
		sum := 0
		for _, f := range v.factors {
			d, ok := Degree(f, name)
			if !ok {
				return 0, false
			}
			sum += d
		}
		return sum, true
	case pow:
		if DependsOn(v.exp, name) {
			return 0, false
		}
		d, ok := Degree(v.base, name)
		if !ok {
			return 0, false
		}
		if d == 0 {
			return 0, true
		}
		n, isNum := v.exp.(num)
		if !isNum || n.v < 0 || n.v != math.Trunc(n.v) {
			return 0, false
		}
		return d * int(n.v), true
	case call:
		if DependsOn(v.arg, name) {
			return 0, false
		}
		return 0, true
	}
	return 0, false
}

// Coeffs extracts the coefficients of e as a univariate polynomial in the
// named variable, constant term first. It requires that the variable is
// the only free symbol of e. Coefficient k is recovered as the k-th
// derivative at zero divided by k factorial.
func Coeffs(e Expr, name string) ([]float64, bool) {
	deg, ok := Degree(e, name)
	if !ok {
		return nil, false
	}
	for _, v := range Vars(e) {
		if v != name {
			return nil, false
		}
	}

	coeffs := make([]float64, deg+1)
	d := e.Simplify()
	fact := 1.0
	for k := 0; k <= deg; k++ {
		if k > 0 {
			fact *= float64(k)
			d = d.Diff(name)
		}
		c, ok := d.Sub(name, Number(0)).Eval()
		if !ok {
			return nil, false
		}
		coeffs[k] = c / fact
	}
	return coeffs, true
}

// RealRoots returns the real roots of e = 0 as a polynomial in the named
// variable, sorted ascending. The second return is false when e is not a
// univariate polynomial in that variable. A constant expression has no
// roots.
func RealRoots(e Expr, name string) ([]float64, bool) {
	coeffs, ok := Coeffs(e, name)
	if !ok {
		return nil, false
	}
	roots := polyRoots(coeffs)
	sort.Float64s(roots)
	return roots, true
}

// polyRoots finds the real roots of the polynomial with the given
// coefficients (constant term first). Degree one is solved directly;
// higher degrees go through the eigenvalues of the companion matrix.
func polyRoots(coeffs []float64) []float64 {
	n := len(coeffs) - 1
	for n > 0 && math.Abs(coeffs[n]) <= coeffZeroTol {
		n--
	}
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{-coeffs[0] / coeffs[1]}
	}

	// Companion matrix of the monic polynomial: ones on the subdiagonal,
	// negated normalized coefficients in the last column.
	c := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		if i > 0 {
			c.Set(i, i-1, 1)
		}
		c.Set(i, n-1, -coeffs[i]/coeffs[n])
	}

	var eig mat.Eigen
	if !eig.Factorize(c, mat.EigenNone) {
		return nil
	}

	var roots []float64
	for _, ev := range eig.Values(nil) {
		if math.Abs(imag(ev)) <= rootImagTol*(1+math.Abs(real(ev))) {
			roots = append(roots, real(ev))
		}
	}
	return roots
}
