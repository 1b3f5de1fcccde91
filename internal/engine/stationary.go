package engine

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/petergeorge7/optisym/internal/symbolic"
)

// definiteness outcomes for an evaluated Hessian.
const (
	indefinite       = 0
	positiveDefinite = 1
	negativeDefinite = -1
)

// stationary computes the gradient symbolically, solves gradient = 0 for
// all real critical points, classifies each by the definiteness of the
// evaluated Hessian, and keeps the extreme-valued candidate matching the
// requested direction. No critical points, or none surviving
// classification, is a normal null outcome.
func (e *Engine) stationary(cfg Config) (*Result, error) {
	vars := varNames(cfg.NumVars)
	f, err := e.alg.Parse(cfg.Objective)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}

	grad := e.alg.Gradient(f, vars)
	points := e.alg.SolveSystem(grad, vars)
	if len(points) == 0 {
		return nil, nil
	}

	objEval, err := e.alg.Compile(f, vars)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}
	hessEval, err := e.alg.CompileMat(e.alg.Hessian(f, vars), vars)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}

	var best []float64
	var bestValue float64
	for _, sol := range points {
		point, ok := extractPoint(sol, vars)
		if !ok {
			continue
		}

		var class int
		if cfg.NumVars == 1 {
			// Single variable: the sign of the second derivative decides.
			h := hessEval(point)[0][0]
			switch {
			case h > 0:
				class = positiveDefinite
			case h < 0:
				class = negativeDefinite
			}
		} else {
			class = definiteness(hessEval(point))
		}

		if cfg.Minimize && class != positiveDefinite {
			continue
		}
		if !cfg.Minimize && class != negativeDefinite {
			continue
		}

		value := objEval(point)
		if best == nil || (cfg.Minimize && value < bestValue) || (!cfg.Minimize && value > bestValue) {
			best = point
			bestValue = value
		}
	}

	if best == nil {
		return nil, nil
	}
	return &Result{Point: roundPoint(best), Value: round4(bestValue)}, nil
}

// definiteness classifies an evaluated Hessian by the signs of the real
// parts of its eigenvalues. Imaginary parts are ignored; an eigenvalue
// with zero real part makes the matrix indefinite for our purposes.
func definiteness(h [][]float64) int {
	n := len(h)
	flat := make([]float64, 0, n*n)
	for _, row := range h {
		flat = append(flat, row...)
	}

	var eig mat.Eigen
	if !eig.Factorize(mat.NewDense(n, n, flat), mat.EigenNone) {
		return indefinite
	}

	allPos, allNeg := true, true
	for _, ev := range eig.Values(nil) {
		re := real(ev)
		if re <= 0 {
			allPos = false
		}
		if re >= 0 {
			allNeg = false
		}
	}
	switch {
	case allPos:
		return positiveDefinite
	case allNeg:
		return negativeDefinite
	}
	return indefinite
}

// extractPoint reads the variable values of a solution in index order.
func extractPoint(sol symbolic.Solution, vars []string) ([]float64, bool) {
	point := make([]float64, len(vars))
	for i, v := range vars {
		val, ok := sol[v]
		if !ok {
			return nil, false
		}
		point[i] = val
	}
	return point, true
}
