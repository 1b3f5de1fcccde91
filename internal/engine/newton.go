package engine

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/petergeorge7/optisym/internal/symbolic"
)

// maxNewtonIterations bounds the Newton loop regardless of epsilon.
const maxNewtonIterations = 100

// defaultEpsilon is the gradient-norm threshold when the caller leaves
// Epsilon unset.
const defaultEpsilon = 1e-3

// newton iterates x <- x + delta with H(x) * delta = -g(x), stopping when
// the gradient norm drops below epsilon, after 100 iterations, or when
// the Hessian becomes singular. A singular Hessian mid-iteration is a
// non-fatal degradation: the last point reached is returned. Maximization
// negates the objective up front and sign-corrects the final value.
func (e *Engine) newton(cfg Config) (*Result, error) {
	if cfg.InitialPoint == nil {
		return nil, &ConfigError{Reason: "newton method requires an initial point"}
	}
	if len(cfg.InitialPoint) != cfg.NumVars {
		return nil, &ConfigError{Reason: fmt.Sprintf("initial point has %d entries, want %d", len(cfg.InitialPoint), cfg.NumVars)}
	}
	eps := cfg.Epsilon
	if eps <= 0 {
		eps = defaultEpsilon
	}

	vars := varNames(cfg.NumVars)
	f, err := e.alg.Parse(cfg.Objective)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}
	sign := 1.0
	if !cfg.Minimize {
		sign = -1.0
		f = symbolic.Neg(f)
	}

	// One-time symbolic-to-numeric compilation, amortized over all
	// iterations.
	objEval, err := e.alg.Compile(f, vars)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}
	gradEval, err := e.alg.CompileVec(e.alg.Gradient(f, vars), vars)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}
	hessEval, err := e.alg.CompileMat(e.alg.Hessian(f, vars), vars)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}

	n := cfg.NumVars
	point := clonePoint(cfg.InitialPoint)
	for step := 0; step < maxNewtonIterations; step++ {
		g := gradEval(point)
		norm := mat.Norm(mat.NewVecDense(n, g), 2)
		if norm < eps {
			notify(cfg, IterationState{Step: step, Point: clonePoint(point), GradNorm: norm, Converged: true})
			break
		}

		h := hessEval(point)
		flat := make([]float64, 0, n*n)
		for _, row := range h {
			flat = append(flat, row...)
		}
		neg := make([]float64, n)
		for i, v := range g {
			neg[i] = -v
		}

		var delta mat.VecDense
		if err := delta.SolveVec(mat.NewDense(n, n, flat), mat.NewVecDense(n, neg)); err != nil {
			// Singular or numerically degenerate Hessian: keep the last
			// point reached.
			break
		}

		next := make([]float64, n)
		for i := range next {
			next[i] = point[i] + delta.AtVec(i)
		}
		point = next
		notify(cfg, IterationState{Step: step + 1, Point: clonePoint(point), GradNorm: norm})
	}

	value := sign * objEval(point)
	return &Result{Point: roundPoint(point), Value: round4(value)}, nil
}
