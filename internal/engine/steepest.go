package engine

import (
	"fmt"
	"math"

	"github.com/petergeorge7/optisym/internal/symbolic"
)

// defaultEpochs is the iteration budget when the caller leaves Epochs
// unset.
const defaultEpochs = 10

// gradZeroTol is the per-component magnitude under which the gradient is
// treated as vanished and the epoch loop exits early.
const gradZeroTol = 1e-9

// stepSymbol names the free scalar introduced for the exact line search.
// Objective variables are x_0..x_{n-1}, so it can never collide.
const stepSymbol = "alpha"

// steepest follows the negated (descent) or plain (ascent) gradient for a
// fixed number of epochs, choosing each step length by exact line search:
// substituting point + alpha*direction into the objective, differentiating
// with respect to alpha, and taking the first real root in canonical
// (ascending) order. No real root on the very first epoch is a null
// result; on a later epoch it ends the run at the current point.
func (e *Engine) steepest(cfg Config) (*Result, error) {
	if cfg.InitialPoint == nil {
		return nil, &ConfigError{Reason: "steepest method requires an initial point"}
	}
	if len(cfg.InitialPoint) != cfg.NumVars {
		return nil, &ConfigError{Reason: fmt.Sprintf("initial point has %d entries, want %d", len(cfg.InitialPoint), cfg.NumVars)}
	}
	epochs := cfg.Epochs
	if epochs <= 0 {
		epochs = defaultEpochs
	}

	vars := varNames(cfg.NumVars)
	f, err := e.alg.Parse(cfg.Objective)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}

	objEval, err := e.alg.Compile(f, vars)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}
	gradEval, err := e.alg.CompileVec(e.alg.Gradient(f, vars), vars)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}

	point := clonePoint(cfg.InitialPoint)
	for epoch := 0; epoch < epochs; epoch++ {
		g := gradEval(point)
		if maxAbs(g) < gradZeroTol {
			break
		}

		direction := make([]float64, len(g))
		for i, v := range g {
			if cfg.Descent {
				direction[i] = -v
			} else {
				direction[i] = v
			}
		}

		step, ok := e.lineSearch(f, vars, point, direction)
		if !ok {
			if epoch == 0 {
				return nil, nil
			}
			break
		}

		next := make([]float64, len(point))
		for i := range next {
			next[i] = point[i] + step*direction[i]
		}
		point = next
		notify(cfg, IterationState{Step: epoch + 1, Point: clonePoint(point), GradNorm: norm2(g)})
	}

	return &Result{Point: roundPoint(point), Value: round4(objEval(point))}, nil
}

// lineSearch substitutes point + alpha*direction into f, differentiates
// with respect to the step symbol, and returns the first real root of the
// derivative in canonical order.
func (e *Engine) lineSearch(f symbolic.Expr, vars []string, point, direction []float64) (float64, bool) {
	phi := f
	for i, v := range vars {
		along := symbolic.Sum(
			symbolic.Number(point[i]),
			symbolic.Product(symbolic.Number(direction[i]), symbolic.Symbol(stepSymbol)),
		)
		phi = phi.Sub(v, along)
	}

	dphi := phi.Diff(stepSymbol).Simplify()
	roots, ok := e.alg.RealRoots(dphi, stepSymbol)
	if !ok || len(roots) == 0 {
		return 0, false
	}
	return roots[0], true
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func norm2(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
