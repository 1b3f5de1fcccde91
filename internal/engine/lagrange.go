package engine

import (
	"fmt"

	"github.com/petergeorge7/optisym/internal/symbolic"
)

// lagrange optimizes the objective under equality constraints g_i(x) = 0.
// One multiplier variable lambda_i is introduced per constraint, the
// Lagrangian f + sum(lambda_i * g_i) is differentiated with respect to
// every variable and multiplier, and the combined system is solved in a
// single joint solve. When maximizing, the objective is negated up front
// so the machinery always searches minimum-style; the value is un-negated
// on return.
func (e *Engine) lagrange(cfg Config) (*Result, error) {
	if len(cfg.Constraints) == 0 {
		return nil, &ConfigError{Reason: "lagrange method requires at least one constraint"}
	}

	vars := varNames(cfg.NumVars)
	f, err := e.alg.Parse(cfg.Objective)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}
	if !cfg.Minimize {
		f = symbolic.Neg(f)
	}

	lagrangian := f
	multipliers := make([]string, len(cfg.Constraints))
	for i, text := range cfg.Constraints {
		g, err := e.alg.Parse(text)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("constraint %d: %v", i, err)}
		}
		multipliers[i] = fmt.Sprintf("lambda_%d", i)
		lagrangian = symbolic.Sum(lagrangian, symbolic.Product(symbolic.Symbol(multipliers[i]), g))
	}

	unknowns := append(append([]string{}, vars...), multipliers...)
	grad := e.alg.Gradient(lagrangian, unknowns)
	solutions := e.alg.SolveSystem(grad, unknowns)
	if len(solutions) == 0 {
		return nil, nil
	}

	objEval, err := e.alg.Compile(f, vars)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("objective: %v", err)}
	}

	var best []float64
	var bestValue float64
	for _, sol := range solutions {
		// A solution that leaves a variable unresolved is skipped, not
		// fatal.
		point, ok := extractPoint(sol, vars)
		if !ok {
			continue
		}
		value := objEval(point)
		if best == nil || value < bestValue {
			best = point
			bestValue = value
		}
	}

	if best == nil {
		return nil, nil
	}
	if !cfg.Minimize {
		bestValue = -bestValue
	}
	return &Result{Point: roundPoint(best), Value: round4(bestValue)}, nil
}
