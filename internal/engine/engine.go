package engine

import (
	"fmt"
)

// Method selects one of the four optimization strategies.
type Method int

const (
	// MethodStationary solves gradient = 0 symbolically and classifies
	// critical points by Hessian definiteness.
	MethodStationary Method = iota

	// MethodLagrange performs equality-constrained optimization via
	// Lagrange multipliers.
	MethodLagrange

	// MethodNewton iterates x <- x - H^-1 g from an initial point.
	MethodNewton

	// MethodSteepest follows the gradient with an exact line search per
	// epoch.
	MethodSteepest
)

var methodNames = map[Method]string{
	MethodStationary: "stationary",
	MethodLagrange:   "lagrange",
	MethodNewton:     "newton",
	MethodSteepest:   "steepest",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod maps a method name from the CLI or API onto the enum.
// An unknown name is a configuration error.
func ParseMethod(name string) (Method, error) {
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return 0, &ConfigError{Reason: fmt.Sprintf("unknown method %q", name)}
}

// Config carries the objective and the method-specific parameters of one
// optimization call.
type Config struct {
	// Objective is the infix objective function over x_0 .. x_{n-1}.
	Objective string

	// NumVars is the number of variables n.
	NumVars int

	// Minimize selects the search direction for the stationary-point,
	// Lagrange, and Newton methods.
	Minimize bool

	// Constraints are equality constraints g_i(x) = 0 (Lagrange only).
	Constraints []string

	// InitialPoint is the starting point (Newton and steepest only).
	InitialPoint []float64

	// Epsilon is the gradient-norm convergence threshold (Newton only).
	// Zero selects the default of 1e-3.
	Epsilon float64

	// Epochs is the fixed iteration budget (steepest only). Zero selects
	// the default of 10.
	Epochs int

	// Descent selects descent (true) or ascent (false) for the steepest
	// method.
	Descent bool

	// OnIteration, if set, observes each iteration of the Newton and
	// steepest methods. The state passed in is a fresh value each step.
	OnIteration func(IterationState)
}

// IterationState is a snapshot of one step of an iterative method. States
// are immutable values: each iteration produces a new one.
type IterationState struct {
	// Step is the iteration counter, starting at 1 for the first update.
	Step int

	// Point is the current point, one entry per variable in index order.
	Point []float64

	// GradNorm is the Euclidean norm of the gradient at the point the
	// step departed from.
	GradNorm float64

	// Converged marks the final state of a run that met the convergence
	// threshold.
	Converged bool
}

// Result is a successful optimization outcome. Point components and Value
// are rounded to 4 decimal places; rounding happens exactly once, after
// all arithmetic.
type Result struct {
	Point []float64 `json:"point"`
	Value float64   `json:"value"`
}

// Engine dispatches optimization calls onto the four strategies. The zero
// value is not usable; construct with New.
type Engine struct {
	alg Algebra
}

// New returns an engine backed by the default symbolic-algebra provider.
func New() *Engine { return &Engine{alg: stdAlgebra{}} }

// NewWithAlgebra returns an engine backed by the given provider. Tests
// use this to substitute deterministic fakes.
func NewWithAlgebra(alg Algebra) *Engine { return &Engine{alg: alg} }

// Optimize runs one optimization call. A nil Result with a nil error is
// the normal "no qualifying solution" outcome; errors are reserved for
// configuration problems.
func (e *Engine) Optimize(method Method, cfg Config) (*Result, error) {
	if cfg.NumVars < 1 {
		return nil, &ConfigError{Reason: fmt.Sprintf("number of variables must be positive, got %d", cfg.NumVars)}
	}
	switch method {
	case MethodStationary:
		return e.stationary(cfg)
	case MethodLagrange:
		return e.lagrange(cfg)
	case MethodNewton:
		return e.newton(cfg)
	case MethodSteepest:
		return e.steepest(cfg)
	}
	return nil, &ConfigError{Reason: fmt.Sprintf("unknown method %v", method)}
}

// varNames returns x_0 .. x_{n-1}.
func varNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("x_%d", i)
	}
	return names
}

func notify(cfg Config, st IterationState) {
	if cfg.OnIteration != nil {
		cfg.OnIteration(st)
	}
}

func clonePoint(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
