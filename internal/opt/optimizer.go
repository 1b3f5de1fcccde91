package opt

// Optimizer is a derivative-free global optimization algorithm. It
// complements the symbolic engine for objectives whose stationary systems
// have no closed-form solutions.
type Optimizer interface {
	// Run minimizes eval over the box [lower, upper] in dim dimensions
	// and returns the best parameters found with their cost.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}
