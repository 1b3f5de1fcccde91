package opt

import (
	"math"
	"testing"

	"github.com/petergeorge7/optisym/internal/symbolic"
)

func TestMayflyAdapterOnCompiledSphere(t *testing.T) {
	e, err := symbolic.Parse("x_0^2 + x_1^2 + x_2^2")
	if err != nil {
		t.Fatal(err)
	}
	eval, err := symbolic.Compile(e, []string{"x_0", "x_1", "x_2"})
	if err != nil {
		t.Fatal(err)
	}

	optimizer := NewMayfly(100, 20, 42)

	dim := 3
	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := 0; i < dim; i++ {
		lower[i] = -10
		upper[i] = 10
	}

	best, cost := optimizer.Run(func(x []float64) float64 { return eval(x) }, lower, upper, dim)

	if len(best) != dim {
		t.Fatalf("Expected %d parameters, got %d", dim, len(best))
	}
	if cost > 0.1 {
		t.Errorf("Expected cost near 0, got %f", cost)
	}
	for i, v := range best {
		if math.Abs(v) > 1.0 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}
}

func TestMayflyAdapterDeterministic(t *testing.T) {
	rosenbrock := func(x []float64) float64 {
		a := 1 - x[0]
		b := x[1] - x[0]*x[0]
		return a*a + 100*b*b
	}

	dim := 2
	lower := []float64{-5, -5}
	upper := []float64{5, 5}

	// Same seed, same search (popSize must be >= 20 for mayfly v0.1.0).
	optimizer1 := NewMayfly(50, 20, 123)
	_, cost1 := optimizer1.Run(rosenbrock, lower, upper, dim)

	optimizer2 := NewMayfly(50, 20, 123)
	_, cost2 := optimizer2.Run(rosenbrock, lower, upper, dim)

	if cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
}
