package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewtonRequiresInitialPoint(t *testing.T) {
	_, err := New().Optimize(MethodNewton, Config{
		Objective: "x_0^2",
		NumVars:   1,
		Minimize:  true,
	})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewtonRejectsMisSizedInitialPoint(t *testing.T) {
	_, err := New().Optimize(MethodNewton, Config{
		Objective:    "x_0^2 + x_1^2",
		NumVars:      2,
		Minimize:     true,
		InitialPoint: []float64{1},
	})
	require.Error(t, err)
}

func TestNewtonQuadraticOneStep(t *testing.T) {
	// A quadratic converges in a single Newton step from anywhere.
	var steps []IterationState
	res, err := New().Optimize(MethodNewton, Config{
		Objective:    "x_0^2 - 4 * x_0 + 7",
		NumVars:      1,
		Minimize:     true,
		InitialPoint: []float64{100},
		Epsilon:      1e-6,
		OnIteration:  func(st IterationState) { steps = append(steps, st) },
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.InDelta(t, 2, res.Point[0], 1e-9)
	require.InDelta(t, 3, res.Value, 1e-9)
	require.Len(t, steps, 2)
	require.True(t, steps[1].Converged)
}

func TestNewtonSingularHessianKeepsLastPoint(t *testing.T) {
	// f(x, y) = x^2 + y^3 from (1, 0): the gradient is nonzero but the
	// Hessian diag(2, 6y) is singular, so iteration stops at the last
	// valid point without raising.
	res, err := New().Optimize(MethodNewton, Config{
		Objective:    "x_0^2 + x_1^3",
		NumVars:      2,
		Minimize:     true,
		InitialPoint: []float64{1, 0},
		Epsilon:      1e-12,
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.InDelta(t, 1, res.Point[0], 1e-9)
	require.InDelta(t, 0, res.Point[1], 1e-9)
	require.InDelta(t, 1, res.Value, 1e-9)
}

func TestNewtonMaximizeSignCorrection(t *testing.T) {
	// Maximize -(x-3)^2 + 2: peak at x = 3 with value 2.
	res, err := New().Optimize(MethodNewton, Config{
		Objective:    "-(x_0 - 3)^2 + 2",
		NumVars:      1,
		Minimize:     false,
		InitialPoint: []float64{0},
		Epsilon:      1e-8,
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.InDelta(t, 3, res.Point[0], 1e-9)
	require.InDelta(t, 2, res.Value, 1e-9)
}

func TestNewtonIterationStatesAreIndependent(t *testing.T) {
	// Each observed state must hold its own copy of the point.
	var points [][]float64
	_, err := New().Optimize(MethodNewton, Config{
		Objective:    "2 * sin(x_0) - 0.1 * x_0^2",
		NumVars:      1,
		InitialPoint: []float64{2.5},
		Epsilon:      0.05,
		OnIteration: func(st IterationState) {
			points = append(points, st.Point)
		},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(points), 2)
	for i := 1; i < len(points); i++ {
		if points[i][0] != points[i-1][0] {
			return
		}
	}
	t.Error("observed points never changed; states appear to share storage")
}
