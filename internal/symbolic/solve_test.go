package symbolic

import (
	"math"
	"testing"
)

func mustParse(t *testing.T, text string) Expr {
	t.Helper()
	e, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return e
}

func TestSolveSystemLinear(t *testing.T) {
	// x + y - 3 = 0, x - y - 1 = 0 => x=2, y=1
	eqs := []Expr{
		mustParse(t, "x_0 + x_1 - 3"),
		mustParse(t, "x_0 - x_1 - 1"),
	}
	sols := SolveSystem(eqs, []string{"x_0", "x_1"})
	if len(sols) != 1 {
		t.Fatalf("got %d solutions, want 1", len(sols))
	}
	assertSolution(t, sols[0], Solution{"x_0": 2, "x_1": 1})
}

func TestSolveSystemUnivariateQuadratic(t *testing.T) {
	eqs := []Expr{mustParse(t, "3 * x_0^2 - 1")}
	sols := SolveSystem(eqs, []string{"x_0"})
	if len(sols) != 2 {
		t.Fatalf("got %d solutions, want 2", len(sols))
	}
	// Canonical order is ascending.
	r := 1 / math.Sqrt(3)
	assertSolution(t, sols[0], Solution{"x_0": -r})
	assertSolution(t, sols[1], Solution{"x_0": r})
}

func TestSolveSystemLagrangianShape(t *testing.T) {
	// Stationary system of 2*x_0 + x_1 + 10 + lambda_0*(x_0 + 2*x_1^2 - 3):
	// nonlinear but triangular under affine pivoting.
	eqs := []Expr{
		mustParse(t, "2 + lambda_0"),
		mustParse(t, "1 + 4 * lambda_0 * x_1"),
		mustParse(t, "x_0 + 2 * x_1^2 - 3"),
	}
	sols := SolveSystem(eqs, []string{"x_0", "x_1", "lambda_0"})
	if len(sols) != 1 {
		t.Fatalf("got %d solutions, want 1", len(sols))
	}
	assertSolution(t, sols[0], Solution{"x_0": 2.96875, "x_1": 0.125, "lambda_0": -2})
}

func TestSolveSystemVariablePivotCoefficient(t *testing.T) {
	// Stationary system of x_1 + lambda_0*(x_0^2 + x_1^2 - 1): every
	// affine pivot has a coefficient containing another unknown, so the
	// elimination must case-split on the coefficient vanishing.
	eqs := []Expr{
		mustParse(t, "2 * lambda_0 * x_0"),
		mustParse(t, "1 + 2 * lambda_0 * x_1"),
		mustParse(t, "x_0^2 + x_1^2 - 1"),
	}
	sols := SolveSystem(eqs, []string{"x_0", "x_1", "lambda_0"})
	if len(sols) != 2 {
		t.Fatalf("got %d solutions, want 2", len(sols))
	}
	assertSolution(t, sols[0], Solution{"x_0": 0, "x_1": -1, "lambda_0": 0.5})
	assertSolution(t, sols[1], Solution{"x_0": 0, "x_1": 1, "lambda_0": -0.5})
}

func TestSolveSystemDegeneratePivot(t *testing.T) {
	// x_0*x_1 = 0, x_0 + x_1 - 2 = 0: the x_0 = 0 and x_1 = 0 cases live
	// on opposite sides of the pivot-coefficient split.
	eqs := []Expr{
		mustParse(t, "x_0 * x_1"),
		mustParse(t, "x_0 + x_1 - 2"),
	}
	sols := SolveSystem(eqs, []string{"x_0", "x_1"})
	if len(sols) != 2 {
		t.Fatalf("got %d solutions, want 2", len(sols))
	}
	assertSolution(t, sols[0], Solution{"x_0": 0, "x_1": 2})
	assertSolution(t, sols[1], Solution{"x_0": 2, "x_1": 0})
}

func TestSolveSystemNoRealSolutions(t *testing.T) {
	eqs := []Expr{mustParse(t, "x_0^2 + 1")}
	if sols := SolveSystem(eqs, []string{"x_0"}); len(sols) != 0 {
		t.Fatalf("got %v, want none", sols)
	}
}

func TestSolveSystemInconsistent(t *testing.T) {
	eqs := []Expr{
		mustParse(t, "x_0 - 1"),
		mustParse(t, "x_0 - 2"),
	}
	if sols := SolveSystem(eqs, []string{"x_0"}); len(sols) != 0 {
		t.Fatalf("got %v, want none", sols)
	}
}

func TestSolveSystemBranchingRoots(t *testing.T) {
	// x^2 - 1 = 0, y - x = 0 => (-1,-1) and (1,1), ascending order.
	eqs := []Expr{
		mustParse(t, "x_0^2 - 1"),
		mustParse(t, "x_1 - x_0"),
	}
	sols := SolveSystem(eqs, []string{"x_0", "x_1"})
	if len(sols) != 2 {
		t.Fatalf("got %d solutions, want 2", len(sols))
	}
	assertSolution(t, sols[0], Solution{"x_0": -1, "x_1": -1})
	assertSolution(t, sols[1], Solution{"x_0": 1, "x_1": 1})
}

func assertSolution(t *testing.T, got, want Solution) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("solution %v, want %v", got, want)
	}
	for name, w := range want {
		g, ok := got[name]
		if !ok {
			t.Fatalf("solution %v missing %s", got, name)
		}
		if math.Abs(g-w) > 1e-7 {
			t.Errorf("%s = %v, want %v", name, g, w)
		}
	}
}
