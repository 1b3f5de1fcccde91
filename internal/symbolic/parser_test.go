package symbolic

import (
	"math"
	"testing"
)

func TestParseAndEvaluate(t *testing.T) {
	tests := []struct {
		name string
		text string
		x    map[string]float64
		want float64
	}{
		{name: "constant", text: "42", want: 42},
		{name: "decimal", text: "0.125", want: 0.125},
		{name: "addition", text: "1 + 2 + 3", want: 6},
		{name: "precedence", text: "2 + 3 * 4", want: 14},
		{name: "parens", text: "(2 + 3) * 4", want: 20},
		{name: "division", text: "7 / 2", want: 3.5},
		{name: "caret power", text: "2^10", want: 1024},
		{name: "double star power", text: "2**10", want: 1024},
		{name: "right assoc power", text: "2^3^2", want: 512},
		{name: "unary minus", text: "-3 + 5", want: 2},
		{name: "unary minus binds below power", text: "-2^2", want: -4},
		{name: "variable", text: "x_0 + 1", x: map[string]float64{"x_0": 2}, want: 3},
		{name: "two variables", text: "2 * x_0 + x_1 + 10", x: map[string]float64{"x_0": 1, "x_1": 3}, want: 15},
		{name: "cubic", text: "x_0^3 - x_0", x: map[string]float64{"x_0": 2}, want: 6},
		{name: "sine", text: "2 * sin(x_0) - 0.1 * x_0^2", x: map[string]float64{"x_0": 0}, want: 0},
		{name: "nested call", text: "exp(ln(5))", want: 5},
		{name: "sqrt", text: "sqrt(16)", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.text, err)
			}
			for name, val := range tt.x {
				e = e.Sub(name, Number(val))
			}
			got, ok := e.Simplify().Eval()
			if !ok {
				t.Fatalf("expression %q did not reduce to a constant", tt.text)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("eval %q = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"1 +",
		"(1 + 2",
		"x_0 x_1",
		"frobnicate(3)",
		"1..5",
		"2 $ 3",
	}
	for _, text := range bad {
		if _, err := Parse(text); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", text)
		}
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		text string
		wrt  string
		at   map[string]float64
		want float64
	}{
		{name: "polynomial", text: "x_0^3 - x_0", wrt: "x_0", at: map[string]float64{"x_0": 2}, want: 11},
		{name: "constant wrt other var", text: "x_1^2", wrt: "x_0", at: map[string]float64{"x_1": 5}, want: 0},
		{name: "product rule", text: "x_0 * x_1", wrt: "x_0", at: map[string]float64{"x_0": 3, "x_1": 4}, want: 4},
		{name: "chain rule sine", text: "sin(2 * x_0)", wrt: "x_0", at: map[string]float64{"x_0": 0}, want: 2},
		{name: "cosine", text: "cos(x_0)", wrt: "x_0", at: map[string]float64{"x_0": math.Pi / 2}, want: -1},
		{name: "exp", text: "exp(x_0)", wrt: "x_0", at: map[string]float64{"x_0": 1}, want: math.E},
		{name: "ln", text: "ln(x_0)", wrt: "x_0", at: map[string]float64{"x_0": 4}, want: 0.25},
		{name: "reciprocal", text: "1 / x_0", wrt: "x_0", at: map[string]float64{"x_0": 2}, want: -0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.text, err)
			}
			d := e.Diff(tt.wrt)
			for name, val := range tt.at {
				d = d.Sub(name, Number(val))
			}
			got, ok := d.Simplify().Eval()
			if !ok {
				t.Fatalf("derivative of %q did not reduce to a constant", tt.text)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("d(%s)/d%s at %v = %v, want %v", tt.text, tt.wrt, tt.at, got, tt.want)
			}
		})
	}
}

func TestVars(t *testing.T) {
	e, err := Parse("x_1 + 2 * x_0 * x_1 + sin(lambda_0)")
	if err != nil {
		t.Fatal(err)
	}
	got := Vars(e)
	want := []string{"lambda_0", "x_0", "x_1"}
	if len(got) != len(want) {
		t.Fatalf("Vars = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Vars = %v, want %v", got, want)
		}
	}
}
