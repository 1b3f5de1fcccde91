package symbolic

import (
	"fmt"
	"math"
)

// EvalFunc is a compiled expression evaluated on a point whose components
// follow the variable order given at compile time.
type EvalFunc func(x []float64) float64

// Compile lowers e into a numeric evaluator bound to the given variable
// order. Compilation is the one-time symbolic-to-numeric boundary: the
// returned function performs no symbolic work. An unbound variable in e is
// a compile error.
func Compile(e Expr, vars []string) (EvalFunc, error) {
	idx := make(map[string]int, len(vars))
	for i, v := range vars {
		idx[v] = i
	}
	return compileNode(e.Simplify(), idx)
}

// CompileVec compiles each expression of a vector against one variable
// order, returning an evaluator producing the full numeric vector.
func CompileVec(es []Expr, vars []string) (func(x []float64) []float64, error) {
	fns := make([]EvalFunc, len(es))
	for i, e := range es {
		fn, err := Compile(e, vars)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return func(x []float64) []float64 {
		out := make([]float64, len(fns))
		for i, fn := range fns {
			out[i] = fn(x)
		}
		return out
	}, nil
}

// CompileMat compiles a matrix of expressions, returning an evaluator
// producing the numeric matrix in row-major [][]float64 form.
func CompileMat(m [][]Expr, vars []string) (func(x []float64) [][]float64, error) {
	fns := make([][]EvalFunc, len(m))
	for i, row := range m {
		fns[i] = make([]EvalFunc, len(row))
		for j, e := range row {
			fn, err := Compile(e, vars)
			if err != nil {
				return nil, err
			}
			fns[i][j] = fn
		}
	}
	return func(x []float64) [][]float64 {
		out := make([][]float64, len(fns))
		for i, row := range fns {
			out[i] = make([]float64, len(row))
			for j, fn := range row {
				out[i][j] = fn(x)
			}
		}
		return out
	}, nil
}

func compileNode(e Expr, idx map[string]int) (EvalFunc, error) {
	switch v := e.(type) {
	case num:
		c := v.v
		return func([]float64) float64 { return c }, nil

	case sym:
		i, ok := idx[v.name]
		if !ok {
			return nil, fmt.Errorf("compile: unbound variable %q", v.name)
		}
		return func(x []float64) float64 { return x[i] }, nil

	case add:
		fns, err := compileNodes(v.terms, idx)
		if err != nil {
			return nil, err
		}
		return func(x []float64) float64 {
			var sum float64
			for _, fn := range fns {
				sum += fn(x)
			}
			return sum
		}, nil

	case mul:
		fns, err := compileNodes(v.factors, idx)
		if err != nil {
			return nil, err
		}
		return func(x []float64) float64 {
			prod := 1.0
			for _, fn := range fns {
				prod *= fn(x)
			}
			return prod
		}, nil

	case pow:
		base, err := compileNode(v.base, idx)
		if err != nil {
			return nil, err
		}
		exp, err := compileNode(v.exp, idx)
		if err != nil {
			return nil, err
		}
		return func(x []float64) float64 { return math.Pow(base(x), exp(x)) }, nil

	case call:
		fn, ok := numericFuncs[v.fn]
		if !ok {
			return nil, fmt.Errorf("compile: unknown function %q", v.fn)
		}
		arg, err := compileNode(v.arg, idx)
		if err != nil {
			return nil, err
		}
		return func(x []float64) float64 { return fn(arg(x)) }, nil
	}
	return nil, fmt.Errorf("compile: unsupported expression %T", e)
}

func compileNodes(es []Expr, idx map[string]int) ([]EvalFunc, error) {
	fns := make([]EvalFunc, len(es))
	for i, e := range es {
		fn, err := compileNode(e, idx)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return fns, nil
}
