package engine

import (
	"github.com/petergeorge7/optisym/internal/symbolic"
)

// Algebra is the symbolic-algebra capability consumed by the strategies.
// It is injected rather than reached for globally so tests can substitute
// a provider with a fixed, known enumeration order.
type Algebra interface {
	Parse(text string) (symbolic.Expr, error)
	Gradient(f symbolic.Expr, vars []string) []symbolic.Expr
	Hessian(f symbolic.Expr, vars []string) [][]symbolic.Expr
	SolveSystem(eqs []symbolic.Expr, unknowns []string) []symbolic.Solution
	RealRoots(e symbolic.Expr, name string) ([]float64, bool)
	Compile(e symbolic.Expr, vars []string) (symbolic.EvalFunc, error)
	CompileVec(es []symbolic.Expr, vars []string) (func(x []float64) []float64, error)
	CompileMat(m [][]symbolic.Expr, vars []string) (func(x []float64) [][]float64, error)
}

// stdAlgebra adapts the symbolic package to the Algebra interface.
type stdAlgebra struct{}

func (stdAlgebra) Parse(text string) (symbolic.Expr, error) { return symbolic.Parse(text) }

func (stdAlgebra) Gradient(f symbolic.Expr, vars []string) []symbolic.Expr {
	return symbolic.Gradient(f, vars)
}

func (stdAlgebra) Hessian(f symbolic.Expr, vars []string) [][]symbolic.Expr {
	return symbolic.Hessian(f, vars)
}

func (stdAlgebra) SolveSystem(eqs []symbolic.Expr, unknowns []string) []symbolic.Solution {
	return symbolic.SolveSystem(eqs, unknowns)
}

func (stdAlgebra) RealRoots(e symbolic.Expr, name string) ([]float64, bool) {
	return symbolic.RealRoots(e, name)
}

func (stdAlgebra) Compile(e symbolic.Expr, vars []string) (symbolic.EvalFunc, error) {
	return symbolic.Compile(e, vars)
}

func (stdAlgebra) CompileVec(es []symbolic.Expr, vars []string) (func(x []float64) []float64, error) {
	return symbolic.CompileVec(es, vars)
}

func (stdAlgebra) CompileMat(m [][]symbolic.Expr, vars []string) (func(x []float64) [][]float64, error) {
	return symbolic.CompileMat(m, vars)
}
