package symbolic

// Gradient returns the partial derivatives of f with respect to each
// variable, in the given order.
func Gradient(f Expr, vars []string) []Expr {
	grad := make([]Expr, len(vars))
	for i, v := range vars {
		grad[i] = f.Diff(v).Simplify()
	}
	return grad
}

// Hessian returns the matrix of second partial derivatives of f.
// Row i, column j holds d²f / (dvars[i] dvars[j]).
func Hessian(f Expr, vars []string) [][]Expr {
	grad := Gradient(f, vars)
	h := make([][]Expr, len(vars))
	for i := range vars {
		h[i] = make([]Expr, len(vars))
		for j, v := range vars {
			h[i][j] = grad[i].Diff(v).Simplify()
		}
	}
	return h
}
