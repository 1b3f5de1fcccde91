// Package symbolic is the symbolic-algebra provider for the optimization
// engine. It parses infix objective text into an immutable expression tree
// and supplies differentiation, substitution, gradients and Hessians,
// polynomial real-root extraction, simultaneous equation solving, and
// one-time compilation of expressions into numeric evaluators.
//
// All numeric work on roots and eigenvalues is delegated to gonum; the
// package itself holds no state and every exported operation is a pure
// function of its inputs.
package symbolic
