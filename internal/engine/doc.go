// Package engine implements the optimization engine: four strategies
// (stationary-point analysis, Lagrange multipliers, Newton's method, and
// steepest descent with exact line search) behind a single Optimize entry
// point dispatching on a closed Method enum.
//
// The engine is a pure function of its inputs: every call parses fresh
// symbolic structures, performs no I/O, and shares no state across calls.
package engine
