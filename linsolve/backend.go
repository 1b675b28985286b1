// Package linsolve provides the factorize/solve backends used to solve the
// auxiliary linear systems produced by the finite volume discretization.
package linsolve

import "gonum.org/v1/gonum/mat"

// Factorization is a reusable handle to a factorized (or otherwise
// solve-ready) matrix.
type Factorization interface {
	Solve(rhs []float64) ([]float64, error)
}

// Backend factorizes a square system matrix once; the handle may then be
// used for any number of right hand sides.
type Backend interface {
	Factorize(a mat.Matrix) (Factorization, error)
}
