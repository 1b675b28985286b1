package linsolve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DenseLU solves through a dense LU factorization (gonum). The boundary
// penalty rows make the system matrix artificially ill conditioned, so a
// mat.Condition result from the solve is accepted; only a truly failed
// factorization is an error.
type DenseLU struct{}

type denseLUFact struct {
	lu *mat.LU
	n  int
}

func (DenseLU) Factorize(a mat.Matrix) (Factorization, error) {
	nr, nc := a.Dims()
	if nr != nc {
		return nil, fmt.Errorf("cannot factorize non square matrix (%d x %d)", nr, nc)
	}
	var lu mat.LU
	lu.Factorize(mat.DenseCopyOf(a))
	return &denseLUFact{lu: &lu, n: nr}, nil
}

func (f *denseLUFact) Solve(rhs []float64) ([]float64, error) {
	if len(rhs) != f.n {
		return nil, fmt.Errorf("rhs length %d does not match system size %d", len(rhs), f.n)
	}
	var x mat.VecDense
	err := f.lu.SolveVecTo(&x, false, mat.NewVecDense(f.n, rhs))
	if err != nil {
		// A singular matrix shows up as an infinite condition number
		cond, conditioned := err.(mat.Condition)
		if !conditioned || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("LU solve failed: %w", err)
		}
	}
	out := make([]float64, f.n)
	copy(out, x.RawVector().Data)
	return out, nil
}
