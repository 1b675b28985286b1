package linsolve

import (
	"math"
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// -u'' = 0 discretized on 4 unit cells with penalty pinned endpoints
func testSystem() (a *sparse.DOK, rhs []float64) {
	const (
		n       = 5
		penalty = 1.e30
	)
	a = sparse.NewDOK(n, n)
	add := func(i, j int, v float64) { a.Set(i, j, a.At(i, j)+v) }
	for c := 0; c < n-1; c++ {
		add(c, c, 1)
		add(c, c+1, -1)
		add(c+1, c+1, 1)
		add(c+1, c, -1)
	}
	add(0, 0, penalty)
	add(n-1, n-1, penalty)
	rhs = make([]float64, n)
	rhs[0] = penalty // u(0) = 1, u(1) = 0
	return
}

func TestDenseLU(t *testing.T) {
	a, rhs := testSystem()
	fact, err := DenseLU{}.Factorize(a)
	assert.NoError(t, err)
	x, err := fact.Solve(rhs)
	assert.NoError(t, err)
	for i, want := range []float64{1, 0.75, 0.5, 0.25, 0} {
		assert.InDelta(t, want, x[i], 1.e-8)
	}
}

func TestDenseLUSingular(t *testing.T) {
	fact, err := DenseLU{}.Factorize(mat.NewDense(2, 2, []float64{1, 2, 2, 4}))
	assert.NoError(t, err)
	_, err = fact.Solve([]float64{1, 1})
	assert.Error(t, err)
}

func TestDenseLUNonSquare(t *testing.T) {
	_, err := DenseLU{}.Factorize(mat.NewDense(2, 3, nil))
	assert.Error(t, err)
}

func TestCG(t *testing.T) {
	a, rhs := testSystem()
	fact, err := CG{}.Factorize(a)
	assert.NoError(t, err)
	x, err := fact.Solve(rhs)
	assert.NoError(t, err)
	for i, want := range []float64{1, 0.75, 0.5, 0.25, 0} {
		assert.InDelta(t, want, x[i], 1.e-6)
	}
}

func TestCGMatchesLU(t *testing.T) {
	a, rhs := testSystem()
	luFact, _ := DenseLU{}.Factorize(a)
	cgFact, _ := CG{}.Factorize(a)
	xl, err := luFact.Solve(rhs)
	assert.NoError(t, err)
	xc, err := cgFact.Solve(rhs)
	assert.NoError(t, err)
	for i := range xl {
		assert.True(t, math.Abs(xl[i]-xc[i]) < 1.e-6)
	}
}

func TestCGZeroDiagonal(t *testing.T) {
	a := sparse.NewDOK(2, 2)
	a.Set(0, 1, 1)
	a.Set(1, 0, 1)
	_, err := CG{}.Factorize(a)
	assert.Error(t, err)
}

func TestCGDenseInput(t *testing.T) {
	// The backend converts any mat.Matrix to CSR
	a := mat.NewDense(2, 2, []float64{4, 1, 1, 3})
	fact, err := CG{}.Factorize(a)
	assert.NoError(t, err)
	x, err := fact.Solve([]float64{1, 2})
	assert.NoError(t, err)
	assert.InDelta(t, 1./11., x[0], 1.e-9)
	assert.InDelta(t, 7./11., x[1], 1.e-9)
}

func TestCGRhsLengthMismatch(t *testing.T) {
	a, _ := testSystem()
	fact, _ := CG{}.Factorize(a)
	_, err := fact.Solve([]float64{1})
	assert.Error(t, err)
}
