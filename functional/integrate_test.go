package functional

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/fvmtools/gofvm/fvm"
	"github.com/fvmtools/gofvm/linsolve"
	"github.com/fvmtools/gofvm/mesh"
)

// snapshot replicates a node field into every species row.
func snapshot(numSpecies int, field []float64) *mat.Dense {
	u := mat.NewDense(numSpecies, len(field), nil)
	for k := 0; k < numSpecies; k++ {
		u.SetRow(k, field)
	}
	return u
}

func TestSteadyCanonicalFlux1D(t *testing.T) {
	// -u'' = 0 on [0,1], u(0) = 1, u(1) = 0: net flux through the domain
	// is 1, and the discrete functional reproduces it
	sys := diffusionSystem1D(50)
	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	tf, err := factory.TestFunction([]int{mesh.BRegionRight}, []int{mesh.BRegionLeft})
	assert.NoError(t, err)
	u := snapshot(1, tf) // pure diffusion: the solution equals the test function field

	integ := NewIntegrator(sys)
	got, err := integ.Steady(tf, u)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(got))
	assert.InDelta(t, 1, got[0], 1.e-8)
}

func TestSteadyCanonicalFlux2D(t *testing.T) {
	m := mesh.UnitSquareMesh2D(8)
	sys := fvm.NewSystem(m, fvm.Physics{
		Flux:    func(f, uk, ul []float64) { f[0] = uk[0] - ul[0] },
		Storage: func(f, u []float64) { f[0] = u[0] },
	}, 1)
	sys.EnableSpecies(0, []int{1})
	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	// Left edge held at 1, right edge at 0, natural top and bottom
	tf, err := factory.TestFunction([]int{2}, []int{1})
	assert.NoError(t, err)
	u := snapshot(1, tf)

	got, err := NewIntegrator(sys).Steady(tf, u)
	assert.NoError(t, err)
	assert.InDelta(t, 1, got[0], 1.e-8)
}

func TestSteadyIdempotent(t *testing.T) {
	sys := diffusionSystem1D(20)
	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	tf, _ := factory.TestFunction([]int{mesh.BRegionRight}, []int{mesh.BRegionLeft})
	u := snapshot(1, tf)

	integ := NewIntegrator(sys)
	a, err := integ.Steady(tf, u)
	assert.NoError(t, err)
	b, err := integ.Steady(tf, u)
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConstantTestFunctionKillsEdgeTerms(t *testing.T) {
	// With a constant weighting field every edge difference vanishes and
	// only node terms remain, scaled by the constant
	m := mesh.IntervalMesh1D(0, 1, 10)
	sys := fvm.NewSystem(m, fvm.Physics{
		Flux:     func(f, uk, ul []float64) { f[0] = 100 * (uk[0] - ul[0]) },
		Reaction: func(f, u []float64) { f[0] = u[0] },
	}, 1)
	sys.EnableSpecies(0, []int{1})

	var (
		n  = m.NumNodes()
		tf = make([]float64, n)
		uf = make([]float64, n)
	)
	for i := range tf {
		tf[i] = 0.7
		uf[i] = float64(i) // strong gradient, nonzero flux on every edge
	}
	got, err := NewIntegrator(sys).Steady(tf, snapshot(1, uf))
	assert.NoError(t, err)
	// reaction term only: 0.7 * integral of u = 0.7 * mean * length
	assert.InDelta(t, 0.7*5, got[0], 1.e-10)
}

func TestSpeciesMaskedEverywhere(t *testing.T) {
	sys := fvm.NewSystem(mesh.IntervalMesh1D(0, 1, 10), fvm.Physics{
		Flux:     func(f, uk, ul []float64) { f[0] = uk[0] - ul[0]; f[1] = 42 },
		Reaction: func(f, u []float64) { f[0] = u[0]; f[1] = 42 },
		Source:   func(f []float64) { f[1] = 42 },
		Storage:  func(f, u []float64) { f[0] = u[0]; f[1] = 42 },
	}, 2)
	sys.EnableSpecies(0, []int{1}) // species 1 never enabled

	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	tf, _ := factory.TestFunction([]int{mesh.BRegionRight}, []int{mesh.BRegionLeft})
	u := snapshot(2, tf)

	integ := NewIntegrator(sys)
	for _, run := range []func() ([]float64, error){
		func() ([]float64, error) { return integ.Steady(tf, u) },
		func() ([]float64, error) { return integ.Storage(tf, u) },
		func() ([]float64, error) { return integ.Transient(tf, u, snapshot(2, make([]float64, 11)), 0.1) },
	} {
		got, err := run()
		assert.NoError(t, err)
		assert.Equal(t, 0., got[1])
	}
}

func TestEdgeNeedsBothEndpointsActive(t *testing.T) {
	// Species 1 lives only on the right half: its edge terms accumulate
	// over half the domain
	coords := make([]float64, 11)
	cr := make([]int, 10)
	for i := range coords {
		coords[i] = float64(i) / 10
	}
	for c := range cr {
		cr[c] = 1
		if c >= 5 {
			cr[c] = 2
		}
	}
	m := mesh.LineMesh1D(coords, cr, []int{0, 10}, []int{1, 2})
	sys := fvm.NewSystem(m, fvm.Physics{
		Flux: func(f, uk, ul []float64) {
			f[0] = uk[0] - ul[0]
			f[1] = uk[1] - ul[1]
		},
	}, 2)
	sys.EnableSpecies(0, []int{1, 2})
	sys.EnableSpecies(1, []int{2})

	var (
		tf = make([]float64, 11)
		uf = make([]float64, 11)
	)
	for i := range tf {
		tf[i] = 1 - coords[i]
		uf[i] = 1 - coords[i]
	}
	got, err := NewIntegrator(sys).Steady(tf, snapshot(2, uf))
	assert.NoError(t, err)
	assert.InDelta(t, 1, got[0], 1.e-10)
	assert.InDelta(t, 0.5, got[1], 1.e-10)
}

func TestStorageFunctional(t *testing.T) {
	sys := diffusionSystem1D(10)
	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	tf, _ := factory.TestFunction([]int{mesh.BRegionRight}, []int{mesh.BRegionLeft})

	ones := make([]float64, 11)
	for i := range ones {
		ones[i] = 1
	}
	got, err := NewIntegrator(sys).Storage(tf, snapshot(1, ones))
	assert.NoError(t, err)
	// integral of the linear test function over [0,1]
	assert.InDelta(t, 0.5, got[0], 1.e-8)
}

func TestTransientMatchesSteadyWithFrozenState(t *testing.T) {
	sys := diffusionSystem1D(20)
	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	tf, _ := factory.TestFunction([]int{mesh.BRegionRight}, []int{mesh.BRegionLeft})
	u := snapshot(1, tf)

	integ := NewIntegrator(sys)
	steady, err := integ.Steady(tf, u)
	assert.NoError(t, err)

	// Identical snapshots: the backward difference vanishes exactly
	frozen, err := integ.Transient(tf, u, u, 1.e-3)
	assert.NoError(t, err)
	assert.Equal(t, steady, frozen)

	// Very large step: the storage term becomes negligible
	huge, err := integ.Transient(tf, u, snapshot(1, make([]float64, 21)), 1.e12)
	assert.NoError(t, err)
	assert.InDelta(t, steady[0], huge[0], 1.e-9)
}

func TestIntegrateModeDispatch(t *testing.T) {
	sys := diffusionSystem1D(10)
	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	tf, _ := factory.TestFunction([]int{mesh.BRegionRight}, []int{mesh.BRegionLeft})
	u := snapshot(1, tf)
	prev := snapshot(1, make([]float64, 11))

	integ := NewIntegrator(sys)
	steady, _ := integ.Steady(tf, u)
	gotS, err := integ.Integrate(tf, u, SteadyMode())
	assert.NoError(t, err)
	assert.Equal(t, steady, gotS)

	transient, _ := integ.Transient(tf, u, prev, 0.1)
	gotT, err := integ.Integrate(tf, u, TransientMode(0.1, prev))
	assert.NoError(t, err)
	assert.Equal(t, transient, gotT)
}

func TestIntegratorInputValidation(t *testing.T) {
	sys := diffusionSystem1D(10)
	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	tf, _ := factory.TestFunction([]int{mesh.BRegionRight}, []int{mesh.BRegionLeft})
	u := snapshot(1, tf)
	integ := NewIntegrator(sys)

	_, err := integ.Steady(tf[:5], u)
	assert.Error(t, err)
	_, err = integ.Steady(tf, mat.NewDense(2, 11, nil))
	assert.Error(t, err)
	_, err = integ.Steady(tf, mat.NewDense(1, 7, nil))
	assert.Error(t, err)

	prev := snapshot(1, make([]float64, 11))
	_, err = integ.Transient(tf, u, nil, 0.1)
	assert.Error(t, err)
	_, err = integ.Transient(tf, u, prev, 0)
	assert.Error(t, err)
	_, err = integ.Transient(tf, u, prev, math.Inf(1))
	assert.Error(t, err)
	_, err = integ.Transient(tf, u, prev, math.NaN())
	assert.Error(t, err)
}

func TestParallelMatchesSerial(t *testing.T) {
	sys := diffusionSystem1D(101)
	factory, _ := NewTestFunctionFactory(sys, linsolve.DenseLU{})
	tf, _ := factory.TestFunction([]int{mesh.BRegionRight}, []int{mesh.BRegionLeft})
	u := snapshot(1, tf)
	prev := snapshot(1, make([]float64, 102))

	serial := NewIntegrator(sys)
	parallel := NewIntegrator(sys)
	parallel.Workers = 4

	a, err := serial.Transient(tf, u, prev, 0.25)
	assert.NoError(t, err)
	b, err := parallel.Transient(tf, u, prev, 0.25)
	assert.NoError(t, err)
	assert.InDelta(t, a[0], b[0], 1.e-12)

	// Fixed worker count: repeated parallel runs are deterministic
	c, err := parallel.Transient(tf, u, prev, 0.25)
	assert.NoError(t, err)
	assert.Equal(t, b, c)
}
