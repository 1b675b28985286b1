// Package functional computes test function flux functionals: derived
// scalar quantities such as the net flux of a species through a boundary
// region, extracted from a finite volume solution by a discrete weighted
// residual identity.
package functional

import (
	"fmt"

	"github.com/james-bowman/sparse"

	"github.com/fvmtools/gofvm/fvm"
	"github.com/fvmtools/gofvm/linsolve"
)

// TestFunctionFactory builds test functions: smooth per node weighting
// fields solving a linear single species shadow discretization of the
// system's geometry with prescribed 0/1 Dirichlet boundary data.
//
// The factory mutates the boundary data of its owned shadow system on every
// TestFunction call, so concurrent calls on one factory must be serialized.
type TestFunctionFactory struct {
	sys     *fvm.System
	shadow  *fvm.System
	backend linsolve.Backend
}

// NewTestFunctionFactory builds the shadow system over the geometry of sys,
// with flux u1-u2 and identity storage, its single species enabled on every
// cell region of the mesh.
func NewTestFunctionFactory(sys *fvm.System, backend linsolve.Backend) (*TestFunctionFactory, error) {
	var (
		geom = sys.Geom
	)
	if geom.NumCellRegions() < 1 {
		return nil, fmt.Errorf("cannot build test functions: geometry has no cell regions")
	}
	shadow := fvm.NewSystem(geom, fvm.Physics{
		Flux:    func(f, uk, ul []float64) { f[0] = uk[0] - ul[0] },
		Storage: func(f, u []float64) { f[0] = u[0] },
	}, 1)
	regions := make([]int, geom.NumCellRegions())
	for i := range regions {
		regions[i] = i + 1
	}
	shadow.EnableSpecies(0, regions)
	return &TestFunctionFactory{sys: sys, shadow: shadow, backend: backend}, nil
}

// TestFunction solves the shadow problem with Dirichlet value 0 on the
// boundary regions in bc0 and 1 on those in bc1, returning the node length
// solution vector. bc0 and bc1 must be disjoint and not both empty; an
// ill posed configuration is an error, never silently patched.
func (tf *TestFunctionFactory) TestFunction(bc0, bc1 []int) ([]float64, error) {
	var (
		geom = tf.shadow.Geom
	)
	if len(bc0) == 0 && len(bc1) == 0 {
		return nil, fmt.Errorf("test function requires at least one Dirichlet boundary region, " +
			"the pure Neumann shadow problem is singular")
	}
	seen := make(map[int]bool)
	for _, r := range append(append([]int{}, bc0...), bc1...) {
		if r < 1 || r > geom.NumBFaceRegions() {
			return nil, fmt.Errorf("boundary region %d out of range [1, %d]", r, geom.NumBFaceRegions())
		}
		if seen[r] {
			return nil, fmt.Errorf("boundary region %d appears in both bc0 and bc1", r)
		}
		seen[r] = true
	}

	tf.shadow.ClearBoundaryConditions()
	for _, r := range bc1 {
		tf.shadow.SetDirichlet(0, r, 1)
	}
	for _, r := range bc0 {
		tf.shadow.SetDirichlet(0, r, 0)
	}

	a, rhs := tf.assemble()
	fact, err := tf.backend.Factorize(a)
	if err != nil {
		return nil, fmt.Errorf("shadow system factorization failed: %w", err)
	}
	sol, err := fact.Solve(rhs)
	if err != nil {
		return nil, fmt.Errorf("shadow system solve failed: %w", err)
	}
	return sol, nil
}

// assemble builds the steady linear system of the shadow discretization:
// the two point difference flux weighted by the control volume edge factors,
// plus the boundary penalty rows for the configured Dirichlet data. The
// problem is linear, so a single assembly at the zero state suffices.
func (tf *TestFunctionFactory) assemble() (a *sparse.DOK, rhs []float64) {
	var (
		geom = tf.shadow.Geom
		n    = geom.NumNodes()
		add  = func(i, j int, v float64) { a.Set(i, j, a.At(i, j)+v) }
	)
	a = sparse.NewDOK(n, n)
	rhs = make([]float64, n)
	for c := 0; c < geom.NumCells(); c++ {
		for e := 0; e < geom.EdgesPerCell(); e++ {
			n1, n2 := geom.CellEdgeNodes(e, c)
			ef := geom.EdgeFactor(e, c)
			add(n1, n1, ef)
			add(n1, n2, -ef)
			add(n2, n2, ef)
			add(n2, n1, -ef)
		}
	}
	for b := 0; b < geom.NumBFaces(); b++ {
		var (
			region = geom.BFaceRegion(b)
			fac    = tf.shadow.DirichletFactor(0, region)
			val    = tf.shadow.DirichletValue(0, region)
		)
		if fac == 0 {
			continue
		}
		for ln := 0; ln < geom.NodesPerBFace(); ln++ {
			var (
				node = geom.BFaceNode(ln, b)
				bf   = geom.BFaceFactor(ln, b)
			)
			add(node, node, fac*bf)
			rhs[node] += fac * bf * val
		}
	}
	return
}
