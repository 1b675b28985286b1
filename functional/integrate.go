package functional

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/fvmtools/gofvm/fvm"
	"github.com/fvmtools/gofvm/utils"
)

// TimeMode selects between the steady and the transient functional. It
// replaces an Inf time step sentinel with an explicit tagged value.
type TimeMode struct {
	transient bool
	dt        float64
	prev      *mat.Dense
}

func SteadyMode() TimeMode { return TimeMode{} }

// TransientMode enables the backward difference storage term
// (storage(u) - storage(prev)) / dt.
func TransientMode(dt float64, prev *mat.Dense) TimeMode {
	return TimeMode{transient: true, dt: dt, prev: prev}
}

type variant uint8

const (
	steadyVariant variant = iota
	transientVariant
	storageVariant
)

// Integrator accumulates test function weighted flux functionals over the
// cells of a system. Workers > 1 splits the cell loop over that many
// goroutines with per worker accumulators merged in worker order, so the
// result is deterministic for a fixed worker count; the merged rounding
// order differs from the serial one within floating point tolerance.
type Integrator struct {
	Sys     *fvm.System
	Workers int
}

func NewIntegrator(sys *fvm.System) *Integrator {
	return &Integrator{Sys: sys, Workers: 1}
}

// Steady accumulates the edge flux and node reaction/source terms.
func (q *Integrator) Steady(tf []float64, u *mat.Dense) ([]float64, error) {
	if err := q.check(tf, u); err != nil {
		return nil, err
	}
	return q.run(tf, u, nil, 0, steadyVariant), nil
}

// Transient accumulates the steady terms plus the backward difference
// storage term between the current snapshot u and the previous one.
func (q *Integrator) Transient(tf []float64, u, prev *mat.Dense, dt float64) ([]float64, error) {
	if err := q.check(tf, u); err != nil {
		return nil, err
	}
	if err := q.Sys.CheckSnapshot(prev); err != nil {
		return nil, fmt.Errorf("previous snapshot: %w", err)
	}
	if dt <= 0 || math.IsInf(dt, 0) || math.IsNaN(dt) {
		return nil, fmt.Errorf("time step must be positive and finite, got %g; use Steady for the steady functional", dt)
	}
	return q.run(tf, u, prev, dt, transientVariant), nil
}

// Storage accumulates only the weighted storage term of a single snapshot,
// with no time step division. It isolates the pure accumulation part of the
// transient functional.
func (q *Integrator) Storage(tf []float64, u *mat.Dense) ([]float64, error) {
	if err := q.check(tf, u); err != nil {
		return nil, err
	}
	return q.run(tf, u, nil, 0, storageVariant), nil
}

// Integrate is the general entry point, dispatching on the tagged TimeMode.
func (q *Integrator) Integrate(tf []float64, u *mat.Dense, mode TimeMode) ([]float64, error) {
	if mode.transient {
		return q.Transient(tf, u, mode.prev, mode.dt)
	}
	return q.Steady(tf, u)
}

func (q *Integrator) check(tf []float64, u *mat.Dense) error {
	if err := q.Sys.CheckTestFunction(tf); err != nil {
		return err
	}
	return q.Sys.CheckSnapshot(u)
}

// run drives the cell traversal, serially or split across workers.
func (q *Integrator) run(tf []float64, u, prev *mat.Dense, dt float64, kind variant) []float64 {
	var (
		nCells = q.Sys.Geom.NumCells()
	)
	if q.Workers <= 1 || nCells < 2 {
		return q.accumulate(tf, u, prev, dt, kind, 0, nCells)
	}
	var (
		pm       = utils.NewPartitionMap(q.Workers, nCells)
		np       = pm.ParallelDegree
		partials = make([][]float64, np)
		wg       sync.WaitGroup
	)
	for n := 0; n < np; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(n)
			partials[n] = q.accumulate(tf, u, prev, dt, kind, kMin, kMax)
		}(n)
	}
	wg.Wait()
	sum := partials[0]
	for n := 1; n < np; n++ {
		for k := range sum {
			sum[k] += partials[n][k]
		}
	}
	return sum
}

// accumulate sums the contributions of cells [cellMin, cellMax). All scratch
// buffers are local, so concurrent calls over disjoint ranges are safe.
func (q *Integrator) accumulate(tf []float64, u, prev *mat.Dense, dt float64, kind variant,
	cellMin, cellMax int) []float64 {
	var (
		sys   = q.Sys
		geom  = sys.Geom
		phys  = sys.Physics
		nSpec = sys.NumSpecies()
		sum   = make([]float64, nSpec)

		uk, ul  = make([]float64, nSpec), make([]float64, nSpec)
		un, uo  = make([]float64, nSpec), make([]float64, nSpec)
		fRes    = make([]float64, nSpec)
		rRes    = make([]float64, nSpec)
		sRes    = make([]float64, nSpec)
		stRes   = make([]float64, nSpec)
		stPrev  = make([]float64, nSpec)
		epc     = geom.EdgesPerCell()
		npc     = geom.NodesPerCell()
		hasEdge = kind == steadyVariant || kind == transientVariant
	)
	for c := cellMin; c < cellMax; c++ {
		if hasEdge {
			for e := 0; e < epc; e++ {
				n1, n2 := geom.CellEdgeNodes(e, c)
				for k := 0; k < nSpec; k++ {
					uk[k] = u.At(k, n1)
					ul[k] = u.At(k, n2)
				}
				phys.EvalFlux(fRes, uk, ul)
				var (
					ef  = geom.EdgeFactor(e, c)
					dtf = tf[n1] - tf[n2]
				)
				for k := 0; k < nSpec; k++ {
					// An edge contributes only where the species has
					// unknowns at both endpoints
					if sys.Dofs.IsActive(k, n1) && sys.Dofs.IsActive(k, n2) {
						sum[k] += ef * fRes[k] * dtf
					}
				}
			}
		}
		for ln := 0; ln < npc; ln++ {
			var (
				node = geom.CellNode(ln, c)
				nf   = geom.NodeFactor(ln, c)
			)
			for k := 0; k < nSpec; k++ {
				un[k] = u.At(k, node)
			}
			switch kind {
			case storageVariant:
				phys.EvalStorage(stRes, un)
				for k := 0; k < nSpec; k++ {
					if sys.Dofs.IsActive(k, node) {
						sum[k] += nf * stRes[k] * tf[node]
					}
				}
			case steadyVariant:
				phys.EvalReaction(rRes, un)
				phys.EvalSource(sRes)
				for k := 0; k < nSpec; k++ {
					if sys.Dofs.IsActive(k, node) {
						sum[k] += nf * (rRes[k] - sRes[k]) * tf[node]
					}
				}
			case transientVariant:
				for k := 0; k < nSpec; k++ {
					uo[k] = prev.At(k, node)
				}
				phys.EvalReaction(rRes, un)
				phys.EvalSource(sRes)
				phys.EvalStorage(stRes, un)
				phys.EvalStorage(stPrev, uo)
				for k := 0; k < nSpec; k++ {
					if sys.Dofs.IsActive(k, node) {
						sum[k] += nf * (rRes[k] - sRes[k] + (stRes[k]-stPrev[k])/dt) * tf[node]
					}
				}
			}
		}
	}
	return sum
}
