package fvm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Geometry is the mesh contract the discretization consumes: topology plus
// precomputed control volume weighting factors. mesh.Mesh satisfies it.
type Geometry interface {
	NumNodes() int
	NumCells() int
	NumBFaces() int
	NodesPerCell() int
	EdgesPerCell() int
	NodesPerBFace() int
	CellNode(localNode, cell int) int
	CellEdgeNodes(localEdge, cell int) (n1, n2 int)
	CellRegion(cell int) int
	BFaceNode(localNode, bface int) int
	BFaceRegion(bface int) int
	EdgeFactor(localEdge, cell int) float64
	NodeFactor(localNode, cell int) float64
	BFaceFactor(localNode, bface int) float64
	NumCellRegions() int
	NumBFaceRegions() int
}

// DirichletPenalty is the large coefficient used to impose Dirichlet values
// through the boundary penalty convention.
const DirichletPenalty = 1.e30

// System owns a geometry, the physics callbacks and the dof activation of a
// multi species finite volume discretization. Species activation is fixed at
// setup time; a System is read only during integration and may be shared.
type System struct {
	Geom    Geometry
	Physics Physics
	Dofs    *DofMap

	numSpecies    int
	regionSpecies [][]bool // [cellRegion][species]

	// Per (species, boundary region) Dirichlet penalty coefficient and value
	bcFactor [][]float64
	bcValue  [][]float64
}

func NewSystem(geom Geometry, phys Physics, numSpecies int) *System {
	if numSpecies < 1 {
		panic(fmt.Sprintf("system needs at least one species, got %d", numSpecies))
	}
	s := &System{
		Geom:          geom,
		Physics:       phys,
		Dofs:          NewDofMap(numSpecies, geom.NumNodes()),
		numSpecies:    numSpecies,
		regionSpecies: make([][]bool, geom.NumCellRegions()+1),
		bcFactor:      make([][]float64, numSpecies),
		bcValue:       make([][]float64, numSpecies),
	}
	for r := range s.regionSpecies {
		s.regionSpecies[r] = make([]bool, numSpecies)
	}
	for k := 0; k < numSpecies; k++ {
		s.bcFactor[k] = make([]float64, geom.NumBFaceRegions()+1)
		s.bcValue[k] = make([]float64, geom.NumBFaceRegions()+1)
	}
	return s
}

func (s *System) NumSpecies() int { return s.numSpecies }

// EnableSpecies activates a species on the named cell regions, marking the
// dof bitmap at every node of every cell in those regions. Setup time only.
func (s *System) EnableSpecies(species int, regions []int) {
	if species < 0 || species >= s.numSpecies {
		panic(fmt.Sprintf("species %d out of range [0, %d)", species, s.numSpecies))
	}
	for _, r := range regions {
		if r < 1 || r > s.Geom.NumCellRegions() {
			panic(fmt.Sprintf("cell region %d out of range [1, %d]", r, s.Geom.NumCellRegions()))
		}
		s.regionSpecies[r][species] = true
	}
	var (
		npc = s.Geom.NodesPerCell()
	)
	for c := 0; c < s.Geom.NumCells(); c++ {
		if !s.regionSpecies[s.Geom.CellRegion(c)][species] {
			continue
		}
		for ln := 0; ln < npc; ln++ {
			s.Dofs.Activate(species, s.Geom.CellNode(ln, c))
		}
	}
}

// SpeciesEnabled reports whether the species was enabled on the region.
func (s *System) SpeciesEnabled(species, region int) bool {
	return s.regionSpecies[region][species]
}

// ClearBoundaryConditions zeroes all Dirichlet coefficients and values,
// removing any previously configured boundary data.
func (s *System) ClearBoundaryConditions() {
	for k := 0; k < s.numSpecies; k++ {
		for r := range s.bcFactor[k] {
			s.bcFactor[k][r] = 0
			s.bcValue[k][r] = 0
		}
	}
}

// SetDirichlet imposes a Dirichlet value for a species on a boundary region
// using the penalty convention.
func (s *System) SetDirichlet(species, bregion int, value float64) {
	if species < 0 || species >= s.numSpecies {
		panic(fmt.Sprintf("species %d out of range [0, %d)", species, s.numSpecies))
	}
	if bregion < 1 || bregion > s.Geom.NumBFaceRegions() {
		panic(fmt.Sprintf("boundary region %d out of range [1, %d]", bregion, s.Geom.NumBFaceRegions()))
	}
	s.bcFactor[species][bregion] = DirichletPenalty
	s.bcValue[species][bregion] = value
}

func (s *System) DirichletFactor(species, bregion int) float64 {
	return s.bcFactor[species][bregion]
}

func (s *System) DirichletValue(species, bregion int) float64 {
	return s.bcValue[species][bregion]
}

// CheckSnapshot validates that a solution snapshot has one row per species
// and one column per mesh node. Integration fails fast on mismatch.
func (s *System) CheckSnapshot(u *mat.Dense) error {
	if u == nil {
		return fmt.Errorf("nil solution snapshot")
	}
	nr, nc := u.Dims()
	if nr != s.numSpecies || nc != s.Geom.NumNodes() {
		return fmt.Errorf("snapshot shape (%d x %d) does not match system (%d species x %d nodes)",
			nr, nc, s.numSpecies, s.Geom.NumNodes())
	}
	return nil
}

// CheckTestFunction validates the weighting field length against the mesh.
func (s *System) CheckTestFunction(tf []float64) error {
	if len(tf) != s.Geom.NumNodes() {
		return fmt.Errorf("test function length %d does not match node count %d",
			len(tf), s.Geom.NumNodes())
	}
	return nil
}
