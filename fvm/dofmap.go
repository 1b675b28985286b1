package fvm

// DofMap is a (species x node) activation bitmap. A species has a
// discretization unknown at a node only when its bit is set; everything
// else is skipped during assembly and functional accumulation.
type DofMap struct {
	numSpecies, numNodes int
	bits                 []uint64
}

func NewDofMap(numSpecies, numNodes int) *DofMap {
	return &DofMap{
		numSpecies: numSpecies,
		numNodes:   numNodes,
		bits:       make([]uint64, (numSpecies*numNodes+63)/64),
	}
}

func (m *DofMap) index(species, node int) int {
	if species < 0 || species >= m.numSpecies || node < 0 || node >= m.numNodes {
		panic("dof index out of range")
	}
	return species*m.numNodes + node
}

func (m *DofMap) Activate(species, node int) {
	i := m.index(species, node)
	m.bits[i>>6] |= 1 << uint(i&63)
}

func (m *DofMap) IsActive(species, node int) bool {
	i := m.index(species, node)
	return m.bits[i>>6]&(1<<uint(i&63)) != 0
}

// AnyActive reports whether the species is active at at least one node.
func (m *DofMap) AnyActive(species int) bool {
	for n := 0; n < m.numNodes; n++ {
		if m.IsActive(species, n) {
			return true
		}
	}
	return false
}
