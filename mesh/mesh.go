package mesh

import (
	"fmt"
	"math"
)

type CoordinateSystem uint8

const (
	Cartesian1D CoordinateSystem = iota
	Cartesian2D
	Cylindrical2D
)

// Local edge -> local node pair tables for the supported simplex geometries.
// For triangles, edge i is opposite vertex i.
var (
	lineEdgeNodes     = [1][2]int{{0, 1}}
	triangleEdgeNodes = [3][2]int{{1, 2}, {2, 0}, {0, 1}}
)

// Mesh is an immutable simplex mesh with precomputed control volume
// weighting factors. Region ids for cells and boundary faces are small
// positive integers.
type Mesh struct {
	Dim      int
	CoordSys CoordinateSystem

	Points       [][]float64 // [node][dim]
	Cells        [][]int     // [cell][localNode], Dim+1 nodes per cell
	CellRegions  []int       // [cell]
	BFaces       [][]int     // [bface][localNode], Dim nodes per bface
	BFaceRegions []int       // [bface]

	edgeFactors  [][]float64 // [cell][localEdge]
	nodeFactors  [][]float64 // [cell][localNode]
	bfaceFactors [][]float64 // [bface][localNode]

	numCellRegions  int
	numBFaceRegions int
}

func (m *Mesh) NumNodes() int  { return len(m.Points) }
func (m *Mesh) NumCells() int  { return len(m.Cells) }
func (m *Mesh) NumBFaces() int { return len(m.BFaces) }

func (m *Mesh) NodesPerCell() int { return m.Dim + 1 }

func (m *Mesh) EdgesPerCell() int {
	if m.Dim == 1 {
		return 1
	}
	return 3
}

func (m *Mesh) NodesPerBFace() int { return m.Dim }

func (m *Mesh) CellNode(localNode, cell int) int { return m.Cells[cell][localNode] }

// CellEdgeNodes resolves a cell-local edge to its two global node numbers.
func (m *Mesh) CellEdgeNodes(localEdge, cell int) (n1, n2 int) {
	var (
		cn = m.Cells[cell]
	)
	if m.Dim == 1 {
		return cn[lineEdgeNodes[localEdge][0]], cn[lineEdgeNodes[localEdge][1]]
	}
	return cn[triangleEdgeNodes[localEdge][0]], cn[triangleEdgeNodes[localEdge][1]]
}

func (m *Mesh) CellRegion(cell int) int           { return m.CellRegions[cell] }
func (m *Mesh) BFaceRegion(bface int) int         { return m.BFaceRegions[bface] }
func (m *Mesh) BFaceNode(localNode, bface int) int { return m.BFaces[bface][localNode] }

func (m *Mesh) EdgeFactor(localEdge, cell int) float64 { return m.edgeFactors[cell][localEdge] }
func (m *Mesh) NodeFactor(localNode, cell int) float64 { return m.nodeFactors[cell][localNode] }

// BFaceFactor is the boundary lumping weight of a boundary face node, the
// share of the face measure attributed to that node.
func (m *Mesh) BFaceFactor(localNode, bface int) float64 {
	return m.bfaceFactors[bface][localNode]
}

func (m *Mesh) NumCellRegions() int  { return m.numCellRegions }
func (m *Mesh) NumBFaceRegions() int { return m.numBFaceRegions }

func (m *Mesh) CoordinateSystem() CoordinateSystem { return m.CoordSys }

// finalize validates the topology and computes the geometric factors.
func (m *Mesh) finalize() {
	var (
		nNodes = len(m.Points)
	)
	if len(m.CellRegions) != len(m.Cells) {
		panic(fmt.Sprintf("cell region count %d does not match cell count %d",
			len(m.CellRegions), len(m.Cells)))
	}
	if len(m.BFaceRegions) != len(m.BFaces) {
		panic(fmt.Sprintf("bface region count %d does not match bface count %d",
			len(m.BFaceRegions), len(m.BFaces)))
	}
	for c, cn := range m.Cells {
		if len(cn) != m.NodesPerCell() {
			panic(fmt.Sprintf("cell %d has %d nodes, want %d", c, len(cn), m.NodesPerCell()))
		}
		for _, n := range cn {
			if n < 0 || n >= nNodes {
				panic(fmt.Sprintf("cell %d references node %d out of %d", c, n, nNodes))
			}
		}
		if m.CellRegions[c] < 1 {
			panic(fmt.Sprintf("cell %d has region %d, regions must be >= 1", c, m.CellRegions[c]))
		}
		if m.CellRegions[c] > m.numCellRegions {
			m.numCellRegions = m.CellRegions[c]
		}
	}
	for b, bn := range m.BFaces {
		if len(bn) != m.NodesPerBFace() {
			panic(fmt.Sprintf("bface %d has %d nodes, want %d", b, len(bn), m.NodesPerBFace()))
		}
		for _, n := range bn {
			if n < 0 || n >= nNodes {
				panic(fmt.Sprintf("bface %d references node %d out of %d", b, n, nNodes))
			}
		}
		if m.BFaceRegions[b] < 1 {
			panic(fmt.Sprintf("bface %d has region %d, regions must be >= 1", b, m.BFaceRegions[b]))
		}
		if m.BFaceRegions[b] > m.numBFaceRegions {
			m.numBFaceRegions = m.BFaceRegions[b]
		}
	}
	switch m.Dim {
	case 1:
		m.factors1D()
	case 2:
		m.factors2D()
	default:
		panic(fmt.Sprintf("unsupported mesh dimension %d", m.Dim))
	}
}

// factors1D: for a line cell of length h the two point flux weight is 1/h and
// each node owns half the cell. A boundary face is a single node of measure 1.
func (m *Mesh) factors1D() {
	m.edgeFactors = make([][]float64, len(m.Cells))
	m.nodeFactors = make([][]float64, len(m.Cells))
	for c, cn := range m.Cells {
		h := math.Abs(m.Points[cn[1]][0] - m.Points[cn[0]][0])
		if h == 0 {
			panic(fmt.Sprintf("degenerate cell %d with zero length", c))
		}
		m.edgeFactors[c] = []float64{1. / h}
		m.nodeFactors[c] = []float64{0.5 * h, 0.5 * h}
	}
	m.bfaceFactors = make([][]float64, len(m.BFaces))
	for b := range m.BFaces {
		m.bfaceFactors[b] = []float64{1}
	}
}

// factors2D computes cotangent edge weights and Voronoi node areas per
// triangle. Edge i is opposite vertex i; with A the triangle area and
// cot_i the cotangent of the angle at vertex i,
//
//	edgeFactor[i] = cot_i / 2
//	nodeFactor[i] = (L_j^2 cot_j + L_k^2 cot_k) / 8,  {j,k} = {0,1,2}\{i}
//
// so the node factors of a cell sum to its area. Obtuse triangles yield a
// negative factor on the edge opposite the obtuse angle; such meshes are not
// admissible for the two point flux and should be avoided upstream.
func (m *Mesh) factors2D() {
	m.edgeFactors = make([][]float64, len(m.Cells))
	m.nodeFactors = make([][]float64, len(m.Cells))
	for c, cn := range m.Cells {
		var (
			p0, p1, p2 = m.Points[cn[0]], m.Points[cn[1]], m.Points[cn[2]]
			cot, l2    [3]float64
		)
		// Twice the signed area via the cross product of two edge vectors
		area2 := (p1[0]-p0[0])*(p2[1]-p0[1]) - (p2[0]-p0[0])*(p1[1]-p0[1])
		if area2 < 0 {
			area2 = -area2
		}
		if area2 == 0 {
			panic(fmt.Sprintf("degenerate cell %d with zero area", c))
		}
		pts := [3][]float64{p0, p1, p2}
		for i := 0; i < 3; i++ {
			j, k := (i+1)%3, (i+2)%3
			ux, uy := pts[j][0]-pts[i][0], pts[j][1]-pts[i][1]
			vx, vy := pts[k][0]-pts[i][0], pts[k][1]-pts[i][1]
			cot[i] = (ux*vx + uy*vy) / area2
			// Squared length of the edge opposite vertex i
			ex, ey := pts[k][0]-pts[j][0], pts[k][1]-pts[j][1]
			l2[i] = ex*ex + ey*ey
		}
		ef := make([]float64, 3)
		nf := make([]float64, 3)
		for i := 0; i < 3; i++ {
			j, k := (i+1)%3, (i+2)%3
			ef[i] = 0.5 * cot[i]
			nf[i] = (l2[j]*cot[j] + l2[k]*cot[k]) / 8.
		}
		m.edgeFactors[c] = ef
		m.nodeFactors[c] = nf
	}
	m.bfaceFactors = make([][]float64, len(m.BFaces))
	for b, bn := range m.BFaces {
		var (
			pa, pb = m.Points[bn[0]], m.Points[bn[1]]
		)
		l := math.Hypot(pb[0]-pa[0], pb[1]-pa[1])
		m.bfaceFactors[b] = []float64{0.5 * l, 0.5 * l}
	}
}
