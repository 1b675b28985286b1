package mesh

import (
	"fmt"
	"sort"

	"github.com/pradeep-pyro/triangle"
)

// Boundary region ids assigned by the structured constructors.
const (
	BRegionLeft  = 1
	BRegionRight = 2
)

// LineMesh1D builds a 1D mesh from sorted node coordinates with explicit
// cell and boundary face regions.
func LineMesh1D(coords []float64, cellRegions []int, bfaceNodes []int, bfaceRegions []int) *Mesh {
	if len(coords) < 2 {
		panic(fmt.Sprintf("line mesh needs at least two nodes, got %d", len(coords)))
	}
	var (
		n      = len(coords) - 1
		points = make([][]float64, n+1)
		cells  = make([][]int, n)
		bfaces = make([][]int, len(bfaceNodes))
	)
	for i, x := range coords {
		points[i] = []float64{x}
	}
	for c := 0; c < n; c++ {
		cells[c] = []int{c, c + 1}
	}
	for b, node := range bfaceNodes {
		bfaces[b] = []int{node}
	}
	m := &Mesh{
		Dim:          1,
		CoordSys:     Cartesian1D,
		Points:       points,
		Cells:        cells,
		CellRegions:  cellRegions,
		BFaces:       bfaces,
		BFaceRegions: bfaceRegions,
	}
	m.finalize()
	return m
}

// IntervalMesh1D builds n equal line cells on [x0, x1], all in cell region 1,
// with the left endpoint in boundary region 1 and the right in region 2.
func IntervalMesh1D(x0, x1 float64, n int) *Mesh {
	if n < 1 {
		panic(fmt.Sprintf("interval mesh needs at least one cell, got %d", n))
	}
	if x1 <= x0 {
		panic(fmt.Sprintf("empty interval [%g, %g]", x0, x1))
	}
	var (
		h      = (x1 - x0) / float64(n)
		coords = make([]float64, n+1)
		cr     = make([]int, n)
	)
	for i := 0; i <= n; i++ {
		coords[i] = x0 + float64(i)*h
	}
	// Make the last node land exactly on x1
	coords[n] = x1
	for c := 0; c < n; c++ {
		cr[c] = 1
	}
	return LineMesh1D(coords, cr, []int{0, n}, []int{BRegionLeft, BRegionRight})
}

// TriangleMesh2D builds a triangle mesh from explicit topology.
func TriangleMesh2D(points [][2]float64, cells [][3]int, cellRegions []int,
	bfaces [][2]int, bfaceRegions []int) *Mesh {
	var (
		pts = make([][]float64, len(points))
		cls = make([][]int, len(cells))
		bfs = make([][]int, len(bfaces))
	)
	for i, p := range points {
		pts[i] = []float64{p[0], p[1]}
	}
	for c, cn := range cells {
		cls[c] = []int{cn[0], cn[1], cn[2]}
	}
	for b, bn := range bfaces {
		bfs[b] = []int{bn[0], bn[1]}
	}
	m := &Mesh{
		Dim:          2,
		CoordSys:     Cartesian2D,
		Points:       pts,
		Cells:        cls,
		CellRegions:  cellRegions,
		BFaces:       bfs,
		BFaceRegions: bfaceRegions,
	}
	m.finalize()
	return m
}

// DelaunayMesh2D triangulates a point cloud and builds a triangle mesh over
// its convex hull. Boundary faces are the edges owned by exactly one
// triangle; bregion classifies each such face from its endpoint coordinates,
// or everything lands in region 1 when nil. All cells are in region 1.
func DelaunayMesh2D(pts [][2]float64, bregion func(p1, p2 []float64) int) *Mesh {
	var (
		faces  = triangle.Delaunay(pts)
		cells  = make([][3]int, len(faces))
		cr     = make([]int, len(faces))
		owners = make(map[[2]int]int)
	)
	for c, f := range faces {
		cells[c] = [3]int{int(f[0]), int(f[1]), int(f[2])}
		cr[c] = 1
		for e := 0; e < 3; e++ {
			n1, n2 := cells[c][triangleEdgeNodes[e][0]], cells[c][triangleEdgeNodes[e][1]]
			if n1 > n2 {
				n1, n2 = n2, n1
			}
			owners[[2]int{n1, n2}]++
		}
	}
	var keys [][2]int
	for e, cnt := range owners {
		if cnt == 1 {
			keys = append(keys, e)
		}
	}
	// Map iteration order is random; sort for a reproducible mesh
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	var (
		bfaces = make([][2]int, len(keys))
		br     = make([]int, len(keys))
	)
	for b, e := range keys {
		bfaces[b] = e
		if bregion != nil {
			p1 := []float64{pts[e[0]][0], pts[e[0]][1]}
			p2 := []float64{pts[e[1]][0], pts[e[1]][1]}
			br[b] = bregion(p1, p2)
		} else {
			br[b] = 1
		}
	}
	return TriangleMesh2D(pts, cells, cr, bfaces, br)
}

// UnitSquareMesh2D builds a structured triangulation of [0,1]^2 with n
// intervals per side, split into right triangles, with boundary regions
// 1..4 = left, right, bottom, top.
func UnitSquareMesh2D(n int) *Mesh {
	if n < 1 {
		panic(fmt.Sprintf("unit square mesh needs at least one interval per side, got %d", n))
	}
	var (
		h      = 1. / float64(n)
		points = make([][2]float64, (n+1)*(n+1))
		node   = func(i, j int) int { return i + (n+1)*j }
	)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			points[node(i, j)] = [2]float64{float64(i) * h, float64(j) * h}
		}
	}
	var (
		cells [][3]int
		cr    []int
	)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a, b := node(i, j), node(i+1, j)
			c, d := node(i, j+1), node(i+1, j+1)
			// Split each quad along its diagonal so every triangle is right
			// isoceles and the two point flux stays admissible
			cells = append(cells, [3]int{a, b, c}, [3]int{b, d, c})
			cr = append(cr, 1, 1)
		}
	}
	var (
		bfaces [][2]int
		br     []int
	)
	for j := 0; j < n; j++ {
		bfaces = append(bfaces, [2]int{node(0, j), node(0, j+1)})
		br = append(br, 1)
		bfaces = append(bfaces, [2]int{node(n, j), node(n, j+1)})
		br = append(br, 2)
	}
	for i := 0; i < n; i++ {
		bfaces = append(bfaces, [2]int{node(i, 0), node(i+1, 0)})
		br = append(br, 3)
		bfaces = append(bfaces, [2]int{node(i, n), node(i+1, n)})
		br = append(br, 4)
	}
	return TriangleMesh2D(points, cells, cr, bfaces, br)
}
