// Package mesh models the 2-D W×H tile universe of a Network-on-Chip: a
// dense grid of physical tiles connected to their 4-neighbors, plus the
// precomputed Manhattan-distance table (PTDM) used by the layout objective.
//
// A Mesh is immutable once built. Tile identity is a flat row-major index
// `idx = y*W + x`; PhysicalTile is the (x,y) pair form used at the API
// boundary, the flat index is what every other package (lpc, stc, rpc)
// threads around internally.
package mesh

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/nocmesh/core"
)

// Sentinel errors for mesh construction and lookups.
var (
	// ErrNonPositiveDim indicates W or H was not strictly positive.
	ErrNonPositiveDim = errors.New("mesh: width and height must be positive")

	// ErrTileOutOfRange indicates a coordinate or index lies outside the mesh.
	ErrTileOutOfRange = errors.New("mesh: tile out of range")
)

// PhysicalTile is a coordinate pair on the mesh grid.
type PhysicalTile struct {
	X, Y int
}

// Mesh is a W×H grid of physical tiles with 4-neighbor connectivity and a
// precomputed all-pairs Manhattan-distance table (PTDM).
type Mesh struct {
	W, H int
	ptdm [][]int // ptdm[i][j] = |x_i-x_j| + |y_i-y_j|, dense, (W*H)x(W*H)
}

// NewMesh builds a Mesh of the given dimensions and precomputes its PTDM.
// Returns ErrNonPositiveDim if W<=0 or H<=0.
// Complexity: O((W·H)^2) time and memory for the dense PTDM.
func NewMesh(w, h int) (*Mesh, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrNonPositiveDim
	}
	n := w * h
	m := &Mesh{W: w, H: h}
	m.ptdm = make([][]int, n)
	for i := 0; i < n; i++ {
		m.ptdm[i] = make([]int, n)
		xi, yi := m.Coordinate(i)
		for j := 0; j < n; j++ {
			xj, yj := m.Coordinate(j)
			m.ptdm[i][j] = abs(xi-xj) + abs(yi-yj)
		}
	}

	return m, nil
}

// Size returns the total number of tiles W*H.
func (m *Mesh) Size() int { return m.W * m.H }

// Index maps (x,y) to its flat row-major index y*W+x.
// Complexity: O(1). Does not validate bounds; callers that accept untrusted
// coordinates should call InBounds first.
func (m *Mesh) Index(x, y int) int { return y*m.W + x }

// Coordinate maps a flat row-major index back to (x,y).
// Complexity: O(1).
func (m *Mesh) Coordinate(idx int) (x, y int) { return idx % m.W, idx / m.W }

// InBounds reports whether (x,y) lies within the mesh.
func (m *Mesh) InBounds(x, y int) bool {
	return x >= 0 && x < m.W && y >= 0 && y < m.H
}

// Nodes returns all physical tiles in row-major order.
// Complexity: O(W·H).
func (m *Mesh) Nodes() []PhysicalTile {
	out := make([]PhysicalTile, 0, m.Size())
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			out = append(out, PhysicalTile{X: x, Y: y})
		}
	}

	return out
}

// Manhattan returns PTDM[i][j], the precomputed Manhattan distance between
// tile indices i and j. Panics if either index is out of range, mirroring
// the dense-table contract: callers only ever pass indices obtained from
// this Mesh.
func (m *Mesh) Manhattan(i, j int) int {
	return m.ptdm[i][j]
}

// Neighbors4 returns the flat indices of the orthogonal (4-connected)
// neighbors of idx that lie within the mesh, in a fixed N,E,S,W order.
// Complexity: O(1).
func (m *Mesh) Neighbors4(idx int) []int {
	x, y := m.Coordinate(idx)
	offsets := [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	out := make([]int, 0, 4)
	for _, d := range offsets {
		nx, ny := x+d[0], y+d[1]
		if m.InBounds(nx, ny) {
			out = append(out, m.Index(nx, ny))
		}
	}

	return out
}

// vertexID formats the core.Graph vertex identifier for a flat tile index.
func vertexID(idx int) string {
	return fmt.Sprintf("%d", idx)
}

// TileID is the exported form of vertexID, used by callers (stc, routingdesigner)
// that need to address a core.Graph built by ToCoreGraph.
func TileID(idx int) string { return vertexID(idx) }

// ToCoreGraph converts the Mesh into an unweighted, undirected *core.Graph
// whose vertices are flat tile indices ("0".."W*H-1") and whose edges
// connect 4-neighbor tiles. This is the substrate every Steiner-tree
// construction and deterministic routing walk is built over; it is left
// unweighted so it can be fed directly to bfs.BFS, which rejects weighted
// graphs.
// Complexity: O(W·H) vertices, O(W·H) edges (each undirected edge added once).
func (m *Mesh) ToCoreGraph() *core.Graph {
	g := core.NewGraph()
	n := m.Size()
	for i := 0; i < n; i++ {
		_ = g.AddVertex(vertexID(i))
	}
	for i := 0; i < n; i++ {
		x, y := m.Coordinate(i)
		// only emit E and S neighbors to avoid inserting each undirected edge twice;
		// AddEdge mirrors adjacency for undirected edges automatically.
		if m.InBounds(x+1, y) {
			_, _ = g.AddEdge(vertexID(i), vertexID(m.Index(x+1, y)), 0)
		}
		if m.InBounds(x, y+1) {
			_, _ = g.AddEdge(vertexID(i), vertexID(m.Index(x, y+1)), 0)
		}
	}

	return g
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
