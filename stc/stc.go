// Package stc implements the SteinerTreeCode: a reversible-mutation spanning
// tree over a terminal set, decodable through a raw Steiner graph (RSTG)
// into a pruned true Steiner tree (TSTG), and from there into a directed
// routing path via breadth-first search from a source tile.
package stc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/nocmesh/bfs"
	"github.com/katalvlaran/nocmesh/core"
	"github.com/katalvlaran/nocmesh/mesh"
)

// Sentinel errors for STC construction, mutation, and decode.
var (
	// ErrTooFewTerminals indicates fewer than 2 terminals were supplied.
	ErrTooFewTerminals = errors.New("stc: at least 2 terminals required")

	// ErrDuplicateTerminal indicates the same physical tile appears twice in T.
	ErrDuplicateTerminal = errors.New("stc: duplicate terminal")

	// ErrRootNotTerminal indicates root was constructed outside T (InvariantViolation).
	ErrRootNotTerminal = errors.New("stc: root is not a terminal")

	// ErrAxisBitMismatch indicates len(axisBits) != len(edges) (InvariantViolation).
	ErrAxisBitMismatch = errors.New("stc: axis-bit count does not match edge count")

	// ErrNoPendingMutation indicates Undo was called with no prior Mutate.
	ErrNoPendingMutation = errors.New("stc: undo called with no pending mutation")

	// ErrSourceNotInGraph indicates ExtractPath's source tile is absent from the graph.
	ErrSourceNotInGraph = errors.New("stc: source tile not present in graph")
)

// AxisBit selects the per-edge dimension-order routing used at decode time.
type AxisBit int

const (
	// AxisXY routes X then Y.
	AxisXY AxisBit = iota
	// AxisYX routes Y then X.
	AxisYX
)

// TreeEdge is a logical (non-mesh-adjacent) edge of the spanning tree over T.
type TreeEdge struct {
	U, V int
}

// DecodeMethod selects the TSTG pruning algorithm.
type DecodeMethod int

const (
	// DecodeBFS is the canonical BFS-prune-with-rethink method.
	DecodeBFS DecodeMethod = iota
	// DecodeDFS is the diagnostic DFS-prune method.
	DecodeDFS
)

type mutationKind int

const (
	mutNone mutationKind = iota
	mutEdgeReplace
	mutRootRelocate
)

// mutationRecord remembers enough of the last Mutate call to reverse it.
type mutationRecord struct {
	kind        mutationKind
	removedIdx  int
	removedEdge TreeEdge
	removedAxis AxisBit
	oldRoot     int
}

// STC is the SteinerTreeCode: (T, root, edges, axisBits) over a mesh of
// meshSize physical tiles (R, the candidate tile universe, is implicit:
// every physical index in [0, meshSize)).
type STC struct {
	terminals    []int
	terminalSet  map[int]bool
	root         int
	edges        []TreeEdge
	axisBits     []AxisBit
	meshSize     int
	lastMutation *mutationRecord
}

// Construct builds a uniformly random Prüfer-like spanning tree over the
// given terminal set, per spec §4.4:
//  1. pick init ∈ T uniformly; visited := {init}; remaining := T \ {init};
//  2. repeat |T|-1 times: pick u uniformly from visited, v uniformly from
//     remaining; emit edge (u,v) with a uniform random axis bit; move v
//     from remaining to visited;
//  3. root := uniform(T).
func Construct(terminals []int, meshSize int, rng *rand.Rand) (*STC, error) {
	if len(terminals) < 2 {
		return nil, ErrTooFewTerminals
	}
	terminalSet := make(map[int]bool, len(terminals))
	for _, t := range terminals {
		if terminalSet[t] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTerminal, t)
		}
		terminalSet[t] = true
	}

	ts := append([]int(nil), terminals...)
	initIdx := rng.Intn(len(ts))
	visited := []int{ts[initIdx]}
	remaining := append(append([]int(nil), ts[:initIdx]...), ts[initIdx+1:]...)

	edges := make([]TreeEdge, 0, len(ts)-1)
	axisBits := make([]AxisBit, 0, len(ts)-1)
	for len(remaining) > 0 {
		u := visited[rng.Intn(len(visited))]
		vIdx := rng.Intn(len(remaining))
		v := remaining[vIdx]
		edges = append(edges, TreeEdge{U: u, V: v})
		axisBits = append(axisBits, randomAxis(rng))
		visited = append(visited, v)
		remaining[vIdx] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	root := ts[rng.Intn(len(ts))]

	return &STC{
		terminals:   ts,
		terminalSet: terminalSet,
		root:        root,
		edges:       edges,
		axisBits:    axisBits,
		meshSize:    meshSize,
	}, nil
}

// ConstructDYXY builds a deterministic star-topology STC rooted at src: one
// edge (src,t) per other terminal, every edge routed X-then-Y. This is the
// closed-form DYXY (dimension-order) routing engine's tree shape — no
// randomness, no mutation support expected to be exercised, only Decode.
// src must be a member of terminals.
func ConstructDYXY(terminals []int, src, meshSize int) (*STC, error) {
	if len(terminals) < 2 {
		return nil, ErrTooFewTerminals
	}
	terminalSet := make(map[int]bool, len(terminals))
	for _, t := range terminals {
		if terminalSet[t] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTerminal, t)
		}
		terminalSet[t] = true
	}
	if !terminalSet[src] {
		return nil, ErrRootNotTerminal
	}

	ts := append([]int(nil), terminals...)
	edges := make([]TreeEdge, 0, len(ts)-1)
	axisBits := make([]AxisBit, 0, len(ts)-1)
	for _, t := range ts {
		if t == src {
			continue
		}
		edges = append(edges, TreeEdge{U: src, V: t})
		axisBits = append(axisBits, AxisXY)
	}

	return &STC{
		terminals:   ts,
		terminalSet: terminalSet,
		root:        src,
		edges:       edges,
		axisBits:    axisBits,
		meshSize:    meshSize,
	}, nil
}

func randomAxis(rng *rand.Rand) AxisBit {
	if rng.Intn(2) == 0 {
		return AxisXY
	}
	return AxisYX
}

// Terminals returns T, the terminal tile set.
func (s *STC) Terminals() []int { return s.terminals }

// Root returns the current root terminal.
func (s *STC) Root() int { return s.root }

// Edges returns the current spanning-tree edges over T.
func (s *STC) Edges() []TreeEdge { return s.edges }

// AxisBits returns the per-edge axis bits, parallel to Edges().
func (s *STC) AxisBits() []AxisBit { return s.axisBits }

// Validate checks the structural invariants of spec §4.4: root ∈ T and
// len(axisBits) == len(edges). Intended for constructors of hand-built
// STC values (e.g. tests); Construct and Mutate always preserve these.
func (s *STC) Validate() error {
	if !s.terminalSet[s.root] {
		return ErrRootNotTerminal
	}
	if len(s.axisBits) != len(s.edges) {
		return ErrAxisBitMismatch
	}
	return nil
}

// Mutate performs one reversible mutation step, per spec §4.4: a fair coin
// picks edge replacement or root relocation.
func (s *STC) Mutate(rng *rand.Rand) {
	if rng.Intn(2) == 0 {
		s.mutateEdgeReplace(rng)
	} else {
		s.mutateRootRelocate(rng)
	}
}

func (s *STC) mutateRootRelocate(rng *rand.Rand) {
	if len(s.terminals) < 2 {
		s.lastMutation = &mutationRecord{kind: mutNone}
		return
	}
	candidates := make([]int, 0, len(s.terminals)-1)
	for _, t := range s.terminals {
		if t != s.root {
			candidates = append(candidates, t)
		}
	}
	oldRoot := s.root
	s.root = candidates[rng.Intn(len(candidates))]
	s.lastMutation = &mutationRecord{kind: mutRootRelocate, oldRoot: oldRoot}
}

func (s *STC) mutateEdgeReplace(rng *rand.Rand) {
	idx := rng.Intn(len(s.edges))
	removed := s.edges[idx]
	removedAxis := s.axisBits[idx]

	p1 := s.componentExcluding(s.root, idx)
	// Every node in p1's complement-among-tree-nodes forms the other side.
	p2 := make([]int, 0, len(s.terminals)-len(p1))
	inP1 := make(map[int]bool, len(p1))
	for _, n := range p1 {
		inP1[n] = true
	}
	for _, t := range s.terminals {
		if !inP1[t] {
			p2 = append(p2, t)
		}
	}

	// Open question (spec §9): defensive no-op when the non-root partition
	// carries no terminal to anchor the new edge on.
	if len(p2) == 0 {
		s.lastMutation = &mutationRecord{kind: mutNone}
		return
	}

	u := p1[rng.Intn(len(p1))]
	v := p2[rng.Intn(len(p2))]

	// Remove the edge at idx, append the added edge at the end; Undo pops
	// the tail and reinserts the removed edge at its original position.
	s.edges = append(s.edges[:idx], s.edges[idx+1:]...)
	s.axisBits = append(s.axisBits[:idx], s.axisBits[idx+1:]...)
	s.edges = append(s.edges, TreeEdge{U: u, V: v})
	s.axisBits = append(s.axisBits, randomAxis(rng))

	s.lastMutation = &mutationRecord{
		kind:        mutEdgeReplace,
		removedIdx:  idx,
		removedEdge: removed,
		removedAxis: removedAxis,
	}
}

// componentExcluding returns the set of tree nodes reachable from start
// using every spanning edge except the one at excludeIdx.
func (s *STC) componentExcluding(start, excludeIdx int) []int {
	adj := make(map[int][]int, len(s.terminals))
	for i, e := range s.edges {
		if i == excludeIdx {
			continue
		}
		adj[e.U] = append(adj[e.U], e.V)
		adj[e.V] = append(adj[e.V], e.U)
	}
	visited := map[int]bool{start: true}
	stack := []int{start}
	out := []int{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range adj[n] {
			if !visited[nb] {
				visited[nb] = true
				out = append(out, nb)
				stack = append(stack, nb)
			}
		}
	}

	return out
}

// Undo reverses the last Mutate call. Returns ErrNoPendingMutation if
// called with no prior mutation pending.
func (s *STC) Undo() error {
	if s.lastMutation == nil {
		return ErrNoPendingMutation
	}
	rec := s.lastMutation
	s.lastMutation = nil
	switch rec.kind {
	case mutNone:
		return nil
	case mutRootRelocate:
		s.root = rec.oldRoot
		return nil
	case mutEdgeReplace:
		n := len(s.edges)
		s.edges = s.edges[:n-1]
		s.axisBits = s.axisBits[:n-1]
		s.edges = insertEdge(s.edges, rec.removedIdx, rec.removedEdge)
		s.axisBits = insertAxis(s.axisBits, rec.removedIdx, rec.removedAxis)
		return nil
	}

	return nil
}

func insertEdge(s []TreeEdge, idx int, e TreeEdge) []TreeEdge {
	s = append(s, TreeEdge{})
	copy(s[idx+1:], s[idx:])
	s[idx] = e
	return s
}

func insertAxis(s []AxisBit, idx int, a AxisBit) []AxisBit {
	s = append(s, AxisBit(0))
	copy(s[idx+1:], s[idx:])
	s[idx] = a
	return s
}

// Clone returns a deep, independent copy of s. Used for best-so-far
// snapshots during simulated annealing.
func (s *STC) Clone() *STC {
	clone := &STC{
		terminals:   append([]int(nil), s.terminals...),
		terminalSet: make(map[int]bool, len(s.terminalSet)),
		root:        s.root,
		edges:       append([]TreeEdge(nil), s.edges...),
		axisBits:    append([]AxisBit(nil), s.axisBits...),
		meshSize:    s.meshSize,
	}
	for k, v := range s.terminalSet {
		clone.terminalSet[k] = v
	}

	return clone
}

// DirectedEdge is one parent->child hop of a BFS-extracted routing path.
type DirectedEdge struct {
	From, To int
}

// Decode runs the three-layer decode pipeline of spec §4.4: build the raw
// Steiner graph (RSTG) from the spanning edges' axis-ordered mesh walks,
// then prune it into a true Steiner graph (TSTG) rooted at s.Root() using
// the requested method. The returned graph's vertices are mesh.TileID(idx)
// strings; it is unweighted so it can be fed directly to ExtractPath/bfs.BFS.
func (s *STC) Decode(m *mesh.Mesh, method DecodeMethod) (*core.Graph, error) {
	rstg := s.buildRSTG(m)
	switch method {
	case DecodeDFS:
		return pruneDFS(rstg, s.root, s.terminalSet)
	default:
		return pruneBFSRethink(rstg, s.root, s.terminalSet)
	}
}

// buildRSTG walks each spanning edge's axis-ordered unit steps and unions
// the traversed mesh edges into an undirected, unweighted core.Graph.
// Duplicate mesh edges from distinct spanning edges collapse naturally:
// the graph disallows multi-edges, so a repeat AddEdge is a harmless no-op.
func (s *STC) buildRSTG(m *mesh.Mesh) *core.Graph {
	g := core.NewGraph()
	for i, e := range s.edges {
		path := axisWalk(m, e.U, e.V, s.axisBits[i])
		for k := 0; k+1 < len(path); k++ {
			a, b := mesh.TileID(path[k]), mesh.TileID(path[k+1])
			_ = g.AddVertex(a)
			_ = g.AddVertex(b)
			_, _ = g.AddEdge(a, b, 0)
		}
	}

	return g
}

// axisWalk returns the sequence of mesh tile indices visited moving from u
// to v in axis-aligned unit steps, X-then-Y for AxisXY or Y-then-X for
// AxisYX, inclusive of both endpoints.
func axisWalk(m *mesh.Mesh, u, v int, axis AxisBit) []int {
	ux, uy := m.Coordinate(u)
	vx, vy := m.Coordinate(v)
	path := []int{m.Index(ux, uy)}

	moveX := func() {
		dx := sign(vx - ux)
		for ux != vx {
			ux += dx
			path = append(path, m.Index(ux, uy))
		}
	}
	moveY := func() {
		dy := sign(vy - uy)
		for uy != vy {
			uy += dy
			path = append(path, m.Index(ux, uy))
		}
	}

	if axis == AxisXY {
		moveX()
		moveY()
	} else {
		moveY()
		moveX()
	}

	return path
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// ExtractPath runs breadth-first search over g (intended to be a decoded
// TSTG) from sourceIdx and returns the directed parent->child edges of the
// resulting BFS tree: the routing path for one multicast (spec §4.4 step 3).
func ExtractPath(g *core.Graph, sourceIdx int) ([]DirectedEdge, error) {
	srcID := mesh.TileID(sourceIdx)
	if !g.HasVertex(srcID) {
		return nil, fmt.Errorf("%w: %d", ErrSourceNotInGraph, sourceIdx)
	}
	res, err := bfs.BFS(g, srcID)
	if err != nil {
		return nil, fmt.Errorf("stc: extract path: %w", err)
	}

	out := make([]DirectedEdge, 0, len(res.Order)-1)
	for _, id := range res.Order {
		parent, ok := res.Parent[id]
		if !ok {
			continue // root has no parent
		}
		out = append(out, DirectedEdge{From: atoiMust(parent), To: atoiMust(id)})
	}

	return out, nil
}

func atoiMust(s string) int {
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
