// Package result packages a converged LayoutPatternCode or
// RoutingPatternCode into the read-only, logical-tile-addressed views
// consumed downstream of the optimizer (spec §5, supplement from
// layout_result.py / routing_result.py / conflict_analysis.py, minus the
// plotting those carried).
package result

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/nocmesh/clustergraph"
	"github.com/katalvlaran/nocmesh/lpc"
	"github.com/katalvlaran/nocmesh/mesh"
	"github.com/katalvlaran/nocmesh/rpc"
	"github.com/katalvlaran/nocmesh/stc"
)

// ErrUnmappedLogicalTile indicates a logical tile has no entry in the
// layout this LayoutResult was built from.
var ErrUnmappedLogicalTile = errors.New("result: logical tile has no physical placement")

// ErrNoRoutedPaths indicates RoutingResult conflict metrics were requested
// before any comm had a decoded path.
var ErrNoRoutedPaths = errors.New("result: no decoded routing paths to measure")

// LayoutResult is the read-only logical-tile -> physical-tile view of a
// converged LPC.
type LayoutResult struct {
	w, h  int
	l2p   map[clustergraph.LogicalTile]mesh.PhysicalTile
	cir2p map[clustergraph.CIR]int
}

// NewLayoutResult builds a LayoutResult from a ClusterGraph, the Mesh it was
// laid out over, and a converged LPC.
func NewLayoutResult(cg clustergraph.ClusterGraph, m *mesh.Mesh, layout *lpc.LPC) *LayoutResult {
	r := &LayoutResult{
		w: m.W, h: m.H,
		l2p:   make(map[clustergraph.LogicalTile]mesh.PhysicalTile),
		cir2p: make(map[clustergraph.CIR]int),
	}
	for cir, p := range layout.All() {
		tile, ok := cg.TileAt(cir)
		if !ok {
			continue
		}
		x, y := m.Coordinate(p)
		r.l2p[tile] = mesh.PhysicalTile{X: x, Y: y}
		r.cir2p[cir] = p
	}

	return r
}

// Size returns the mesh dimensions this layout was built over.
func (r *LayoutResult) Size() (w, h int) { return r.w, r.h }

// Get returns the physical tile a logical tile was placed on.
func (r *LayoutResult) Get(tile clustergraph.LogicalTile) (mesh.PhysicalTile, bool) {
	p, ok := r.l2p[tile]
	return p, ok
}

// PhysicalIndexOf returns the flat physical index assigned to a CIR key.
func (r *LayoutResult) PhysicalIndexOf(cir clustergraph.CIR) (int, bool) {
	p, ok := r.cir2p[cir]
	return p, ok
}

// RoutingResult is the read-only comm_id -> {serial, source, path} view of
// a converged RPC, plus the conflict metrics derived from it.
type RoutingResult struct {
	layout *LayoutResult
	serial map[string]int
	src    map[string]int
	path   map[string][]stc.DirectedEdge
	order  []string
}

// Entry is one comm's routing result.
type Entry struct {
	Serial int
	Src    int
	Path   []stc.DirectedEdge
}

// NewRoutingResult builds a RoutingResult from a decoded RPC. Returns an
// error if r has not been successfully decoded (no comm has a path yet).
func NewRoutingResult(layout *LayoutResult, r *rpc.RPC) (*RoutingResult, error) {
	out := &RoutingResult{
		layout: layout,
		serial: make(map[string]int, len(r.Order())),
		src:    make(map[string]int, len(r.Order())),
		path:   make(map[string][]stc.DirectedEdge, len(r.Order())),
		order:  append([]string(nil), r.Order()...),
	}
	for _, comm := range r.Order() {
		path, ok := r.PathOf(comm)
		if !ok {
			return nil, fmt.Errorf("%w: comm %q", ErrNoRoutedPaths, comm)
		}
		srcPhys, _ := r.SourceOf(comm)
		serial, _ := r.SerialOf(comm)
		out.serial[comm] = serial
		out.src[comm] = srcPhys
		out.path[comm] = path
	}

	return out, nil
}

// Order returns the fixed sequence of comm IDs.
func (r *RoutingResult) Order() []string { return r.order }

// Get returns the full routing entry for a comm ID.
func (r *RoutingResult) Get(comm string) (Entry, bool) {
	path, ok := r.path[comm]
	if !ok {
		return Entry{}, false
	}

	return Entry{Serial: r.serial[comm], Src: r.src[comm], Path: path}, true
}

// frequencies tabulates per-directed-edge usage across every comm's path.
func (r *RoutingResult) frequencies() map[stc.DirectedEdge]int {
	freq := make(map[stc.DirectedEdge]int)
	for _, path := range r.path {
		for _, e := range path {
			freq[e]++
		}
	}

	return freq
}

// MaxConflicts returns the highest per-edge usage frequency across every
// routed path, per routing_result.py's max_conflicts property. Returns 0
// if no edge was ever used.
func (r *RoutingResult) MaxConflicts() int {
	maxF := 0
	for _, f := range r.frequencies() {
		if f > maxF {
			maxF = f
		}
	}

	return maxF
}

// TotalConflict returns sum(conflicts) - len(conflicts): the total excess
// link usage above one pass per contended edge, per
// conflict_analysis.py's get_conflit_metrics. Returns 0 if no edge was
// ever used.
func (r *RoutingResult) TotalConflict() int {
	freq := r.frequencies()
	if len(freq) == 0 {
		return 0
	}
	sum := 0
	for _, f := range freq {
		sum += f
	}

	return sum - len(freq)
}
