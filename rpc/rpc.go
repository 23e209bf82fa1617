// Package rpc implements the RoutingPatternCode: an ordered collection of
// one SteinerTreeCode per multicast communication, with whole-collection
// decode and a reversible single-comm mutation.
package rpc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/nocmesh/clustergraph"
	"github.com/katalvlaran/nocmesh/lpc"
	"github.com/katalvlaran/nocmesh/mesh"
	"github.com/katalvlaran/nocmesh/stc"
)

// Sentinel errors for RoutingPatternCode construction and mutation.
var (
	// ErrNoPendingMutation indicates Undo was called with no prior Mutate.
	ErrNoPendingMutation = errors.New("rpc: undo called with no pending mutation")

	// ErrUnmappedLogicalTile indicates a multicast endpoint has no CIR in the
	// cluster graph, or no physical assignment in the layout (ConfigError).
	ErrUnmappedLogicalTile = errors.New("rpc: multicast endpoint is not mapped by the layout")

	// ErrNoMulticasts indicates the cluster graph carries zero multicasts.
	ErrNoMulticasts = errors.New("rpc: cluster graph has no multicasts")
)

// RPC is the RoutingPatternCode: comm_id -> STC, comm_id -> source physical
// tile, comm_id -> stream serial number, and (after Decode) comm_id ->
// directed routing path.
type RPC struct {
	order       []string
	stcs        map[string]*stc.STC
	srcPhysical map[string]int
	serial      map[string]int
	pathDict    map[string][]stc.DirectedEdge

	lastMutatedComm string
}

// Builder constructs one multicast's STC from its resolved terminal set
// (src first, then deduplicated sinks) and its source physical tile.
type Builder func(terminals []int, src, meshSize int) (*stc.STC, error)

// New builds an RPC from the cluster graph's multicasts, resolving each
// endpoint's physical tile through layout and constructing one STC per
// multicast over the full mesh tile universe via stc.Construct (randomized
// Prüfer-like spanning tree), per spec §4.5. The sequence of comm IDs is
// fixed to cg.CastTrees()'s order.
func New(cg clustergraph.ClusterGraph, m *mesh.Mesh, layout *lpc.LPC, rng *rand.Rand) (*RPC, error) {
	return NewWithBuilder(cg, m, layout, func(terminals []int, _, meshSize int) (*stc.STC, error) {
		return stc.Construct(terminals, meshSize, rng)
	})
}

// NewWithBuilder is New generalized over the per-multicast STC construction
// strategy, so a deterministic routing engine (e.g. DYXY, via
// stc.ConstructDYXY) can populate an RPC without going through randomized
// SA-style construction.
func NewWithBuilder(cg clustergraph.ClusterGraph, m *mesh.Mesh, layout *lpc.LPC, build Builder) (*RPC, error) {
	trees := cg.CastTrees()
	if len(trees) == 0 {
		return nil, ErrNoMulticasts
	}

	r := &RPC{
		order:       make([]string, 0, len(trees)),
		stcs:        make(map[string]*stc.STC, len(trees)),
		srcPhysical: make(map[string]int, len(trees)),
		serial:      make(map[string]int, len(trees)),
		pathDict:    make(map[string][]stc.DirectedEdge, len(trees)),
	}

	for i, mc := range trees {
		srcPhys, err := resolve(cg, layout, mc.Src)
		if err != nil {
			return nil, fmt.Errorf("%w: comm %q src", err, mc.ID)
		}

		terminalSet := map[int]bool{srcPhys: true}
		terminals := []int{srcPhys}
		for _, d := range mc.Dsts {
			p, err := resolve(cg, layout, d)
			if err != nil {
				return nil, fmt.Errorf("%w: comm %q dst", err, mc.ID)
			}
			if !terminalSet[p] {
				terminalSet[p] = true
				terminals = append(terminals, p)
			}
		}

		s, err := build(terminals, srcPhys, m.Size())
		if err != nil {
			return nil, fmt.Errorf("rpc: comm %q: %w", mc.ID, err)
		}

		r.order = append(r.order, mc.ID)
		r.stcs[mc.ID] = s
		r.srcPhysical[mc.ID] = srcPhys
		r.serial[mc.ID] = i
	}

	return r, nil
}

func resolve(cg clustergraph.ClusterGraph, layout *lpc.LPC, t clustergraph.LogicalTile) (int, error) {
	cir, ok := cg.CIROf(t)
	if !ok {
		return 0, ErrUnmappedLogicalTile
	}
	p, ok := layout.Get(cir)
	if !ok {
		return 0, ErrUnmappedLogicalTile
	}
	return p, nil
}

// Order returns the fixed sequence of comm IDs.
func (r *RPC) Order() []string { return r.order }

// STCFor returns the SteinerTreeCode for a comm ID.
func (r *RPC) STCFor(comm string) (*stc.STC, bool) {
	s, ok := r.stcs[comm]
	return s, ok
}

// SourceOf returns the source physical tile for a comm ID.
func (r *RPC) SourceOf(comm string) (int, bool) {
	p, ok := r.srcPhysical[comm]
	return p, ok
}

// SerialOf returns the stream serial number for a comm ID.
func (r *RPC) SerialOf(comm string) (int, bool) {
	n, ok := r.serial[comm]
	return n, ok
}

// Mutate picks one comm uniformly at random and delegates mutation to its
// STC, remembering which comm was mutated so Undo can reverse it.
func (r *RPC) Mutate(rng *rand.Rand) {
	comm := r.order[rng.Intn(len(r.order))]
	r.stcs[comm].Mutate(rng)
	r.lastMutatedComm = comm
}

// Undo reverses the last Mutate call by delegating to the remembered comm's
// STC. Returns ErrNoPendingMutation if called with no prior mutation.
func (r *RPC) Undo() error {
	if r.lastMutatedComm == "" {
		return ErrNoPendingMutation
	}
	comm := r.lastMutatedComm
	r.lastMutatedComm = ""

	return r.stcs[comm].Undo()
}

// Decode decodes every STC (raw Steiner graph -> pruned true Steiner graph
// via method) and populates each comm's directed routing path by BFS from
// its source physical tile, per spec §4.5.
func (r *RPC) Decode(m *mesh.Mesh, method stc.DecodeMethod) error {
	for _, comm := range r.order {
		tstg, err := r.stcs[comm].Decode(m, method)
		if err != nil {
			return fmt.Errorf("rpc: decode comm %q: %w", comm, err)
		}
		path, err := stc.ExtractPath(tstg, r.srcPhysical[comm])
		if err != nil {
			return fmt.Errorf("rpc: extract path comm %q: %w", comm, err)
		}
		r.pathDict[comm] = path
	}

	return nil
}

// PathOf returns the decoded directed routing path for a comm ID.
// Populated only after a successful Decode call.
func (r *RPC) PathOf(comm string) ([]stc.DirectedEdge, bool) {
	p, ok := r.pathDict[comm]
	return p, ok
}

// Clone returns a deep, independent copy of r, including a clone of every
// underlying STC. Used for best-so-far snapshots during simulated annealing.
func (r *RPC) Clone() *RPC {
	clone := &RPC{
		order:       append([]string(nil), r.order...),
		stcs:        make(map[string]*stc.STC, len(r.stcs)),
		srcPhysical: make(map[string]int, len(r.srcPhysical)),
		serial:      make(map[string]int, len(r.serial)),
		pathDict:    make(map[string][]stc.DirectedEdge, len(r.pathDict)),
	}
	for k, v := range r.stcs {
		clone.stcs[k] = v.Clone()
	}
	for k, v := range r.srcPhysical {
		clone.srcPhysical[k] = v
	}
	for k, v := range r.serial {
		clone.serial[k] = v
	}
	for k, v := range r.pathDict {
		clone.pathDict[k] = append([]stc.DirectedEdge(nil), v...)
	}

	return clone
}
