// Package routingdesigner wires RoutingPatternCode, the generic annealer,
// and the link-conflict objective into the routing stage of the optimizer
// (spec §4.5, §4.6), with an optional deterministic routing engine that
// replaces SA entirely (supplement C.1).
package routingdesigner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/nocmesh/anneal"
	"github.com/katalvlaran/nocmesh/clustergraph"
	"github.com/katalvlaran/nocmesh/lpc"
	"github.com/katalvlaran/nocmesh/mesh"
	"github.com/katalvlaran/nocmesh/rpc"
	"github.com/katalvlaran/nocmesh/stc"
	"github.com/katalvlaran/nocmesh/telemetry"
)

// ErrUnsupportedEngine indicates a DeterministicEngine with no registered
// factory was requested (RPM and OCR are named for forward compatibility
// only; see DESIGN.md).
var ErrUnsupportedEngine = errors.New("routingdesigner: unsupported deterministic routing engine")

// DeterministicEngine names a closed-form routing engine (supplement C.1).
type DeterministicEngine int

const (
	// DYXY routes every multicast with X-then-Y dimension-order paths from
	// source to each sink, unioned into a Steiner tree via stc.ConstructDYXY.
	DYXY DeterministicEngine = iota
	// RPM is named for forward compatibility; no factory is registered.
	RPM
	// OCR is named for forward compatibility; no factory is registered.
	OCR
)

// RoutingDesigner wires a ClusterGraph, Mesh, and LPC to a mutable RPC,
// exposing the link-conflict objective.
type RoutingDesigner struct {
	cg     clustergraph.ClusterGraph
	m      *mesh.Mesh
	layout *lpc.LPC
	rpc    *rpc.RPC
	method stc.DecodeMethod
}

// New builds a RoutingDesigner with a freshly randomized RPC (one
// Prüfer-like STC per multicast via rpc.New), decoded with the canonical
// BFS-prune-with-rethink method.
func New(cg clustergraph.ClusterGraph, m *mesh.Mesh, layout *lpc.LPC, rng *rand.Rand) (*RoutingDesigner, error) {
	r, err := rpc.New(cg, m, layout, rng)
	if err != nil {
		return nil, err
	}

	return &RoutingDesigner{cg: cg, m: m, layout: layout, rpc: r, method: stc.DecodeBFS}, nil
}

// NewDeterministic builds a RoutingDesigner whose RPC is constructed by a
// closed-form deterministic routing engine instead of randomized SA-ready
// construction. Returns ErrUnsupportedEngine for RPM or OCR.
func NewDeterministic(cg clustergraph.ClusterGraph, m *mesh.Mesh, layout *lpc.LPC, engine DeterministicEngine) (*RoutingDesigner, error) {
	if engine != DYXY {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEngine, engine)
	}

	build := func(terminals []int, src, meshSize int) (*stc.STC, error) {
		return stc.ConstructDYXY(terminals, src, meshSize)
	}
	r, err := rpc.NewWithBuilder(cg, m, layout, build)
	if err != nil {
		return nil, err
	}

	d := &RoutingDesigner{cg: cg, m: m, layout: layout, rpc: r, method: stc.DecodeBFS}
	if err := d.rpc.Decode(d.m, d.method); err != nil {
		return nil, err
	}

	return d, nil
}

// RPC returns the designer's current RoutingPatternCode.
func (d *RoutingDesigner) RPC() *rpc.RPC { return d.rpc }

// Objective decodes r and scores it by spec §4.6: mean(f) + max(f) - 1,
// where f is the per-mesh-edge usage frequency across every multicast's
// decoded path. Lower is better; returns 0 for the degenerate case of no
// routed edges at all, or NaN if decode fails (aborting the SA run, per
// spec §4.7's "NaN results abort the run" failure mode).
func (d *RoutingDesigner) Objective(r *rpc.RPC) float64 {
	if err := r.Decode(d.m, d.method); err != nil {
		return math.NaN()
	}

	freq := make(map[stc.DirectedEdge]int)
	for _, comm := range r.Order() {
		path, _ := r.PathOf(comm)
		for _, e := range path {
			freq[e]++
		}
	}
	if len(freq) == 0 {
		return 0
	}

	sum, maxF := 0, 0
	for _, f := range freq {
		sum += f
		if f > maxF {
			maxF = f
		}
	}
	mean := float64(sum) / float64(len(freq))

	return mean + float64(maxF) - 1
}

// Run anneals the current RPC against Objective until convergence,
// installing the best-so-far RPC as the designer's new current routing.
// When gauges is non-nil, it is wired to the anneal run's OnIteration hook
// and updated with the final stay counter; pass nil to skip telemetry.
// A non-nil gauges also makes the run non-silent unless opts include
// anneal.WithSilent(true).
func (d *RoutingDesigner) Run(ctx context.Context, rng *rand.Rand, gauges *telemetry.SAGauges, opts ...anneal.Option) (*rpc.RPC, float64, []float64, error) {
	if gauges != nil {
		opts = append([]anneal.Option{anneal.WithSilent(false)}, opts...)
		opts = append(opts, anneal.WithOnIteration(gauges.OnIteration))
	}

	sa, err := anneal.New(d.rpc, d.Objective, rng, opts...)
	if err != nil {
		return nil, 0, nil, err
	}

	best, yBest, history, err := sa.Run(ctx)
	if gauges != nil {
		gauges.SetStayCounter(sa.StayCounter())
	}
	if err != nil {
		return nil, 0, nil, err
	}
	d.rpc = best

	return best, yBest, history, nil
}
