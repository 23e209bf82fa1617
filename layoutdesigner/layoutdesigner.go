// Package layoutdesigner wires LPC, the generic annealer, and the
// intra-cluster-distance objective into the layout stage of the optimizer
// (spec §4.2, §4.3): it owns the current LayoutPatternCode, scores it, and
// reports (never enforces) cluster patch-validity.
package layoutdesigner

import (
	"context"
	"math/rand"

	"github.com/katalvlaran/nocmesh/anneal"
	"github.com/katalvlaran/nocmesh/clustergraph"
	"github.com/katalvlaran/nocmesh/lpc"
	"github.com/katalvlaran/nocmesh/mesh"
	"github.com/katalvlaran/nocmesh/telemetry"
)

// LayoutDesigner wires a ClusterGraph and Mesh to a mutable LPC, exposing
// the intra-cluster objective and a patch-validity check.
type LayoutDesigner struct {
	cg     clustergraph.ClusterGraph
	m      *mesh.Mesh
	layout *lpc.LPC
}

// New builds a LayoutDesigner with a freshly shuffled LPC over cg's cluster
// sizes and m's tile universe.
func New(cg clustergraph.ClusterGraph, m *mesh.Mesh, rng *rand.Rand) (*LayoutDesigner, error) {
	sizes := make([]int, len(cg.Clusters()))
	for i, cl := range cg.Clusters() {
		sizes[i] = len(cl.Tiles)
	}

	layout, err := lpc.New(sizes, m.Size(), rng)
	if err != nil {
		return nil, err
	}

	return &LayoutDesigner{cg: cg, m: m, layout: layout}, nil
}

// Layout returns the designer's current LPC.
func (d *LayoutDesigner) Layout() *lpc.LPC { return d.layout }

// Objective scores a layout by spec §4.3: the sum, over every cluster, of
// pairwise Manhattan distances between that cluster's assigned physical
// tiles. Lower is better.
func (d *LayoutDesigner) Objective(l *lpc.LPC) float64 {
	total := 0.0
	for _, cl := range d.cg.Clusters() {
		n := len(cl.Tiles)
		for s := 0; s < n; s++ {
			ps, _ := l.Get(clustergraph.CIR{Cluster: cl.ID, Tile: s})
			for t := s + 1; t < n; t++ {
				pt, _ := l.Get(clustergraph.CIR{Cluster: cl.ID, Tile: t})
				total += float64(d.m.Manhattan(ps, pt))
			}
		}
	}

	return total
}

// IsPatchValid reports whether every cluster in l occupies a 4-connected
// patch of the mesh, per spec §4.3. For each cluster, an explicit-stack
// flood-fill (not recursive, per the module's iterative-traversal
// convention) walks 4-neighbors starting from (cluster,0)'s physical tile,
// marking tiles owned by that cluster; the cluster is valid iff the marked
// count equals its tile count.
func (d *LayoutDesigner) IsPatchValid(l *lpc.LPC) bool {
	for _, cl := range d.cg.Clusters() {
		start, ok := l.Get(clustergraph.CIR{Cluster: cl.ID, Tile: 0})
		if !ok {
			return false
		}

		marked := make(map[int]bool)
		stack := []int{start}
		for len(stack) > 0 {
			tile := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if marked[tile] {
				continue
			}
			owner, ok := l.OwnerCluster(tile)
			if !ok || owner != cl.ID {
				continue
			}
			marked[tile] = true
			for _, nb := range d.m.Neighbors4(tile) {
				if !marked[nb] {
					stack = append(stack, nb)
				}
			}
		}

		if len(marked) != len(cl.Tiles) {
			return false
		}
	}

	return true
}

// Run anneals the current layout against Objective until convergence,
// installing the best-so-far LPC as the designer's new current layout.
// Returns the best layout, its objective value, and the per-iteration
// history. When gauges is non-nil, it is wired to the anneal run's
// OnIteration hook and updated with the final stay counter, so a caller
// can observe a live layout anneal on Prometheus; pass nil to skip
// telemetry entirely. A non-nil gauges also makes the run non-silent
// unless opts include anneal.WithSilent(true).
func (d *LayoutDesigner) Run(ctx context.Context, rng *rand.Rand, gauges *telemetry.SAGauges, opts ...anneal.Option) (*lpc.LPC, float64, []float64, error) {
	if gauges != nil {
		opts = append([]anneal.Option{anneal.WithSilent(false)}, opts...)
		opts = append(opts, anneal.WithOnIteration(gauges.OnIteration))
	}

	sa, err := anneal.New(d.layout, d.Objective, rng, opts...)
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
	d.layout = best

	return best, yBest, history, nil
}
