// Package dle implements the DeterministicLayoutEngine: a closed-form,
// non-annealed way to produce a patch-valid LayoutPatternCode by walking a
// fixed space-filling path over the mesh and laying clusters down along it
// (spec §4.8, supplement C.2).
package dle

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/nocmesh/clustergraph"
	"github.com/katalvlaran/nocmesh/lpc"
	"github.com/katalvlaran/nocmesh/mesh"
)

// ErrUnregisteredMethod indicates a Method with no factory in the registry.
var ErrUnregisteredMethod = errors.New("dle: unregistered layout method")

// Method names a deterministic layout engine.
type Method int

const (
	// ReverseS lays clusters down along a row-major snake (boustrophedon)
	// path: even rows left-to-right, odd rows right-to-left.
	ReverseS Method = iota
)

// Engine produces a Hamiltonian path over a mesh's physical tiles. The path
// order is the order clusters are laid down along; it depends only on the
// mesh dimensions, not on cluster structure.
type Engine interface {
	GeneratePath(m *mesh.Mesh) []int
}

// Factory constructs a fresh Engine instance.
type Factory func() Engine

// Registry is a lookup table from Method to Factory. It is built fresh by
// NewRegistry, not held as package-level mutable state, so callers own
// their own copy and concurrent callers never share mutable registration.
type Registry struct {
	factories map[Method]Factory
}

// NewRegistry returns a Registry pre-populated with every engine this
// package implements.
func NewRegistry() *Registry {
	return &Registry{
		factories: map[Method]Factory{
			ReverseS: func() Engine { return reverseS{} },
		},
	}
}

// Get constructs the Engine registered for method, or ErrUnregisteredMethod.
func (r *Registry) Get(method Method) (Engine, error) {
	f, ok := r.factories[method]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnregisteredMethod, method)
	}

	return f(), nil
}

// reverseS is the ReverseS space-filling path engine.
type reverseS struct{}

// GeneratePath returns the row-major snake order over m's tiles: row 0
// left-to-right, row 1 right-to-left, row 2 left-to-right, and so on.
func (reverseS) GeneratePath(m *mesh.Mesh) []int {
	path := make([]int, 0, m.Size())
	for y := 0; y < m.H; y++ {
		if y%2 == 0 {
			for x := 0; x < m.W; x++ {
				path = append(path, m.Index(x, y))
			}
		} else {
			for x := m.W - 1; x >= 0; x-- {
				path = append(path, m.Index(x, y))
			}
		}
	}

	return path
}

// Build lays clusterSizes down along engine's path in cluster-major order:
// the path's first size[0] tiles host cluster 0, the next size[1] tiles
// host cluster 1, and so on. Within each cluster, the local tile order
// assigned to that cluster's path segment is shuffled uniformly by rng, so
// repeated Build calls with different rng seeds spread a cluster's logical
// tiles across its physical segment differently while the segment itself
// (and therefore patch validity) stays fixed.
//
// Because every cluster occupies a contiguous run of path positions and
// the path only ever steps between mesh-adjacent tiles, the result is
// patch-valid by construction (§4.8) with no SA search required.
func Build(engine Engine, clusterSizes []int, m *mesh.Mesh, rng *rand.Rand) (*lpc.LPC, error) {
	path := engine.GeneratePath(m)

	total := 0
	for _, s := range clusterSizes {
		total += s
	}
	if total > len(path) {
		return nil, fmt.Errorf("dle: total logical tiles %d exceed path length %d", total, len(path))
	}

	// physical[c] is the shuffled physical-index segment assigned to cluster c.
	physical := make([][]int, len(clusterSizes))
	offset := 0
	for c, size := range clusterSizes {
		seg := append([]int(nil), path[offset:offset+size]...)
		rng.Shuffle(len(seg), func(i, j int) { seg[i], seg[j] = seg[j], seg[i] })
		physical[c] = seg
		offset += size
	}

	return lpc.NewFromMapping(clusterSizes, m.Size(), func(c, t int) int {
		return physical[c][t]
	})
}

// BuildForGraph is Build specialized over a ClusterGraph's cluster sizes,
// for callers that have not already extracted them.
func BuildForGraph(engine Engine, cg clustergraph.ClusterGraph, m *mesh.Mesh, rng *rand.Rand) (*lpc.LPC, error) {
	clusters := cg.Clusters()
	sizes := make([]int, len(clusters))
	for i, c := range clusters {
		sizes[i] = len(c.Tiles)
	}

	return Build(engine, sizes, m, rng)
}
