// Package clustergraph describes the immutable communication graph consumed
// from upstream: logical tiles grouped into clusters, and the multicast
// (one-source-to-many-sinks) communications between them.
//
// LogicalTile is an opaque identifier; only equality and hashability are
// required of it, so it is modeled as a plain string — the same convention
// core.Vertex.ID already uses for opaque node identities.
package clustergraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for ClusterGraph construction.
var (
	// ErrEmptyCluster indicates a cluster with zero logical tiles.
	ErrEmptyCluster = errors.New("clustergraph: cluster must not be empty")

	// ErrEmptyMulticastSinks indicates a multicast with no sinks.
	ErrEmptyMulticastSinks = errors.New("clustergraph: multicast must have at least one sink")

	// ErrDuplicateTile indicates the same logical tile appears in more than one cluster.
	ErrDuplicateTile = errors.New("clustergraph: logical tile assigned to more than one cluster")

	// ErrUnknownTile indicates a multicast references a tile absent from every cluster.
	ErrUnknownTile = errors.New("clustergraph: multicast references an unknown logical tile")

	// ErrSrcInDsts indicates a multicast's source also appears in its sink set.
	ErrSrcInDsts = errors.New("clustergraph: multicast source must be disjoint from its sinks")

	// ErrDuplicateCommID indicates two multicasts share the same comm_id.
	ErrDuplicateCommID = errors.New("clustergraph: duplicate multicast id")
)

// LogicalTile is an opaque upstream-supplied tile identifier.
type LogicalTile string

// CIR is the cluster-indexed representation (c,t) of a logical tile: cluster
// index c and the tile's local position t within that cluster.
type CIR struct {
	Cluster int
	Tile    int
}

// Cluster is a non-empty ordered sequence of logical tiles, addressed by a
// 0-based cluster index.
type Cluster struct {
	ID    int
	Tiles []LogicalTile
}

// Multicast is a one-source-to-many-sinks communication: comm_id, the
// source logical tile, and its non-empty, src-disjoint set of sinks.
type Multicast struct {
	ID   string
	Src  LogicalTile
	Dsts []LogicalTile
}

// ClusterGraph is the upstream-consumed description of clusters and
// multicast communications (§6 of the interface contract).
type ClusterGraph interface {
	// Clusters returns the ordered sequence of clusters.
	Clusters() []Cluster
	// TileNodes returns the flat list of every logical tile across all clusters.
	TileNodes() []LogicalTile
	// CastTrees returns the ordered sequence of multicasts.
	CastTrees() []Multicast
	// CIROf returns the cluster-indexed representation of a logical tile.
	CIROf(t LogicalTile) (CIR, bool)
	// TileAt returns the logical tile at a given CIR.
	TileAt(c CIR) (LogicalTile, bool)
	// TotalTiles returns the total number of logical tiles (Σ cluster sizes).
	TotalTiles() int
}

// staticClusterGraph is the concrete, validated ClusterGraph implementation.
type staticClusterGraph struct {
	clusters   []Cluster
	multicasts []Multicast
	tileNodes  []LogicalTile
	cirOf      map[LogicalTile]CIR
	tileAt     map[CIR]LogicalTile
}

// New validates and constructs a ClusterGraph from raw cluster tile lists
// and multicasts.
//
// Validation (ConfigError per spec §7):
//   - every cluster must be non-empty (ErrEmptyCluster);
//   - no logical tile may appear in more than one cluster (ErrDuplicateTile);
//   - every multicast must have at least one sink (ErrEmptyMulticastSinks);
//   - a multicast's source must not also be one of its sinks (ErrSrcInDsts);
//   - every multicast's src/dsts must reference a known logical tile (ErrUnknownTile);
//   - comm_id values must be unique (ErrDuplicateCommID).
//
// Complexity: O(total_tiles + total_multicast_endpoints).
func New(clusterTiles [][]LogicalTile, multicasts []Multicast) (ClusterGraph, error) {
	clusters := make([]Cluster, 0, len(clusterTiles))
	cirOf := make(map[LogicalTile]CIR)
	tileAt := make(map[CIR]LogicalTile)
	tileNodes := make([]LogicalTile, 0)

	for ci, tiles := range clusterTiles {
		if len(tiles) == 0 {
			return nil, fmt.Errorf("%w: cluster %d", ErrEmptyCluster, ci)
		}
		for ti, tile := range tiles {
			if _, dup := cirOf[tile]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateTile, tile)
			}
			cir := CIR{Cluster: ci, Tile: ti}
			cirOf[tile] = cir
			tileAt[cir] = tile
			tileNodes = append(tileNodes, tile)
		}
		clusters = append(clusters, Cluster{ID: ci, Tiles: append([]LogicalTile(nil), tiles...)})
	}

	seenComm := make(map[string]struct{}, len(multicasts))
	out := make([]Multicast, 0, len(multicasts))
	for _, mc := range multicasts {
		if len(mc.Dsts) == 0 {
			return nil, fmt.Errorf("%w: comm %q", ErrEmptyMulticastSinks, mc.ID)
		}
		if _, dup := seenComm[mc.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCommID, mc.ID)
		}
		seenComm[mc.ID] = struct{}{}

		if _, ok := cirOf[mc.Src]; !ok {
			return nil, fmt.Errorf("%w: %q (src of %q)", ErrUnknownTile, mc.Src, mc.ID)
		}
		dsts := make([]LogicalTile, len(mc.Dsts))
		for i, d := range mc.Dsts {
			if d == mc.Src {
				return nil, fmt.Errorf("%w: comm %q", ErrSrcInDsts, mc.ID)
			}
			if _, ok := cirOf[d]; !ok {
				return nil, fmt.Errorf("%w: %q (sink of %q)", ErrUnknownTile, d, mc.ID)
			}
			dsts[i] = d
		}
		out = append(out, Multicast{ID: mc.ID, Src: mc.Src, Dsts: dsts})
	}

	return &staticClusterGraph{
		clusters:   clusters,
		multicasts: out,
		tileNodes:  tileNodes,
		cirOf:      cirOf,
		tileAt:     tileAt,
	}, nil
}

func (g *staticClusterGraph) Clusters() []Cluster        { return g.clusters }
func (g *staticClusterGraph) TileNodes() []LogicalTile   { return g.tileNodes }
func (g *staticClusterGraph) CastTrees() []Multicast     { return g.multicasts }
func (g *staticClusterGraph) TotalTiles() int            { return len(g.tileNodes) }
func (g *staticClusterGraph) CIROf(t LogicalTile) (CIR, bool) {
	cir, ok := g.cirOf[t]
	return cir, ok
}
func (g *staticClusterGraph) TileAt(c CIR) (LogicalTile, bool) {
	t, ok := g.tileAt[c]
	return t, ok
}
