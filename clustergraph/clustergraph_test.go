package clustergraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tiles(ss ...string) []LogicalTile {
	out := make([]LogicalTile, len(ss))
	for i, s := range ss {
		out[i] = LogicalTile(s)
	}
	return out
}

func TestNew_RejectsEmptyCluster(t *testing.T) {
	_, err := New([][]LogicalTile{{}}, nil)
	require.ErrorIs(t, err, ErrEmptyCluster)
}

func TestNew_RejectsDuplicateTile(t *testing.T) {
	_, err := New([][]LogicalTile{tiles("a"), tiles("a")}, nil)
	require.ErrorIs(t, err, ErrDuplicateTile)
}

func TestNew_RejectsEmptySinks(t *testing.T) {
	_, err := New([][]LogicalTile{tiles("a", "b")}, []Multicast{
		{ID: "m0", Src: "a", Dsts: nil},
	})
	require.ErrorIs(t, err, ErrEmptyMulticastSinks)
}

func TestNew_RejectsSrcInDsts(t *testing.T) {
	_, err := New([][]LogicalTile{tiles("a", "b")}, []Multicast{
		{ID: "m0", Src: "a", Dsts: tiles("a")},
	})
	require.ErrorIs(t, err, ErrSrcInDsts)
}

func TestNew_RejectsUnknownTile(t *testing.T) {
	_, err := New([][]LogicalTile{tiles("a", "b")}, []Multicast{
		{ID: "m0", Src: "a", Dsts: tiles("zzz")},
	})
	require.ErrorIs(t, err, ErrUnknownTile)
}

func TestNew_RejectsDuplicateCommID(t *testing.T) {
	_, err := New([][]LogicalTile{tiles("a", "b", "c")}, []Multicast{
		{ID: "m0", Src: "a", Dsts: tiles("b")},
		{ID: "m0", Src: "a", Dsts: tiles("c")},
	})
	require.ErrorIs(t, err, ErrDuplicateCommID)
}

func TestNew_CIRRoundTrip(t *testing.T) {
	cg, err := New([][]LogicalTile{tiles("a", "b"), tiles("c", "d", "e")}, nil)
	require.NoError(t, err)
	require.Equal(t, 5, cg.TotalTiles())

	cir, ok := cg.CIROf("d")
	require.True(t, ok)
	require.Equal(t, CIR{Cluster: 1, Tile: 1}, cir)

	back, ok := cg.TileAt(cir)
	require.True(t, ok)
	require.Equal(t, LogicalTile("d"), back)

	_, ok = cg.CIROf("nope")
	require.False(t, ok)
}

func TestNew_ClustersAndCastTreesOrdering(t *testing.T) {
	cg, err := New(
		[][]LogicalTile{tiles("a", "b"), tiles("c")},
		[]Multicast{
			{ID: "m1", Src: "a", Dsts: tiles("b", "c")},
			{ID: "m0", Src: "c", Dsts: tiles("a")},
		},
	)
	require.NoError(t, err)

	clusters := cg.Clusters()
	require.Len(t, clusters, 2)
	require.Equal(t, 0, clusters[0].ID)
	require.Equal(t, tiles("a", "b"), clusters[0].Tiles)

	trees := cg.CastTrees()
	require.Len(t, trees, 2)
	require.Equal(t, "m1", trees[0].ID) // preserves input order, not sorted
	require.Equal(t, "m0", trees[1].ID)
}
