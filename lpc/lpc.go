// Package lpc implements the LayoutPatternCode: a mutable bijection from
// cluster-indexed tile keys (c,t) to physical-tile indices, with a single
// pending reversible mutation at a time.
package lpc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/nocmesh/clustergraph"
)

// Sentinel errors for LayoutPatternCode construction and mutation.
var (
	// ErrTooManyTiles indicates Σ cluster sizes exceeds the mesh capacity.
	ErrTooManyTiles = errors.New("lpc: total logical tiles exceed mesh size")

	// ErrEmptyClusterSizes indicates no clusters were supplied.
	ErrEmptyClusterSizes = errors.New("lpc: cluster sizes must be non-empty")

	// ErrZeroClusterSize indicates a cluster with size <= 0.
	ErrZeroClusterSize = errors.New("lpc: cluster size must be positive")

	// ErrKeyNotFound indicates a swap referenced a CIR key outside the code.
	ErrKeyNotFound = errors.New("lpc: CIR key not found")

	// ErrNoPendingMutation indicates Undo was called with no prior Mutate/Swap.
	// Per spec this is a programming error; callers that only ever pair
	// Mutate with a single Undo never trigger it.
	ErrNoPendingMutation = errors.New("lpc: undo called with no pending mutation")

	// ErrInsufficientKeys indicates Mutate was called with fewer than 2 CIR keys.
	ErrInsufficientKeys = errors.New("lpc: need at least 2 CIR keys to mutate")

	// ErrInvalidMapping indicates a supplied placement function assigned an
	// out-of-range or duplicate physical index.
	ErrInvalidMapping = errors.New("lpc: placement function is not an injective mapping into the mesh")
)

// swapRecord remembers the pair exchanged by the last Swap, so Undo can
// reverse it. A nil record means no pending mutation.
type swapRecord struct {
	k1, k2 clustergraph.CIR
}

// LPC is the LayoutPatternCode: a bijection (cluster,tile) -> physical index.
type LPC struct {
	keys     []clustergraph.CIR         // stable iteration/random-pick order
	forward  map[clustergraph.CIR]int   // CIR -> physical index
	inverse  map[int]clustergraph.CIR   // physical index -> CIR
	lastSwap *swapRecord
}

// New builds an LPC for the given cluster sizes over a mesh of meshSize
// physical tiles. Physical indices [0,meshSize) are shuffled uniformly via
// rng and the first Σsizes are assigned to the CIR keys in cluster-major,
// tile-minor order.
//
// Returns ErrEmptyClusterSizes, ErrZeroClusterSize, or ErrTooManyTiles
// (ConfigError per spec §7) on invalid input.
func New(clusterSizes []int, meshSize int, rng *rand.Rand) (*LPC, error) {
	if len(clusterSizes) == 0 {
		return nil, ErrEmptyClusterSizes
	}
	total := 0
	for _, s := range clusterSizes {
		if s <= 0 {
			return nil, ErrZeroClusterSize
		}
		total += s
	}
	if total > meshSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyTiles, total, meshSize)
	}

	perm := rng.Perm(meshSize)

	keys := make([]clustergraph.CIR, 0, total)
	forward := make(map[clustergraph.CIR]int, total)
	inverse := make(map[int]clustergraph.CIR, total)
	i := 0
	for c, size := range clusterSizes {
		for t := 0; t < size; t++ {
			key := clustergraph.CIR{Cluster: c, Tile: t}
			p := perm[i]
			keys = append(keys, key)
			forward[key] = p
			inverse[p] = key
			i++
		}
	}

	return &LPC{keys: keys, forward: forward, inverse: inverse}, nil
}

// NewFromMapping builds an LPC from an explicit placement function instead
// of a random shuffle, for deterministic layout engines (e.g. dle.ReverseS)
// that compute physical indices by a closed-form rule rather than sampling.
// physicalFor(c,t) must return a distinct in-[0,meshSize) index for every
// CIR key; New(FromMapping) validates the same ConfigErrors as New plus
// ErrInvalidMapping if physicalFor is not injective into range.
func NewFromMapping(clusterSizes []int, meshSize int, physicalFor func(c, t int) int) (*LPC, error) {
	if len(clusterSizes) == 0 {
		return nil, ErrEmptyClusterSizes
	}
	total := 0
	for _, s := range clusterSizes {
		if s <= 0 {
			return nil, ErrZeroClusterSize
		}
		total += s
	}
	if total > meshSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyTiles, total, meshSize)
	}

	keys := make([]clustergraph.CIR, 0, total)
	forward := make(map[clustergraph.CIR]int, total)
	inverse := make(map[int]clustergraph.CIR, total)
	for c, size := range clusterSizes {
		for t := 0; t < size; t++ {
			key := clustergraph.CIR{Cluster: c, Tile: t}
			p := physicalFor(c, t)
			if p < 0 || p >= meshSize {
				return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidMapping, p)
			}
			if _, dup := inverse[p]; dup {
				return nil, fmt.Errorf("%w: index %d assigned twice", ErrInvalidMapping, p)
			}
			keys = append(keys, key)
			forward[key] = p
			inverse[p] = key
		}
	}

	return &LPC{keys: keys, forward: forward, inverse: inverse}, nil
}

// Len returns the number of CIR keys (Σ cluster sizes).
func (l *LPC) Len() int { return len(l.keys) }

// Get returns the physical index assigned to a CIR key.
func (l *LPC) Get(k clustergraph.CIR) (int, bool) {
	p, ok := l.forward[k]
	return p, ok
}

// OwnerCluster returns the cluster index owning physical tile idx, if mapped.
func (l *LPC) OwnerCluster(idx int) (int, bool) {
	k, ok := l.inverse[idx]
	if !ok {
		return 0, false
	}
	return k.Cluster, true
}

// Swap exchanges the physical indices assigned to k1 and k2 and remembers
// the pair as the pending mutation so Undo can reverse it.
//
// Per spec §4.2, swapping a key with itself is a no-op but still records
// the pair, so a subsequent Undo remains safe to call.
func (l *LPC) Swap(k1, k2 clustergraph.CIR) error {
	p1, ok1 := l.forward[k1]
	if !ok1 {
		return fmt.Errorf("%w: %+v", ErrKeyNotFound, k1)
	}
	p2, ok2 := l.forward[k2]
	if !ok2 {
		return fmt.Errorf("%w: %+v", ErrKeyNotFound, k2)
	}
	l.lastSwap = &swapRecord{k1: k1, k2: k2}
	if k1 == k2 {
		return nil
	}
	l.forward[k1], l.forward[k2] = p2, p1
	l.inverse[p1], l.inverse[p2] = k2, k1

	return nil
}

// Mutate picks two distinct CIR keys uniformly at random via rng and swaps
// them. Exactly one pending mutation is recorded, reversible by Undo.
func (l *LPC) Mutate(rng *rand.Rand) {
	n := len(l.keys)
	if n < 2 {
		// No distinct pair exists; nothing to mutate. Recorded as a no-op
		// pending mutation so Undo stays safe to call.
		l.lastSwap = &swapRecord{}
		if n == 1 {
			l.lastSwap = &swapRecord{k1: l.keys[0], k2: l.keys[0]}
		}
		return
	}
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	_ = l.Swap(l.keys[i], l.keys[j])
}

// Undo reverses the last pending mutation (Swap or Mutate), restoring the
// pre-mutation state. Returns ErrNoPendingMutation if called without a
// prior mutation.
func (l *LPC) Undo() error {
	if l.lastSwap == nil {
		return ErrNoPendingMutation
	}
	rec := l.lastSwap
	l.lastSwap = nil
	if rec.k1 == rec.k2 {
		return nil
	}
	if err := l.Swap(rec.k1, rec.k2); err != nil {
		return err
	}
	// Swap above re-records its own reversal as a pending mutation; an
	// undo must leave nothing pending, so clear it again.
	l.lastSwap = nil

	return nil
}

// Clone returns a deep, independent copy of l. Used to take the
// best-so-far snapshot during simulated annealing (§9: never alias
// working and best).
func (l *LPC) Clone() *LPC {
	clone := &LPC{
		keys:    append([]clustergraph.CIR(nil), l.keys...),
		forward: make(map[clustergraph.CIR]int, len(l.forward)),
		inverse: make(map[int]clustergraph.CIR, len(l.inverse)),
	}
	for k, v := range l.forward {
		clone.forward[k] = v
	}
	for k, v := range l.inverse {
		clone.inverse[k] = v
	}
	// lastSwap is intentionally not copied: a freshly cloned snapshot has
	// no pending mutation of its own.

	return clone
}

// All returns a Go 1.23 range-over-func iterator over (CIR, physical index)
// pairs in stable key order.
func (l *LPC) All() func(yield func(clustergraph.CIR, int) bool) {
	return func(yield func(clustergraph.CIR, int) bool) {
		for _, k := range l.keys {
			if !yield(k, l.forward[k]) {
				return
			}
		}
	}
}
