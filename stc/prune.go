package stc

import (
	"github.com/katalvlaran/nocmesh/core"
	"github.com/katalvlaran/nocmesh/mesh"
)

// pruneBFSRethink implements the canonical BFS-prune-with-rethink method of
// spec §4.4: a BFS spanning tree of the RSTG's root-reachable component is
// built first, then non-terminal leaves are pruned and the prune decision
// cascades toward root via a rethink queue.
func pruneBFSRethink(rstg *core.Graph, root int, terminalSet map[int]bool) (*core.Graph, error) {
	rootID := mesh.TileID(root)
	parent := map[string]string{}
	children := map[string][]string{}
	visited := map[string]bool{rootID: true}
	queue := []string{rootID}
	order := []string{rootID}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		nbrs, err := rstg.NeighborIDs(v)
		if err != nil {
			return nil, err
		}
		for _, nb := range nbrs {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			parent[nb] = v
			children[v] = append(children[v], nb)
			queue = append(queue, nb)
			order = append(order, nb)
		}
	}

	liveChildren := make(map[string]int, len(order))
	for _, v := range order {
		liveChildren[v] = len(children[v])
	}
	pruned := map[string]bool{}

	rethink := make([]string, 0, len(order))
	for _, v := range order {
		if liveChildren[v] == 0 {
			rethink = append(rethink, v)
		}
	}

	for len(rethink) > 0 {
		u := rethink[0]
		rethink = rethink[1:]
		if pruned[u] || u == rootID {
			continue
		}
		degree := liveChildren[u]
		if u != rootID {
			degree++ // the parent edge itself
		}
		if degree != 1 {
			continue
		}
		if terminalSet[tileOf(u)] {
			continue
		}
		pruned[u] = true
		p, ok := parent[u]
		if !ok {
			continue
		}
		liveChildren[p]--
		rethink = append(rethink, p)
	}

	return buildPrunedGraph(order, parent, pruned), nil
}

// pruneDFS implements the diagnostic DFS-prune method of spec §4.4. The
// recursion is realized as an explicit stack per §5's REDESIGN requirement:
// an iterative preorder DFS discovers the spanning tree (recording non-tree
// "back" neighbors along the way), and the keep/prune decision is then made
// bottom-up by walking the discovery order in reverse — every descendant of
// a node is assigned a strictly later discovery index, so processing indices
// from last to first guarantees a node's children are resolved before the
// node itself.
func pruneDFS(rstg *core.Graph, root int, terminalSet map[int]bool) (*core.Graph, error) {
	rootID := mesh.TileID(root)
	parent := map[string]string{}
	children := map[string][]string{}
	hasBackEdge := map[string]bool{}
	visited := map[string]bool{rootID: true}
	order := []string{rootID}

	type frame struct {
		id   string
		next int
		nbrs []string
	}
	nbrs0, err := rstg.NeighborIDs(rootID)
	if err != nil {
		return nil, err
	}
	stack := []*frame{{id: rootID, nbrs: nbrs0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.nbrs) {
			stack = stack[:len(stack)-1]
			continue
		}
		nb := top.nbrs[top.next]
		top.next++
		if nb == parent[top.id] && !visited[nb] {
			// unreachable in an undirected simple graph; guard only.
			continue
		}
		if visited[nb] {
			if nb != parent[top.id] {
				hasBackEdge[top.id] = true
			}
			continue
		}
		visited[nb] = true
		parent[nb] = top.id
		children[top.id] = append(children[top.id], nb)
		order = append(order, nb)
		nbrs, err := rstg.NeighborIDs(nb)
		if err != nil {
			return nil, err
		}
		stack = append(stack, &frame{id: nb, nbrs: nbrs})
	}

	keep := map[string]bool{}
	pruned := map[string]bool{}
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		keepChildren := false
		for _, c := range children[v] {
			if keep[c] {
				keepChildren = true
				break
			}
		}
		k := terminalSet[tileOf(v)] || keepChildren || hasBackEdge[v] || v == rootID
		keep[v] = k
		if !k {
			pruned[v] = true
		}
	}

	return buildPrunedGraph(order, parent, pruned), nil
}

// buildPrunedGraph reconstructs the surviving tree edges (parent[v],v) for
// every discovered node v that was not pruned, as a fresh unweighted graph.
func buildPrunedGraph(order []string, parent map[string]string, pruned map[string]bool) *core.Graph {
	g := core.NewGraph()
	for _, v := range order {
		if pruned[v] {
			continue
		}
		_ = g.AddVertex(v)
		if p, ok := parent[v]; ok && !pruned[p] {
			_ = g.AddVertex(p)
			_, _ = g.AddEdge(p, v, 0)
		}
	}

	return g
}

func tileOf(id string) int {
	return atoiMust(id)
}
