package blaze

import "sort"

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY GRAPH: the DAG of alternative ways to read a query
// ═══════════════════════════════════════════════════════════════════════════════
// A query graph has a Start node, an End node, and one Term node per
// QueryTerm. Term nodes are laid out left to right by position: an edge
// exists from every node ending at position p to every node starting at
// position p+1, so a path from Start to End always reads the query terms in
// order, never skipping or repeating a position. Because nodes are appended
// in increasing-position order during construction and are never reordered
// (only ever marked Deleted), node index order is always a valid topological
// order, even after edges are bridged around a deleted node.
// ═══════════════════════════════════════════════════════════════════════════════

// QueryNodeKind distinguishes the four kinds of node a query graph can hold.
type QueryNodeKind int

const (
	NodeStart QueryNodeKind = iota
	NodeEnd
	NodeDeleted
	NodeTerm
)

// QueryNode is one node of a QueryGraph. Term is only meaningful when Kind is
// NodeTerm.
type QueryNode struct {
	Kind QueryNodeKind
	Term QueryTerm
}

// QueryGraph is the DAG of alternative term placements built from a parsed
// query. Successors/Predecessors are indexed by node index and sized to the
// node count at construction time.
type QueryGraph struct {
	Nodes        []QueryNode
	Successors   []SmallBitmap
	Predecessors []SmallBitmap
	StartNode    uint16
	EndNode      uint16
}

// BuildQueryGraph lays terms out into a QueryGraph. terms need not be sorted;
// BuildQueryGraph groups them by start position itself.
func BuildQueryGraph(terms []QueryTerm) *QueryGraph {
	byStart := map[int][]QueryTerm{}
	maxEnd := 0
	for _, t := range terms {
		byStart[t.StartPos] = append(byStart[t.StartPos], t)
		if t.EndPos > maxEnd {
			maxEnd = t.EndPos
		}
	}

	nodes := []QueryNode{{Kind: NodeStart}}
	nodesStartingAt := map[int][]uint16{}
	nodesEndingAt := map[int][]uint16{}

	for pos := 0; pos <= maxEnd; pos++ {
		group := byStart[pos]
		sort.Slice(group, func(a, b int) bool { return group[a].EndPos < group[b].EndPos })
		for _, t := range group {
			idx := uint16(len(nodes))
			nodes = append(nodes, QueryNode{Kind: NodeTerm, Term: t})
			nodesStartingAt[t.StartPos] = append(nodesStartingAt[t.StartPos], idx)
			nodesEndingAt[t.EndPos] = append(nodesEndingAt[t.EndPos], idx)
		}
	}

	endIdx := uint16(len(nodes))
	nodes = append(nodes, QueryNode{Kind: NodeEnd})
	startIdx := uint16(0)

	n := uint16(len(nodes))
	successors := make([]SmallBitmap, n)
	predecessors := make([]SmallBitmap, n)
	for i := range successors {
		successors[i] = NewSmallBitmap(n)
		predecessors[i] = NewSmallBitmap(n)
	}

	addEdge := func(a, b uint16) {
		successors[a].Insert(b)
		predecessors[b].Insert(a)
	}

	for _, s := range nodesStartingAt[0] {
		addEdge(startIdx, s)
	}
	for _, e := range nodesEndingAt[maxEnd] {
		addEdge(e, endIdx)
	}
	for pos := 0; pos < maxEnd; pos++ {
		for _, a := range nodesEndingAt[pos] {
			for _, b := range nodesStartingAt[pos+1] {
				addEdge(a, b)
			}
		}
	}

	return &QueryGraph{
		Nodes:        nodes,
		Successors:   successors,
		Predecessors: predecessors,
		StartNode:    startIdx,
		EndNode:      endIdx,
	}
}

// Clone returns a deep copy; the query graph is mutated in place by ranking
// rules, so each rule works against its own clone.
func (g *QueryGraph) Clone() *QueryGraph {
	nodes := make([]QueryNode, len(g.Nodes))
	copy(nodes, g.Nodes)
	succ := make([]SmallBitmap, len(g.Successors))
	pred := make([]SmallBitmap, len(g.Predecessors))
	for i := range succ {
		succ[i] = g.Successors[i].Clone()
		pred[i] = g.Predecessors[i].Clone()
	}
	return &QueryGraph{
		Nodes:        nodes,
		Successors:   succ,
		Predecessors: pred,
		StartNode:    g.StartNode,
		EndNode:      g.EndNode,
	}
}

// RemoveWordsStartingAtPosition deletes every Term node whose span starts at
// p, bridging an edge from each of its predecessors to each of its
// successors so the rest of the graph stays connected. This can leave some
// nodes unreachable from Start; that's expected, not an error.
func (g *QueryGraph) RemoveWordsStartingAtPosition(p int) {
	n := uint16(len(g.Nodes))
	for i := uint16(0); i < n; i++ {
		node := &g.Nodes[i]
		if node.Kind != NodeTerm || node.Term.StartPos != p {
			continue
		}

		preds := g.Predecessors[i].Iter()
		succs := g.Successors[i].Iter()

		for _, pr := range preds {
			for _, sc := range succs {
				g.Successors[pr].Insert(sc)
				g.Predecessors[sc].Insert(pr)
			}
			g.Successors[pr].Remove(i)
		}
		for _, sc := range succs {
			g.Predecessors[sc].Remove(i)
		}

		g.Predecessors[i] = NewSmallBitmap(n)
		g.Successors[i] = NewSmallBitmap(n)
		node.Kind = NodeDeleted
	}
}

// AllPositions returns every position covered (inclusive) by a surviving Term
// node, in ascending order.
func (g *QueryGraph) AllPositions() []int {
	set := map[int]struct{}{}
	for _, node := range g.Nodes {
		if node.Kind != NodeTerm {
			continue
		}
		for p := node.Term.StartPos; p <= node.Term.EndPos; p++ {
			set[p] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
