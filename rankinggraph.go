package blaze

import "github.com/RoaringBitmap/roaring"

// ═══════════════════════════════════════════════════════════════════════════════
// RANKING RULE GRAPH: a cost-annotated DAG parallel to the query graph
// ═══════════════════════════════════════════════════════════════════════════════
// A RankingRuleGraph reuses the query graph's own node indices (including
// Start and End) but replaces its edges with ones carrying a cost and a
// condition that resolves to a document set. Two kinds are built from the
// same query graph:
//
//   - Proximity: one edge per (adjacent term pair, distance 1..8), costing
//     distance-1, plus a free unconditional edge wherever the query graph
//     has an edge that doesn't connect two terms (Start->term, term->End),
//     so the graph always has at least a zero-cost path end to end.
//   - Typo: for each term, edges from every one of its predecessors to every
//     one of its successors, one per derivation level the term actually has
//     (exact is always present; one-typo/split/synonym, two-typo, and
//     prefix-only are added only when that derivation kind is non-empty).
//     These edges fold the term itself out of the path, which is why Typo
//     edges connect the term's neighbors directly rather than the term.
// ═══════════════════════════════════════════════════════════════════════════════

// RankingRuleGraphKind distinguishes the two ranking-rule graphs this package
// builds from the same query graph.
type RankingRuleGraphKind int

const (
	KindProximity RankingRuleGraphKind = iota
	KindTypo
)

// RankingRuleEdgeCondition is the payload a RankingRuleEdge resolves through
// DatabaseCache or the term-derivation resolver, depending on graph Kind.
type RankingRuleEdgeCondition struct {
	Unconditional bool

	// Proximity condition.
	LeftWord, RightWord Handle
	Proximity           uint8

	// Typo condition.
	Term  QueryTerm
	Level uint8
}

// RankingRuleEdge connects two query graph node indices with a cost and a
// condition.
type RankingRuleEdge struct {
	Source, Dest uint16
	Cost         uint8
	Condition    RankingRuleEdgeCondition
}

// RankingRuleGraph is a cost-annotated graph sharing the query graph's node
// index space. EdgesStore is a dense, append-only array; EdgesOfNode[n] holds
// the indices of edges whose Source is n.
type RankingRuleGraph struct {
	Kind        RankingRuleGraphKind
	QueryGraph  *QueryGraph
	EdgesStore  []*RankingRuleEdge
	EdgesOfNode []SmallBitmap
}

func buildRankingRuleGraph(kind RankingRuleGraphKind, qg *QueryGraph, edges []*RankingRuleEdge, bySource map[uint16][]uint16) *RankingRuleGraph {
	n := len(qg.Nodes)
	edgesOfNode := make([]SmallBitmap, n)
	cap16 := uint16(len(edges))
	for i := 0; i < n; i++ {
		edgesOfNode[i] = NewSmallBitmap(cap16)
		for _, e := range bySource[uint16(i)] {
			edgesOfNode[i].Insert(e)
		}
	}
	return &RankingRuleGraph{Kind: kind, QueryGraph: qg, EdgesStore: edges, EdgesOfNode: edgesOfNode}
}

// NewProximityGraph builds the Proximity ranking-rule graph for qg.
func NewProximityGraph(ctx *SearchContext, qg *QueryGraph) *RankingRuleGraph {
	var edges []*RankingRuleEdge
	bySource := map[uint16][]uint16{}

	addEdge := func(e *RankingRuleEdge) {
		idx := uint16(len(edges))
		edges = append(edges, e)
		bySource[e.Source] = append(bySource[e.Source], idx)
	}

	for i := range qg.Nodes {
		node := qg.Nodes[i]
		if node.Kind == NodeDeleted {
			continue
		}
		for _, succ := range qg.Successors[i].Iter() {
			succNode := qg.Nodes[succ]
			if node.Kind == NodeTerm && succNode.Kind == NodeTerm {
				left := ctx.DerivationsInterner.Get(node.Term.Derivations)
				right := ctx.DerivationsInterner.Get(succNode.Term.Derivations)
				for k := uint8(1); k <= 8; k++ {
					addEdge(&RankingRuleEdge{
						Source: uint16(i), Dest: succ, Cost: k - 1,
						Condition: RankingRuleEdgeCondition{
							LeftWord: left.Original, RightWord: right.Original, Proximity: k,
						},
					})
				}
			} else {
				addEdge(&RankingRuleEdge{
					Source: uint16(i), Dest: succ, Cost: 0,
					Condition: RankingRuleEdgeCondition{Unconditional: true},
				})
			}
		}
	}

	return buildRankingRuleGraph(KindProximity, qg, edges, bySource)
}

// NewTypoGraph builds the Typo ranking-rule graph for qg.
func NewTypoGraph(ctx *SearchContext, qg *QueryGraph) *RankingRuleGraph {
	var edges []*RankingRuleEdge
	bySource := map[uint16][]uint16{}

	addEdge := func(e *RankingRuleEdge) {
		idx := uint16(len(edges))
		edges = append(edges, e)
		bySource[e.Source] = append(bySource[e.Source], idx)
	}

	for i := range qg.Nodes {
		node := qg.Nodes[i]
		if node.Kind != NodeTerm {
			continue
		}
		deriv := ctx.DerivationsInterner.Get(node.Term.Derivations)

		levels := []uint8{0}
		if len(deriv.OneTypo) > 0 || deriv.HasSplit || len(deriv.Synonyms) > 0 {
			levels = append(levels, 1)
		}
		if len(deriv.TwoTypo) > 0 {
			levels = append(levels, 2)
		}
		if deriv.HasPrefix {
			levels = append(levels, 3)
		}

		for _, pred := range qg.Predecessors[i].Iter() {
			for _, succ := range qg.Successors[i].Iter() {
				for _, lvl := range levels {
					addEdge(&RankingRuleEdge{
						Source: pred, Dest: succ, Cost: lvl,
						Condition: RankingRuleEdgeCondition{Term: node.Term, Level: lvl},
					})
				}
			}
		}
	}

	return buildRankingRuleGraph(KindTypo, qg, edges, bySource)
}

// ResolveCondition resolves a single edge's condition to a document set.
func (g *RankingRuleGraph) ResolveCondition(ctx *SearchContext, edge *RankingRuleEdge, universe *roaring.Bitmap) (*roaring.Bitmap, error) {
	if edge.Condition.Unconditional {
		return universe, nil
	}
	switch g.Kind {
	case KindProximity:
		return ctx.DBCache.WordPairProximityDocIds(edge.Condition.LeftWord, edge.Condition.RightWord, edge.Condition.Proximity)
	case KindTypo:
		return docsOfTermAtLevel(ctx, edge.Condition.Term, edge.Condition.Level)
	default:
		return roaring.New(), nil
	}
}

// ResolveEdgeSet computes the documents matched by at least one Start-to-End
// path using only edges in edgeSet. It is used both to check whether a
// single enumerated path is empty and to resolve a whole cost bucket's worth
// of edges at once.
func (g *RankingRuleGraph) ResolveEdgeSet(ctx *SearchContext, edgeSet SmallBitmap, universe *roaring.Bitmap) (*roaring.Bitmap, error) {
	n := len(g.QueryGraph.Nodes)
	reachable := make([]*roaring.Bitmap, n)
	reachable[g.QueryGraph.StartNode] = universe

	for idx := 0; idx < n; idx++ {
		if uint16(idx) == g.QueryGraph.StartNode {
			continue
		}
		acc := roaring.New()
		for _, edgeIdx := range edgeSet.Iter() {
			edge := g.EdgesStore[edgeIdx]
			if edge == nil || int(edge.Dest) != idx {
				continue
			}
			src := reachable[edge.Source]
			if src == nil || src.IsEmpty() {
				continue
			}
			cond, err := g.ResolveCondition(ctx, edge, universe)
			if err != nil {
				return nil, err
			}
			acc.Or(roaring.And(src, cond))
		}
		reachable[idx] = acc
	}

	result := reachable[g.QueryGraph.EndNode]
	if result == nil {
		result = roaring.New()
	}
	return roaring.And(result, universe), nil
}
