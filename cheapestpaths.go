package blaze

import "sort"

// ═══════════════════════════════════════════════════════════════════════════════
// CHEAPEST PATHS: enumerating Start-to-End paths in increasing cost order
// ═══════════════════════════════════════════════════════════════════════════════
// A ranking rule needs every Start-to-End path of a given total cost, cheapest
// cost first, without ever constructing a path that turns out to have no
// chance of reaching End at that remaining budget. Two pieces make that
// possible:
//
//  1. DistancesToEnd: for every node, every (cost, edges necessarily used by
//     any path of that cost from this node to End) pair, computed once by a
//     backward BFS from End.
//  2. VisitPathsOfCost: a forward DFS from Start that, at each step, only
//     descends into an edge if DistancesToEnd says the remaining cost is
//     actually achievable from the edge's destination — and prunes whole
//     subtrees using EmptyPathsCache once a path is known to be empty.
// ═══════════════════════════════════════════════════════════════════════════════

// CostNecessary pairs a reachable cost from a node to End with the edges that
// every path of that exact cost must use.
type CostNecessary struct {
	Cost      uint16
	Necessary SmallBitmap
}

// InitializeDistancesWithNecessaryEdges runs a backward BFS from EndNode,
// building, for every node, the sorted list of (cost, necessary edges)
// reachable to End. Processing order is FIFO off a queue seeded from End's
// predecessors, matching a breadth-first relaxation over the query graph's
// edges (not the ranking-rule graph's, since predecessor/successor here
// always refers to the underlying query graph).
func (g *RankingRuleGraph) InitializeDistancesWithNecessaryEdges() [][]CostNecessary {
	n := len(g.QueryGraph.Nodes)
	distances := make([][]CostNecessary, n)
	numEdges := uint16(len(g.EdgesStore))

	distances[g.QueryGraph.EndNode] = []CostNecessary{{Cost: 0, Necessary: NewSmallBitmap(numEdges)}}

	enqueued := NewSmallBitmap(uint16(n))
	queue := make([]uint16, 0, n)
	for _, p := range g.QueryGraph.Predecessors[g.QueryGraph.EndNode].Iter() {
		queue = append(queue, p)
		enqueued.Insert(p)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		selfDistances := map[uint16]SmallBitmap{}
		for _, edgeIdx := range g.EdgesOfNode[cur].Iter() {
			edge := g.EdgesStore[edgeIdx]
			if edge == nil {
				continue
			}
			for _, sd := range distances[edge.Dest] {
				potential := sd.Necessary.Clone()
				potential.Insert(edgeIdx)
				totalCost := uint16(edge.Cost) + sd.Cost
				if existing, ok := selfDistances[totalCost]; ok {
					existing.Intersection(potential)
					selfDistances[totalCost] = existing
				} else {
					selfDistances[totalCost] = potential
				}
			}
		}

		keys := make([]uint16, 0, len(selfDistances))
		for k := range selfDistances {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
		list := make([]CostNecessary, 0, len(keys))
		for _, k := range keys {
			list = append(list, CostNecessary{Cost: k, Necessary: selfDistances[k]})
		}
		distances[cur] = list

		for _, p := range g.QueryGraph.Predecessors[cur].Iter() {
			if !enqueued.Contains(p) {
				queue = append(queue, p)
				enqueued.Insert(p)
			}
		}
	}

	return distances
}

// PathVisitor is called once per enumerated path, with the edges composing
// it. It may mutate cache with newly-discovered empty combinations.
type PathVisitor func(pathEdges []uint16, g *RankingRuleGraph, cache *EmptyPathsCache) error

// VisitPathsOfCost enumerates every from-to-End path of exactly cost,
// calling visit once per path, in the order discovered.
func (g *RankingRuleGraph) VisitPathsOfCost(from uint16, cost uint16, allDistances [][]CostNecessary, cache *EmptyPathsCache, visit PathVisitor) error {
	prevEdges := make([]uint16, 0, 8)
	forbidden := cache.EmptyEdges.Clone()
	_, err := g.visitPathsOfCostRec(from, cost, allDistances, cache, visit, &prevEdges, forbidden)
	return err
}

func (g *RankingRuleGraph) visitPathsOfCostRec(
	from uint16,
	cost uint16,
	allDistances [][]CostNecessary,
	cache *EmptyPathsCache,
	visit PathVisitor,
	prevEdges *[]uint16,
	forbiddenEdges SmallBitmap,
) (bool, error) {
	anyValid := false

	for _, edgeIdx := range g.EdgesOfNode[from].Iter() {
		edge := g.EdgesStore[edgeIdx]
		if edge == nil {
			continue
		}
		if cost < uint16(edge.Cost) || forbiddenEdges.Contains(edgeIdx) {
			continue
		}
		remaining := cost - uint16(edge.Cost)

		reachable := false
		for _, cn := range allDistances[edge.Dest] {
			if cn.Cost == remaining && !forbiddenEdges.Intersects(cn.Necessary) {
				reachable = true
				break
			}
		}
		if !reachable {
			continue
		}

		*prevEdges = append(*prevEdges, edgeIdx)

		newForbidden := forbiddenEdges.Clone()
		newForbidden.Union(cache.EmptyCoupleEdges[edgeIdx])
		cache.EmptyPrefixes.FinalEdgesAfterPrefix(*prevEdges, func(x uint16) { newForbidden.Insert(x) })

		var childValid bool
		var err error
		if edge.Dest == g.QueryGraph.EndNode {
			if verr := visit(*prevEdges, g, cache); verr != nil {
				*prevEdges = (*prevEdges)[:len(*prevEdges)-1]
				return anyValid, verr
			}
			childValid = true
		} else {
			childValid, err = g.visitPathsOfCostRec(edge.Dest, remaining, allDistances, cache, visit, prevEdges, newForbidden)
			if err != nil {
				*prevEdges = (*prevEdges)[:len(*prevEdges)-1]
				return anyValid, err
			}
		}
		anyValid = anyValid || childValid

		*prevEdges = (*prevEdges)[:len(*prevEdges)-1]

		if childValid {
			if cache.PathIsEmpty(*prevEdges) {
				return anyValid, nil
			}
			forbiddenEdges.Union(cache.EmptyEdges)
			for _, e := range *prevEdges {
				forbiddenEdges.Union(cache.EmptyCoupleEdges[e])
			}
			cache.EmptyPrefixes.FinalEdgesAfterPrefix(*prevEdges, func(x uint16) { forbiddenEdges.Insert(x) })
		}
	}

	return anyValid, nil
}
