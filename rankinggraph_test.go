package blaze

import "testing"

// twoTermGraph builds a minimal Start -> term0 -> term1 -> End query graph,
// with derivation generation disabled beyond the bare exact match so the
// resulting ranking-rule graphs stay small and easy to reason about.
func twoTermGraph(t *testing.T, idx *InvertedIndex, a, b string) (*SearchContext, *QueryGraph) {
	t.Helper()
	config := DefaultQueryConfig()
	config.EnableConcat = false
	config.EnableSplit = false
	config.EnablePrefixForLastWord = false

	ctx := NewSearchContext(idx, config)
	terms, err := ParseQueryTerms(ctx, a+" "+b)
	if err != nil {
		t.Fatalf("ParseQueryTerms failed: %v", err)
	}
	return ctx, BuildQueryGraph(terms)
}

func TestNewProximityGraph_AdjacentTermsGetEightDistanceEdges(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick fox")
	ctx, qg := twoTermGraph(t, idx, "quick", "fox")

	g := NewProximityGraph(ctx, qg)

	// Nodes: 0=Start, 1=term("quick"), 2=term("fox"), 3=End.
	termToTermEdges := 0
	for _, edgeIdx := range g.EdgesOfNode[1].Iter() {
		e := g.EdgesStore[edgeIdx]
		if e.Dest == 2 {
			termToTermEdges++
		}
	}
	if termToTermEdges != 8 {
		t.Errorf("expected 8 proximity edges between adjacent terms, got %d", termToTermEdges)
	}
}

func TestNewProximityGraph_StartAndEndEdgesAreUnconditional(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick fox")
	ctx, qg := twoTermGraph(t, idx, "quick", "fox")

	g := NewProximityGraph(ctx, qg)

	startEdges := g.EdgesOfNode[qg.StartNode].Iter()
	if len(startEdges) != 1 {
		t.Fatalf("expected exactly 1 edge out of Start, got %d", len(startEdges))
	}
	e := g.EdgesStore[startEdges[0]]
	if !e.Condition.Unconditional || e.Cost != 0 {
		t.Error("the Start edge should be unconditional and free")
	}

	// Node 2 is the last term ("fox"); its edge into End is the End edge.
	for _, edgeIdx := range g.EdgesOfNode[2].Iter() {
		e := g.EdgesStore[edgeIdx]
		if e.Dest == qg.EndNode && (!e.Condition.Unconditional || e.Cost != 0) {
			t.Error("the End edge should be unconditional and free")
		}
	}
}

func TestNewProximityGraph_ResolveEdgeSet_MatchesProximateDocs(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick brown fox") // quick, fox at distance 2
	idx.Index(2, "quick slow")      // no "fox" at all
	ctx, qg := twoTermGraph(t, idx, "quick", "fox")

	g := NewProximityGraph(ctx, qg)
	universe := roaringBitmapOf(1, 2)

	// Find the cost-1 edge (distance 2, since cost = distance - 1) between
	// the two term nodes and resolve just that edge.
	var costOneEdge uint16
	found := false
	for _, edgeIdx := range g.EdgesOfNode[1].Iter() {
		e := g.EdgesStore[edgeIdx]
		if e.Dest == 2 && e.Cost == 1 {
			costOneEdge = edgeIdx
			found = true
		}
	}
	if !found {
		t.Fatal("expected to find the cost-1 (distance 2) edge between the two terms")
	}

	edgeSet := NewSmallBitmap(uint16(len(g.EdgesStore)))
	edgeSet.Insert(costOneEdge)

	// Also need the Start->term0 and term1->End unconditional edges to form
	// a full path; add every unconditional edge.
	for i, e := range g.EdgesStore {
		if e.Condition.Unconditional {
			edgeSet.Insert(uint16(i))
		}
	}

	result, err := g.ResolveEdgeSet(ctx, edgeSet, universe)
	if err != nil {
		t.Fatalf("ResolveEdgeSet failed: %v", err)
	}
	if !result.Contains(1) {
		t.Error("expected document 1 to match at proximity distance 2")
	}
	if result.Contains(2) {
		t.Error("document 2 has no 'fox' at all and should not match")
	}
}

func TestNewTypoGraph_ExactLevelAlwaysPresent(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "ab cd")
	ctx, qg := twoTermGraph(t, idx, "ab", "cd")

	g := NewTypoGraph(ctx, qg)

	// Node 1 is the term "ab": predecessor Start(0), successor term "cd"(2).
	foundExact := false
	for _, edgeIdx := range g.EdgesOfNode[qg.StartNode].Iter() {
		e := g.EdgesStore[edgeIdx]
		if e.Condition.Level == 0 {
			foundExact = true
		}
	}
	if !foundExact {
		t.Error("expected at least one exact-level (0) typo edge out of Start")
	}
}

func TestNewTypoGraph_FoldsTermOutOfPath(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "ab cd")
	ctx, qg := twoTermGraph(t, idx, "ab", "cd")

	g := NewTypoGraph(ctx, qg)

	// Typo edges for node 1 ("ab") should go directly from its predecessor
	// (Start) to its successor (node 2, "cd"), never through node 1 itself.
	for _, edgeIdx := range g.EdgesOfNode[qg.StartNode].Iter() {
		e := g.EdgesStore[edgeIdx]
		if e.Source != qg.StartNode {
			t.Errorf("expected edge source to be Start, got %d", e.Source)
		}
		if e.Dest == 1 {
			t.Error("typo edges should skip over the term node, not land on it")
		}
	}
}
