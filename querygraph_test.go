package blaze

import "testing"

func TestBuildQueryGraph_LinearChain(t *testing.T) {
	terms := []QueryTerm{
		{StartPos: 0, EndPos: 0},
		{StartPos: 1, EndPos: 1},
		{StartPos: 2, EndPos: 2},
	}
	g := BuildQueryGraph(terms)

	// Start, 3 term nodes, End.
	if len(g.Nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(g.Nodes))
	}
	if g.Nodes[g.StartNode].Kind != NodeStart {
		t.Error("StartNode should be a NodeStart")
	}
	if g.Nodes[g.EndNode].Kind != NodeEnd {
		t.Error("EndNode should be a NodeEnd")
	}

	if !g.Successors[g.StartNode].Contains(1) {
		t.Error("Start should connect to the first term node")
	}
	if !g.Predecessors[g.EndNode].Contains(3) {
		t.Error("End should be reachable from the last term node")
	}
}

func TestBuildQueryGraph_BranchingAtSamePosition(t *testing.T) {
	// Two term nodes sharing position 0 (e.g. exact term plus a concat
	// spanning into position 1) should both connect from Start.
	terms := []QueryTerm{
		{StartPos: 0, EndPos: 0},
		{StartPos: 0, EndPos: 1},
		{StartPos: 1, EndPos: 1},
	}
	g := BuildQueryGraph(terms)

	startSuccessors := g.Successors[g.StartNode].Iter()
	if len(startSuccessors) != 2 {
		t.Errorf("expected 2 nodes starting at position 0, got %d", len(startSuccessors))
	}
}

func TestQueryGraph_Clone_IsIndependent(t *testing.T) {
	terms := []QueryTerm{{StartPos: 0, EndPos: 0}, {StartPos: 1, EndPos: 1}}
	g := BuildQueryGraph(terms)
	clone := g.Clone()

	clone.RemoveWordsStartingAtPosition(0)

	if g.Nodes[1].Kind == NodeDeleted {
		t.Error("mutating the clone should not affect the original graph")
	}
	if clone.Nodes[1].Kind != NodeDeleted {
		t.Error("expected the clone's node to be deleted")
	}
}

func TestRemoveWordsStartingAtPosition_BridgesAroundDeletedNode(t *testing.T) {
	terms := []QueryTerm{
		{StartPos: 0, EndPos: 0},
		{StartPos: 1, EndPos: 1},
		{StartPos: 2, EndPos: 2},
	}
	g := BuildQueryGraph(terms)
	// Node 2 is the term at position 1; remove it and check 1 bridges to 3.
	g.RemoveWordsStartingAtPosition(1)

	if !g.Successors[1].Contains(3) {
		t.Error("expected the predecessor of the deleted node to connect directly to its successor")
	}
	if !g.Predecessors[3].Contains(1) {
		t.Error("expected the successor of the deleted node to list the bridged predecessor")
	}
	if g.Nodes[2].Kind != NodeDeleted {
		t.Error("expected the node at position 1 to be marked deleted")
	}
}

func TestQueryGraph_AllPositions(t *testing.T) {
	terms := []QueryTerm{
		{StartPos: 0, EndPos: 0},
		{StartPos: 0, EndPos: 1}, // concat term spanning 0 and 1
		{StartPos: 1, EndPos: 1},
	}
	g := BuildQueryGraph(terms)
	positions := g.AllPositions()
	want := []int{0, 1}
	if len(positions) != len(want) {
		t.Fatalf("AllPositions() = %v, want %v", positions, want)
	}
	for i, p := range want {
		if positions[i] != p {
			t.Errorf("AllPositions()[%d] = %d, want %d", i, positions[i], p)
		}
	}
}
