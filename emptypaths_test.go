package blaze

import "testing"

func TestPrefixTrie_AddAndIsEmptyPrefix(t *testing.T) {
	trie := NewPrefixTrie()
	if trie.IsEmptyPrefix([]uint16{1, 2}) {
		t.Error("an untouched trie should report no prefix as empty")
	}

	trie.AddEmptyPrefix([]uint16{1, 2}, nil)
	if !trie.IsEmptyPrefix([]uint16{1, 2}) {
		t.Error("expected [1,2] to be recorded as an empty prefix")
	}
	if trie.IsEmptyPrefix([]uint16{1}) {
		t.Error("a prefix of an empty prefix should not itself be marked empty")
	}
}

func TestPrefixTrie_FinalEdgesAfterPrefix(t *testing.T) {
	trie := NewPrefixTrie()
	trie.AddEmptyPrefix([]uint16{1}, []uint16{5, 6})

	var got []uint16
	trie.FinalEdgesAfterPrefix([]uint16{1}, func(e uint16) { got = append(got, e) })

	if len(got) != 2 || got[0] != 5 || got[1] != 6 {
		t.Errorf("FinalEdgesAfterPrefix = %v, want [5 6]", got)
	}
}

func TestPrefixTrie_FinalEdgesAfterPrefix_UnknownPrefix(t *testing.T) {
	trie := NewPrefixTrie()
	called := false
	trie.FinalEdgesAfterPrefix([]uint16{9}, func(uint16) { called = true })
	if called {
		t.Error("FinalEdgesAfterPrefix should not call f for a prefix never recorded")
	}
}

func TestEmptyPathsCache_SingleEmptyEdge(t *testing.T) {
	cache := NewEmptyPathsCache(4)
	cache.AddEmptyEdge(2)

	if !cache.PathIsEmpty([]uint16{0, 2}) {
		t.Error("a path containing an empty edge should be reported empty")
	}
	if cache.PathIsEmpty([]uint16{0, 1}) {
		t.Error("a path without any empty edge should not be reported empty")
	}
}

func TestEmptyPathsCache_EmptyCouple(t *testing.T) {
	cache := NewEmptyPathsCache(4)
	cache.AddEmptyCouple(0, 1)

	if !cache.PathIsEmpty([]uint16{0, 1, 2}) {
		t.Error("a path containing both edges of an empty couple should be reported empty")
	}
	if cache.PathIsEmpty([]uint16{0, 2}) {
		t.Error("a path with only one edge of the couple should not be reported empty")
	}
	// Couples are recorded symmetrically.
	if !cache.PathIsEmpty([]uint16{1, 0}) {
		t.Error("couple emptiness should not depend on edge order within the path")
	}
}

func TestEmptyPathsCache_EmptyPrefix(t *testing.T) {
	cache := NewEmptyPathsCache(4)
	cache.AddEmptyPrefix([]uint16{0, 1}, nil)

	if !cache.PathIsEmpty([]uint16{0, 1}) {
		t.Error("a path matching a recorded empty prefix should be reported empty")
	}
	if cache.PathIsEmpty([]uint16{0}) {
		t.Error("a strict prefix of the recorded empty sequence should not itself be empty")
	}
}
