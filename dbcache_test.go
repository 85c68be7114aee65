package blaze

import (
	"testing"

	"github.com/RoaringBitmap/roaring"
)

func newTestCache(idx *InvertedIndex) (*DatabaseCache, *Interner[string]) {
	words := NewInterner(func(s string) string { return s })
	return NewDatabaseCache(idx, words), words
}

func roaringBitmapOf(ids ...uint32) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range ids {
		bm.Add(id)
	}
	return bm
}

func TestDatabaseCache_WordDocIds(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick brown fox")
	idx.Index(2, "lazy dog")

	cache, words := newTestCache(idx)
	h := words.Intern("quick")

	bm, err := cache.WordDocIds(h)
	if err != nil {
		t.Fatalf("WordDocIds returned an error: %v", err)
	}
	if !bm.Contains(1) {
		t.Error("expected document 1 in the bitmap for 'quick'")
	}
	if bm.Contains(2) {
		t.Error("document 2 does not contain 'quick'")
	}
}

func TestDatabaseCache_WordDocIds_UnknownWord(t *testing.T) {
	idx := NewInvertedIndex()
	cache, words := newTestCache(idx)
	h := words.Intern("nonexistent")

	bm, err := cache.WordDocIds(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bm.IsEmpty() {
		t.Error("expected an empty bitmap for a word never indexed")
	}
}

func TestDatabaseCache_WordDocIds_ClonedBitmapIsolated(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick")

	cache, words := newTestCache(idx)
	h := words.Intern("quick")

	bm, _ := cache.WordDocIds(h)
	bm.Add(999)

	// The cache should have its own independent copy, not the live index bitmap.
	idx.mu.Lock()
	live := idx.DocBitmaps["quick"]
	idx.mu.Unlock()
	if live.Contains(999) {
		t.Error("mutating a bitmap returned from WordDocIds should not affect the index's own bitmap")
	}
}

func TestDatabaseCache_WordPrefixDocIds(t *testing.T) {
	idx := NewInvertedIndex()
	// Insert vocabulary directly so the test doesn't depend on exactly how
	// the stemmer transforms "quickly" and friends.
	idx.DocBitmaps["quick"] = roaringBitmapOf(1)
	idx.DocBitmaps["quickest"] = roaringBitmapOf(2)
	idx.DocBitmaps["slow"] = roaringBitmapOf(3)

	cache, words := newTestCache(idx)
	h := words.Intern("quick")

	bm, err := cache.WordPrefixDocIds(h)
	if err != nil {
		t.Fatalf("WordPrefixDocIds returned an error: %v", err)
	}
	if !bm.Contains(1) {
		t.Error("expected document 1 (exact 'quick') to match the prefix")
	}
	if !bm.Contains(2) {
		t.Error("expected document 2 ('quickest') to match the 'quick' prefix")
	}
	if bm.Contains(3) {
		t.Error("document 3 ('slow') should not match the 'quick' prefix")
	}
}

func TestDatabaseCache_WordPairProximityDocIds(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick brown fox")

	cache, words := newTestCache(idx)
	left := words.Intern("quick")
	right := words.Intern("fox")

	bm, err := cache.WordPairProximityDocIds(left, right, 2)
	if err != nil {
		t.Fatalf("WordPairProximityDocIds returned an error: %v", err)
	}
	if !bm.Contains(1) {
		t.Error("expected document 1 within proximity 2 of 'quick' -> 'fox'")
	}

	bmTight, err := cache.WordPairProximityDocIds(left, right, 1)
	if err != nil {
		t.Fatalf("WordPairProximityDocIds returned an error: %v", err)
	}
	if bmTight.Contains(1) {
		t.Error("'quick' and 'fox' are 2 apart, proximity 1 should not match")
	}
}

func TestDatabaseCache_MemoizesResults(t *testing.T) {
	idx := NewInvertedIndex()
	idx.Index(1, "quick")

	cache, words := newTestCache(idx)
	h := words.Intern("quick")

	first, _ := cache.WordDocIds(h)
	second, _ := cache.WordDocIds(h)

	// Memoization means the exact same bitmap instance is returned.
	first.Add(42)
	if !second.Contains(42) {
		t.Error("expected WordDocIds to return the same cached bitmap on repeated calls")
	}
}
