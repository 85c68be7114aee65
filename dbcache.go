package blaze

import (
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// DATABASE CACHE: memoized lookups against the inverted index
// ═══════════════════════════════════════════════════════════════════════════════
// Resolving a query graph and walking ranking-rule paths both ask the same
// handful of questions about the same handful of words over and over:
// "which documents contain this word", "which contain this word as a
// prefix", "which have these two words within k of each other". DatabaseCache
// answers each question once per query and remembers the bitmap, so the
// resolver and the ranking-rule graphs never read InvertedIndex directly.
// ═══════════════════════════════════════════════════════════════════════════════

type wordPairKey struct {
	Left, Right Handle
	Proximity   uint8
}

// DatabaseCache is scoped to a single query, like the interners it shares a
// SearchContext with; it is not safe for concurrent use.
type DatabaseCache struct {
	index        *InvertedIndex
	wordInterner *Interner[string]

	wordDocids   map[Handle]*roaring.Bitmap
	prefixDocids map[Handle]*roaring.Bitmap
	pairDocids   map[wordPairKey]*roaring.Bitmap
}

// NewDatabaseCache wires a cache to the index it will read from and the word
// interner it will resolve handles through.
func NewDatabaseCache(index *InvertedIndex, wordInterner *Interner[string]) *DatabaseCache {
	return &DatabaseCache{
		index:        index,
		wordInterner: wordInterner,
		wordDocids:   make(map[Handle]*roaring.Bitmap),
		prefixDocids: make(map[Handle]*roaring.Bitmap),
		pairDocids:   make(map[wordPairKey]*roaring.Bitmap),
	}
}

// WordDocIds returns the documents containing the exact word behind w.
func (c *DatabaseCache) WordDocIds(w Handle) (*roaring.Bitmap, error) {
	if b, ok := c.wordDocids[w]; ok {
		return b, nil
	}
	word := c.wordInterner.Get(w)
	c.index.mu.Lock()
	bm, ok := c.index.DocBitmaps[word]
	c.index.mu.Unlock()
	if !ok {
		bm = roaring.New()
	} else {
		bm = bm.Clone()
	}
	c.wordDocids[w] = bm
	return bm, nil
}

// WordPrefixDocIds returns the documents containing any indexed word
// beginning with the word behind w.
func (c *DatabaseCache) WordPrefixDocIds(w Handle) (*roaring.Bitmap, error) {
	if b, ok := c.prefixDocids[w]; ok {
		return b, nil
	}
	prefix := c.wordInterner.Get(w)
	acc := roaring.New()
	c.index.mu.Lock()
	for term, bm := range c.index.DocBitmaps {
		if strings.HasPrefix(term, prefix) {
			acc.Or(bm)
		}
	}
	c.index.mu.Unlock()
	c.prefixDocids[w] = acc
	return acc, nil
}

// WordPairProximityDocIds returns the documents where the word behind right
// occurs within [1, proximity] positions after the word behind left.
func (c *DatabaseCache) WordPairProximityDocIds(left, right Handle, proximity uint8) (*roaring.Bitmap, error) {
	key := wordPairKey{Left: left, Right: right, Proximity: proximity}
	if b, ok := c.pairDocids[key]; ok {
		return b, nil
	}
	leftWord := c.wordInterner.Get(left)
	rightWord := c.wordInterner.Get(right)
	bm, err := c.index.wordPairProximityDocIds(leftWord, rightWord, int(proximity))
	if err != nil {
		return nil, err
	}
	c.pairDocids[key] = bm
	return bm, nil
}
