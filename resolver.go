package blaze

import "github.com/RoaringBitmap/roaring"

// ═══════════════════════════════════════════════════════════════════════════════
// RESOLVING A QUERY GRAPH TO A DOCUMENT SET
// ═══════════════════════════════════════════════════════════════════════════════
// A query graph's meaning is "the union, over every Start-to-End path, of the
// intersection of each node's matching documents along that path". We compute
// it bottom-up: reachable[node] is the set of documents that can walk from
// Start to node along some path and also match node itself. Because node
// index order is always a topological order (see querygraph.go), a single
// forward pass suffices; no separate topological sort is needed.
// ═══════════════════════════════════════════════════════════════════════════════

// QueryTermDocIdsCache memoizes docsOfTerm by derivations handle, since the
// same derivations set is frequently shared across positions and the query
// graph is resolved again at every Words-rule step. The Typo and Proximity
// graphs resolve their edges through docsOfTermAtLevel and DatabaseCache
// instead.
type QueryTermDocIdsCache struct {
	cache map[Handle]*roaring.Bitmap
}

// NewQueryTermDocIdsCache returns an empty cache.
func NewQueryTermDocIdsCache() *QueryTermDocIdsCache {
	return &QueryTermDocIdsCache{cache: make(map[Handle]*roaring.Bitmap)}
}

func (c *QueryTermDocIdsCache) get(h Handle) (*roaring.Bitmap, bool) {
	b, ok := c.cache[h]
	return b, ok
}

func (c *QueryTermDocIdsCache) set(h Handle, b *roaring.Bitmap) {
	c.cache[h] = b
}

// phraseDocIds intersects the per-word doc sets of a phrase's words, further
// constraining by adjacency: each consecutive pair must appear within
// proximity 1 of each other for the phrase to be considered a match.
func phraseDocIds(ctx *SearchContext, phraseHandle Handle) (*roaring.Bitmap, error) {
	phrase := ctx.PhraseInterner.Get(phraseHandle)
	if len(phrase.Words) == 0 {
		return roaring.New(), nil
	}

	first, err := ctx.DBCache.WordDocIds(phrase.Words[0])
	if err != nil {
		return nil, err
	}
	result := first.Clone()

	for i := 1; i < len(phrase.Words); i++ {
		wi, err := ctx.DBCache.WordDocIds(phrase.Words[i])
		if err != nil {
			return nil, err
		}
		result.And(wi)

		pair, err := ctx.DBCache.WordPairProximityDocIds(phrase.Words[i-1], phrase.Words[i], 1)
		if err != nil {
			return nil, err
		}
		result.And(pair)
	}
	return result, nil
}

// docsOfTerm computes the full union doc set for a term: its exact form,
// every typo variant, prefix matches, its split phrase, and any synonyms.
func docsOfTerm(ctx *SearchContext, term QueryTerm) (*roaring.Bitmap, error) {
	if cached, ok := ctx.QueryTermDocIds.get(term.Derivations); ok {
		return cached, nil
	}

	d := ctx.DerivationsInterner.Get(term.Derivations)
	acc := roaring.New()

	add := func(h Handle) error {
		b, err := ctx.DBCache.WordDocIds(h)
		if err != nil {
			return err
		}
		acc.Or(b)
		return nil
	}

	if err := add(d.Original); err != nil {
		return nil, err
	}
	for _, h := range d.OneTypo {
		if err := add(h); err != nil {
			return nil, err
		}
	}
	for _, h := range d.TwoTypo {
		if err := add(h); err != nil {
			return nil, err
		}
	}
	if d.HasPrefix {
		b, err := ctx.DBCache.WordPrefixDocIds(d.Original)
		if err != nil {
			return nil, err
		}
		acc.Or(b)
	}
	if d.HasSplit {
		b, err := phraseDocIds(ctx, d.Split)
		if err != nil {
			return nil, err
		}
		acc.Or(b)
	}
	for _, ph := range d.Synonyms {
		b, err := phraseDocIds(ctx, ph)
		if err != nil {
			return nil, err
		}
		acc.Or(b)
	}

	ctx.QueryTermDocIds.set(term.Derivations, acc)
	return acc, nil
}

// docsOfTermAtLevel restricts docsOfTerm to a single typo level, used by the
// Typo ranking-rule graph to price each level's edge separately:
// 0 = exact, 1 = one typo / split / synonym, 2 = two typos, 3 = prefix-only.
func docsOfTermAtLevel(ctx *SearchContext, term QueryTerm, level uint8) (*roaring.Bitmap, error) {
	d := ctx.DerivationsInterner.Get(term.Derivations)
	acc := roaring.New()

	switch level {
	case 0:
		b, err := ctx.DBCache.WordDocIds(d.Original)
		if err != nil {
			return nil, err
		}
		acc.Or(b)
	case 1:
		for _, h := range d.OneTypo {
			b, err := ctx.DBCache.WordDocIds(h)
			if err != nil {
				return nil, err
			}
			acc.Or(b)
		}
		if d.HasSplit {
			b, err := phraseDocIds(ctx, d.Split)
			if err != nil {
				return nil, err
			}
			acc.Or(b)
		}
		for _, ph := range d.Synonyms {
			b, err := phraseDocIds(ctx, ph)
			if err != nil {
				return nil, err
			}
			acc.Or(b)
		}
	case 2:
		for _, h := range d.TwoTypo {
			b, err := ctx.DBCache.WordDocIds(h)
			if err != nil {
				return nil, err
			}
			acc.Or(b)
		}
	case 3:
		if d.HasPrefix {
			b, err := ctx.DBCache.WordPrefixDocIds(d.Original)
			if err != nil {
				return nil, err
			}
			acc.Or(b)
		}
	}
	return acc, nil
}

func docsOfNode(ctx *SearchContext, node QueryNode, universe *roaring.Bitmap) (*roaring.Bitmap, error) {
	switch node.Kind {
	case NodeStart, NodeEnd:
		return universe, nil
	case NodeTerm:
		return docsOfTerm(ctx, node.Term)
	default:
		return roaring.New(), nil
	}
}

// ResolveQueryGraph computes the documents in universe matched by at least
// one Start-to-End path through graph.
func ResolveQueryGraph(ctx *SearchContext, graph *QueryGraph, universe *roaring.Bitmap) (*roaring.Bitmap, error) {
	n := len(graph.Nodes)
	reachable := make([]*roaring.Bitmap, n)
	reachable[graph.StartNode] = universe

	for idx := 0; idx < n; idx++ {
		if uint16(idx) == graph.StartNode {
			continue
		}
		node := graph.Nodes[idx]
		if node.Kind == NodeDeleted {
			continue
		}

		acc := roaring.New()
		for _, pred := range graph.Predecessors[idx].Iter() {
			if reachable[pred] == nil {
				continue
			}
			acc.Or(reachable[pred])
		}
		if acc.IsEmpty() {
			reachable[idx] = acc
			continue
		}

		nodeDocs, err := docsOfNode(ctx, node, universe)
		if err != nil {
			return nil, err
		}
		acc.And(nodeDocs)
		reachable[idx] = acc
	}

	result := reachable[graph.EndNode]
	if result == nil {
		result = roaring.New()
	}
	return roaring.And(result, universe), nil
}

// ResolveMaximallyReducedQueryGraph resolves the loosest possible reading of
// query allowed by strategy: under StrategyLast it drops every position
// except position 0 in one pass (the Words ranking rule is what searches the
// space between "every position" and "only position 0", bucket by bucket);
// under StrategyAll it resolves the graph exactly as given.
func ResolveMaximallyReducedQueryGraph(ctx *SearchContext, universe *roaring.Bitmap, query *QueryGraph, strategy TermsMatchingStrategy, logger SearchLogger) (*roaring.Bitmap, error) {
	graph := query.Clone()

	if strategy == StrategyLast {
		positions := graph.AllPositions()
		if len(positions) > 0 && positions[0] == 0 {
			positions = positions[1:]
		}
		for len(positions) > 0 {
			p := positions[len(positions)-1]
			positions = positions[:len(positions)-1]
			graph.RemoveWordsStartingAtPosition(p)
		}
	}

	logger.QueryForUniverse(graph)
	return ResolveQueryGraph(ctx, graph, universe)
}
