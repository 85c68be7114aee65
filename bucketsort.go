package blaze

import "github.com/RoaringBitmap/roaring"

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH CONTEXT: the per-query state shared by every component above
// ═══════════════════════════════════════════════════════════════════════════════
// Every interner, cache, and config value a query needs lives on one
// SearchContext, built fresh for each call to Execute and discarded
// afterwards. Like the interners it owns, it is not safe for concurrent use;
// concurrent searches each get their own SearchContext over the same
// InvertedIndex.
// ═══════════════════════════════════════════════════════════════════════════════

// SearchContext owns everything a single query's execution needs.
type SearchContext struct {
	Index  *InvertedIndex
	Config QueryConfig

	DBCache             *DatabaseCache
	WordInterner        *Interner[string]
	PhraseInterner      *Interner[Phrase]
	DerivationsInterner *Interner[WordDerivations]
	QueryTermDocIds     *QueryTermDocIdsCache
}

// NewSearchContext builds a fresh, empty context over index.
func NewSearchContext(index *InvertedIndex, config QueryConfig) *SearchContext {
	wordInterner := NewInterner(func(s string) string { return s })
	return &SearchContext{
		Index:               index,
		Config:              config,
		WordInterner:        wordInterner,
		PhraseInterner:      NewInterner(phraseKey),
		DerivationsInterner: NewInterner(wordDerivationsKey),
		QueryTermDocIds:     NewQueryTermDocIdsCache(),
		DBCache:             NewDatabaseCache(index, wordInterner),
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// BUCKET SORT: the ranking-rule cascade
// ═══════════════════════════════════════════════════════════════════════════════
// BucketSort drives a fixed cascade of ranking rules. Each rule narrows its
// input universe into disjoint buckets; every bucket of a rule other than the
// last is handed to the next rule for further refinement, while the last
// rule's buckets (and any bucket of at most one document) are emitted
// directly in ascending document ID order. Because from/length are known up front, BucketSort stops pulling
// buckets as soon as enough results have been collected — it never ranks
// documents past what the page needs.
// ═══════════════════════════════════════════════════════════════════════════════

// BucketSort ranks universe against query using rules in order, returning the
// document IDs for the [from, from+length) window.
func BucketSort(ctx *SearchContext, rules []RankingRule, query *QueryGraph, universe *roaring.Bitmap, from, length int, logger SearchLogger, cancelled func() bool) ([]uint32, error) {
	if logger == nil {
		logger = DefaultSearchLogger{}
	}
	if universe.IsEmpty() || length <= 0 || len(rules) == 0 {
		if len(rules) == 0 {
			return windowSortedIDs(universe, from, length), nil
		}
		return []uint32{}, nil
	}

	var results []uint32

	if err := rules[0].StartIteration(ctx, logger, universe, query); err != nil {
		return nil, err
	}
	logger.StartIterationRankingRule(0, rules[0], universe, query)

	var recurse func(ruleIdx int, curUniverse *roaring.Bitmap) error
	recurse = func(ruleIdx int, curUniverse *roaring.Bitmap) error {
		for len(results) < from+length {
			if cancelled != nil && cancelled() {
				return &CancellationError{}
			}

			bucket, err := rules[ruleIdx].NextBucket(ctx, logger, curUniverse)
			if err != nil {
				return err
			}
			if bucket == nil {
				rules[ruleIdx].EndIteration(ctx, logger)
				logger.EndIterationRankingRule(ruleIdx, rules[ruleIdx], curUniverse)
				return nil
			}
			logger.NextBucketRankingRule(ruleIdx, rules[ruleIdx], curUniverse, bucket.Candidates)

			if ruleIdx == len(rules)-1 || bucket.Candidates.GetCardinality() <= 1 {
				results = append(results, bucket.Candidates.ToArray()...)
				continue
			}

			if err := rules[ruleIdx+1].StartIteration(ctx, logger, bucket.Candidates, bucket.Query); err != nil {
				return err
			}
			logger.StartIterationRankingRule(ruleIdx+1, rules[ruleIdx+1], bucket.Candidates, bucket.Query)
			if err := recurse(ruleIdx+1, bucket.Candidates); err != nil {
				return err
			}
		}
		return nil
	}

	if err := recurse(0, universe); err != nil {
		return nil, err
	}

	if from >= len(results) {
		return []uint32{}, nil
	}
	end := from + length
	if end > len(results) {
		end = len(results)
	}
	out := make([]uint32, end-from)
	copy(out, results[from:end])
	return out, nil
}

func windowSortedIDs(universe *roaring.Bitmap, from, length int) []uint32 {
	all := universe.ToArray()
	if from >= len(all) || length <= 0 {
		return []uint32{}
	}
	end := from + length
	if end > len(all) {
		end = len(all)
	}
	out := make([]uint32, end-from)
	copy(out, all[from:end])
	return out
}

// ═══════════════════════════════════════════════════════════════════════════════
// EXECUTE: the search entry point
// ═══════════════════════════════════════════════════════════════════════════════

// Execute parses query, builds its query graph, resolves the initial
// universe under the Last matching strategy, and ranks it through the fixed
// Words -> Typo -> Proximity cascade, returning the [from, from+length)
// window of document IDs. universe restricts the documents considered at
// all; pass nil to search every indexed document.
func Execute(ctx *SearchContext, query string, universe *roaring.Bitmap, from, length int, logger SearchLogger, cancelled func() bool) ([]uint32, error) {
	if logger == nil {
		logger = DefaultSearchLogger{}
	}
	if universe == nil {
		universe = roaring.New()
		ctx.Index.mu.Lock()
		for docID := range ctx.Index.DocStats {
			universe.Add(uint32(docID))
		}
		ctx.Index.mu.Unlock()
	}

	terms, err := ParseQueryTerms(ctx, query)
	if err != nil {
		return nil, err
	}
	graph := BuildQueryGraph(terms)
	logger.InitialQuery(graph)

	reducedUniverse, err := ResolveMaximallyReducedQueryGraph(ctx, universe, graph, StrategyLast, logger)
	if err != nil {
		return nil, err
	}
	logger.InitialUniverse(reducedUniverse)

	rules := []RankingRule{
		NewWordsRule(StrategyLast),
		NewGraphBasedRankingRule("typo", KindTypo),
		NewGraphBasedRankingRule("proximity", KindProximity),
	}

	return BucketSort(ctx, rules, graph, reducedUniverse, from, length, logger, cancelled)
}
