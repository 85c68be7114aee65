package blaze

import "github.com/RoaringBitmap/roaring"

// ═══════════════════════════════════════════════════════════════════════════════
// RANKING RULES: the cascade BucketSort drives
// ═══════════════════════════════════════════════════════════════════════════════
// A RankingRule turns a universe of candidate documents and a query graph
// into a sequence of buckets, each a (possibly reduced) query graph paired
// with a disjoint slice of the universe, most-relevant-by-this-rule's-measure
// first. BucketSort asks the next rule in the cascade to refine each bucket
// before emitting results from it.
// ═══════════════════════════════════════════════════════════════════════════════

// RankingRuleOutput is one bucket produced by a RankingRule: the documents in
// this bucket, and the query graph that should be used to rank them further.
type RankingRuleOutput struct {
	Query      *QueryGraph
	Candidates *roaring.Bitmap
}

// RankingRule is one stage of the ranking cascade.
type RankingRule interface {
	Name() string
	StartIteration(ctx *SearchContext, logger SearchLogger, universe *roaring.Bitmap, query *QueryGraph) error
	NextBucket(ctx *SearchContext, logger SearchLogger, universe *roaring.Bitmap) (*RankingRuleOutput, error)
	EndIteration(ctx *SearchContext, logger SearchLogger)
}

// ═══════════════════════════════════════════════════════════════════════════════
// WORDS: buckets by how many query terms a document needs to match
// ═══════════════════════════════════════════════════════════════════════════════

// WordsRule buckets documents by decreasing strictness: the first bucket
// requires every term (under strategy); each later bucket drops the latest
// remaining position and re-resolves.
type WordsRule struct {
	strategy          TermsMatchingStrategy
	graph             *QueryGraph
	positionsToRemove []int
	emitted           *roaring.Bitmap
	done              bool
}

// NewWordsRule returns a Words rule using the given matching strategy.
func NewWordsRule(strategy TermsMatchingStrategy) *WordsRule {
	return &WordsRule{strategy: strategy}
}

func (w *WordsRule) Name() string { return "words" }

func (w *WordsRule) StartIteration(ctx *SearchContext, logger SearchLogger, universe *roaring.Bitmap, query *QueryGraph) error {
	w.graph = query.Clone()
	w.emitted = roaring.New()
	w.done = false

	if w.strategy == StrategyLast {
		positions := w.graph.AllPositions()
		if len(positions) > 0 && positions[0] == 0 {
			positions = positions[1:]
		}
		w.positionsToRemove = positions
	} else {
		w.positionsToRemove = nil
	}
	return nil
}

func (w *WordsRule) NextBucket(ctx *SearchContext, logger SearchLogger, universe *roaring.Bitmap) (*RankingRuleOutput, error) {
	for !w.done {
		docids, err := ResolveQueryGraph(ctx, w.graph, universe)
		if err != nil {
			return nil, err
		}
		bucket := roaring.AndNot(roaring.And(docids, universe), w.emitted)
		w.emitted.Or(bucket)
		curQuery := w.graph.Clone()

		if len(w.positionsToRemove) == 0 {
			w.done = true
		} else {
			p := w.positionsToRemove[len(w.positionsToRemove)-1]
			w.positionsToRemove = w.positionsToRemove[:len(w.positionsToRemove)-1]
			w.graph.RemoveWordsStartingAtPosition(p)
		}

		if !bucket.IsEmpty() {
			return &RankingRuleOutput{Query: curQuery, Candidates: bucket}, nil
		}
	}
	return nil, nil
}

func (w *WordsRule) EndIteration(ctx *SearchContext, logger SearchLogger) {
	w.graph = nil
	w.emitted = nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// GRAPH-BASED RULES: Typo and Proximity
// ═══════════════════════════════════════════════════════════════════════════════

// GraphBasedRankingRule drives the cheapest-paths enumerator over a
// RankingRuleGraph of the given kind, bucketing documents by increasing cost.
type GraphBasedRankingRule struct {
	name string
	kind RankingRuleGraphKind

	query           *QueryGraph
	graph           *RankingRuleGraph
	allDistances    [][]CostNecessary
	emptyPathsCache *EmptyPathsCache

	emitted *roaring.Bitmap
	curCost uint16
	maxCost uint16
	done    bool
}

// NewGraphBasedRankingRule returns a graph-based rule of the given kind
// (KindTypo or KindProximity) with the given display name.
func NewGraphBasedRankingRule(name string, kind RankingRuleGraphKind) *GraphBasedRankingRule {
	return &GraphBasedRankingRule{name: name, kind: kind}
}

func (r *GraphBasedRankingRule) Name() string { return r.name }

func (r *GraphBasedRankingRule) StartIteration(ctx *SearchContext, logger SearchLogger, universe *roaring.Bitmap, query *QueryGraph) error {
	r.query = query.Clone()
	switch r.kind {
	case KindProximity:
		r.graph = NewProximityGraph(ctx, r.query)
	case KindTypo:
		r.graph = NewTypoGraph(ctx, r.query)
	}

	r.allDistances = r.graph.InitializeDistancesWithNecessaryEdges()
	r.emptyPathsCache = NewEmptyPathsCache(len(r.graph.EdgesStore))
	r.emitted = roaring.New()
	r.curCost = 0

	startDistances := r.allDistances[r.query.StartNode]
	r.maxCost = 0
	for _, cn := range startDistances {
		if cn.Cost > r.maxCost {
			r.maxCost = cn.Cost
		}
	}
	r.done = len(startDistances) == 0
	return nil
}

func (r *GraphBasedRankingRule) NextBucket(ctx *SearchContext, logger SearchLogger, universe *roaring.Bitmap) (*RankingRuleOutput, error) {
	for !r.done {
		cost := r.curCost
		if cost > r.maxCost {
			r.done = true
			return nil, nil
		}
		r.curCost++
		if cost == r.maxCost {
			r.done = true
		}

		edgesForCost := NewSmallBitmap(uint16(len(r.graph.EdgesStore)))
		visit := func(pathEdges []uint16, g *RankingRuleGraph, cache *EmptyPathsCache) error {
			pathSet := NewSmallBitmap(uint16(len(g.EdgesStore)))
			for _, e := range pathEdges {
				pathSet.Insert(e)
			}
			docids, err := g.ResolveEdgeSet(ctx, pathSet, universe)
			if err != nil {
				return err
			}
			if docids.IsEmpty() {
				switch len(pathEdges) {
				case 1:
					cache.AddEmptyEdge(pathEdges[0])
				case 2:
					cache.AddEmptyCouple(pathEdges[0], pathEdges[1])
				default:
					cache.AddEmptyPrefix(pathEdges, nil)
				}
				return nil
			}
			for _, e := range pathEdges {
				edgesForCost.Insert(e)
			}
			return nil
		}

		if err := r.graph.VisitPathsOfCost(r.query.StartNode, cost, r.allDistances, r.emptyPathsCache, visit); err != nil {
			return nil, err
		}
		if edgesForCost.IsEmpty() {
			continue
		}

		docids, err := r.graph.ResolveEdgeSet(ctx, edgesForCost, universe)
		if err != nil {
			return nil, err
		}
		bucket := roaring.AndNot(roaring.And(docids, universe), r.emitted)
		r.emitted.Or(bucket)

		if !bucket.IsEmpty() {
			return &RankingRuleOutput{Query: r.query.Clone(), Candidates: bucket}, nil
		}
	}
	return nil, nil
}

func (r *GraphBasedRankingRule) EndIteration(ctx *SearchContext, logger SearchLogger) {
	r.graph = nil
	r.allDistances = nil
	r.emptyPathsCache = nil
	r.emitted = nil
}
