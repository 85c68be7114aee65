package blaze

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH LOGGER: an observer over BucketSort's progress
// ═══════════════════════════════════════════════════════════════════════════════
// BucketSort calls into a SearchLogger at each notable step so that callers
// can trace or debug a query's execution without BucketSort itself knowing
// anything about how that tracing is rendered. DefaultSearchLogger is a
// no-op; SlogSearchLogger renders the same events as structured log/slog
// records, the way index.go logs indexing events.
// ═══════════════════════════════════════════════════════════════════════════════

// SearchLogger observes the ranking-rule cascade as BucketSort runs it.
type SearchLogger interface {
	InitialQuery(graph *QueryGraph)
	InitialUniverse(universe *roaring.Bitmap)
	QueryForUniverse(graph *QueryGraph)
	StartIterationRankingRule(ruleIndex int, rule RankingRule, universe *roaring.Bitmap, query *QueryGraph)
	NextBucketRankingRule(ruleIndex int, rule RankingRule, universe *roaring.Bitmap, candidates *roaring.Bitmap)
	EndIterationRankingRule(ruleIndex int, rule RankingRule, universe *roaring.Bitmap)
}

// DefaultSearchLogger discards every event. It is the zero-cost choice for
// callers that don't need search tracing.
type DefaultSearchLogger struct{}

func (DefaultSearchLogger) InitialQuery(*QueryGraph)                                              {}
func (DefaultSearchLogger) InitialUniverse(*roaring.Bitmap)                                       {}
func (DefaultSearchLogger) QueryForUniverse(*QueryGraph)                                           {}
func (DefaultSearchLogger) StartIterationRankingRule(int, RankingRule, *roaring.Bitmap, *QueryGraph) {}
func (DefaultSearchLogger) NextBucketRankingRule(int, RankingRule, *roaring.Bitmap, *roaring.Bitmap) {}
func (DefaultSearchLogger) EndIterationRankingRule(int, RankingRule, *roaring.Bitmap)               {}

// SlogSearchLogger renders the same events via log/slog.
type SlogSearchLogger struct {
	logger *slog.Logger
}

// NewSlogSearchLogger wraps l, or the default logger if l is nil.
func NewSlogSearchLogger(l *slog.Logger) *SlogSearchLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogSearchLogger{logger: l}
}

func (s *SlogSearchLogger) InitialQuery(graph *QueryGraph) {
	s.logger.Info("search: initial query", slog.Int("nodes", len(graph.Nodes)))
}

func (s *SlogSearchLogger) InitialUniverse(universe *roaring.Bitmap) {
	s.logger.Info("search: initial universe", slog.Uint64("candidates", uint64(universe.GetCardinality())))
}

func (s *SlogSearchLogger) QueryForUniverse(graph *QueryGraph) {
	s.logger.Info("search: reduced query for universe", slog.Int("nodes", len(graph.Nodes)))
}

func (s *SlogSearchLogger) StartIterationRankingRule(ruleIndex int, rule RankingRule, universe *roaring.Bitmap, query *QueryGraph) {
	s.logger.Info("search: ranking rule start",
		slog.Int("rule", ruleIndex),
		slog.String("name", rule.Name()),
		slog.Uint64("universe", uint64(universe.GetCardinality())),
	)
}

func (s *SlogSearchLogger) NextBucketRankingRule(ruleIndex int, rule RankingRule, universe *roaring.Bitmap, candidates *roaring.Bitmap) {
	s.logger.Info("search: ranking rule bucket",
		slog.Int("rule", ruleIndex),
		slog.String("name", rule.Name()),
		slog.Uint64("bucket", uint64(candidates.GetCardinality())),
	)
}

func (s *SlogSearchLogger) EndIterationRankingRule(ruleIndex int, rule RankingRule, universe *roaring.Bitmap) {
	s.logger.Info("search: ranking rule end",
		slog.Int("rule", ruleIndex),
		slog.String("name", rule.Name()),
	)
}
