package blaze

import (
	"errors"
	"fmt"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR KINDS
// ═══════════════════════════════════════════════════════════════════════════════
// Errors raised during query execution fall into a few distinguishable kinds,
// following the same package-level-sentinel style as index.go:
//
//   - UserInputError: the query itself can't be executed (empty, unparsable)
//   - IndexDataError: the index is missing data the query planner expected
//   - CacheInvariantError: an internal cache was asked for something that
//     should be impossible to ask for (a bug in this package, not the caller)
//   - CancellationError: the caller's cancellation function fired mid-search
// ═══════════════════════════════════════════════════════════════════════════════

var (
	ErrEmptyQuery             = errors.New("query contains no searchable terms")
	ErrBitmapCapacityMismatch = errors.New("small bitmap capacity mismatch")
	ErrMissingDistances       = errors.New("no distance-to-end recorded for node")
)

// UserInputError wraps a problem with the caller-supplied query itself.
type UserInputError struct {
	Err error
}

func (e *UserInputError) Error() string { return fmt.Sprintf("invalid query: %v", e.Err) }
func (e *UserInputError) Unwrap() error { return e.Err }

// IndexDataError wraps a problem reading expected data out of the index.
type IndexDataError struct {
	Key string
	Err error
}

func (e *IndexDataError) Error() string {
	return fmt.Sprintf("index data error for %q: %v", e.Key, e.Err)
}
func (e *IndexDataError) Unwrap() error { return e.Err }

// CacheInvariantError indicates a cache was used in a way its invariants
// don't allow. Seeing this means a bug in this package, not bad input.
type CacheInvariantError struct {
	Err error
}

func (e *CacheInvariantError) Error() string { return fmt.Sprintf("cache invariant violated: %v", e.Err) }
func (e *CacheInvariantError) Unwrap() error { return e.Err }

// CancellationError is returned when a caller-supplied cancellation check
// fired during BucketSort.
type CancellationError struct{}

func (e *CancellationError) Error() string { return "search cancelled" }
