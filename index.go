// Package index implements an inverted index for full-text search
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS AN INVERTED INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// An inverted index is like the index at the back of a book, but for search engines.
//
// Example: Given these documents:
//   Doc 1: "the quick brown fox"
//   Doc 2: "the lazy dog"
//   Doc 3: "quick brown dogs"
//
// The inverted index would look like (the stop word "the" is dropped and
// words are stemmed before positions are counted):
//   "quick"  → [Doc1:Pos0, Doc3:Pos0]
//   "brown"  → [Doc1:Pos1, Doc3:Pos1]
//   "fox"    → [Doc1:Pos2]
//   "lazi"   → [Doc2:Pos0]
//   "dog"    → [Doc2:Pos1, Doc3:Pos2]
//
// This allows us to:
// 1. Find documents containing a word instantly (without scanning all docs)
// 2. Find phrases by checking if word positions are consecutive
// 3. Rank results by how close words appear to each other (proximity)
//
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════
// We define errors as package-level variables so they can be compared with ==
// This is a Go best practice for error handling.
var (
	ErrNoPostingList = errors.New("no posting list exists for token")
	ErrNoNextElement = errors.New("no next element found")
	ErrNoPrevElement = errors.New("no previous element found")
)

// DocumentStats stores statistics about a single document
type DocumentStats struct {
	DocID  int // Document identifier
	Length int // Number of terms in the document
}

// ═══════════════════════════════════════════════════════════════════════════════
// CORE DATA STRUCTURE: InvertedIndex with HYBRID STORAGE
// ═══════════════════════════════════════════════════════════════════════════════
// The InvertedIndex uses a hybrid approach for maximum efficiency:
//
// Architecture:
//
//	InvertedIndex
//	├── DocBitmaps: map[string]*roaring.Bitmap  (DOCUMENT-LEVEL)
//	│   ├── "quick" → Bitmap of document IDs [1, 3, 5, ...]
//	│   ├── "brown" → Bitmap of document IDs [1, 2, 7, ...]
//	│   └── "fox"   → Bitmap of document IDs [3, 5, ...]
//	├── PostingsList: map[string]SkipList       (POSITION-LEVEL)
//	│   ├── "quick" → SkipList of exact positions
//	│   ├── "brown" → SkipList of exact positions
//	│   └── "fox"   → SkipList of exact positions
//	└── mu: mutex for thread safety
//
// Why Hybrid Storage?
//   - Roaring Bitmaps: Lightning-fast for document-level operations (AND, OR, NOT)
//     10-100x memory compression, O(1) boolean operations
//   - Skip Lists: Essential for position-based queries (phrases, proximity)
//
// This gives us the best of both worlds!
// ═══════════════════════════════════════════════════════════════════════════════
type InvertedIndex struct {
	mu sync.Mutex // Protects against concurrent access

	// DOCUMENT-LEVEL STORAGE (for fast document lookups and boolean queries)
	DocBitmaps map[string]*roaring.Bitmap // Term → Bitmap of document IDs

	// POSITION-LEVEL STORAGE (for phrase search, proximity)
	PostingsList map[string]SkipList // Term → Positions

	// DOCUMENT STATISTICS (DocStats' keys are the universe of all indexed docs)
	DocStats map[int]DocumentStats // DocID → statistics
}

// NewInvertedIndex creates a new empty inverted index with hybrid storage
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		DocBitmaps:   make(map[string]*roaring.Bitmap), // Initialize document-level bitmaps
		PostingsList: make(map[string]SkipList),        // Initialize position-level skip lists
		DocStats:     make(map[int]DocumentStats),
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// INDEXING: Building the Search Index
// ═══════════════════════════════════════════════════════════════════════════════

// Index adds a document to the inverted index
//
// STEP-BY-STEP EXAMPLE:
// ----------------------
// Input: docID=1, document="The quick brown fox"
//
// Step 1: Tokenization
//
//	analyzer.Analyze() converts to: ["quick", "brown", "fox"]
//	(Note: "The" is removed as a stop word, and words are lowercased)
//
// Step 2: For each token, record its position
//
//	Token "quick" at position 0 in document 1
//	Token "brown" at position 1 in document 1
//	Token "fox"   at position 2 in document 1
//
// Step 3: Update the index
//
//	PostingsList["quick"] ← add Position{DocID:1, Offset:0}
//	PostingsList["brown"] ← add Position{DocID:1, Offset:1}
//	PostingsList["fox"]   ← add Position{DocID:1, Offset:2}
//
// Why record positions and not just document IDs?
// - Positions let us do phrase search ("brown fox" requires consecutive positions)
// - Positions let us rank by proximity (closer words = more relevant)
//
// Thread Safety Note:
// - We lock the entire indexing operation to prevent race conditions
// - If we didn't lock, two goroutines could corrupt the data structure
func (idx *InvertedIndex) Index(docID int, document string) {
	idx.mu.Lock()         // Acquire lock - only one goroutine can index at a time
	defer idx.mu.Unlock() // Release lock when function returns (even if it panics)

	slog.Info("indexing document", slog.Int("docID", docID))

	// STEP 1: Break document into searchable tokens
	// Example: "The Quick Brown Fox!" → ["quick", "brown", "fox"]
	tokens := Analyze(document)

	// STEP 2: Initialize document statistics
	docStats := DocumentStats{
		DocID:  docID,
		Length: len(tokens),
	}

	// STEP 3: Index each token
	for position, token := range tokens {
		idx.indexToken(token, docID, position)
	}

	// STEP 4: Record the document so it's part of the "all docs" universe
	idx.DocStats[docID] = docStats
}

// indexToken adds a single token occurrence to the index (HYBRID STORAGE)
//
// HOW IT WORKS:
// -------------
// 1. Update Roaring Bitmap (document-level)
//   - Set the bit for this document ID
//   - Enables fast document lookups and boolean operations
//   - Compressed storage (10-100x smaller than skip lists alone)
//
// 2. Update Skip List (position-level)
//   - Insert exact position (docID, offset)
//   - Enables phrase search and proximity ranking
//   - Maintains all position information
//
// 3. Best of both worlds!
//   - Fast document queries via bitmaps
//   - Detailed position queries via skip lists
//
// DocumentID and Offset are stored as ints
// - The SkipList uses sentinel values (BOF=MinInt, EOF=MaxInt) to mark boundaries
// - All position values are integers (no casting needed)
func (idx *InvertedIndex) indexToken(token string, docID, position int) {
	// STEP 1: Update roaring bitmap (document-level)
	// Create bitmap if this is the first time seeing this token
	if idx.DocBitmaps[token] == nil {
		idx.DocBitmaps[token] = roaring.NewBitmap()
	}
	// Set the bit for this document ID
	idx.DocBitmaps[token].Add(uint32(docID))

	// STEP 2: Update skip list (position-level)
	// Check if this token already has a posting list
	skipList, exists := idx.getPostingList(token)
	if !exists {
		// First time seeing this token - create a new SkipList
		skipList = *NewSkipList()
	}

	// Add this occurrence to the token's posting list
	skipList.Insert(Position{
		DocumentID: docID,    // Which document?
		Offset:     position, // Where in the document?
	})

	// Save the updated SkipList back to the map
	// (In Go, maps don't update automatically when you modify a struct value)
	idx.PostingsList[token] = skipList
}

// getPostingList retrieves the posting list for a token
//
// This is a simple helper to avoid repeating map lookup code.
// Returns (skipList, true) if found, (empty, false) if not found.
func (idx *InvertedIndex) getPostingList(token string) (SkipList, bool) {
	skipList, exists := idx.PostingsList[token]
	return skipList, exists
}

// ═══════════════════════════════════════════════════════════════════════════════
// BASIC SEARCH OPERATIONS
// ═══════════════════════════════════════════════════════════════════════════════
// These four methods (First, Last, Next, Previous) form the foundation of
// all search operations. Everything else is built on top of these primitives.
//
// Think of them like iterator operations:
// - First: Go to the beginning
// - Last: Go to the end
// - Next: Move forward
// - Previous: Move backward
// ═══════════════════════════════════════════════════════════════════════════════

// First returns the first occurrence of a token in the index
//
// EXAMPLE:
// --------
// Given: "quick" appears at [Doc1:Pos1, Doc3:Pos0, Doc5:Pos2]
// First("quick") returns Doc1:Pos1 (positions are ordered by document, then offset)
//
// Use case: Start searching for a token from the beginning
func (idx *InvertedIndex) First(token string) (Position, error) {
	skipList, exists := idx.getPostingList(token)
	if !exists {
		return EOFDocument, ErrNoPostingList
	}

	// The first position is at the bottom level (level 0) of the SkipList
	// The Head node points to the first real node via Tower[0]
	return skipList.Head.Tower[0].Key, nil
}

// Last returns the last occurrence of a token in the index
//
// EXAMPLE:
// --------
// Given: "quick" appears at [Doc1:Pos1, Doc3:Pos0, Doc5:Pos2]
// Last("quick") returns Doc5:Pos2 (the latest occurrence)
//
// Use case: Search backwards from the end
func (idx *InvertedIndex) Last(token string) (Position, error) {
	skipList, exists := idx.getPostingList(token)
	if !exists {
		return EOFDocument, ErrNoPostingList
	}

	// Traverse to the end of the SkipList
	return skipList.Last(), nil
}

// Next finds the next occurrence of a token after the given position
//
// EXAMPLE:
// --------
// Given: "brown" appears at [Doc1:Pos2, Doc3:Pos1, Doc3:Pos5, Doc5:Pos0]
// Next("brown", Doc3:Pos1) returns Doc3:Pos5
// Next("brown", Doc3:Pos5) returns Doc5:Pos0
// Next("brown", Doc5:Pos0) returns EOF (no more occurrences)
//
// Special cases:
// - If currentPos is BOF (beginning of file), return First
// - If currentPos is already EOF (end of file), stay at EOF
//
// Use case: Iterate through all occurrences of a word
func (idx *InvertedIndex) Next(token string, currentPos Position) (Position, error) {
	// Special case: Starting from the beginning
	if currentPos.IsBeginning() {
		return idx.First(token)
	}

	// Special case: Already at the end
	if currentPos.IsEnd() {
		return EOFDocument, nil
	}

	// Get the posting list for this token
	skipList, exists := idx.getPostingList(token)
	if !exists {
		return EOFDocument, ErrNoPostingList
	}

	// Find the next position after currentPos in the SkipList
	// FindGreaterThan returns the smallest position > currentPos
	nextPos, _ := skipList.FindGreaterThan(currentPos)
	return nextPos, nil
}

// Previous finds the previous occurrence of a token before the given position
//
// EXAMPLE:
// --------
// Given: "brown" appears at [Doc1:Pos2, Doc3:Pos1, Doc3:Pos5, Doc5:Pos0]
// Previous("brown", Doc5:Pos0) returns Doc3:Pos5
// Previous("brown", Doc3:Pos5) returns Doc3:Pos1
// Previous("brown", Doc1:Pos2) returns BOF (no earlier occurrences)
//
// Use case: Search backwards through occurrences
func (idx *InvertedIndex) Previous(token string, currentPos Position) (Position, error) {
	// Special case: Starting from the end
	if currentPos.IsEnd() {
		return idx.Last(token)
	}

	// Special case: Already at the beginning
	if currentPos.IsBeginning() {
		return BOFDocument, nil
	}

	// Get the posting list for this token
	skipList, exists := idx.getPostingList(token)
	if !exists {
		return BOFDocument, ErrNoPostingList
	}

	// Find the previous position before currentPos in the SkipList
	// FindLessThan returns the largest position < currentPos
	prevPos, _ := skipList.FindLessThan(currentPos)
	return prevPos, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// PROXIMITY: documents where word2 follows word1 within a given distance
// ═══════════════════════════════════════════════════════════════════════════════
// wordPairProximityDocIds walks every occurrence of word1 and checks whether
// word2 appears in the same document within [1, proximity] positions after
// it. It builds on the same First/Next primitives the rest of the package
// uses, rather than introducing a second position-scanning mechanism.
func (idx *InvertedIndex) wordPairProximityDocIds(word1, word2 string, proximity int) (*roaring.Bitmap, error) {
	result := roaring.New()

	pos, err := idx.First(word1)
	if err != nil {
		return result, nil
	}

	for !pos.IsEnd() {
		next, nerr := idx.Next(word2, pos)
		if nerr == nil && !next.IsEnd() && next.GetDocumentID() == pos.GetDocumentID() {
			dist := next.GetOffset() - pos.GetOffset()
			if dist >= 1 && dist <= proximity {
				result.Add(uint32(pos.GetDocumentID()))
			}
		}

		nextPos, perr := idx.Next(word1, pos)
		if perr != nil || nextPos.IsEnd() {
			break
		}
		pos = nextPos
	}

	return result, nil
}
