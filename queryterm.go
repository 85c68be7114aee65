package blaze

import (
	"sort"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY TERMS: turning raw query text into derivation sets
// ═══════════════════════════════════════════════════════════════════════════════
// A query is tokenized the same way documents are (see analyzer.go), but
// without stripping stop words: a stop word typed by the user is still a term
// the matching strategy may need to reason about. For each resulting token we
// build a WordDerivations set describing every way that token is allowed to
// match the index: its exact form, typo variants within the index's
// vocabulary, an as-prefix match (last word only), a synonym expansion, and
// an optional split into two words. Adjacent tokens also contribute a
// concatenation candidate, modeled as its own term spanning both positions.
// ═══════════════════════════════════════════════════════════════════════════════

// QueryConfig controls how aggressively a query is expanded into derivations,
// mirroring the Default-constructor shape of AnalyzerConfig.
type QueryConfig struct {
	MinWordLenOneTypo      int
	MinWordLenTwoTypos     int
	EnablePrefixForLastWord bool
	EnableConcat           bool
	EnableSplit            bool
	Synonyms               map[string][][]string
}

// DefaultQueryConfig returns the thresholds used by a plain, unconfigured
// search: one typo allowed past 5 characters, two past 9, prefix matching on
// the final word, and both split and concat derivations enabled.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		MinWordLenOneTypo:       5,
		MinWordLenTwoTypos:      9,
		EnablePrefixForLastWord: true,
		EnableConcat:            true,
		EnableSplit:             true,
	}
}

// Phrase is an ordered sequence of word handles that must occur consecutively.
type Phrase struct {
	Words []Handle
}

func phraseKey(p Phrase) string {
	var sb strings.Builder
	for i, w := range p.Words {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(handleKey(w))
	}
	return sb.String()
}

func handleKey(h Handle) string {
	// Handles are small dense integers; a fixed-width hex string keeps the
	// key comparable without pulling in strconv's more general formatting.
	const hexDigits = "0123456789abcdef"
	buf := [8]byte{}
	v := uint32(h)
	for i := 7; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf[:])
}

// WordDerivations is every way a single query term is allowed to match the
// index, resolved lazily (see docsOfTerm in resolver.go).
type WordDerivations struct {
	Original  Handle
	OneTypo   []Handle
	TwoTypo   []Handle
	HasPrefix bool
	HasSplit  bool
	Split     Handle // phrase handle, valid iff HasSplit
	Synonyms  []Handle
}

func wordDerivationsKey(d WordDerivations) string {
	var sb strings.Builder
	sb.WriteString(handleKey(d.Original))
	sb.WriteByte('|')
	for _, h := range d.OneTypo {
		sb.WriteString(handleKey(h))
	}
	sb.WriteByte('|')
	for _, h := range d.TwoTypo {
		sb.WriteString(handleKey(h))
	}
	sb.WriteByte('|')
	if d.HasPrefix {
		sb.WriteByte('p')
	}
	sb.WriteByte('|')
	if d.HasSplit {
		sb.WriteString(handleKey(d.Split))
	}
	sb.WriteByte('|')
	for _, h := range d.Synonyms {
		sb.WriteString(handleKey(h))
	}
	return sb.String()
}

// QueryTerm is a node's matching condition together with the query-text
// position range it occupies. Most terms occupy a single position;
// concatenation terms span two.
type QueryTerm struct {
	Derivations Handle
	StartPos    int
	EndPos      int
}

// ParseQueryTerms tokenizes query text (preserving stop words) and builds one
// QueryTerm per token position, plus one extra concatenation term for every
// adjacent pair when enabled.
func ParseQueryTerms(ctx *SearchContext, query string) ([]QueryTerm, error) {
	tokens := AnalyzeWithConfig(query, AnalyzerConfig{
		MinTokenLength:  1,
		EnableStemming:  true,
		EnableStopwords: false,
	})
	if len(tokens) == 0 {
		return nil, &UserInputError{Err: ErrEmptyQuery}
	}

	n := len(tokens)
	terms := make([]QueryTerm, 0, 2*n)

	for i, tok := range tokens {
		wordHandle := ctx.WordInterner.Intern(tok)

		var oneTypo, twoTypo []Handle
		runeLen := len([]rune(tok))
		if runeLen > ctx.Config.MinWordLenOneTypo {
			for _, v := range ctx.Index.FindTypoVariants(tok, 1) {
				if v == tok {
					continue
				}
				oneTypo = append(oneTypo, ctx.WordInterner.Intern(v))
			}
		}
		if runeLen > ctx.Config.MinWordLenTwoTypos {
			for _, v := range ctx.Index.FindTypoVariants(tok, 2) {
				if v == tok || containsWord(oneTypo, ctx.WordInterner, v) {
					continue
				}
				twoTypo = append(twoTypo, ctx.WordInterner.Intern(v))
			}
		}

		hasPrefix := ctx.Config.EnablePrefixForLastWord && i == n-1

		hasSplit := false
		var splitHandle Handle
		if ctx.Config.EnableSplit {
			if left, right, ok := splitWord(tok); ok {
				lh := ctx.WordInterner.Intern(left)
				rh := ctx.WordInterner.Intern(right)
				splitHandle = ctx.PhraseInterner.Intern(Phrase{Words: []Handle{lh, rh}})
				hasSplit = true
			}
		}

		var synonyms []Handle
		if phrases, ok := ctx.Config.Synonyms[tok]; ok {
			for _, words := range phrases {
				handles := make([]Handle, len(words))
				for j, w := range words {
					handles[j] = ctx.WordInterner.Intern(w)
				}
				synonyms = append(synonyms, ctx.PhraseInterner.Intern(Phrase{Words: handles}))
			}
		}

		deriv := WordDerivations{
			Original:  wordHandle,
			OneTypo:   oneTypo,
			TwoTypo:   twoTypo,
			HasPrefix: hasPrefix,
			HasSplit:  hasSplit,
			Split:     splitHandle,
			Synonyms:  synonyms,
		}
		dh := ctx.DerivationsInterner.Intern(deriv)
		terms = append(terms, QueryTerm{Derivations: dh, StartPos: i, EndPos: i})
	}

	if ctx.Config.EnableConcat {
		for i := 0; i < n-1; i++ {
			concat := tokens[i] + tokens[i+1]
			stemmed := concat
			if stemmedWords := stemmerFilter([]string{concat}); len(stemmedWords) == 1 {
				stemmed = stemmedWords[0]
			}
			ch := ctx.WordInterner.Intern(stemmed)
			dh := ctx.DerivationsInterner.Intern(WordDerivations{Original: ch})
			terms = append(terms, QueryTerm{Derivations: dh, StartPos: i, EndPos: i + 1})
		}
	}

	sort.Slice(terms, func(a, b int) bool {
		if terms[a].StartPos != terms[b].StartPos {
			return terms[a].StartPos < terms[b].StartPos
		}
		return terms[a].EndPos < terms[b].EndPos
	})

	return terms, nil
}

func containsWord(handles []Handle, interner *Interner[string], word string) bool {
	for _, h := range handles {
		if interner.Get(h) == word {
			return true
		}
	}
	return false
}

// splitWord proposes a single two-word split at the midpoint of tok, the way
// a compound word like "outdoor" might have been mistyped without a space.
// Only words long enough for both halves to plausibly be words on their own
// are split.
func splitWord(tok string) (left, right string, ok bool) {
	runes := []rune(tok)
	if len(runes) < 4 {
		return "", "", false
	}
	mid := len(runes) / 2
	return string(runes[:mid]), string(runes[mid:]), true
}

// FindTypoVariants scans the index vocabulary for words within the given
// Levenshtein distance of word. It is a brute-force stand-in for the FST-based
// typo search a larger index would use; fine for the vocabulary sizes this
// package targets.
func (idx *InvertedIndex) FindTypoVariants(word string, distance int) []string {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var out []string
	for candidate := range idx.DocBitmaps {
		if candidate == word {
			continue
		}
		if levenshteinWithin(word, candidate, distance) {
			out = append(out, candidate)
		}
	}
	sort.Strings(out)
	return out
}

// levenshteinWithin reports whether the edit distance between a and b is at
// most maxDist, without computing the full distance once a row proves it's
// already exceeded everywhere.
func levenshteinWithin(a, b string, maxDist int) bool {
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > maxDist {
		return false
	}
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
			if m < rowMin {
				rowMin = m
			}
		}
		if rowMin > maxDist {
			return false
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)] <= maxDist
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
