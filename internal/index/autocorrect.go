package index

import (
	"sort"
	"strings"

	"github.com/findmepls/catalog/internal/tokenizer"
)

// ExpansionMode selects how the edit-distance budget for each query token is
// chosen during autocorrect expansion.
type ExpansionMode int

const (
	// ExpandOff disables expansion: each token is its only candidate.
	ExpandOff ExpansionMode = iota
	// ExpandWordLength derives the budget from the token's length via
	// EditDistanceBudget.
	ExpandWordLength
	// ExpandFixed applies Autocorrect.MaxDistance to every token.
	ExpandFixed
	// ExpandUnlimited admits the entire vocabulary as candidates for every
	// token.
	ExpandUnlimited
)

// Autocorrect is the expansion policy applied to a query before scoring.
type Autocorrect struct {
	Mode        ExpansionMode
	MaxDistance int // edits tolerated per token under ExpandFixed
}

// EditDistanceBudget maps a token length (in runes) to the number of edits
// tolerated when matching it against the vocabulary.
func EditDistanceBudget(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 5:
		return 1
	case length <= 7:
		return 2
	case length <= 10:
		return 3
	default:
		return 4
	}
}

// Expand rewrites query so every token is accompanied by the vocabulary terms
// within its edit-distance budget. Candidates appear in token order; within
// one token they are sorted, and the token itself closes its group, so the
// expanded text is deterministic for a given corpus.
//
// Each query token is compared against every vocabulary term — a full linear
// scan, O(|vocabulary| * token length) per token. That is what guarantees
// candidate completeness; it is fine for small and medium corpora but does
// not scale to very large vocabularies.
func (e *Engine[K, D]) Expand(query string, policy Autocorrect) string {
	if policy.Mode == ExpandOff {
		return query
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []string
	for _, tok := range tokenizer.Tokenize(query) {
		out = append(out, e.candidatesLocked(tok, policy)...)
	}
	return strings.Join(out, " ")
}

// candidatesLocked returns the candidate set for one query token, sorted,
// with the token itself appended last. Callers must hold at least the read
// lock.
func (e *Engine[K, D]) candidatesLocked(tok string, policy Autocorrect) []string {
	var matches []string

	switch policy.Mode {
	case ExpandUnlimited:
		for term := range e.vocab.tokens {
			if term != tok {
				matches = append(matches, term)
			}
		}
	case ExpandWordLength, ExpandFixed:
		budget := policy.MaxDistance
		if policy.Mode == ExpandWordLength {
			budget = EditDistanceBudget(len([]rune(tok)))
		}
		if budget > 0 {
			for term := range e.vocab.tokens {
				if term != tok && withinDistance(tok, term, budget) {
					matches = append(matches, term)
				}
			}
		}
	}

	sort.Strings(matches)
	return append(matches, tok)
}
