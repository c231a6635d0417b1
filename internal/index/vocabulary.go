package index

// Vocabulary accumulates every distinct token ever inserted into an engine.
// It seeds autocorrect expansion: candidate terms for a misspelled query
// token come from here.
//
// By default the set is monotonic — removing a document does not shrink it,
// so expansions can keep suggesting terms from deleted documents. Engines
// constructed with Options.PruneOnRemove drop a token once the last posting
// referencing it is gone. The vocabulary is owned by an Engine and accessed
// under its lock; it is not safe for standalone concurrent use.
type Vocabulary struct {
	tokens map[string]struct{}
}

func newVocabulary() *Vocabulary {
	return &Vocabulary{tokens: make(map[string]struct{})}
}

// Observe records every distinct token from an insert call.
func (v *Vocabulary) Observe(tokens []string) {
	for _, t := range tokens {
		v.tokens[t] = struct{}{}
	}
}

// All returns the known tokens in unspecified order.
func (v *Vocabulary) All() []string {
	out := make([]string, 0, len(v.tokens))
	for t := range v.tokens {
		out = append(out, t)
	}
	return out
}

// Len returns the number of distinct tokens observed.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

func (v *Vocabulary) forget(token string) {
	delete(v.tokens, token)
}
