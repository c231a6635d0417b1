// Package tokenizer splits raw text into the tokens the index operates on.
package tokenizer

import "strings"

// Tokenize splits text on single spaces, preserving token order.
// No case folding, stemming, or stop-word removal is applied: the index
// compares tokens byte-for-byte. Repeated spaces yield empty tokens, which
// score as zero-width matches (an empty token is never indexed as content of
// a non-empty word, so it simply finds nothing). Empty input yields no
// tokens.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}
