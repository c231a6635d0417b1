// Package index implements a mutable in-memory inverted index with BM25
// relevance scoring and edit-distance query expansion. It holds no
// persistent state: callers rebuild it from their store of record at
// startup.
package index

import (
	"sync"

	"github.com/findmepls/catalog/internal/tokenizer"
)

// FieldExtractor returns the text values a document exposes for one named
// field. Extractors must be pure: the engine calls them once per field per
// Insert.
type FieldExtractor[D any] func(doc D) []string

// Field binds a field name to its extractor. The field set is fixed when the
// engine is constructed.
type Field[D any] struct {
	Name    string
	Extract FieldExtractor[D]
}

// Options configures engine behavior that the caller must pick explicitly.
type Options struct {
	// PruneOnRemove drops vocabulary tokens once the last posting
	// referencing them is removed. Off by default: the vocabulary then only
	// grows, and autocorrect keeps suggesting terms from deleted documents.
	PruneOnRemove bool
}

// Hit pairs a document key with its relevance score.
type Hit[K comparable] struct {
	ID    K
	Score float64
}

// postings for one (token, field): document key to term frequency.
type fieldPostings[K comparable] map[K]int

// Engine is a mutable inverted index over documents of type D keyed by K.
//
// One reader/writer lock guards all state: any number of Query and Expand
// calls run concurrently, Insert and Remove are exclusive, and a reader
// observes either none or all of a mutation. The lock is held only for the
// in-memory update — never across I/O.
//
// The engine does not validate against duplicate inserts. Inserting an ID
// that is already live produces duplicate postings; callers must Remove the
// ID first. Changing a document's content likewise means Remove then Insert.
type Engine[K comparable, D any] struct {
	mu     sync.RWMutex
	fields []Field[D]
	opts   Options

	// token -> field name -> document -> term frequency
	postings map[string]map[string]fieldPostings[K]
	// field name -> document -> token count, for length normalization
	fieldLens map[string]map[K]int
	// field name -> sum of token counts over all live documents
	fieldTotals map[string]int

	docs  map[K]struct{}
	vocab *Vocabulary
}

// New constructs an empty engine indexing the given fields.
func New[K comparable, D any](fields []Field[D], opts Options) *Engine[K, D] {
	e := &Engine[K, D]{
		fields:      fields,
		opts:        opts,
		postings:    make(map[string]map[string]fieldPostings[K]),
		fieldLens:   make(map[string]map[K]int),
		fieldTotals: make(map[string]int),
		docs:        make(map[K]struct{}),
		vocab:       newVocabulary(),
	}
	for _, f := range fields {
		e.fieldLens[f.Name] = make(map[K]int)
	}
	return e
}

// Insert extracts and tokenizes every field of doc and records its postings,
// then feeds the tokens to the vocabulary. See the type comment for the
// duplicate-insert caller obligation.
func (e *Engine[K, D]) Insert(id K, doc D) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var observed []string
	for _, f := range e.fields {
		count := 0
		for _, value := range f.Extract(doc) {
			for _, tok := range tokenizer.Tokenize(value) {
				count++
				byField, ok := e.postings[tok]
				if !ok {
					byField = make(map[string]fieldPostings[K])
					e.postings[tok] = byField
				}
				byDoc, ok := byField[f.Name]
				if !ok {
					byDoc = make(fieldPostings[K])
					byField[f.Name] = byDoc
				}
				byDoc[id]++
				observed = append(observed, tok)
			}
		}
		e.fieldLens[f.Name][id] = count
		e.fieldTotals[f.Name] += count
	}
	e.docs[id] = struct{}{}
	e.vocab.Observe(observed)
}

// Remove deletes every posting referencing id. Removing an id that was never
// inserted (or already removed) is a no-op.
func (e *Engine[K, D]) Remove(id K) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, live := e.docs[id]; !live {
		return
	}

	for tok, byField := range e.postings {
		for fname, byDoc := range byField {
			if _, ok := byDoc[id]; ok {
				delete(byDoc, id)
				if len(byDoc) == 0 {
					delete(byField, fname)
				}
			}
		}
		if len(byField) == 0 {
			delete(e.postings, tok)
			if e.opts.PruneOnRemove {
				e.vocab.forget(tok)
			}
		}
	}

	for fname, byDoc := range e.fieldLens {
		e.fieldTotals[fname] -= byDoc[id]
		delete(byDoc, id)
	}
	delete(e.docs, id)
}

// Query scores every document sharing at least one token with text. Boosts
// maps field names to multiplicative weights; a field without an entry (or
// with weight 0) contributes nothing. A document's score is
//
//	sum over fields f, query tokens t of boosts[f] * idf(t) * bm25TF(t, f, doc)
//
// The result order is unspecified; callers sort.
func (e *Engine[K, D]) Query(text string, boosts map[string]float64) []Hit[K] {
	e.mu.RLock()
	defer e.mu.RUnlock()

	totalDocs := len(e.docs)
	if totalDocs == 0 {
		return nil
	}

	scores := make(map[K]float64)
	for _, tok := range tokenizer.Tokenize(text) {
		byField, ok := e.postings[tok]
		if !ok {
			continue
		}
		tokIDF := idf(totalDocs, docFrequency(byField))
		for fname, byDoc := range byField {
			boost := boosts[fname]
			if boost == 0 {
				continue
			}
			avgLen := float64(e.fieldTotals[fname]) / float64(totalDocs)
			for docID, tf := range byDoc {
				fieldLen := float64(e.fieldLens[fname][docID])
				scores[docID] += boost * tokIDF * bm25TF(float64(tf), fieldLen, avgLen)
			}
		}
	}

	hits := make([]Hit[K], 0, len(scores))
	for id, score := range scores {
		hits = append(hits, Hit[K]{ID: id, Score: score})
	}
	return hits
}

// DocCount returns the number of live documents.
func (e *Engine[K, D]) DocCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

// VocabularySize returns the number of distinct tokens ever observed (less
// any pruned ones).
func (e *Engine[K, D]) VocabularySize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vocab.Len()
}

// docFrequency counts the distinct documents holding a token in any field.
func docFrequency[K comparable](byField map[string]fieldPostings[K]) int {
	if len(byField) == 1 {
		for _, byDoc := range byField {
			return len(byDoc)
		}
	}
	unique := make(map[K]struct{})
	for _, byDoc := range byField {
		for id := range byDoc {
			unique[id] = struct{}{}
		}
	}
	return len(unique)
}
