package index

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBoosts = map[string]float64{"title": 1.0, "body": 0.5}

func TestEngineInsertAndQuery(t *testing.T) {
	e := New[int](testFields(), Options{})

	t.Run("empty engine returns nothing", func(t *testing.T) {
		assert.Nil(t, e.Query("hello", testBoosts))
	})

	e.Insert(1, testDoc{Title: "hello world"})

	t.Run("exact token scores positive", func(t *testing.T) {
		hits := e.Query("hello", testBoosts)
		require.Len(t, hits, 1)
		assert.Equal(t, 1, hits[0].ID)
		assert.Greater(t, hits[0].Score, 0.0)
	})

	t.Run("unknown token scores nothing", func(t *testing.T) {
		assert.Empty(t, e.Query("goodbye", testBoosts))
	})

	t.Run("counters track state", func(t *testing.T) {
		assert.Equal(t, 1, e.DocCount())
		assert.Equal(t, 2, e.VocabularySize())
	})
}

func TestEngineFieldBoosts(t *testing.T) {
	e := New[int](testFields(), Options{})
	e.Insert(1, testDoc{Title: "fox", Body: "fox"})
	e.Insert(2, testDoc{Title: "cat", Body: "fox"})

	hits := e.Query("fox", testBoosts)
	require.Len(t, hits, 2)

	byID := make(map[int]float64, len(hits))
	for _, h := range hits {
		byID[h.ID] = h.Score
	}
	// Document 1 holds the token in both fields; the boosted title match must
	// put it strictly ahead of the body-only match.
	assert.Greater(t, byID[1], byID[2])
	assert.Greater(t, byID[2], 0.0)
}

func TestEngineZeroBoostExcludesField(t *testing.T) {
	e := New[int](testFields(), Options{})
	e.Insert(1, testDoc{Title: "cat", Body: "fox"})

	hits := e.Query("fox", map[string]float64{"title": 1.0})
	assert.Empty(t, hits, "field without a boost entry must not contribute")
}

func TestEngineRemove(t *testing.T) {
	e := New[int](testFields(), Options{})
	e.Insert(1, testDoc{Title: "hello world"})
	e.Insert(2, testDoc{Title: "hello there"})

	e.Remove(1)

	t.Run("removed document is unreachable", func(t *testing.T) {
		for _, h := range e.Query("hello world", testBoosts) {
			assert.NotEqual(t, 1, h.ID)
		}
		assert.Empty(t, e.Query("world", testBoosts))
	})

	t.Run("surviving document still matches", func(t *testing.T) {
		hits := e.Query("there", testBoosts)
		require.Len(t, hits, 1)
		assert.Equal(t, 2, hits[0].ID)
	})

	t.Run("counters shrink", func(t *testing.T) {
		assert.Equal(t, 1, e.DocCount())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		e.Remove(99)
		e.Remove(1)
		assert.Equal(t, 1, e.DocCount())
	})
}

func TestEngineReinsertAfterRemove(t *testing.T) {
	e := New[int](testFields(), Options{})
	e.Insert(1, testDoc{Title: "old title"})
	e.Remove(1)
	e.Insert(1, testDoc{Title: "new title"})

	assert.Empty(t, e.Query("old", testBoosts))
	hits := e.Query("new", testBoosts)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].ID)
}

func TestEngineDeterministicScores(t *testing.T) {
	build := func() *Engine[int, testDoc] {
		e := New[int](testFields(), Options{})
		e.Insert(1, testDoc{Title: "red fox", Body: "a quick red fox"})
		e.Insert(2, testDoc{Title: "lazy dog", Body: "the dog sleeps"})
		e.Insert(3, testDoc{Title: "red dog"})
		return e
	}

	scores := func(e *Engine[int, testDoc]) map[int]float64 {
		out := make(map[int]float64)
		for _, h := range e.Query("red dog", testBoosts) {
			out[h.ID] = h.Score
		}
		return out
	}

	assert.Equal(t, scores(build()), scores(build()),
		"identical corpora must score identically")
}

// Readers racing a writer must see each document fully indexed or not at all,
// never a partial set of its postings. Run with -race.
func TestEngineConcurrentAccess(t *testing.T) {
	e := New[int](testFields(), Options{})
	e.Insert(0, testDoc{Title: "stable anchor"})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 1; i <= 200; i++ {
			e.Insert(i, testDoc{Title: fmt.Sprintf("churn doc %d", i), Body: "anchor"})
			e.Remove(i)
		}
	}()

	errs := make(chan string, 1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			seen := false
			for _, h := range e.Query("anchor", testBoosts) {
				if h.Score <= 0 {
					select {
					case errs <- fmt.Sprintf("non-positive score %f for doc %d", h.Score, h.ID):
					default:
					}
				}
				if h.ID == 0 {
					seen = true
				}
			}
			if !seen {
				select {
				case errs <- "stable document missing from results":
				default:
				}
			}
		}
	}()

	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestEngineQueryOrderUnspecified(t *testing.T) {
	e := New[int](testFields(), Options{})
	for i := 1; i <= 5; i++ {
		e.Insert(i, testDoc{Title: "same text"})
	}

	hits := e.Query("same", testBoosts)
	require.Len(t, hits, 5)

	ids := make([]int, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	sort.Ints(ids)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)
}
