package index

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVocabularyObserve(t *testing.T) {
	v := newVocabulary()
	v.Observe([]string{"red", "fox", "red"})
	v.Observe([]string{"fox", "den"})

	assert.Equal(t, 3, v.Len())

	all := v.All()
	sort.Strings(all)
	assert.Equal(t, []string{"den", "fox", "red"}, all)
}

func TestVocabularyMonotonicByDefault(t *testing.T) {
	e := New[int](testFields(), Options{})
	e.Insert(1, testDoc{Title: "hello world"})
	e.Insert(2, testDoc{Title: "hello"})

	e.Remove(1)

	// "world" has no live postings left but stays available to autocorrect.
	assert.Equal(t, 2, e.VocabularySize())
	got := e.Expand("wrld", Autocorrect{Mode: ExpandWordLength})
	assert.Equal(t, "world wrld", got)
}

func TestVocabularyPruneOnRemove(t *testing.T) {
	e := New[int](testFields(), Options{PruneOnRemove: true})
	e.Insert(1, testDoc{Title: "hello world"})
	e.Insert(2, testDoc{Title: "hello"})

	e.Remove(1)

	// "world" is gone with its last posting; "hello" survives via document 2.
	assert.Equal(t, 1, e.VocabularySize())
	assert.Equal(t, "wrld", e.Expand("wrld", Autocorrect{Mode: ExpandWordLength}))
	assert.Equal(t, "hello helo", e.Expand("helo", Autocorrect{Mode: ExpandWordLength}))
}
