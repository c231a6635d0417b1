package index

import "testing"

func TestIDF(t *testing.T) {
	t.Run("positive when every document has the term", func(t *testing.T) {
		if got := idf(1, 1); got <= 0 {
			t.Errorf("idf(1, 1) = %f, want > 0", got)
		}
	})

	t.Run("rarer terms weigh more", func(t *testing.T) {
		rare := idf(10, 1)
		common := idf(10, 8)
		if rare <= common {
			t.Errorf("idf(10, 1) = %f should exceed idf(10, 8) = %f", rare, common)
		}
	})

	t.Run("zero for unseen terms and empty corpora", func(t *testing.T) {
		if got := idf(10, 0); got != 0 {
			t.Errorf("idf(10, 0) = %f, want 0", got)
		}
		if got := idf(0, 0); got != 0 {
			t.Errorf("idf(0, 0) = %f, want 0", got)
		}
	})
}

func TestBM25TF(t *testing.T) {
	t.Run("zero frequency scores zero", func(t *testing.T) {
		if got := bm25TF(0, 5, 5); got != 0 {
			t.Errorf("bm25TF(0, ...) = %f, want 0", got)
		}
	})

	t.Run("saturates with term frequency", func(t *testing.T) {
		one := bm25TF(1, 10, 10)
		five := bm25TF(5, 10, 10)
		fifty := bm25TF(50, 10, 10)
		if !(one < five && five < fifty) {
			t.Errorf("tf component should grow with frequency: %f, %f, %f", one, five, fifty)
		}
		// Growth flattens out: the step from 5 to 50 adds less than 1 to 5
		// scaled by the frequency ratio would suggest.
		if fifty >= five*2 {
			t.Errorf("tf component should saturate, got %f vs %f", fifty, five)
		}
	})

	t.Run("longer fields score lower", func(t *testing.T) {
		short := bm25TF(1, 2, 10)
		long := bm25TF(1, 50, 10)
		if short <= long {
			t.Errorf("short field %f should outscore long field %f", short, long)
		}
	})

	t.Run("tolerates zero average length", func(t *testing.T) {
		if got := bm25TF(1, 0, 0); got <= 0 {
			t.Errorf("bm25TF with zero average = %f, want > 0", got)
		}
	})
}
