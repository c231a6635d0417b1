package index

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"both empty", "", "", 0},
		{"a empty", "", "hello", 5},
		{"b empty", "hello", "", 5},
		{"identical", "hello", "hello", 0},
		{"simple substitution", "kitten", "sitten", 1},
		{"simple insertion", "apple", "applye", 1},
		{"simple deletion", "banana", "banna", 1},
		{"multiple edits", "saturday", "sunday", 3},
		{"symmetric", "applye", "apple", 1},
		{"longer strings", "algorithm", "altruistic", 6},
		{"unicode same length", "cliché", "cliche", 1},
		{"unicode diff length", "résumé", "resume", 2},
		{"misspelled greeting", "helo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Levenshtein(tt.a, tt.b); got != tt.want {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestWithinDistance(t *testing.T) {
	tests := []struct {
		name  string
		a     string
		b     string
		limit int
		want  bool
	}{
		{"exact match limit zero", "fox", "fox", 0, true},
		{"one edit limit zero", "fox", "box", 0, false},
		{"one edit limit one", "helo", "hello", 1, true},
		{"two edits limit one", "serc", "search", 1, false},
		{"two edits limit two", "serc", "search", 2, true},
		{"length difference prefilter", "a", "abcdef", 2, false},
		{"negative limit", "a", "a", -1, false},
		{"empty within limit", "", "ab", 2, true},
		{"empty beyond limit", "", "abc", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withinDistance(tt.a, tt.b, tt.limit); got != tt.want {
				t.Errorf("withinDistance(%q, %q, %d) = %v, want %v", tt.a, tt.b, tt.limit, got, tt.want)
			}
		})
	}
}

// withinDistance must agree with the full distance computation.
func TestWithinDistanceMatchesLevenshtein(t *testing.T) {
	words := []string{"", "a", "ab", "apple", "apply", "banana", "bandana", "search", "serch", "hello", "helo"}
	for _, a := range words {
		for _, b := range words {
			dist := Levenshtein(a, b)
			for limit := 0; limit <= 4; limit++ {
				if got := withinDistance(a, b, limit); got != (dist <= limit) {
					t.Errorf("withinDistance(%q, %q, %d) = %v, but Levenshtein = %d", a, b, limit, got, dist)
				}
			}
		}
	}
}
