package textsim

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   float64
	}{
		{s1: "machine learning", s2: "machine learning", want: 1.0},
		{s1: "kitten", s2: "sitting", want: 1.0 - 3.0/7.0},
		{s1: "", s2: "abc", want: 0.0},
		{s1: "", s2: "", want: 1.0},
		{s1: "café", s2: "cafe", want: 0.75},
	}

	for _, tt := range tests {
		got := Similarity(tt.s1, tt.s2)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{s1: "", s2: "", want: 0},
		{s1: "abc", s2: "", want: 3},
		{s1: "flaw", s2: "lawn", want: 2},
		{s1: "gumbo", s2: "gambol", want: 2},
		{s1: "日本語", s2: "日本", want: 1},
	}

	for _, tt := range tests {
		if got := Levenshtein([]rune(tt.s1), []rune(tt.s2)); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "  The Great   Gatsby! ", want: "the great gatsby"},
		{in: "F. Scott Fitzgerald", want: "f scott fitzgerald"},
		{in: "São Paulo, Brazil", want: "são paulo brazil"},
		{in: "$100", want: "100"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
