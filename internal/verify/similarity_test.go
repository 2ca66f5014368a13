package verify

import (
	"math"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"  leading and trailing  ", "leading and trailing"},
		{"runs\t\tof\n\nwhitespace   here", "runs of whitespace here"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "cache block size", "cache block size", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "cache", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"partial", "abcd", "bcd", 2.0 * 3.0 / 7.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ratio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatio_Symmetry(t *testing.T) {
	a := "the size of a cache block"
	b := "the size of the cache block"
	if ratio(a, b) != ratio(b, a) {
		t.Errorf("ratio is not symmetric: %f vs %f", ratio(a, b), ratio(b, a))
	}
}

func TestRatio_NearMatchScoresHigh(t *testing.T) {
	a := "the capacity and organization of a cache are implementation-specific"
	b := "the capacity and organization of a cache are both implementation-specific"
	if got := ratio(a, b); got < 0.9 {
		t.Errorf("ratio = %f, want >= 0.9 for a near match", got)
	}
}
