// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import "strings"

// normalizeText collapses runs of whitespace to single spaces and trims
// the ends, so quote matching is insensitive to line wrapping.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ratio computes a character-level similarity in [0,1] between two
// strings using the Ratcliff/Obershelp measure: twice the number of
// matching characters over the total length. Identical strings score
// 1.0, disjoint strings 0.0.
func ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	m := matchingChars(a, b)
	return 2.0 * float64(m) / float64(len(a)+len(b))
}

// matchingChars counts characters in the longest matching block plus,
// recursively, the matches to the left and right of it.
func matchingChars(a, b string) int {
	ai, bi, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingChars(a[:ai], b[:bi]) + matchingChars(a[ai+size:], b[bi+size:])
}

// longestBlock finds the longest common substring of a and b, returning
// its start offsets and length. Ties resolve to the earliest match in a.
func longestBlock(a, b string) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			cur[j+1] = prev[j] + 1
			if cur[j+1] > size {
				size = cur[j+1]
				ai = i - size + 1
				bi = j - size + 1
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return ai, bi, size
}
