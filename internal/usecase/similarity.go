package usecase

import "strings"

// Similarity returns a text similarity ratio in [0,1]. It is
// case-insensitive and symmetric: 1.0 for strings identical after case
// folding, 0.0 for wholly disjoint strings. The score is an alignment-based
// ratio, 2*LCS(a,b) / (len(a)+len(b)), so reordered-but-overlapping phrases
// ("Pyrex 401 Blue Mixing Bowl" vs "Pyrex 401 Primary Blue Bowl") still
// score high where a plain edit distance would not.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	return 2.0 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength computes the longest-common-subsequence length between two rune
// slices. Uses two rows instead of the full matrix for space efficiency.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
