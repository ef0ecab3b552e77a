package engine

import (
	"regexp"
	"strings"
)

// matchThreshold accepts single-character typos in a full-length mantra
// while rejecting substantively different text.
const matchThreshold = 0.95

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// Matches reports whether a response counts as the expected mantra:
// case-insensitive equality, or, after stripping punctuation and case,
// Ratcliff-Obershelp sequence similarity at or above the threshold.
func Matches(response, expected string) bool {
	response = strings.TrimSpace(response)
	expected = strings.TrimSpace(expected)
	if strings.EqualFold(response, expected) {
		return true
	}
	a := normalize(response)
	b := normalize(expected)
	if a == b {
		return true
	}
	return similarity(a, b) >= matchThreshold
}

func normalize(s string) string {
	return strings.ToLower(nonWordRe.ReplaceAllString(s, ""))
}

// similarity is the Ratcliff-Obershelp ratio: twice the total length of
// recursively matched common substrings over the combined length.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchedLen(ra, rb)) / float64(total)
}

// matchedLen sums the longest common substring and, recursively, the
// matches in the unmatched regions on either side of it.
func matchedLen(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchedLen(a[:ai], b[:bi]) +
		matchedLen(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	// One row of the classic DP table at a time.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
