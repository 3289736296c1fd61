package diagnostic

import (
	"fmt"
	"strings"
)

// Levenshtein computes the edit distance between two strings: the minimum
// number of single-character insertions, deletions or substitutions
// turning one into the other.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	// keep a the shorter string, two rows are enough
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// Suggest returns the candidate closest to name, compared case-insensitively.
// Candidates further than a third of the name's length are not suggested.
func Suggest(name string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	lower := strings.ToLower(name)

	for _, c := range candidates {
		d := Levenshtein(lower, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}

	if bestDist < 0 || bestDist > max(1, len(name)/3) {
		return "", false
	}

	return best, true
}

// DidYouMean appends a suggestion to a message when one is close enough.
func DidYouMean(msg, name string, candidates []string) string {
	if s, ok := Suggest(name, candidates); ok && s != name {
		return fmt.Sprintf("%s; did you mean %q?", msg, s)
	}

	return msg
}
