package match

import (
	"sort"
	"strings"
)

// Levenshtein computes the edit distance between two strings, counted in runes.
//
// Time complexity: O(len(a) * len(b))
// Space complexity: O(min(len(a), len(b))).
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}

	if len(rb) == 0 {
		return len(ra)
	}

	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// Similarity returns 1 - distance/maxLen, compared case-insensitively.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)

	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

// DefaultSuggestionThreshold is the minimum similarity for a suggestion.
const DefaultSuggestionThreshold = 0.5

// Suggest returns up to n candidates whose similarity to name is at least
// threshold, best first. Ties are broken alphabetically for determinism.
func Suggest(name string, candidates []string, n int, threshold float64) []string {
	type scored struct {
		name  string
		score float64
	}

	var ranked []scored

	for _, c := range candidates {
		if c == name {
			continue
		}

		if s := Similarity(name, c); s >= threshold {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].name < ranked[j].name
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	result := make([]string, len(ranked))
	for i, r := range ranked {
		result[i] = r.name
	}

	return result
}
