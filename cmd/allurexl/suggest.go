package main

import (
	"sort"

	"github.com/ancients-collective/allurexl/internal/types"
)

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	if la < lb {
		a, b = b, a
		la, lb = lb, la
	}

	prev := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = curr
	}
	return prev[lb]
}

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// suggestIDs returns up to maxSuggestions distinct test case ids closest to
// the input by edit distance.
func suggestIDs(input string, rows []types.ReportRow) []string {
	type candidate struct {
		id   string
		dist int
	}

	maxDist := max(len(input)/2, 3)

	seen := make(map[string]bool)
	var candidates []candidate
	for _, r := range rows {
		if seen[r.TestCaseID] {
			continue
		}
		seen[r.TestCaseID] = true
		d := levenshtein(input, r.TestCaseID)
		if d <= maxDist && d > 0 {
			candidates = append(candidates, candidate{id: r.TestCaseID, dist: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})

	limit := min(len(candidates), maxSuggestions)
	result := make([]string, limit)
	for i := 0; i < limit; i++ {
		result[i] = candidates[i].id
	}
	return result
}
