package score

import (
	"slices"
)

// Insert adds score to entries, keeping them descending and at most max long
// Non-positive scores are discarded and entries is returned unchanged
// The input slice is never modified
func Insert(entries []int, score, max int) []int {
	if score <= 0 {
		return entries
	}
	out := make([]int, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, score)
	return sortTrim(out, max)
}

// Sanitize drops non-positive values, sorts descending and truncates to max
// Anything read back from storage goes through here
func Sanitize(raw []int, max int) []int {
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if v > 0 {
			out = append(out, v)
		}
	}
	return sortTrim(out, max)
}

func sortTrim(s []int, max int) []int {
	slices.SortFunc(s, func(a, b int) int { return b - a })
	if max >= 0 && len(s) > max {
		s = s[:max]
	}
	return s
}
