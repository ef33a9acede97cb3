package search

import (
	"cmp"
	"slices"
)

// Rank orders candidates by score descending, ties broken by the order the
// sequential record -> segment -> key -> IV traversal would have discovered
// them, and truncates to topN. The result is deterministic regardless of how
// many workers produced the input. An empty result is a legitimate outcome.
func Rank(cands []Candidate, topN int) []Candidate {
	ranked := slices.Clone(cands)
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.seq, b.seq)
	})
	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
