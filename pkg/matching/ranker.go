package matching

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// rankedCandidate pairs a candidate with its precomputed ranking facts.
type rankedCandidate[T any] struct {
	item     T
	name     string
	contains bool
	distance float64
	length   int
}

// RankCandidates filters and orders candidates against a query.
//
// A candidate is included iff its lowercased name contains the lowercased
// query, or its normalized edit distance to the query is at or below
// maxDistance. Order: contains-match first, then ascending distance, then
// ascending name length, then name alphabetically (case-insensitive). The
// result is truncated to maxResults.
//
// An empty query skips filtering entirely and returns the first maxResults
// candidates in alphabetical order.
func RankCandidates[T any](scorer *Scorer, candidates []T, query string, nameOf func(T) string, maxResults int, maxDistance float64) []T {
	if maxResults <= 0 {
		return nil
	}

	loweredQuery := strings.ToLower(query)

	if loweredQuery == "" {
		sorted := make([]T, len(candidates))
		copy(sorted, candidates)
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(nameOf(sorted[i])) < strings.ToLower(nameOf(sorted[j]))
		})
		if len(sorted) > maxResults {
			sorted = sorted[:maxResults]
		}
		return sorted
	}

	ranked := make([]rankedCandidate[T], 0, len(candidates))
	for _, candidate := range candidates {
		name := nameOf(candidate)
		contains := strings.Contains(strings.ToLower(name), loweredQuery)
		distance := scorer.NormalizedDistance(query, name)

		if !contains && distance > maxDistance {
			continue
		}

		ranked = append(ranked, rankedCandidate[T]{
			item:     candidate,
			name:     name,
			contains: contains,
			distance: distance,
			length:   utf8.RuneCountInString(name),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.contains != b.contains {
			return a.contains
		}
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.length != b.length {
			return a.length < b.length
		}
		return strings.ToLower(a.name) < strings.ToLower(b.name)
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	result := make([]T, len(ranked))
	for i, r := range ranked {
		result[i] = r.item
	}
	return result
}
