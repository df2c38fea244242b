// Package matching implements the approximate-string primitives used by the
// taxonomy resolvers: a case-insensitive edit distance and a deterministic
// candidate ranker. It holds no state; scope-limited candidate sets come from
// the callers.
package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scorer provides string comparison primitives for entity resolution.
type Scorer struct{}

// NewScorer creates a new Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// EditDistance returns the Levenshtein distance between a and b, compared
// case-insensitively at rune level. It is symmetric and zero iff the
// lowercased strings are equal.
func (s *Scorer) EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
}

// NormalizedDistance returns EditDistance divided by the longer of the two
// strings' rune lengths. Identical strings score 0; two empty strings also
// score 0.
func (s *Scorer) NormalizedDistance(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0
	}
	return float64(s.EditDistance(a, b)) / float64(maxLen)
}

// Similarity returns 1 - NormalizedDistance, a 0..1 score where 1 is an
// exact (case-insensitive) match.
func (s *Scorer) Similarity(a, b string) float64 {
	return 1.0 - s.NormalizedDistance(a, b)
}
