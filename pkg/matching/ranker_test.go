package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ident(s string) string { return s }

func TestRankCandidatesContainsBeatsDistance(t *testing.T) {
	scorer := NewScorer()

	candidates := []string{"Margaux", "Saint-Julien", "Marg"}
	ranked := RankCandidates(scorer, candidates, "Marg", ident, 5, 0.3)

	// Both containing candidates stay; shorter name first among them.
	assert.Equal(t, []string{"Marg", "Margaux"}, ranked)
}

func TestRankCandidatesDistanceFilter(t *testing.T) {
	scorer := NewScorer()

	candidates := []string{"Burgundy", "Bordeaux", "Champagne"}
	ranked := RankCandidates(scorer, candidates, "Burgandy", ident, 5, 0.3)

	assert.Equal(t, []string{"Burgundy"}, ranked)
}

func TestRankCandidatesOrdering(t *testing.T) {
	scorer := NewScorer()

	// Equal distance from the query; ties break by length then name.
	candidates := []string{"Barolo", "Barola", "Barol"}
	ranked := RankCandidates(scorer, candidates, "Barolo", ident, 5, 0.5)

	assert.Equal(t, "Barolo", ranked[0])
	assert.Len(t, ranked, 3)
}

func TestRankCandidatesTruncates(t *testing.T) {
	scorer := NewScorer()

	candidates := []string{"Napa A", "Napa B", "Napa C", "Napa D"}
	ranked := RankCandidates(scorer, candidates, "Napa", ident, 2, 0.3)

	assert.Equal(t, []string{"Napa A", "Napa B"}, ranked)
}

func TestRankCandidatesEmptyQueryReturnsAlphabetical(t *testing.T) {
	scorer := NewScorer()

	candidates := []string{"Tuscany", "Alsace", "Mosel"}
	ranked := RankCandidates(scorer, candidates, "", ident, 2, 0.3)

	assert.Equal(t, []string{"Alsace", "Mosel"}, ranked)
}

func TestRankCandidatesZeroMaxResults(t *testing.T) {
	scorer := NewScorer()

	assert.Nil(t, RankCandidates(scorer, []string{"Rioja"}, "Rioja", ident, 0, 0.3))
}
