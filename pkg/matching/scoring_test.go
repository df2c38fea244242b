package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorerEditDistance(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 0, scorer.EditDistance("Burgundy", "burgundy"))
	assert.Equal(t, 1, scorer.EditDistance("Burgandy", "Burgundy"))
	assert.Equal(t, scorer.EditDistance("Rioja", "Rhone"), scorer.EditDistance("Rhone", "Rioja"))
}

func TestScorerNormalizedDistance(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 0.0, scorer.NormalizedDistance("Chablis", "chablis"))
	assert.Equal(t, 0.0, scorer.NormalizedDistance("", ""))

	// One edit over eight runes.
	assert.InDelta(t, 0.125, scorer.NormalizedDistance("Burgandy", "Burgundy"), 1e-9)

	// Divides by the longer string.
	assert.InDelta(t, 1.0, scorer.NormalizedDistance("", "Napa"), 1e-9)
}

func TestScorerNormalizedDistanceCountsRunes(t *testing.T) {
	scorer := NewScorer()

	// One rune substitution over four runes, not over the byte length.
	assert.InDelta(t, 0.25, scorer.NormalizedDistance("rosé", "rose"), 1e-9)
}

func TestScorerSimilarity(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 1.0, scorer.Similarity("Loire", "loire"))
	assert.InDelta(t, 0.875, scorer.Similarity("Burgandy", "Burgundy"), 1e-9)
}
