package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "Clos des Fous", CollapseWhitespace("  Clos   des \t Fous "))
	assert.Equal(t, "", CollapseWhitespace("   "))
}

func TestNormalizeNameKeepsCasing(t *testing.T) {
	assert.Equal(t, "Domaine LAROCHE", NormalizeName(" Domaine  LAROCHE "))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "domaine laroche", Fold(" Domaine  LAROCHE "))
}

func TestRemovePunctuation(t *testing.T) {
	assert.Equal(t, "SaintJulien", RemovePunctuation("Saint-Julien"))
}

func TestApplyUnknownNormalizerIsIdentity(t *testing.T) {
	assert.Equal(t, "Barolo", Apply("Barolo", "does_not_exist"))
}

func TestApplyChain(t *testing.T) {
	assert.Equal(t, "saintjulien", ApplyChain(" Saint-Julien ", "trim", "remove_punctuation", "lowercase"))
}
