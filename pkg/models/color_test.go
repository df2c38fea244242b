package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"Red":     ColorRed,
		"red":     ColorRed,
		" WHITE ": ColorWhite,
		"Rose":    ColorRose,
		"rosé":    ColorRose,
	}
	for input, want := range cases {
		got, err := ParseColor(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}
}

func TestParseColorRejectsUnknown(t *testing.T) {
	_, err := ParseColor("Orange")
	assert.Error(t, err)

	_, err = ParseColor("")
	assert.Error(t, err)
}

func TestColorValid(t *testing.T) {
	assert.True(t, ColorRed.Valid())
	assert.False(t, Color("Orange").Valid())
}
