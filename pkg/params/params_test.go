package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIntakeKeyConventions(t *testing.T) {
	cases := map[string]map[string]any{
		"camelCase":  {"name": "Barolo", "subAppellation": "Cannubi", "grapeVariety": "Nebbiolo"},
		"snake_case": {"name": "Barolo", "sub_appellation": "Cannubi", "grape_variety": "Nebbiolo"},
		"spaced":     {"Name": "Barolo", "Sub Appellation": "Cannubi", "Grape Variety": "Nebbiolo"},
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := DecodeIntake(input)
			require.NoError(t, err)
			assert.Equal(t, "Barolo", req.Name)
			assert.Equal(t, "Cannubi", req.SubAppellation)
			assert.Equal(t, "Nebbiolo", req.GrapeVariety)
		})
	}
}

func TestDecodeIntakeIgnoresUnknownKeys(t *testing.T) {
	req, err := DecodeIntake(map[string]any{
		"name":    "Barolo",
		"vintage": 2015,
	})
	require.NoError(t, err)
	assert.Equal(t, "Barolo", req.Name)
}

func TestDecodeIntakeCoercesScalars(t *testing.T) {
	req, err := DecodeIntake(map[string]any{
		"name":  "Barolo",
		"color": "Red",
	})
	require.NoError(t, err)
	assert.Equal(t, "Red", req.Color)
}

func TestDecodeIntakeRequiresName(t *testing.T) {
	_, err := DecodeIntake(map[string]any{"color": "Red"})
	assert.Error(t, err)
}
