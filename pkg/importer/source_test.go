package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalColumn(t *testing.T) {
	assert.Equal(t, ColumnSubAppellation, CanonicalColumn("Sub Appellation"))
	assert.Equal(t, ColumnSubAppellation, CanonicalColumn("sub_appellation"))
	assert.Equal(t, ColumnSubAppellation, CanonicalColumn("SubAppellation"))
	assert.Equal(t, ColumnGrapeVariety, CanonicalColumn(" Grape-Variety "))
	assert.Equal(t, ColumnName, CanonicalColumn("NAME"))
}

func TestNewRowsSourceRejectsEmptyHeader(t *testing.T) {
	_, err := NewRowsSource(nil, nil)
	assert.Error(t, err)
}

func TestRowsSourceCanonicalizesHeaders(t *testing.T) {
	src, err := NewRowsSource([]string{"Name", "Grape Variety"}, [][]string{{"Barolo", "Nebbiolo"}})
	require.NoError(t, err)

	assert.Equal(t, []string{ColumnName, ColumnGrapeVariety}, src.Columns())

	row, ok, err := src.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Barolo", row[ColumnName])
	assert.Equal(t, "Nebbiolo", row[ColumnGrapeVariety])
}

func TestRowsSourceCleansCells(t *testing.T) {
	src, err := NewRowsSource([]string{"Name"}, [][]string{{"  Clos   des  Fous "}})
	require.NoError(t, err)

	row, _, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "Clos des Fous", row[ColumnName])
}

func TestRowsSourcePadsShortRows(t *testing.T) {
	src, err := NewRowsSource([]string{"Name", "Color"}, [][]string{{"Barolo"}})
	require.NoError(t, err)

	row, ok, err := src.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Barolo", row[ColumnName])
	assert.Equal(t, "", row[ColumnColor])
}

func TestRowsSourceExhausts(t *testing.T) {
	src, err := NewRowsSource([]string{"Name"}, [][]string{{"Barolo"}})
	require.NoError(t, err)

	_, ok, err := src.Next()
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = src.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}
