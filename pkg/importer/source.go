// Package importer adapts tabular files into the row stream the batch
// intake flow consumes. Header names are matched case-insensitively and
// ignoring spaces, underscores and hyphens, so "Sub Appellation",
// "sub_appellation" and "SubAppellation" all address the same column.
package importer

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Ramsey-B/vine/pkg/normalizers"
)

// Canonical column names recognized by the batch intake flow.
const (
	ColumnName           = "name"
	ColumnCountry        = "country"
	ColumnRegion         = "region"
	ColumnColor          = "color"
	ColumnAppellation    = "appellation"
	ColumnSubAppellation = "subappellation"
	ColumnGrapeVariety   = "grapevariety"
)

// Row is one record keyed by canonical column name. Missing cells are
// absent keys.
type Row map[string]string

// Source is a stream of tabular records.
type Source interface {
	// Columns returns the canonical names of the columns present.
	Columns() []string
	// Next returns the next row. ok is false once the source is exhausted.
	Next() (row Row, ok bool, err error)
}

// CanonicalColumn folds a header name to its canonical form.
func CanonicalColumn(header string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "")
	return replacer.Replace(strings.ToLower(strings.TrimSpace(header)))
}

// RowsSource is an in-memory Source over a header row and data rows.
type RowsSource struct {
	columns []string
	rows    [][]string
	pos     int
}

// NewRowsSource builds a Source from raw cells. The header row supplies the
// column names; data cells beyond the header width are dropped.
func NewRowsSource(header []string, rows [][]string) (*RowsSource, error) {
	if len(header) == 0 {
		return nil, errors.New("importer: empty header row")
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = CanonicalColumn(h)
	}
	return &RowsSource{columns: columns, rows: rows}, nil
}

func (s *RowsSource) Columns() []string {
	return s.columns
}

func (s *RowsSource) Next() (Row, bool, error) {
	if s.pos >= len(s.rows) {
		return nil, false, nil
	}
	cells := s.rows[s.pos]
	s.pos++

	row := make(Row, len(s.columns))
	for i, col := range s.columns {
		if col == "" {
			continue
		}
		if i < len(cells) {
			row[col] = normalizers.NormalizeName(cells[i])
		} else {
			row[col] = ""
		}
	}
	return row, true, nil
}
