package importer

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// OpenXLSX reads the first sheet of a spreadsheet into a Source. The first
// row is the header; the remaining rows are data.
func OpenXLSX(r io.Reader) (*RowsSource, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "importer: failed to open spreadsheet")
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("importer: spreadsheet has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "importer: failed to read sheet %q", sheets[0])
	}
	if len(rows) == 0 {
		return nil, errors.New("importer: spreadsheet has no header row")
	}

	return NewRowsSource(rows[0], rows[1:])
}
