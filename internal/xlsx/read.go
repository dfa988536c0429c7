package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadGrid returns the name and cell text of the first sheet of a workbook.
// Styles are ignored.
func ReadGrid(r io.Reader) (string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, fmt.Errorf("read rows of %q: %w", sheet, err)
	}
	return sheet, rows, nil
}
