package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"rehabcenter/internal/core"
	"rehabcenter/internal/report"
)

// Summary layout rows and fixed widths.
const (
	titleRow    = 1
	tableTopRow = 3

	widthIndex = 6
	widthLabel = 34
	widthValue = 12
)

// RenderSummary writes a composed table as a styled single-sheet workbook.
func RenderSummary(t report.Table, profile StyleProfile) ([]byte, error) {
	if len(t.Columns) == 0 || len(t.Totals) != len(t.Columns) {
		return nil, fmt.Errorf("%w: table has %d columns and %d totals", core.ErrRender, len(t.Columns), len(t.Totals))
	}

	sheet := summarySheetName(t)
	f, err := newRTLWorkbook(sheet)
	if err != nil {
		return nil, err
	}
	if err := writeSummary(f, sheet, t, profile); err != nil {
		f.Close()
		return nil, err
	}
	return finish(f)
}

func writeSummary(f *excelize.File, sheet string, t report.Table, profile StyleProfile) error {
	for _, r := range t.Rows {
		if len(r.Values) != len(t.Columns) {
			return fmt.Errorf("%w: row %q has %d values, want %d", core.ErrRender, r.Label, len(r.Values), len(t.Columns))
		}
	}
	nCols := 2 + len(t.Columns)
	lastRow := tableTopRow + len(t.Rows) + 1

	if err := writeTitle(f, sheet, Title(t), nCols, profile); err != nil {
		return err
	}

	grid := Grid(t)
	for r := tableTopRow - 1; r < len(grid); r++ {
		for c, v := range grid[r] {
			if v == nil {
				continue
			}
			if err := setCell(f, sheet, c+1, r+1, v); err != nil {
				return err
			}
		}
	}

	styles := newStyleCache(f, profile)
	for r := tableTopRow; r <= lastRow; r++ {
		for c := 1; c <= nCols; c++ {
			cs := cellStyle{
				role:     summaryRole(r, c, lastRow, nCols),
				top:      borderThin,
				bottom:   borderThin,
				left:     borderThin,
				right:    borderThin,
				centered: true,
			}
			if profile.FrameTable {
				if r == tableTopRow {
					cs.top = borderMedium
				}
				if r == lastRow {
					cs.bottom = borderMedium
				}
				if c == 1 {
					cs.left = borderMedium
				}
				if c == nCols {
					cs.right = borderMedium
				}
			}
			if err := styles.apply(sheet, c, r, cs); err != nil {
				return err
			}
		}
	}

	widths := map[int]float64{1: widthIndex, 2: widthLabel}
	for c := 3; c <= nCols; c++ {
		widths[c] = widthValue
	}
	for c := 1; c <= nCols; c++ {
		if err := setWidth(f, sheet, c, widths[c]); err != nil {
			return err
		}
	}
	return nil
}

// Grid lays a summary out as cells, one slice per sheet row starting at row
// 1: title, blank spacer, header, activity rows, totals. Empty cells are nil.
func Grid(t report.Table) [][]any {
	width := 2 + len(t.Columns)
	grid := make([][]any, 0, tableTopRow+len(t.Rows)+1)

	title := make([]any, width)
	title[0] = Title(t)
	grid = append(grid, title, make([]any, width))

	header := []any{headerIndex, headerItem}
	for i := range t.Columns {
		header = append(header, columnHeader(t, i))
	}
	grid = append(grid, header)

	for _, r := range t.Rows {
		row := []any{r.Index, r.Label}
		for _, v := range r.Values {
			row = append(row, v)
		}
		grid = append(grid, row)
	}

	totals := []any{nil, labelTotal}
	for _, v := range t.Totals {
		totals = append(totals, v)
	}
	return append(grid, totals)
}

func summaryRole(row, col, lastRow, nCols int) cellRole {
	switch {
	case row == tableTopRow:
		return roleHeader
	case row == lastRow && col == nCols:
		return roleGrandTotal
	case row == lastRow && col > 1:
		return roleTotal
	default:
		return roleBody
	}
}

func writeTitle(f *excelize.File, sheet, title string, nCols int, profile StyleProfile) error {
	first, err := excelize.CoordinatesToCellName(1, titleRow)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrRender, err)
	}
	last, err := excelize.CoordinatesToCellName(nCols, titleRow)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrRender, err)
	}
	if err := f.MergeCell(sheet, first, last); err != nil {
		return fmt.Errorf("%w: merge title: %v", core.ErrRender, err)
	}
	if err := f.SetCellValue(sheet, first, title); err != nil {
		return fmt.Errorf("%w: title: %v", core.ErrRender, err)
	}
	id, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: profile.TitleSize, Color: profile.TitleColor},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return fmt.Errorf("%w: title style: %v", core.ErrRender, err)
	}
	if err := f.SetCellStyle(sheet, first, last, id); err != nil {
		return fmt.Errorf("%w: title style: %v", core.ErrRender, err)
	}
	return nil
}
