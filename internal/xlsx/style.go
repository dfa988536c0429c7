// Package xlsx renders composed summary tables and raw record dumps as
// right-to-left Excel workbooks.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"rehabcenter/internal/core"
)

// ContentType is the MIME type of rendered workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// excelize border styles
const (
	borderThin   = 1
	borderMedium = 2
)

// StyleProfile groups the visual parameters of one report family.
type StyleProfile struct {
	HeaderFill      string
	BorderColor     string
	FrameTable      bool
	TitleColor      string
	TitleSize       float64
	GrandTotalColor string
	// MinWidth and MaxWidth bound content-driven widths of raw exports.
	MinWidth float64
	MaxWidth float64
}

// SummaryProfile styles the monthly and quarterly activity tables.
func SummaryProfile() StyleProfile {
	return StyleProfile{
		HeaderFill:      "EFC9B8",
		BorderColor:     "000000",
		FrameTable:      true,
		TitleColor:      "003366",
		TitleSize:       14,
		GrandTotalColor: "C00000",
	}
}

// ExportProfile styles raw record dumps.
func ExportProfile() StyleProfile {
	return StyleProfile{
		HeaderFill:  "BFE3FF",
		BorderColor: "999999",
		MinWidth:    10,
		MaxWidth:    50,
	}
}

type cellRole int

const (
	roleBody cellRole = iota
	roleHeader
	roleTotal
	roleGrandTotal
)

// cellStyle is the full visual identity of a table cell.
type cellStyle struct {
	role                     cellRole
	top, bottom, left, right int
	centered                 bool
}

// styleCache creates each distinct cellStyle once per workbook.
type styleCache struct {
	f       *excelize.File
	profile StyleProfile
	ids     map[cellStyle]int
}

func newStyleCache(f *excelize.File, profile StyleProfile) *styleCache {
	return &styleCache{f: f, profile: profile, ids: make(map[cellStyle]int)}
}

func (c *styleCache) id(cs cellStyle) (int, error) {
	if id, ok := c.ids[cs]; ok {
		return id, nil
	}
	st := &excelize.Style{}
	for _, b := range []struct {
		side  string
		style int
	}{{"top", cs.top}, {"bottom", cs.bottom}, {"left", cs.left}, {"right", cs.right}} {
		if b.style > 0 {
			st.Border = append(st.Border, excelize.Border{Type: b.side, Color: c.profile.BorderColor, Style: b.style})
		}
	}
	if cs.centered {
		st.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	}
	switch cs.role {
	case roleHeader:
		st.Font = &excelize.Font{Bold: true}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c.profile.HeaderFill}}
		if st.Alignment == nil {
			st.Alignment = &excelize.Alignment{Horizontal: "center"}
		}
	case roleTotal:
		st.Font = &excelize.Font{Bold: true}
	case roleGrandTotal:
		st.Font = &excelize.Font{Bold: true, Color: c.profile.GrandTotalColor}
	}
	id, err := c.f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("%w: new style: %v", core.ErrRender, err)
	}
	c.ids[cs] = id
	return id, nil
}

func (c *styleCache) apply(sheet string, col, row int, cs cellStyle) error {
	id, err := c.id(cs)
	if err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrRender, err)
	}
	if err := c.f.SetCellStyle(sheet, cell, cell, id); err != nil {
		return fmt.Errorf("%w: style %s: %v", core.ErrRender, cell, err)
	}
	return nil
}

// newRTLWorkbook returns a workbook whose only sheet is named and set to
// right-to-left.
func newRTLWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: rename sheet: %v", core.ErrRender, err)
	}
	rtl := true
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: sheet view: %v", core.ErrRender, err)
	}
	return f, nil
}

func finish(f *excelize.File) ([]byte, error) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: write workbook: %v", core.ErrRender, err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrRender, err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("%w: set %s: %v", core.ErrRender, cell, err)
	}
	return nil
}

func setWidth(f *excelize.File, sheet string, col int, width float64) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrRender, err)
	}
	if err := f.SetColWidth(sheet, name, name, width); err != nil {
		return fmt.Errorf("%w: width %s: %v", core.ErrRender, name, err)
	}
	return nil
}
