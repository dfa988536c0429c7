package xlsx

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"rehabcenter/internal/core"
	"rehabcenter/internal/report"
	"rehabcenter/internal/taxonomy"
)

func monthlyTable() report.Table {
	return report.BuildMonthly(core.Period{Year: 2024, Month: 3}, report.Counts{
		taxonomy.KindCabinet: {"ATS": 2, "AMF": 1},
		taxonomy.KindAsset:   {"Batteries": 12},
		taxonomy.KindSpare:   {"Modules": 4},
	})
}

func quarterlyTable() report.Table {
	periods := core.Period{Year: 2024, Month: 11}.Quarter()
	return report.BuildQuarterly(periods, [3]report.Counts{
		{taxonomy.KindCabinet: {"ATS": 1}},
		{taxonomy.KindAsset: {"Motors": 3}},
		{taxonomy.KindSpare: {"Other": 2}, taxonomy.KindCabinet: {"ATS": 1}},
	})
}

func open(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRenderSummaryRoundTrip(t *testing.T) {
	for _, tbl := range []report.Table{monthlyTable(), quarterlyTable()} {
		b, err := RenderSummary(tbl, SummaryProfile())
		if err != nil {
			t.Fatalf("%s: render: %v", tbl.Kind, err)
		}
		sheet, rows, err := ReadGrid(bytes.NewReader(b))
		if err != nil {
			t.Fatalf("%s: read: %v", tbl.Kind, err)
		}
		if sheet != summarySheetName(tbl) {
			t.Fatalf("sheet = %q", sheet)
		}
		if rows[0][0] != Title(tbl) {
			t.Fatalf("title = %q", rows[0][0])
		}

		header := rows[tableTopRow-1]
		if header[0] != headerIndex || header[1] != headerItem || len(header) != 2+len(tbl.Columns) {
			t.Fatalf("header = %v", header)
		}

		for i, r := range tbl.Rows {
			got := rows[tableTopRow+i]
			if got[0] != strconv.Itoa(r.Index) || got[1] != r.Label {
				t.Fatalf("row %d = %v", i, got)
			}
			for j, v := range r.Values {
				if got[2+j] != strconv.Itoa(v) {
					t.Fatalf("row %d col %d = %q, want %d", i, j, got[2+j], v)
				}
			}
		}

		totals := rows[tableTopRow+len(tbl.Rows)]
		if totals[1] != labelTotal {
			t.Fatalf("totals label = %q", totals[1])
		}
		for j, v := range tbl.Totals {
			if totals[2+j] != strconv.Itoa(v) {
				t.Fatalf("total col %d = %q, want %d", j, totals[2+j], v)
			}
		}
		if totals[len(totals)-1] != strconv.Itoa(tbl.GrandTotal) {
			t.Fatalf("grand total = %q, want %d", totals[len(totals)-1], tbl.GrandTotal)
		}
	}
}

func TestRenderSummaryLayout(t *testing.T) {
	tbl := quarterlyTable()
	b, err := RenderSummary(tbl, SummaryProfile())
	if err != nil {
		t.Fatal(err)
	}
	f := open(t, b)
	sheet := SheetQuarterly

	view, err := f.GetSheetView(sheet, 0)
	if err != nil {
		t.Fatal(err)
	}
	if view.RightToLeft == nil || !*view.RightToLeft {
		t.Fatal("sheet is not right-to-left")
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(merges) != 1 || merges[0].GetStartAxis() != "A1" || merges[0].GetEndAxis() != "F1" {
		t.Fatalf("unexpected merges %v", merges)
	}

	for col, want := range map[string]float64{"A": widthIndex, "B": widthLabel, "C": widthValue, "F": widthValue} {
		got, err := f.GetColWidth(sheet, col)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("width %s = %v, want %v", col, got, want)
		}
	}

	style := func(cell string) int {
		id, err := f.GetCellStyle(sheet, cell)
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	totalsRow := strconv.Itoa(tableTopRow + len(tbl.Rows) + 1)
	if style("C"+totalsRow) == style("F"+totalsRow) {
		t.Fatal("grand total should be styled apart from column totals")
	}
	if style("C3") == style("C5") {
		t.Fatal("header should be styled apart from body")
	}
}

func TestTitles(t *testing.T) {
	m := Title(monthlyTable())
	if m != "أهم الإنجازات التي تمت في مركز الإصلاحات الفنية خلال شهر مارس 2024 م:" {
		t.Fatalf("monthly title %q", m)
	}
	q := Title(quarterlyTable())
	if q != "أهم الإنجازات التي تمت في مركز الإصلاحات الفنية خلال الربع (يناير، ديسمبر، نوفمبر) لعام 2024 م:" {
		t.Fatalf("quarterly title %q", q)
	}
}

func TestRenderSummaryDeterministic(t *testing.T) {
	a, err := RenderSummary(monthlyTable(), SummaryProfile())
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderSummary(monthlyTable(), SummaryProfile())
	if err != nil {
		t.Fatal(err)
	}
	_, ga, _ := ReadGrid(bytes.NewReader(a))
	_, gb, _ := ReadGrid(bytes.NewReader(b))
	if len(ga) != len(gb) {
		t.Fatalf("row count differs %d vs %d", len(ga), len(gb))
	}
	for i := range ga {
		if len(ga[i]) != len(gb[i]) {
			t.Fatalf("row %d differs", i)
		}
		for j := range ga[i] {
			if ga[i][j] != gb[i][j] {
				t.Fatalf("cell %d,%d differs", i, j)
			}
		}
	}
}

func TestRenderSummaryRejectsMalformedTable(t *testing.T) {
	tbl := monthlyTable()
	tbl.Totals = nil
	if _, err := RenderSummary(tbl, SummaryProfile()); !errors.Is(err, core.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
	tbl = monthlyTable()
	tbl.Rows[0].Values = []int{1, 2}
	if _, err := RenderSummary(tbl, SummaryProfile()); !errors.Is(err, core.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestRenderRecords(t *testing.T) {
	tested := true
	recs := []core.SparePartRehab{
		{PartCategory: "Modules", PartName: "وحدة تحكم رئيسية لمولد ديزل كبير الحجم مع ملحقات إضافية كثيرة جدا", Quantity: 3, Serial: "SN-1", Source: "Aden", RehabDate: core.NewDate(2024, 3, 4), Tested: &tested},
		{PartCategory: "Other", Quantity: 1, RehabDate: core.NewDate(2024, 3, 5)},
	}
	b, err := RenderRecords(SpareSheet(recs), ExportProfile())
	if err != nil {
		t.Fatal(err)
	}
	sheet, rows, err := ReadGrid(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if sheet != SheetSpares {
		t.Fatalf("sheet = %q", sheet)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1][0] != "موديولات" || rows[1][3] != "3" || rows[1][7] != "2024-03-04" || rows[1][8] != "TRUE" {
		t.Fatalf("row = %v", rows[1])
	}

	f := open(t, b)
	w, err := f.GetColWidth(sheet, "B")
	if err != nil {
		t.Fatal(err)
	}
	if w != 50 {
		t.Fatalf("long column width = %v, want capped 50", w)
	}
	w, _ = f.GetColWidth(sheet, "D")
	if w != 10 {
		t.Fatalf("short column width = %v, want minimum 10", w)
	}
}

func TestRenderRecordsEmpty(t *testing.T) {
	b, err := RenderRecords(IssueSheet(nil), ExportProfile())
	if err != nil {
		t.Fatal(err)
	}
	_, rows, err := ReadGrid(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || len(rows[0]) != 10 {
		t.Fatalf("expected header only, got %v", rows)
	}
	if _, err := RenderRecords(Sheet{Name: "x"}, ExportProfile()); !errors.Is(err, core.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestMonthName(t *testing.T) {
	if MonthName(1) != "يناير" || MonthName(12) != "ديسمبر" || MonthName(13) != "" {
		t.Fatal("unexpected month names")
	}
}

func TestGrid(t *testing.T) {
	tbl := monthlyTable()
	g := Grid(tbl)
	if len(g) != tableTopRow+len(tbl.Rows)+1 {
		t.Fatalf("grid has %d rows", len(g))
	}
	if g[0][0] != Title(tbl) || g[1][0] != nil {
		t.Fatalf("title rows = %v / %v", g[0], g[1])
	}
	last := g[len(g)-1]
	if last[1] != labelTotal || last[len(last)-1] != tbl.GrandTotal {
		t.Fatalf("totals row = %v", last)
	}
}
