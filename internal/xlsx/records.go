package xlsx

import (
	"fmt"
	"unicode/utf8"

	"rehabcenter/internal/core"
	"rehabcenter/internal/taxonomy"
)

// Sheet is a raw record dump: a header row followed by one row per record.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// RenderRecords writes s as a bordered single-sheet workbook with a styled
// header and content-driven column widths.
func RenderRecords(s Sheet, profile StyleProfile) ([]byte, error) {
	if len(s.Headers) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no headers", core.ErrRender, s.Name)
	}
	f, err := newRTLWorkbook(s.Name)
	if err != nil {
		return nil, err
	}

	styles := newStyleCache(f, profile)
	widths := make([]int, len(s.Headers))
	thin := cellStyle{top: borderThin, bottom: borderThin, left: borderThin, right: borderThin}

	for c, h := range s.Headers {
		if err := setCell(f, s.Name, c+1, 1, h); err != nil {
			f.Close()
			return nil, err
		}
		hs := thin
		hs.role = roleHeader
		if err := styles.apply(s.Name, c+1, 1, hs); err != nil {
			f.Close()
			return nil, err
		}
		widths[c] = utf8.RuneCountInString(h)
	}

	for r, values := range s.Rows {
		row := r + 2
		for c := range s.Headers {
			var v any
			if c < len(values) {
				v = values[c]
			}
			if v != nil {
				if err := setCell(f, s.Name, c+1, row, v); err != nil {
					f.Close()
					return nil, err
				}
				if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[c] {
					widths[c] = n
				}
			}
			if err := styles.apply(s.Name, c+1, row, thin); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	for c, w := range widths {
		if err := setWidth(f, s.Name, c+1, boundWidth(float64(w+2), profile)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return finish(f)
}

func boundWidth(w float64, profile StyleProfile) float64 {
	if profile.MinWidth > 0 && w < profile.MinWidth {
		return profile.MinWidth
	}
	if profile.MaxWidth > 0 && w > profile.MaxWidth {
		return profile.MaxWidth
	}
	return w
}

func text(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func flag(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

// IssueSheet is the full issued-items dump.
func IssueSheet(items []core.IssuedItem) Sheet {
	s := Sheet{
		Name:    SheetIssues,
		Headers: []string{"اسم القطعة", "المودل", "الرقم التسلسلي", "الحالة", "العدد", "الموقع", "جهة الطلب", "تاريخ الصرف", "المؤهل", "المستلم"},
		Rows:    make([][]any, 0, len(items)),
	}
	for _, it := range items {
		s.Rows = append(s.Rows, []any{
			text(it.ItemName), text(it.Model), text(it.Serial), text(it.Status), it.Quantity,
			text(it.Location), text(it.Requester), dateCell(it.IssueDate), text(it.QualifiedBy), text(it.Receiver),
		})
	}
	return s
}

// IssueSummarySheet is the condensed issued-items dump.
func IssueSummarySheet(items []core.IssuedItem) Sheet {
	s := Sheet{
		Name:    SheetIssueSummary,
		Headers: []string{"اسم القطعة", "العدد", "الرقم التسلسلي", "الموقع الحالي", "المستلم"},
		Rows:    make([][]any, 0, len(items)),
	}
	for _, it := range items {
		s.Rows = append(s.Rows, []any{text(it.ItemName), it.Quantity, text(it.Serial), text(it.Location), text(it.Receiver)})
	}
	return s
}

// CabinetSheet dumps cabinet rehabilitations.
func CabinetSheet(recs []core.CabinetRehab) Sheet {
	s := Sheet{
		Name:    SheetCabinets,
		Headers: []string{"نوع الكبينة", "الترميز", "تاريخ التأهيل", "المؤهل", "الموقع", "المستلم", "تاريخ الصرف", "ملاحظات"},
		Rows:    make([][]any, 0, len(recs)),
	}
	for _, r := range recs {
		s.Rows = append(s.Rows, []any{
			taxonomy.Label(taxonomy.KindCabinet, r.CabinetType), text(r.Code), dateCell(r.RehabDate), text(r.QualifiedBy),
			text(r.Location), text(r.Receiver), dateCell(r.IssueDate), text(r.Notes),
		})
	}
	return s
}

// AssetSheet dumps asset rehabilitations.
func AssetSheet(recs []core.AssetRehab) Sheet {
	s := Sheet{
		Name: SheetAssets,
		Headers: []string{
			"نوع الأصل", "المودل", "الرقم التسلسلي/الترميز", "العدد", "الموقع السابق",
			"تاريخ التأهيل", "تاريخ التوريد", "المؤهل", "الرفع", "الفاحص", "الفحص",
			"تاريخ الصرف", "الموقع الحالي", "جهة الطلب", "المستلم", "ملاحظات",
		},
		Rows: make([][]any, 0, len(recs)),
	}
	for _, r := range recs {
		s.Rows = append(s.Rows, []any{
			taxonomy.Label(taxonomy.KindAsset, r.AssetType), text(r.Model), text(r.SerialOrCode), r.Quantity, text(r.PrevLocation),
			dateCell(r.RehabDate), dateCell(r.SupplyDate), text(r.QualifiedBy), flag(r.Lifted), text(r.Inspector), flag(r.Tested),
			dateCell(r.IssueDate), text(r.CurrentLocation), text(r.Requester), text(r.Receiver), text(r.Notes),
		})
	}
	return s
}

// SpareSheet dumps spare-part rehabilitations.
func SpareSheet(recs []core.SparePartRehab) Sheet {
	s := Sheet{
		Name:    SheetSpares,
		Headers: []string{"نوع القطعة", "اسم القطعة", "موديل القطعة", "العدد", "الرقم التسلسلي", "المصدر", "المؤهل", "تاريخ التأهيل", "الفحص", "ملاحظات"},
		Rows:    make([][]any, 0, len(recs)),
	}
	for _, r := range recs {
		s.Rows = append(s.Rows, []any{
			taxonomy.Label(taxonomy.KindSpare, r.PartCategory), text(r.PartName), text(r.PartModel), r.Quantity, text(r.Serial),
			text(r.Source), text(r.QualifiedBy), dateCell(r.RehabDate), flag(r.Tested), text(r.Notes),
		})
	}
	return s
}
