package xlsx

import (
	"fmt"
	"strings"

	"rehabcenter/internal/core"
	"rehabcenter/internal/report"
)

var arabicMonths = [12]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// MonthName returns the Arabic name of month m (1-12).
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return arabicMonths[m-1]
}

// Sheet titles.
const (
	SheetMonthly      = "ملخص شهري"
	SheetQuarterly    = "ملخص ربع سنوي"
	SheetIssues       = "الصرف"
	SheetIssueSummary = "ملخص الصرف"
	SheetCabinets     = "الكبائن"
	SheetAssets       = "الأصول"
	SheetSpares       = "قطع الغيار"
)

const (
	titlePrefix   = "أهم الإنجازات التي تمت في مركز الإصلاحات الفنية خلال"
	headerIndex   = "م"
	headerItem    = "الصنف"
	headerQuarter = "الربع"
	labelTotal    = "الإجمالي"
)

// Title returns the localized sentence naming the table's period.
func Title(t report.Table) string {
	if len(t.Periods) == 0 {
		return ""
	}
	if t.Kind == report.Quarterly {
		names := make([]string, 0, len(t.Periods))
		for i := len(t.Periods) - 1; i >= 0; i-- {
			names = append(names, MonthName(t.Periods[i].Month))
		}
		return fmt.Sprintf("%s الربع (%s) لعام %d م:", titlePrefix, strings.Join(names, "، "), t.Periods[0].Year)
	}
	p := t.Periods[0]
	return fmt.Sprintf("%s شهر %s %d م:", titlePrefix, MonthName(p.Month), p.Year)
}

// columnHeader localizes a value column name of t.
func columnHeader(t report.Table, i int) string {
	if i < len(t.Periods) {
		return MonthName(t.Periods[i].Month)
	}
	if t.Columns[i] == report.QuarterColumn {
		return headerQuarter
	}
	return t.Columns[i]
}

func summarySheetName(t report.Table) string {
	if t.Kind == report.Quarterly {
		return SheetQuarterly
	}
	return SheetMonthly
}

func dateCell(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
