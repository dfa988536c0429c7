package report

import (
	"fmt"

	"rehabcenter/internal/core"
	"rehabcenter/internal/taxonomy"
)

// Suggested download names.
const (
	IssueFullFilename    = "issue_full.xlsx"
	IssueSummaryFilename = "issue_summary.xlsx"
)

// KindFilename names a per-kind monthly export, e.g. cabinets_2024_03.xlsx.
func KindFilename(kind taxonomy.Kind, p core.Period) string {
	return periodFilename(kind.Plural(), p)
}

// MonthlyFilename names a monthly summary export.
func MonthlyFilename(p core.Period) string {
	return periodFilename("monthly", p)
}

// QuarterlyFilename names a quarterly summary by its first month.
func QuarterlyFilename(start core.Period) string {
	return periodFilename("quarterly", start)
}

func periodFilename(prefix string, p core.Period) string {
	return fmt.Sprintf("%s_%d_%02d.xlsx", prefix, p.Year, p.Month)
}
