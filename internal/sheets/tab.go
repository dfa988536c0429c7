package sheets

import (
	"strings"

	"rehabcenter/internal/report"
)

// TabName returns the tab a table is mirrored into: the base name followed
// by the covered periods, e.g. "Summary 2024-03" or "Summary 2024-01..2024-03".
func TabName(base string, t report.Table) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "Summary"
	}
	switch len(t.Periods) {
	case 0:
		return base
	case 1:
		return base + " " + t.Periods[0].String()
	default:
		return base + " " + t.Periods[0].String() + ".." + t.Periods[len(t.Periods)-1].String()
	}
}
