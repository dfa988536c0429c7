package sheets

import (
	"context"

	"rehabcenter/internal/report"
)

// SummaryPublisher mirrors a composed summary table into a spreadsheet tab.
type SummaryPublisher interface {
	// PublishSummary overwrites the tab for the table's period and returns a
	// reference to the written range.
	PublishSummary(ctx context.Context, t report.Table) (ref string, err error)
}
