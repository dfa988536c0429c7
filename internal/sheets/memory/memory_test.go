package memory

import (
	"context"
	"testing"

	"rehabcenter/internal/core"
	"rehabcenter/internal/report"
)

func TestPublishSummaryOverwritesTab(t *testing.T) {
	p := New("Summary")
	tbl := report.BuildMonthly(core.Period{Year: 2024, Month: 3}, report.Counts{})

	for i := 0; i < 2; i++ {
		if _, err := p.PublishSummary(context.Background(), tbl); err != nil {
			t.Fatal(err)
		}
	}
	if p.Tabs() != 1 {
		t.Fatalf("tabs = %d, want 1", p.Tabs())
	}
	g, ok := p.Tab("Summary 2024-03")
	if !ok || len(g) != 20 {
		t.Fatalf("grid missing or wrong size: %v %d", ok, len(g))
	}

	q := report.BuildQuarterly(core.Period{Year: 2024, Month: 11}.Quarter(), [3]report.Counts{})
	if _, err := p.PublishSummary(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Tab("Summary 2024-11..2025-01"); !ok {
		t.Fatal("quarterly tab not written")
	}
}
