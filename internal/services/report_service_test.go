package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"rehabcenter/internal/archive"
	"rehabcenter/internal/core"
	"rehabcenter/internal/metrics"
	"rehabcenter/internal/report"
	sheetmem "rehabcenter/internal/sheets/memory"
	"rehabcenter/internal/storage/memory"
	"rehabcenter/internal/taxonomy"
	"rehabcenter/internal/xlsx"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	records := NewRecordService(store, nil)
	ctx := context.Background()

	for _, c := range []core.CabinetRehab{
		{CabinetType: "ATS", Code: "C1", RehabDate: date("2024-03-02")},
		{CabinetType: "ATS", Code: "C2", RehabDate: date("2024-03-20")},
		{CabinetType: "AMF", Code: "C3", RehabDate: date("2024-04-01")},
	} {
		if _, err := records.CreateCabinet(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	for _, a := range []core.AssetRehab{
		{AssetType: "Batteries", SerialOrCode: "B1", Quantity: 12, RehabDate: date("2024-03-05")},
		{AssetType: "Motors", SerialOrCode: "M1", Quantity: 1, SupplyDate: date("2024-03-07")},
	} {
		if _, err := records.CreateAsset(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	for _, sp := range []core.SparePartRehab{
		{PartCategory: "Nozzles", Serial: "N1", Source: "A", Quantity: 3, RehabDate: date("2024-03-09")},
		{PartCategory: "Nozzles", Serial: "N1", Source: "A", Quantity: 2, RehabDate: date("2024-03-10")},
	} {
		if _, err := records.CreateSpare(ctx, sp); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := records.CreateIssue(ctx, core.IssuedItem{ItemName: "Relay", Quantity: 2, IssueDate: date("2024-01-01")}); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestStats(t *testing.T) {
	m := metrics.New()
	svc := NewReportService(seed(t), report.SparePolicyRequireBoth, WithMetrics(m))
	ctx := context.Background()
	march := core.Period{Year: 2024, Month: 3}

	cabs, err := svc.Stats(ctx, taxonomy.KindCabinet, march, core.DateFieldPrimary)
	if err != nil {
		t.Fatal(err)
	}
	if len(cabs) != len(taxonomy.Keys(taxonomy.KindCabinet)) || cabs["ATS"] != 2 || cabs["AMF"] != 0 {
		t.Fatalf("cabinet stats = %v", cabs)
	}

	assets, err := svc.Stats(ctx, taxonomy.KindAsset, march, core.DateFieldPrimary)
	if err != nil {
		t.Fatal(err)
	}
	if assets["Batteries"] != 12 || assets["Motors"] != 1 {
		t.Fatalf("asset stats = %v", assets)
	}

	spares, err := svc.Stats(ctx, taxonomy.KindSpare, march, core.DateFieldPrimary)
	if err != nil {
		t.Fatal(err)
	}
	if spares["Nozzles"] != 5 {
		t.Fatalf("spare stats = %v", spares)
	}

	if _, err := svc.Stats(ctx, taxonomy.KindSpare, core.Period{Year: 2024, Month: 13}, core.DateFieldPrimary); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("invalid period: %v", err)
	}

	// one series per kind; the rejected period never reaches the observer
	if n, err := testutil.GatherAndCount(m.Registry(), "rehab_aggregations_total"); err != nil || n != 3 {
		t.Fatalf("aggregation series = %d, %v", n, err)
	}
}

func TestMonthlySummaryArchivesAndMirrors(t *testing.T) {
	dir := t.TempDir()
	sink, err := archive.NewFSSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	mirror := sheetmem.New("Summary")
	svc := NewReportService(seed(t), report.SparePolicyRequireBoth, WithArchive(sink), WithSummaryMirror(mirror))

	exp, err := svc.MonthlySummary(context.Background(), core.Period{Year: 2024, Month: 3})
	if err != nil {
		t.Fatal(err)
	}
	if exp.Filename != "monthly_2024_03.xlsx" || exp.ContentType != xlsx.ContentType {
		t.Fatalf("unexpected export: %s %s", exp.Filename, exp.ContentType)
	}

	sheet, rows, err := xlsx.ReadGrid(bytes.NewReader(exp.Body))
	if err != nil {
		t.Fatal(err)
	}
	if sheet != xlsx.SheetMonthly || len(rows) < 4 || rows[3][2] != "2" {
		t.Fatalf("sheet %q rows %v", sheet, rows)
	}

	if !strings.HasPrefix(exp.Location, dir) {
		t.Fatalf("archive location = %q", exp.Location)
	}
	archived, err := os.ReadFile(exp.Location)
	if err != nil || !bytes.Equal(archived, exp.Body) {
		t.Fatalf("archived copy differs: %v", err)
	}

	if _, ok := mirror.Tab("Summary 2024-03"); !ok {
		t.Fatal("summary was not mirrored")
	}
}

func TestQuarterlySummaryIsNotMirrored(t *testing.T) {
	mirror := sheetmem.New("Summary")
	svc := NewReportService(seed(t), report.SparePolicyRequireBoth, WithSummaryMirror(mirror))

	exp, err := svc.QuarterlySummary(context.Background(), core.Period{Year: 2024, Month: 2})
	if err != nil {
		t.Fatal(err)
	}
	if exp.Filename != "quarterly_2024_02.xlsx" || exp.Location != "" {
		t.Fatalf("unexpected export: %+v", exp.Filename)
	}
	if mirror.Tabs() != 0 {
		t.Fatalf("tabs = %d", mirror.Tabs())
	}
}

func TestExportKindFiltersPeriod(t *testing.T) {
	svc := NewReportService(seed(t), report.SparePolicyRequireBoth)
	ctx := context.Background()
	march := core.Period{Year: 2024, Month: 3}

	tests := []struct {
		kind     taxonomy.Kind
		field    core.DateField
		filename string
		rows     int
	}{
		{taxonomy.KindCabinet, core.DateFieldPrimary, "cabinets_2024_03.xlsx", 2},
		{taxonomy.KindAsset, core.DateFieldPrimary, "assets_2024_03.xlsx", 2},
		{taxonomy.KindAsset, core.DateFieldSecondary, "assets_2024_03.xlsx", 1},
		{taxonomy.KindSpare, core.DateFieldPrimary, "spares_2024_03.xlsx", 2},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			exp, err := svc.ExportKind(ctx, tt.kind, march, tt.field)
			if err != nil {
				t.Fatal(err)
			}
			if exp.Filename != tt.filename {
				t.Fatalf("filename = %q", exp.Filename)
			}
			_, rows, err := xlsx.ReadGrid(bytes.NewReader(exp.Body))
			if err != nil {
				t.Fatal(err)
			}
			if len(rows)-1 != tt.rows {
				t.Fatalf("got %d data rows, want %d", len(rows)-1, tt.rows)
			}
		})
	}

	if _, err := svc.ExportKind(ctx, "robots", march, core.DateFieldPrimary); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("unknown kind: %v", err)
	}
}

func TestExportIssues(t *testing.T) {
	m := metrics.New()
	svc := NewReportService(seed(t), report.SparePolicyRequireBoth, WithMetrics(m))

	for _, full := range []bool{true, false} {
		exp, err := svc.ExportIssues(context.Background(), full)
		if err != nil {
			t.Fatal(err)
		}
		want := report.IssueSummaryFilename
		if full {
			want = report.IssueFullFilename
		}
		if exp.Filename != want {
			t.Fatalf("filename = %q, want %q", exp.Filename, want)
		}
		_, rows, err := xlsx.ReadGrid(bytes.NewReader(exp.Body))
		if err != nil || len(rows) != 2 || rows[1][0] != "Relay" {
			t.Fatalf("rows = %v, err = %v", rows, err)
		}
	}
	if n, err := testutil.GatherAndCount(m.Registry(), "rehab_exports_total"); err != nil || n != 2 {
		t.Fatalf("export series = %d, %v", n, err)
	}
}

func TestDuplicates(t *testing.T) {
	svc := NewReportService(seed(t), report.SparePolicyRequireBoth)
	d, err := svc.Duplicates(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(d.CabinetCodes) != 0 || len(d.SpareSerialSourcePairs) != 1 {
		t.Fatalf("duplicates = %+v", d)
	}
}
