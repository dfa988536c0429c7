package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rehabcenter/internal/core"
	"rehabcenter/internal/report"
	"rehabcenter/internal/services"
	"rehabcenter/internal/storage/memory"
	"rehabcenter/internal/xlsx"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"-report", " Assets ", "-year", "2024", "-month", "3", "-date-field", "supply_date", "-out", "-"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if o.report != "assets" || o.year != 2024 || o.month != 3 || o.dateField != "supply_date" || o.out != "-" {
		t.Fatalf("options = %+v", o)
	}

	if _, err := parseFlags([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("help err = %v", err)
	}
	var stderr bytes.Buffer
	if _, err := parseFlags([]string{"monthly"}, &stderr); err == nil || !strings.Contains(stderr.String(), "unexpected arguments") {
		t.Fatalf("err = %v, stderr = %q", err, stderr.String())
	}
}

func newReports(t *testing.T) *services.ReportService {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	d, _ := core.ParseDate("2024-03-04")
	for _, code := range []string{"C1", "C1"} {
		if _, err := store.CreateCabinet(ctx, core.CabinetRehab{CabinetType: "ATS", Code: code, RehabDate: d}); err != nil {
			t.Fatal(err)
		}
	}
	return services.NewReportService(store, report.SparePolicyRequireBoth)
}

func TestRender(t *testing.T) {
	reports := newReports(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		opts     options
		filename string
		wantErr  error
	}{
		{"monthly", options{report: "monthly", year: 2024, month: 3}, "monthly_2024_03.xlsx", nil},
		{"quarterly", options{report: "quarterly", year: 2024, month: 11}, "quarterly_2024_11.xlsx", nil},
		{"cabinets", options{report: "cabinets", year: 2024, month: 3}, "cabinets_2024_03.xlsx", nil},
		{"issues", options{report: "issues", full: true}, report.IssueFullFilename, nil},
		{"duplicates", options{report: "duplicates"}, "duplicates.json", nil},
		{"missing period", options{report: "monthly"}, "", core.ErrValidation},
		{"bad month", options{report: "spares", year: 2024, month: 13}, "", core.ErrInvalidPeriod},
		{"unknown report", options{report: "robots", year: 2024, month: 1}, "", core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := render(ctx, reports, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if exp.Filename != tt.filename || len(exp.Body) == 0 {
				t.Fatalf("export = %s (%d bytes)", exp.Filename, len(exp.Body))
			}
		})
	}
}

func TestRenderDuplicatesJSON(t *testing.T) {
	exp, err := render(context.Background(), newReports(t), options{report: "duplicates"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(exp.Body), `"cabinets_codes": [
    "C1"
  ]`) {
		t.Fatalf("body = %s", exp.Body)
	}
}

func TestWrite(t *testing.T) {
	exp, err := render(context.Background(), newReports(t), options{report: "monthly", year: 2024, month: 3})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	dst, err := write(exp, dir, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if dst != filepath.Join(dir, "monthly_2024_03.xlsx") {
		t.Fatalf("dst = %s", dst)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, _, err := xlsx.ReadGrid(f); err != nil {
		t.Fatalf("written file is not a workbook: %v", err)
	}

	var stdout bytes.Buffer
	if dst, err := write(exp, "-", &stdout); err != nil || dst != "stdout" || stdout.Len() != len(exp.Body) {
		t.Fatalf("stdout write: dst=%s err=%v len=%d", dst, err, stdout.Len())
	}
}
