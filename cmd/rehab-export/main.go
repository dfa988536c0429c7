package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rehabcenter/internal/cli"
	"rehabcenter/internal/core"
	applog "rehabcenter/internal/log"
	"rehabcenter/internal/services"
	"rehabcenter/internal/taxonomy"
)

const usage = `rehab-export renders a report from the configured record store.

Reports:
  monthly      monthly summary workbook (-year, -month)
  quarterly    three-month summary workbook starting at -year/-month
  cabinets     cabinet rehabs of one month
  assets       asset rehabs of one month (-date-field rehab_date|supply_date)
  spares       spare-part rehabs of one month
  issues       issued items (-full for every column)
  duplicates   repeated identifiers as JSON

Flags:
`

type options struct {
	report    string
	year      int
	month     int
	dateField string
	full      bool
	out       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("rehab-export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.report, "report", "monthly", "Report to render")
	fs.IntVar(&o.year, "year", 0, "Year of the period")
	fs.IntVar(&o.month, "month", 0, "Month of the period (1-12)")
	fs.StringVar(&o.dateField, "date-field", "", "Asset date to bucket by: rehab_date or supply_date")
	fs.BoolVar(&o.full, "full", false, "Issues: export every column")
	fs.StringVar(&o.out, "out", "", "Output file or directory; '-' writes to stdout (default: suggested filename)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return o, err
	}
	o.report = strings.ToLower(strings.TrimSpace(o.report))
	return o, nil
}

func (o options) period() (core.Period, error) {
	if o.year == 0 || o.month == 0 {
		return core.Period{}, fmt.Errorf("%w: -year and -month are required for %s", core.ErrValidation, o.report)
	}
	return core.NewPeriod(o.year, o.month)
}

// render produces the requested report. Workbooks come back as an Export;
// duplicates are encoded as JSON under a fixed name.
func render(ctx context.Context, reports *services.ReportService, o options) (services.Export, error) {
	switch o.report {
	case "issues":
		return reports.ExportIssues(ctx, o.full)
	case "duplicates":
		d, err := reports.Duplicates(ctx)
		if err != nil {
			return services.Export{}, err
		}
		body, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return services.Export{}, err
		}
		return services.Export{Filename: "duplicates.json", ContentType: "application/json", Body: append(body, '\n')}, nil
	}

	p, err := o.period()
	if err != nil {
		return services.Export{}, err
	}
	switch o.report {
	case "monthly":
		return reports.MonthlySummary(ctx, p)
	case "quarterly":
		return reports.QuarterlySummary(ctx, p)
	}

	kind, err := taxonomy.ParseKind(o.report)
	if err != nil {
		return services.Export{}, fmt.Errorf("%w: unknown report %q", core.ErrValidation, o.report)
	}
	field, err := core.ParseDateField(o.dateField)
	if err != nil {
		return services.Export{}, err
	}
	return reports.ExportKind(ctx, kind, p, field)
}

// write stores exp at out. An empty out uses the suggested filename, a
// directory receives the suggested filename inside it.
func write(exp services.Export, out string, stdout io.Writer) (string, error) {
	if out == "-" {
		_, err := stdout.Write(exp.Body)
		return "stdout", err
	}
	if out == "" {
		out = exp.Filename
	} else if info, err := os.Stat(out); err == nil && info.IsDir() {
		out = filepath.Join(out, exp.Filename)
	}
	if err := os.WriteFile(out, exp.Body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	// stdout may carry the workbook
	logger, cfg := cli.Bootstrap(applog.ComponentReport, os.Stderr)
	ctx := context.Background()

	backends, factory := cli.InitBackend(ctx, logger, cfg)
	defer backends.Cleanup()

	var opts []services.ReportOption
	sink, err := factory.CreateArchive(ctx, backends.Config)
	if err != nil {
		logger.Warn("Export archive disabled", "error", err)
	} else if sink != nil {
		opts = append(opts, services.WithArchive(sink))
	}
	reports := services.NewReportService(backends.Store, backends.Policy, opts...)

	exp, err := render(ctx, reports, o)
	if err != nil {
		logger.Error("Failed to render report", "report", o.report, "error", err)
		backends.Cleanup()
		os.Exit(1)
	}
	dst, err := write(exp, o.out, os.Stdout)
	if err != nil {
		logger.Error("Failed to write report", "error", err)
		backends.Cleanup()
		os.Exit(1)
	}
	logger.Info("Report written", "report", o.report, "path", dst, "bytes", len(exp.Body), "archived", exp.Location)
}
