package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rehabcenter/internal/archive"
	"rehabcenter/internal/core"
	"rehabcenter/internal/metrics"
	"rehabcenter/internal/report"
	"rehabcenter/internal/sheets"
	"rehabcenter/internal/storage"
	"rehabcenter/internal/taxonomy"
	"rehabcenter/internal/xlsx"
)

// Export is a rendered workbook ready to be served or written to disk.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
	// Location is where the archive sink stored a copy, if any.
	Location string
}

// ReportService composes statistics, summaries, raw dumps and duplicate
// reports from the record store.
type ReportService struct {
	store    storage.Store
	agg      *report.Aggregator
	composer *report.Composer
	detector *report.Detector
	metrics  *metrics.Metrics
	archive  archive.Sink
	mirror   sheets.SummaryPublisher
	stats    *StatsCache
	now      func() time.Time
}

// ReportOption configures optional collaborators of a ReportService.
type ReportOption func(*ReportService)

// WithMetrics records aggregation and export metrics into m.
func WithMetrics(m *metrics.Metrics) ReportOption {
	return func(s *ReportService) { s.metrics = m }
}

// WithArchive copies every rendered workbook to sink.
func WithArchive(sink archive.Sink) ReportOption {
	return func(s *ReportService) { s.archive = sink }
}

// WithSummaryMirror publishes monthly summaries to p.
func WithSummaryMirror(p sheets.SummaryPublisher) ReportOption {
	return func(s *ReportService) { s.mirror = p }
}

// WithStatsCache serves repeated Stats calls from c. Writes must reach c
// through the record service's publisher for entries to stay fresh.
func WithStatsCache(c *StatsCache) ReportOption {
	return func(s *ReportService) { s.stats = c }
}

func NewReportService(store storage.Store, policy report.SparePolicy, opts ...ReportOption) *ReportService {
	s := &ReportService{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.agg = report.NewAggregator(store, report.WithObserver(func(kind taxonomy.Kind, d time.Duration, err error) {
		s.metrics.ObserveAggregation(string(kind), d, err)
	}))
	s.composer = report.NewComposer(s.agg)
	s.detector = report.NewDetector(store, policy)
	return s
}

// Stats returns one count per taxonomy key of kind for p.
func (s *ReportService) Stats(ctx context.Context, kind taxonomy.Kind, p core.Period, field core.DateField) (map[string]int, error) {
	if s.stats != nil {
		if counts, ok := s.stats.get(kind, p, field); ok {
			return counts, nil
		}
	}
	res, err := s.agg.Aggregate(ctx, kind, p, report.Options{DateField: field})
	if err != nil {
		return nil, err
	}
	if res.UnknownCategory > 0 || res.MissingDate > 0 {
		slog.DebugContext(ctx, "Aggregation skipped records",
			"kind", kind, "period", p.String(),
			"unknown_category", res.UnknownCategory, "missing_date", res.MissingDate)
	}
	if s.stats != nil {
		s.stats.set(kind, p, field, res.Counts)
	}
	return res.Counts, nil
}

// MonthlySummary renders the activity table for p and mirrors it to the
// configured sheet.
func (s *ReportService) MonthlySummary(ctx context.Context, p core.Period) (Export, error) {
	return s.export(ctx, "monthly_summary", report.MonthlyFilename(p), func() ([]byte, error) {
		t, err := s.composer.ComposeMonthly(ctx, p)
		if err != nil {
			return nil, err
		}
		body, err := xlsx.RenderSummary(t, xlsx.SummaryProfile())
		if err != nil {
			return nil, err
		}
		s.mirrorSummary(ctx, t)
		return body, nil
	})
}

// QuarterlySummary renders the three months starting at start side by side.
func (s *ReportService) QuarterlySummary(ctx context.Context, start core.Period) (Export, error) {
	return s.export(ctx, "quarterly_summary", report.QuarterlyFilename(start), func() ([]byte, error) {
		t, err := s.composer.ComposeQuarterly(ctx, start)
		if err != nil {
			return nil, err
		}
		return xlsx.RenderSummary(t, xlsx.SummaryProfile())
	})
}

// ExportKind dumps the records of kind that fall in p.
func (s *ReportService) ExportKind(ctx context.Context, kind taxonomy.Kind, p core.Period, field core.DateField) (Export, error) {
	if !kind.Valid() {
		return Export{}, fmt.Errorf("%w: unsupported kind %q", core.ErrValidation, kind)
	}
	if err := p.Validate(); err != nil {
		return Export{}, err
	}
	return s.export(ctx, kind.Plural(), report.KindFilename(kind, p), func() ([]byte, error) {
		sheet, err := s.kindSheet(ctx, kind, p, field)
		if err != nil {
			return nil, err
		}
		return xlsx.RenderRecords(sheet, xlsx.ExportProfile())
	})
}

func (s *ReportService) kindSheet(ctx context.Context, kind taxonomy.Kind, p core.Period, field core.DateField) (xlsx.Sheet, error) {
	switch kind {
	case taxonomy.KindCabinet:
		recs, err := s.store.CabinetsInPeriod(ctx, p)
		if err != nil {
			return xlsx.Sheet{}, fmt.Errorf("load cabinets for %s: %w", p, err)
		}
		kept := recs[:0]
		for _, r := range recs {
			if core.Matches(r.RehabDate, p) {
				kept = append(kept, r)
			}
		}
		return xlsx.CabinetSheet(kept), nil
	case taxonomy.KindAsset:
		recs, err := s.store.AssetsInPeriod(ctx, p, field)
		if err != nil {
			return xlsx.Sheet{}, fmt.Errorf("load assets for %s: %w", p, err)
		}
		kept := recs[:0]
		for _, r := range recs {
			if core.Matches(r.EffectiveDate(field), p) {
				kept = append(kept, r)
			}
		}
		return xlsx.AssetSheet(kept), nil
	case taxonomy.KindSpare:
		recs, err := s.store.SparesInPeriod(ctx, p)
		if err != nil {
			return xlsx.Sheet{}, fmt.Errorf("load spares for %s: %w", p, err)
		}
		kept := recs[:0]
		for _, r := range recs {
			if core.Matches(r.RehabDate, p) {
				kept = append(kept, r)
			}
		}
		return xlsx.SpareSheet(kept), nil
	}
	return xlsx.Sheet{}, fmt.Errorf("%w: unsupported kind %q", core.ErrValidation, kind)
}

// ExportIssues dumps every issued item oldest first, either with all columns
// or with the short summary layout.
func (s *ReportService) ExportIssues(ctx context.Context, full bool) (Export, error) {
	name, filename := "issue_summary", report.IssueSummaryFilename
	if full {
		name, filename = "issue_full", report.IssueFullFilename
	}
	return s.export(ctx, name, filename, func() ([]byte, error) {
		items, err := s.store.IssuesForExport(ctx)
		if err != nil {
			return nil, fmt.Errorf("load issues: %w", err)
		}
		sheet := xlsx.IssueSummarySheet(items)
		if full {
			sheet = xlsx.IssueSheet(items)
		}
		return xlsx.RenderRecords(sheet, xlsx.ExportProfile())
	})
}

// Duplicates scans every record for repeated identifying keys.
func (s *ReportService) Duplicates(ctx context.Context) (report.Duplicates, error) {
	return s.detector.Find(ctx)
}

func (s *ReportService) export(ctx context.Context, name, filename string, render func() ([]byte, error)) (Export, error) {
	start := time.Now()
	body, err := render()
	s.metrics.ObserveExport(name, time.Since(start), len(body), err)
	if err != nil {
		slog.ErrorContext(ctx, "Export failed", "report", name, "error", err)
		return Export{}, err
	}
	exp := Export{Filename: filename, ContentType: xlsx.ContentType, Body: body}
	exp.Location = s.archiveCopy(ctx, exp)
	slog.InfoContext(ctx, "Export rendered", "report", name, "filename", filename, "bytes", len(body))
	return exp, nil
}

func (s *ReportService) archiveCopy(ctx context.Context, exp Export) string {
	if s.archive == nil {
		return ""
	}
	key := archive.Key(exp.Filename, s.now())
	loc, err := s.archive.Put(ctx, key, exp.Body, exp.ContentType)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to archive export",
			"driver", s.archive.Driver(), "key", key, "error", err)
		return ""
	}
	slog.DebugContext(ctx, "Export archived", "location", loc)
	return loc
}

func (s *ReportService) mirrorSummary(ctx context.Context, t report.Table) {
	if s.mirror == nil {
		return
	}
	ref, err := s.mirror.PublishSummary(ctx, t)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to mirror summary", "tab", sheets.TabName("", t), "error", err)
		return
	}
	slog.InfoContext(ctx, "Summary mirrored", "range", ref)
}
