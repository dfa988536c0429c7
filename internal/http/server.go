package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"rehabcenter/internal/metrics"
	"rehabcenter/internal/middleware/ratelimit"
	"rehabcenter/internal/middleware/security"
	"rehabcenter/internal/middleware/trace"
	"rehabcenter/internal/services"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune the server. Zero values select defaults.
type Options struct {
	RateLimit    ratelimit.Config
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	http.Server
	records *services.RecordService
	reports *services.ReportService
	store   Pinger
	metrics *metrics.Metrics

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// m may be nil, in which case /metrics answers 404.
func NewServer(addr string, records *services.RecordService, reports *services.ReportService, store Pinger, m *metrics.Metrics, opts Options) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		// exports render synchronously
		opts.WriteTimeout = 60 * time.Second
	}

	s := &Server{
		records:  records,
		reports:  reports,
		store:    store,
		metrics:  m,
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, m.ObserveHTTP)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	api := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		slog.WarnContext(r.Context(), "Rate limit exceeded", "client_ip", s.detector.ExtractClientIP(r), "path", r.URL.Path)
		writeDetail(w, http.StatusTooManyRequests, "rate limit exceeded")
	})
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, api(fn))
	}

	handle("POST /api/issue", s.handleCreateIssue)
	handle("GET /api/issue", s.handleListIssues)

	handle("POST /api/cabinets", s.handleCreateCabinet)
	handle("GET /api/cabinets", s.handleListCabinets)
	handle("GET /api/cabinets/find", s.handleFindCabinet)
	handle("PUT /api/cabinets/{id}", s.handleUpdateCabinet)

	handle("POST /api/assets", s.handleCreateAsset)
	handle("GET /api/assets", s.handleListAssets)
	handle("GET /api/assets/find", s.handleFindAsset)
	handle("PUT /api/assets/{id}", s.handleUpdateAsset)

	handle("POST /api/spares", s.handleCreateSpare)
	handle("GET /api/spares", s.handleListSpares)
	handle("GET /api/spares/find", s.handleFindSpare)
	handle("PUT /api/spares/{id}", s.handleUpdateSpare)

	handle("GET /api/stats/{kind}", s.handleStats)

	handle("GET /api/export/issue/full.xlsx", s.handleExportIssues(true))
	handle("GET /api/export/issue/summary.xlsx", s.handleExportIssues(false))
	handle("GET /api/export/cabinets.xlsx", s.handleExportKind("cabinet"))
	handle("GET /api/export/assets.xlsx", s.handleExportKind("asset"))
	handle("GET /api/export/spares.xlsx", s.handleExportKind("spare"))
	handle("GET /api/export/monthly_summary.xlsx", s.handleMonthlySummary)
	handle("GET /api/export/quarterly_summary.xlsx", s.handleQuarterlySummary)

	handle("GET /api/validate/duplicates", s.handleDuplicates)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())
}

// Shutdown stops background helpers and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
