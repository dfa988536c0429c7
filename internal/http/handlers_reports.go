package http

import (
	"context"
	"net/http"
	"time"

	"rehabcenter/internal/core"
	"rehabcenter/internal/taxonomy"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	kind, err := taxonomy.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	q := r.URL.Query()
	p, err := parsePeriod(q, "year", "month")
	if err != nil {
		writeError(w, r, err)
		return
	}
	field := core.DateFieldPrimary
	if kind == taxonomy.KindAsset {
		if field, err = core.ParseDateField(q.Get("date_field")); err != nil {
			writeError(w, r, err)
			return
		}
	}
	counts, err := s.reports.Stats(r.Context(), kind, p, field)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleExportKind(kind taxonomy.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		p, err := parsePeriod(q, "year", "month")
		if err != nil {
			writeError(w, r, err)
			return
		}
		field, err := core.ParseDateField(q.Get("date_field"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		exp, err := s.reports.ExportKind(r.Context(), kind, p, field)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeExport(w, exp)
	}
}

func (s *Server) handleExportIssues(full bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := s.reports.ExportIssues(r.Context(), full)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeExport(w, exp)
	}
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r.URL.Query(), "year", "month")
	if err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := s.reports.MonthlySummary(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeExport(w, exp)
}

func (s *Server) handleQuarterlySummary(w http.ResponseWriter, r *http.Request) {
	start, err := parsePeriod(r.URL.Query(), "start_year", "start_month")
	if err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := s.reports.QuarterlySummary(r.Context(), start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeExport(w, exp)
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Duplicates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady pings the store with a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{"store": "ok"}
	if s.store == nil {
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.store.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	checks["rate_limiter"] = map[string]int{"active_clients": s.limiter.ActiveClients()}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
