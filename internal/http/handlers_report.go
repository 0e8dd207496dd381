package http

import (
	"net/http"
	"sync/atomic"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	applog "spendwise/internal/log"
)

// handleReport serves GET /api/reports/{kind}. Every call reads the
// analytics range afresh.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := budget.ParseReportKind(r.PathValue("kind"))
	if err != nil {
		NotFoundError(err.Error()).Write(w)
		return
	}
	req, err := parseReportRequest(r.URL.Query(), kind, s.now())
	if err != nil {
		s.writeError(w, r, applog.OpReport, err, nil)
		return
	}

	res, err := s.reports.Report(r.Context(), req)
	if err != nil {
		s.writeError(w, r, applog.OpReport, err,
			applog.NewFields().WithReport(string(kind), req.Category, req.Week))
		return
	}

	atomic.AddInt64(&s.appMetrics.reportsServed, 1)
	s.structured.LogReportBuilt(r.Context(), string(res.Kind), res.Category, res.ReferenceWeek, res.Dropped)
	NewJSONResponse().Body(newReportView(res)).Write(w)
}

// handleDashboard serves GET /api/dashboard: cumulative progress and the
// scorecard for the current week plus the latest transactions.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	category := sanitizeInput(r.URL.Query().Get("category"))
	if category == "" {
		category = core.AllCategories
	}
	today := s.now()
	if v := r.URL.Query().Get("today"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			BadRequestError("today must be YYYY-MM-DD").Write(w)
			return
		}
		today = d.Time
	}

	d, err := s.dashboard.Dashboard(r.Context(), category, today)
	if err != nil {
		s.writeError(w, r, applog.OpReport, err,
			applog.NewFields().WithReport("dashboard", category, 0))
		return
	}
	atomic.AddInt64(&s.appMetrics.reportsServed, 1)
	NewJSONResponse().Body(newDashboardView(d)).Write(w)
}
