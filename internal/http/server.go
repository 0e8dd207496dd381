// Package http exposes the report engine and the transaction log as a
// JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
	"spendwise/internal/sheets"
)

// Deps are the collaborators the server routes to. Reports, Dashboard and
// Transactions are required; Budgets is only set for stores that keep
// budgets outside the analytics table.
type Deps struct {
	Reports      *services.ReportService
	Dashboard    *services.DashboardService
	Transactions *services.TransactionService
	Budgets      sheets.BudgetWriter
	Categories   []string
	// Ready probes the backing store for /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *applog.Logger
}

type appMetrics struct {
	reportsServed       int64
	transactionsWritten int64
	uptime              time.Time
}

type Server struct {
	http.Server
	reports      *services.ReportService
	dashboard    *services.DashboardService
	transactions *services.TransactionService
	budgets      sheets.BudgetWriter
	categories   []string
	ready        func(ctx context.Context) error

	logger           *applog.Logger
	structured       *applog.StructuredLogger
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics
	now              func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		reports:          deps.Reports,
		dashboard:        deps.Dashboard,
		transactions:     deps.Transactions,
		budgets:          deps.Budgets,
		categories:       append([]string(nil), deps.Categories...),
		ready:            deps.Ready,
		logger:           logger,
		structured:       applog.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		securityDetector: security.NewDetector(),
		appMetrics:       &appMetrics{uptime: time.Now()},
		now:              time.Now,
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/reports/{kind}", s.handleReport)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{row}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{row}", s.handleDeleteTransaction)

	mux.HandleFunc("PUT /api/budgets/{category}", s.handleSetBudget)

	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit,
		http.MethodPost, http.MethodPut, http.MethodDelete)

	var handler http.Handler = mux
	handler = limited(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Please try again later.").Write(w)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
