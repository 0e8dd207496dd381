package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// ReportService fetches the analytics table and runs the report engine.
// Every call reads a fresh snapshot.
type ReportService struct {
	reader  sheets.RangeReader
	engine  *budget.Engine
	spec    string
	timeout time.Duration
}

// NewReportService reads analyticsRange through reader. A zero timeout
// leaves the caller's deadline in charge.
func NewReportService(reader sheets.RangeReader, engine *budget.Engine, analyticsRange string, timeout time.Duration) *ReportService {
	return &ReportService{reader: reader, engine: engine, spec: analyticsRange, timeout: timeout}
}

// Engine exposes the report engine, e.g. for the current week.
func (s *ReportService) Engine() *budget.Engine { return s.engine }

// Report builds one report from a fresh read of the analytics range.
func (s *ReportService) Report(ctx context.Context, req budget.Request) (budget.Result, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return budget.Result{}, err
	}
	res, err := s.engine.BuildFromTable(table, req)
	if err != nil {
		return budget.Result{}, err
	}
	if res.Dropped > 0 {
		slog.DebugContext(ctx, "Analytics rows dropped", "dropped", res.Dropped, "kind", req.Kind)
	}
	return res, nil
}

// Table reads and parses the analytics range.
func (s *ReportService) Table(ctx context.Context) (*budget.Table, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	raw, err := s.reader.ReadRange(ctx, s.spec)
	if err != nil {
		return nil, fmt.Errorf("read analytics: %w", err)
	}
	return budget.ParseTable(raw)
}

// Dashboard is the landing view: cumulative progress, this week's
// scorecard and the latest transactions.
type Dashboard struct {
	ReferenceWeek int
	Cumulative    *budget.CumulativeReport
	Scorecard     *budget.Scorecard
	Recent        []core.LoggedTransaction
}

// DashboardService combines reports and the transaction log.
type DashboardService struct {
	reports      *ReportService
	transactions *TransactionService
	recent       int
}

func NewDashboardService(reports *ReportService, transactions *TransactionService, recent int) *DashboardService {
	return &DashboardService{reports: reports, transactions: transactions, recent: recent}
}

// Dashboard reads the analytics table and the transaction log
// concurrently. A report with nothing to show is left nil rather than
// failing the whole view.
func (s *DashboardService) Dashboard(ctx context.Context, category string, today time.Time) (Dashboard, error) {
	var (
		table  *budget.Table
		recent []core.LoggedTransaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.reports.Table(gctx)
		if err != nil {
			return err
		}
		table = t
		return nil
	})
	if s.transactions != nil {
		g.Go(func() error {
			rows, err := s.transactions.List(gctx, ListOptions{Category: category, Limit: s.recent})
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}
			recent = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	engine := s.reports.Engine()
	d := Dashboard{
		ReferenceWeek: engine.CurrentWeek(today),
		Recent:        recent,
	}
	base := budget.Request{Category: category, Today: today, ReferenceWeek: d.ReferenceWeek, ExcludeFuture: true}

	req := base
	req.Kind = budget.KindCumulative
	res, err := engine.BuildFromTable(table, req)
	if err := keepPartial(err); err != nil {
		return Dashboard{}, err
	}
	d.Cumulative = res.Cumulative

	req = base
	req.Kind = budget.KindScorecard
	res, err = engine.BuildFromTable(table, req)
	if err := keepPartial(err); err != nil {
		return Dashboard{}, err
	}
	d.Scorecard = res.Scorecard
	return d, nil
}

func keepPartial(err error) error {
	var verr *budget.ValidationError
	if errors.As(err, &verr) {
		return nil
	}
	return err
}
