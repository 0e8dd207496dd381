package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwise/internal/budget"
	"spendwise/internal/sheets"
	"spendwise/internal/sheets/memory"

	"github.com/shopspring/decimal"
)

const analyticsRange = "Analytics!A:F"

func analyticsRows() [][]string {
	return [][]string{
		budget.AnalyticsHeader,
		{"1", "0", "Food", "50", "initialise", ""},
		{"1", "0", "Petrol", "40", "initialise", ""},
		{"1", "20", "Food", "", "Groceries", "2025-01-02"},
		{"2", "30", "Food", "", "Dinner", "2025-01-08"},
		{"2", "45", "Petrol", "", "Fill up", "2025-01-07"},
		{"3", "10", "Food", "", "Future", "2025-01-15"},
	}
}

func newReportFixture(t *testing.T) (*ReportService, *TransactionService) {
	t.Helper()
	store := memory.New()
	store.Seed("Analytics", analyticsRows())
	store.Seed("Tracker_Sheet", [][]string{
		{"2025-01-02", "20", "Food", "Groceries"},
		{"2025-01-08", "30", "Food", "Dinner"},
		{"2025-01-07", "45", "Petrol", "Fill up"},
	})
	engine, err := budget.NewEngine(budget.ConventionMondayAnchored)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	txs, err := NewTransactionService(store, trackerRange)
	if err != nil {
		t.Fatalf("NewTransactionService: %v", err)
	}
	return NewReportService(store, engine, analyticsRange, time.Second), txs
}

func TestReportService_Report(t *testing.T) {
	reports, _ := newReportFixture(t)
	ctx := context.Background()

	res, err := reports.Report(ctx, budget.Request{
		Kind:          budget.KindCumulative,
		Category:      "Food",
		ReferenceWeek: 2,
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	m := res.Cumulative.Metrics
	if !m.TotalSpendToDate.Equal(decimal.NewFromInt(50)) || !m.TotalBudgetToDate.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected metrics %+v", m)
	}

	_, err = reports.Report(ctx, budget.Request{Kind: budget.KindPeriod, Category: "Travel"})
	var verr *budget.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestReportService_StoreErrors(t *testing.T) {
	engine, _ := budget.NewEngine(budget.ConventionISO)
	reports := NewReportService(memory.New(), engine, analyticsRange, 0)

	_, err := reports.Report(context.Background(), budget.Request{Kind: budget.KindScorecard})
	var storeErr *sheets.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected a store error for a missing sheet, got %v", err)
	}

	store := memory.New()
	store.Seed("Analytics", [][]string{budget.AnalyticsHeader})
	reports = NewReportService(store, engine, analyticsRange, 0)
	_, err = reports.Report(context.Background(), budget.Request{Kind: budget.KindScorecard})
	var noData *budget.NoDataError
	if !errors.As(err, &noData) {
		t.Fatalf("expected NoDataError, got %v", err)
	}
}

func TestDashboardService(t *testing.T) {
	reports, txs := newReportFixture(t)
	dash := NewDashboardService(reports, txs, 2)
	today := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC) // week 2

	d, err := dash.Dashboard(context.Background(), "", today)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.ReferenceWeek != 2 {
		t.Fatalf("expected reference week 2, got %d", d.ReferenceWeek)
	}
	if d.Cumulative == nil || d.Scorecard == nil {
		t.Fatalf("expected both reports, got %+v", d)
	}
	// The week-3 row is dated after today and excluded.
	if !d.Cumulative.Metrics.TotalSpendToDate.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("expected 95 spent to date, got %s", d.Cumulative.Metrics.TotalSpendToDate)
	}
	if d.Scorecard.TotalCategories != 2 || d.Scorecard.Rows[0].Category != "Petrol" {
		t.Fatalf("unexpected scorecard %+v", d.Scorecard)
	}
	if len(d.Recent) != 2 || d.Recent[0].Row != 2 {
		t.Fatalf("unexpected recent transactions %+v", d.Recent)
	}
}

func TestDashboardService_UnknownCategoryKeepsScorecard(t *testing.T) {
	reports, txs := newReportFixture(t)
	dash := NewDashboardService(reports, txs, 5)

	d, err := dash.Dashboard(context.Background(), "Travel", time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Cumulative != nil {
		t.Fatalf("expected no cumulative report for an unknown category, got %+v", d.Cumulative)
	}
	if d.Scorecard == nil {
		t.Fatal("scorecard covers every category and should still be present")
	}
	if len(d.Recent) != 0 {
		t.Fatalf("expected no recent Travel transactions, got %+v", d.Recent)
	}
}

func TestDashboardService_ReadFailure(t *testing.T) {
	engine, _ := budget.NewEngine(budget.ConventionISO)
	reports := NewReportService(memory.New(), engine, analyticsRange, 0)

	if _, err := NewDashboardService(reports, nil, 5).Dashboard(context.Background(), "", time.Now()); err == nil {
		t.Fatal("expected the missing analytics sheet to fail the dashboard")
	}
}
