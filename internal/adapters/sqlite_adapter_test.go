package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/services"
	"spendwise/internal/sheets"
	"spendwise/internal/storage"

	"github.com/shopspring/decimal"
)

const (
	analyticsRange = "Analytics!A:F"
	trackerRange   = "Tracker_Sheet!A:D"
)

func newTestAdapter(t *testing.T) *SQLiteAdapter {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "spendwise.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	a, err := NewSQLiteAdapter(repo, services.NewLedgerService(repo, nil), Layout{
		AnalyticsRange: analyticsRange,
		TrackerRange:   trackerRange,
		Convention:     budget.ConventionMondayAnchored,
	})
	if err != nil {
		t.Fatalf("NewSQLiteAdapter: %v", err)
	}
	return a
}

func TestSQLiteAdapter_TrackerRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	ref, err := a.AppendRow(ctx, trackerRange, []string{"2025-01-02", "20", "Food", "Groceries"})
	if err != nil || ref != "Tracker_Sheet!A1:D1" {
		t.Fatalf("append: ref=%q err=%v", ref, err)
	}
	if ref, _ = a.AppendRow(ctx, trackerRange, []string{"2025-01-08", "$1,030.50", "Petrol", ""}); ref != "Tracker_Sheet!A2:D2" {
		t.Fatalf("unexpected second ref %q", ref)
	}

	if err := a.UpdateRow(ctx, trackerRange, 1, []string{"2025-01-03", "25", "Food", "Groceries"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	raw, err := a.ReadRange(ctx, trackerRange)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := core.RawTable{
		{"2025-01-03", "25.00", "Food", "Groceries"},
		{"2025-01-08", "1030.50", "Petrol", ""},
	}
	if len(raw) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), raw)
	}
	for i := range want {
		for j := range want[i] {
			if raw[i][j] != want[i][j] {
				t.Errorf("cell [%d][%d] = %q, want %q", i, j, raw[i][j], want[i][j])
			}
		}
	}

	id, err := a.SheetID(ctx, "Tracker_Sheet")
	if err != nil {
		t.Fatalf("sheet id: %v", err)
	}
	if err := a.DeleteRow(ctx, id, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	raw, _ = a.ReadRange(ctx, trackerRange)
	if len(raw) != 1 || raw[0][2] != "Petrol" {
		t.Fatalf("expected the remaining row to shift up, got %v", raw)
	}
}

func TestSQLiteAdapter_AnalyticsTable(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	if err := a.SetWeeklyBudget(ctx, "Food", core.Money{Cents: 5000}); err != nil {
		t.Fatalf("budget: %v", err)
	}
	for _, row := range [][]string{
		{"2025-01-02", "20", "Food", "Groceries"},
		{"2025-01-08", "30", "Food", "Dinner"},
	} {
		if _, err := a.AppendRow(ctx, trackerRange, row); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	raw, err := a.ReadRange(ctx, analyticsRange)
	if err != nil {
		t.Fatalf("read analytics: %v", err)
	}
	if len(raw) != 4 {
		t.Fatalf("expected header, budget row and two transactions, got %v", raw)
	}
	// Monday-anchored: Jan 2 2025 is week 1, Jan 8 is week 2.
	if raw[2][0] != "2025-W01" || raw[3][0] != "2025-W02" {
		t.Fatalf("unexpected week numbers %v / %v", raw[2], raw[3])
	}

	engine, _ := budget.NewEngine(budget.ConventionMondayAnchored)
	res, err := engine.Build(raw, budget.Request{
		Kind:          budget.KindCumulative,
		Category:      "Food",
		ReferenceWeek: 2,
		Today:         time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	m := res.Cumulative.Metrics
	if !m.WeeklyBudget.Equal(decimal.NewFromInt(50)) || !m.TotalSpendToDate.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestSQLiteAdapter_AnalyticsKeysSeparateYears(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	for _, row := range [][]string{
		{"2024-02-14", "10", "Food", "Lunch"},
		{"2025-02-12", "25", "Food", "Lunch"},
	} {
		if _, err := a.AppendRow(ctx, trackerRange, row); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	raw, err := a.ReadRange(ctx, analyticsRange)
	if err != nil {
		t.Fatalf("read analytics: %v", err)
	}
	table, err := budget.ParseTable(raw)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	spend := budget.Aggregate(table.Records, budget.Filter{Category: "All"})
	keys := spend.Keys()
	if len(keys) != 2 || keys[0] == keys[1] {
		t.Fatalf("expected one key per year, got %v", keys)
	}
	if budget.WeekSortKey(keys[0]) >= budget.WeekSortKey(keys[1]) {
		t.Fatalf("keys should sort by year first: %v", keys)
	}
	if !spend.Key(keys[1]).Equal(decimal.NewFromInt(25)) {
		t.Fatalf("2025 key = %s", spend.Key(keys[1]))
	}
}

func TestSQLiteAdapter_Errors(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	var storeErr *sheets.StoreError
	if _, err := a.ReadRange(ctx, "Other!A:B"); !errors.As(err, &storeErr) {
		t.Errorf("expected a store error for an unknown sheet, got %v", err)
	}
	if _, err := a.AppendRow(ctx, analyticsRange, []string{"1"}); !errors.As(err, &storeErr) {
		t.Errorf("expected the analytics sheet to be read-only, got %v", err)
	}
	if _, err := a.AppendRow(ctx, trackerRange, []string{"", "20", "Food", ""}); !errors.Is(err, core.ErrMissingDate) {
		t.Errorf("expected ErrMissingDate, got %v", err)
	}
	if err := a.UpdateRow(ctx, trackerRange, 4, []string{"2025-01-02", "20", "Food", ""}); !errors.Is(err, core.ErrInvalidRowNumber) || !errors.As(err, &storeErr) {
		t.Errorf("expected a missing row store error, got %v", err)
	}
	if err := a.DeleteRow(ctx, analyticsSheetID, 1); !errors.As(err, &storeErr) {
		t.Errorf("expected analytics rows to be undeletable, got %v", err)
	}
	if _, err := a.SheetID(ctx, "Other"); !errors.As(err, &storeErr) {
		t.Errorf("expected unknown sheet title to fail, got %v", err)
	}

	if _, err := NewSQLiteAdapter(nil, nil, Layout{
		AnalyticsRange: trackerRange,
		TrackerRange:   trackerRange,
		Convention:     budget.ConventionISO,
	}); err == nil {
		t.Error("expected ranges on the same sheet to be rejected")
	}
	if _, err := NewSQLiteAdapter(nil, nil, Layout{
		AnalyticsRange: analyticsRange,
		TrackerRange:   trackerRange,
		Convention:     "lunar",
	}); err == nil {
		t.Error("expected an unknown convention to be rejected")
	}
}
