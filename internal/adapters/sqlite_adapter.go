package adapters

import (
	"context"
	"errors"
	"fmt"

	"spendwise/internal/budget"
	"spendwise/internal/core"
	"spendwise/internal/services"
	"spendwise/internal/sheets"
	"spendwise/internal/storage"
)

// Sheet ids reported by the adapter. They only need to round-trip through
// DeleteRow.
const (
	analyticsSheetID int64 = 0
	trackerSheetID   int64 = 1
)

var errUnknownSheet = errors.New("unknown sheet")

// Layout names the ranges the adapter answers for and the week convention
// it keys transactions with.
type Layout struct {
	AnalyticsRange string
	TrackerRange   string
	Convention     budget.WeekConvention
}

// SQLiteAdapter presents the SQLite store through the spreadsheet ports so
// the report and transaction services work unchanged on the local backend.
// The analytics table is derived: one initialiser row per category budget
// followed by one row per live transaction keyed by its week number.
type SQLiteAdapter struct {
	storage   *storage.SQLiteRepository
	ledger    *services.LedgerService
	analytics sheets.Range
	tracker   sheets.Range
	weeks     budget.WeekNumberer
}

var (
	_ sheets.Store        = (*SQLiteAdapter)(nil)
	_ sheets.BudgetWriter = (*SQLiteAdapter)(nil)
)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, ledger *services.LedgerService, layout Layout) (*SQLiteAdapter, error) {
	analytics, err := sheets.ParseRange(layout.AnalyticsRange)
	if err != nil {
		return nil, fmt.Errorf("analytics range: %w", err)
	}
	tracker, err := sheets.ParseRange(layout.TrackerRange)
	if err != nil {
		return nil, fmt.Errorf("tracker range: %w", err)
	}
	if analytics.Sheet == tracker.Sheet {
		return nil, fmt.Errorf("analytics and tracker ranges must be on different sheets")
	}
	weeks, err := budget.WeekNumbererFor(layout.Convention)
	if err != nil {
		return nil, err
	}
	return &SQLiteAdapter{
		storage:   storage,
		ledger:    ledger,
		analytics: analytics,
		tracker:   tracker,
		weeks:     weeks,
	}, nil
}

// ReadRange implements sheets.RangeReader
func (a *SQLiteAdapter) ReadRange(ctx context.Context, rangeSpec string) (core.RawTable, error) {
	r, err := sheets.ParseRange(rangeSpec)
	if err != nil {
		return nil, sheets.Wrap("read", rangeSpec, err)
	}
	switch r.Sheet {
	case a.analytics.Sheet:
		raw, err := a.analyticsTable(ctx)
		return raw, sheets.Wrap("read", rangeSpec, err)
	case a.tracker.Sheet:
		raw, err := a.trackerTable(ctx)
		return raw, sheets.Wrap("read", rangeSpec, err)
	}
	return nil, sheets.Wrap("read", rangeSpec, errUnknownSheet)
}

func (a *SQLiteAdapter) analyticsTable(ctx context.Context) (core.RawTable, error) {
	budgets, err := a.storage.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := a.storage.ListActiveTransactions(ctx)
	if err != nil {
		return nil, err
	}

	raw := make(core.RawTable, 0, 1+len(budgets)+len(txs))
	raw = append(raw, append([]string(nil), budget.AnalyticsHeader...))
	for _, b := range budgets {
		raw = append(raw, []string{
			"1",
			"0",
			b.Category,
			core.Money{Cents: b.WeeklyBudgetCents}.String(),
			core.InitialiserMarker,
			"",
		})
	}
	for _, t := range txs {
		tx := t.ToCore()
		if tx.Date.IsZero() {
			continue
		}
		raw = append(raw, []string{
			budget.WeekKey(a.weeks, tx.Date.Time),
			tx.Amount.String(),
			tx.Category,
			"",
			tx.Description,
			tx.Date.String(),
		})
	}
	return raw, nil
}

func (a *SQLiteAdapter) trackerTable(ctx context.Context) (core.RawTable, error) {
	txs, err := a.storage.ListActiveTransactions(ctx)
	if err != nil {
		return nil, err
	}
	raw := make(core.RawTable, 0, len(txs))
	for _, t := range txs {
		raw = append(raw, t.ToCore().Row())
	}
	return raw, nil
}

// AppendRow implements sheets.RowAppender for the tracker range.
func (a *SQLiteAdapter) AppendRow(ctx context.Context, rangeSpec string, row []string) (string, error) {
	if err := a.requireTracker("append", rangeSpec); err != nil {
		return "", err
	}
	_, pos, err := a.ledger.CreateTransaction(ctx, core.TransactionFromRow(row))
	if err != nil {
		return "", err
	}
	return a.tracker.Row(pos), nil
}

// UpdateRow implements sheets.RowUpdater for the tracker range.
func (a *SQLiteAdapter) UpdateRow(ctx context.Context, rangeSpec string, rowIndex int, row []string) error {
	if err := a.requireTracker("update", rangeSpec); err != nil {
		return err
	}
	err := a.ledger.UpdateAt(ctx, rowIndex, core.TransactionFromRow(row))
	return a.rowError("update", rowIndex, err)
}

// DeleteRow implements sheets.RowDeleter. Only the tracker sheet is editable.
func (a *SQLiteAdapter) DeleteRow(ctx context.Context, sheetID int64, rowIndex int) error {
	if sheetID != trackerSheetID {
		return sheets.Wrap("delete", "", fmt.Errorf("%w: id %d", errUnknownSheet, sheetID))
	}
	return a.rowError("delete", rowIndex, a.ledger.DeleteAt(ctx, rowIndex))
}

// SheetID implements sheets.SheetResolver
func (a *SQLiteAdapter) SheetID(_ context.Context, title string) (int64, error) {
	switch title {
	case a.analytics.Sheet:
		return analyticsSheetID, nil
	case a.tracker.Sheet:
		return trackerSheetID, nil
	}
	return 0, sheets.Wrap("metadata", title, errUnknownSheet)
}

// SetWeeklyBudget implements sheets.BudgetWriter
func (a *SQLiteAdapter) SetWeeklyBudget(ctx context.Context, category string, amount core.Money) error {
	return a.ledger.SetWeeklyBudget(ctx, category, amount)
}

// Ping checks the database, for readiness probes.
func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

func (a *SQLiteAdapter) requireTracker(op, rangeSpec string) error {
	r, err := sheets.ParseRange(rangeSpec)
	if err != nil {
		return sheets.Wrap(op, rangeSpec, err)
	}
	if r.Sheet != a.tracker.Sheet {
		return sheets.Wrap(op, rangeSpec, fmt.Errorf("%w: %s is read-only", errUnknownSheet, r.Sheet))
	}
	return nil
}

// rowError maps a missing row to the same error the spreadsheet stores give.
func (a *SQLiteAdapter) rowError(op string, rowIndex int, err error) error {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, core.ErrInvalidRowNumber) {
		return sheets.Wrap(op, a.tracker.Row(rowIndex), core.ErrInvalidRowNumber)
	}
	return err
}
