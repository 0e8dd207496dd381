package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row addressed by id or position does not exist.
var ErrNotFound = errors.New("transaction not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; serialising through one connection
	// avoids SQLITE_BUSY between the server and its sync loop.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateTransaction stores a new transaction and returns it with its
// 1-based position among active transactions.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (Transaction, int, error) {
	created, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Date:        t.Date.String(),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Description: t.Description,
	})
	if err != nil {
		return Transaction{}, 0, fmt.Errorf("create transaction: %w", err)
	}
	pos, err := r.queries.CountActiveThrough(ctx, created.ID)
	if err != nil {
		return Transaction{}, 0, fmt.Errorf("position of transaction %d: %w", created.ID, err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", created.ID,
		"category", created.Category,
		"amount_cents", created.AmountCents,
		"date", created.Date)

	return created, int(pos), nil
}

// TransactionAt returns the active transaction at a 1-based position.
func (r *SQLiteRepository) TransactionAt(ctx context.Context, row int) (Transaction, error) {
	if row < 1 {
		return Transaction{}, core.ErrInvalidRowNumber
	}
	t, err := r.queries.GetActiveTransactionAt(ctx, int64(row-1))
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, fmt.Errorf("row %d: %w", row, ErrNotFound)
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("get transaction at row %d: %w", row, err)
	}
	return t, nil
}

// GetTransaction retrieves a single transaction by ID, deleted or not.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	t, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// ListActiveTransactions returns live transactions in insertion order.
func (r *SQLiteRepository) ListActiveTransactions(ctx context.Context) ([]Transaction, error) {
	items, err := r.queries.ListActiveTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

// UpdateTransaction overwrites a live transaction and returns its new version.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) (int64, error) {
	version, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:          id,
		Date:        t.Date.String(),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Description: t.Description,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	return version, nil
}

// SoftDeleteTransaction hides a transaction until its deletion is mirrored.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id int64) (int64, error) {
	version, err := r.queries.SoftDeleteTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("soft delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction soft deleted", "id", id, "version", version)
	return version, nil
}

// PurgeTransaction removes a soft-deleted transaction for good.
func (r *SQLiteRepository) PurgeTransaction(ctx context.Context, id int64) error {
	if err := r.queries.PurgeTransaction(ctx, id); err != nil {
		return fmt.Errorf("purge transaction: %w", err)
	}
	return nil
}

// GetPendingSync returns transactions whose latest version has not been
// mirrored yet, including soft-deleted ones and earlier failures.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]Transaction, error) {
	items, err := r.queries.GetPendingSync(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return items, nil
}

// MarkSynced records a mirrored version. It reports false when the
// transaction changed in the meantime and must be synced again.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id, version int64, sheetRow int) (bool, error) {
	n, err := r.queries.MarkSynced(ctx, MarkSyncedParams{ID: id, Version: version, SheetRow: int64(sheetRow)})
	if err != nil {
		return false, fmt.Errorf("mark transaction synced: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "Transaction changed during sync, left pending", "id", id, "version", version)
		return false, nil
	}
	return true, nil
}

// SetSheetRow records where a transaction was written in the mirror.
func (r *SQLiteRepository) SetSheetRow(ctx context.Context, id int64, sheetRow int) error {
	if err := r.queries.SetSheetRow(ctx, id, int64(sheetRow)); err != nil {
		return fmt.Errorf("set sheet row: %w", err)
	}
	return nil
}

// MarkSyncError marks a transaction as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

// ShiftSheetRowsAfter follows a mirror row deletion: every recorded sheet
// row below it moves up by one.
func (r *SQLiteRepository) ShiftSheetRowsAfter(ctx context.Context, sheetRow int) error {
	if err := r.queries.ShiftSheetRowsAfter(ctx, int64(sheetRow)); err != nil {
		return fmt.Errorf("shift sheet rows: %w", err)
	}
	return nil
}

// SyncStats counts transactions per sync status.
func (r *SQLiteRepository) SyncStats(ctx context.Context) (map[string]int64, error) {
	stats, err := r.queries.CountSyncStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sync status: %w", err)
	}
	return stats, nil
}

// SetWeeklyBudget creates or updates a category budget. New categories are
// appended to the budget order.
func (r *SQLiteRepository) SetWeeklyBudget(ctx context.Context, category string, amount core.Money) error {
	if amount.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := r.queries.UpsertCategoryBudget(ctx, category, amount.Cents); err != nil {
		return fmt.Errorf("set weekly budget for %s: %w", category, err)
	}
	slog.InfoContext(ctx, "Weekly budget updated", "category", category, "amount_cents", amount.Cents)
	return nil
}

// ListBudgets returns category budgets in the order they were first set.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]CategoryBudget, error) {
	items, err := r.queries.ListCategoryBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return items, nil
}

// ToCore converts a stored row into a domain transaction.
func (t Transaction) ToCore() core.Transaction {
	d, _ := core.ParseDate(t.Date)
	return core.Transaction{
		Date:        d,
		Amount:      core.Money{Cents: t.AmountCents},
		Category:    t.Category,
		Description: t.Description,
	}
}
