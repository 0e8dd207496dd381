package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const transactionColumns = `id, date, amount_cents, category, description, version, deleted, sheet_row, sync_status`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Date, &t.AmountCents, &t.Category, &t.Description,
		&t.Version, &t.Deleted, &t.SheetRow, &t.SyncStatus)
	return t, err
}

func (q *Queries) listTransactions(ctx context.Context, query string, args ...interface{}) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CreateTransactionParams struct {
	Date        string
	AmountCents int64
	Category    string
	Description string
}

const createTransaction = `INSERT INTO transactions (date, amount_cents, category, description)
VALUES (?, ?, ?, ?)
RETURNING ` + transactionColumns

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, createTransaction,
		arg.Date, arg.AmountCents, arg.Category, arg.Description))
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const getActiveTransactionAt = `SELECT ` + transactionColumns + ` FROM transactions
WHERE deleted = 0
ORDER BY id
LIMIT 1 OFFSET ?`

// GetActiveTransactionAt returns the active transaction at a 0-based offset.
func (q *Queries) GetActiveTransactionAt(ctx context.Context, offset int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getActiveTransactionAt, offset))
}

const countActiveThrough = `SELECT COUNT(*) FROM transactions WHERE deleted = 0 AND id <= ?`

func (q *Queries) CountActiveThrough(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countActiveThrough, id).Scan(&n)
	return n, err
}

const listActiveTransactions = `SELECT ` + transactionColumns + ` FROM transactions
WHERE deleted = 0
ORDER BY id`

func (q *Queries) ListActiveTransactions(ctx context.Context) ([]Transaction, error) {
	return q.listTransactions(ctx, listActiveTransactions)
}

type UpdateTransactionParams struct {
	ID          int64
	Date        string
	AmountCents int64
	Category    string
	Description string
}

const updateTransaction = `UPDATE transactions
SET date = ?, amount_cents = ?, category = ?, description = ?,
    version = version + 1, sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted = 0
RETURNING version`

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	var version int64
	err := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Date, arg.AmountCents, arg.Category, arg.Description, arg.ID).Scan(&version)
	return version, err
}

const softDeleteTransaction = `UPDATE transactions
SET deleted = 1, version = version + 1, sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted = 0
RETURNING version`

func (q *Queries) SoftDeleteTransaction(ctx context.Context, id int64) (int64, error) {
	var version int64
	err := q.db.QueryRowContext(ctx, softDeleteTransaction, id).Scan(&version)
	return version, err
}

const purgeTransaction = `DELETE FROM transactions WHERE id = ? AND deleted = 1`

func (q *Queries) PurgeTransaction(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, purgeTransaction, id)
	return err
}

const getPendingSync = `SELECT ` + transactionColumns + ` FROM transactions
WHERE sync_status IN ('pending', 'error')
ORDER BY id
LIMIT ?`

func (q *Queries) GetPendingSync(ctx context.Context, limit int64) ([]Transaction, error) {
	return q.listTransactions(ctx, getPendingSync, limit)
}

type MarkSyncedParams struct {
	ID       int64
	Version  int64
	SheetRow int64
}

// markSynced only applies when the row has not changed since it was read,
// so a concurrent edit stays pending.
const markSynced = `UPDATE transactions
SET sync_status = 'synced', sheet_row = ?
WHERE id = ? AND version = ?`

func (q *Queries) MarkSynced(ctx context.Context, arg MarkSyncedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, markSynced, arg.SheetRow, arg.ID, arg.Version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const setSheetRow = `UPDATE transactions SET sheet_row = ? WHERE id = ?`

func (q *Queries) SetSheetRow(ctx context.Context, id, sheetRow int64) error {
	_, err := q.db.ExecContext(ctx, setSheetRow, sheetRow, id)
	return err
}

const markSyncError = `UPDATE transactions SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markSyncError, id)
	return err
}

const shiftSheetRowsAfter = `UPDATE transactions SET sheet_row = sheet_row - 1 WHERE sheet_row > ?`

func (q *Queries) ShiftSheetRowsAfter(ctx context.Context, sheetRow int64) error {
	_, err := q.db.ExecContext(ctx, shiftSheetRowsAfter, sheetRow)
	return err
}

const countSyncStatus = `SELECT sync_status, COUNT(*) FROM transactions GROUP BY sync_status`

func (q *Queries) CountSyncStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx, countSyncStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

const upsertCategoryBudget = `INSERT INTO category_budgets (category, weekly_budget_cents, position)
VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM category_budgets))
ON CONFLICT (category) DO UPDATE
SET weekly_budget_cents = excluded.weekly_budget_cents, updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertCategoryBudget(ctx context.Context, category string, cents int64) error {
	_, err := q.db.ExecContext(ctx, upsertCategoryBudget, category, cents)
	return err
}

const listCategoryBudgets = `SELECT category, weekly_budget_cents, position FROM category_budgets ORDER BY position`

func (q *Queries) ListCategoryBudgets(ctx context.Context) ([]CategoryBudget, error) {
	rows, err := q.db.QueryContext(ctx, listCategoryBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryBudget
	for rows.Next() {
		var b CategoryBudget
		if err := rows.Scan(&b.Category, &b.WeeklyBudgetCents, &b.Position); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
