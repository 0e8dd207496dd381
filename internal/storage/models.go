package storage

// Transaction is a row of the transactions table.
type Transaction struct {
	ID          int64
	Date        string
	AmountCents int64
	Category    string
	Description string
	Version     int64
	Deleted     bool
	SheetRow    int64
	SyncStatus  string
}

// CategoryBudget is a row of the category_budgets table.
type CategoryBudget struct {
	Category          string
	WeeklyBudgetCents int64
	Position          int64
}

// Sync states of a transaction.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)
