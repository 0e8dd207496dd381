package sheets

import (
	"context"
	"fmt"

	"spendwise/internal/core"
)

// Ports for outbound adapters. Row indexes are 1-based sheet rows.
type (
	// RangeReader returns the full text grid of a named range.
	RangeReader interface {
		ReadRange(ctx context.Context, rangeSpec string) (core.RawTable, error)
	}

	// RowAppender appends one row after the last row of a range and
	// returns the A1 reference of the written row.
	RowAppender interface {
		AppendRow(ctx context.Context, rangeSpec string, row []string) (ref string, err error)
	}

	// RowUpdater overwrites one row of a range in place.
	RowUpdater interface {
		UpdateRow(ctx context.Context, rangeSpec string, rowIndex int, row []string) error
	}

	// RowDeleter removes one row, shifting subsequent rows up.
	RowDeleter interface {
		DeleteRow(ctx context.Context, sheetID int64, rowIndex int) error
	}

	// SheetResolver looks up the numeric id of a sheet by its title.
	SheetResolver interface {
		SheetID(ctx context.Context, title string) (int64, error)
	}

	// Store is the full transaction store capability.
	Store interface {
		RangeReader
		RowAppender
		RowUpdater
		RowDeleter
		SheetResolver
	}

	// BudgetWriter is implemented by stores that keep category budgets
	// outside the analytics table.
	BudgetWriter interface {
		SetWeeklyBudget(ctx context.Context, category string, amount core.Money) error
	}
)

// StoreError reports a failed store call (network, auth, permission or
// an addressing problem such as an unknown sheet).
type StoreError struct {
	Op    string
	Range string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Range == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Range, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Wrap returns err as a *StoreError, or nil when err is nil.
func Wrap(op, rangeSpec string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Range: rangeSpec, Err: err}
}
