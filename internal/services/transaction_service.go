package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/sheets"
)

// TransactionLimits are the page sizes offered by the transaction log.
// Zero means every row.
var TransactionLimits = []int{5, 10, 15, 20, 0}

// ParseLimit reads a transaction limit: "5", "10", "15", "20" or "All".
// An empty string selects the default of 10.
func ParseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return 10, nil
	case strings.EqualFold(s, core.AllCategories):
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q", s)
	}
	for _, l := range TransactionLimits {
		if l != 0 && l == n {
			return n, nil
		}
	}
	return 0, fmt.Errorf("invalid limit %q", s)
}

// ListOptions selects rows of the transaction log.
type ListOptions struct {
	Category string
	// Limit caps the result after sorting. Zero returns every row.
	Limit int
}

// TransactionService reads and edits the transaction log range. Rows are
// addressed by their 1-based position in the range.
type TransactionService struct {
	store   sheets.Store
	spec    string
	tracker sheets.Range
}

// NewTransactionService binds a store to the log range, e.g. "Tracker_Sheet!A:D".
func NewTransactionService(store sheets.Store, trackerRange string) (*TransactionService, error) {
	r, err := sheets.ParseRange(trackerRange)
	if err != nil {
		return nil, err
	}
	return &TransactionService{store: store, spec: trackerRange, tracker: r}, nil
}

// List returns the log newest first. Rows with an unreadable date sort last.
func (s *TransactionService) List(ctx context.Context, opts ListOptions) ([]core.LoggedTransaction, error) {
	raw, err := s.store.ReadRange(ctx, s.spec)
	if err != nil {
		return nil, err
	}

	out := make([]core.LoggedTransaction, 0, len(raw))
	for i, row := range raw {
		if isBlank(row) {
			continue
		}
		tx := core.TransactionFromRow(row)
		if !core.IsAllCategories(opts.Category) && tx.Category != opts.Category {
			continue
		}
		out = append(out, core.LoggedTransaction{Row: i + 1, Transaction: tx})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b.Time)
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Create appends a validated transaction and returns its row.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	ref, err := s.store.AppendRow(ctx, s.spec, t.Row())
	if err != nil {
		return 0, err
	}
	row, err := sheets.RowFromRef(ref)
	if err != nil {
		// The write succeeded; the caller re-fetches the log anyway.
		slog.WarnContext(ctx, "Append returned an unreadable reference", "ref", ref, "error", err)
		return 0, nil
	}
	slog.InfoContext(ctx, "Transaction logged",
		"row", row,
		"category", t.Category,
		"amount", t.Amount.String())
	return row, nil
}

// Update overwrites the transaction at row.
func (s *TransactionService) Update(ctx context.Context, row int, t core.Transaction) error {
	if row < 1 {
		return core.ErrInvalidRowNumber
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateRow(ctx, s.spec, row, t.Row()); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction updated", "row", row)
	return nil
}

// Delete removes the transaction at row; later rows shift up by one.
func (s *TransactionService) Delete(ctx context.Context, row int) error {
	if row < 1 {
		return core.ErrInvalidRowNumber
	}
	sheetID, err := s.store.SheetID(ctx, s.tracker.Sheet)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRow(ctx, sheetID, row); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted", "row", row, "sheet", s.tracker.Sheet)
	return nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
