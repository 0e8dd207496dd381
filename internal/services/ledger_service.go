package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

// SyncPublisher announces local changes to the mirror worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
	PublishTransactionDelete(ctx context.Context, id, version int64) error
	Close() error
}

// LedgerService orchestrates transaction writes across SQLite and AMQP.
// SQLite is the source of truth; a failed publish leaves the row pending
// for the worker's sweep instead of failing the request.
type LedgerService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
}

// NewLedgerService wires the repository with an optional publisher.
func NewLedgerService(storage *storage.SQLiteRepository, publisher SyncPublisher) *LedgerService {
	return &LedgerService{storage: storage, publisher: publisher}
}

// CreateTransaction saves a transaction locally and publishes a sync
// message. It returns the stored row and its 1-based position.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (storage.Transaction, int, error) {
	if err := t.Validate(); err != nil {
		return storage.Transaction{}, 0, err
	}
	created, pos, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return storage.Transaction{}, 0, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishSync(ctx, created.ID, created.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", created.ID, "error", err)
	}
	return created, pos, nil
}

// UpdateAt overwrites the transaction at a 1-based position.
func (s *LedgerService) UpdateAt(ctx context.Context, row int, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	current, err := s.storage.TransactionAt(ctx, row)
	if err != nil {
		return err
	}
	version, err := s.storage.UpdateTransaction(ctx, current.ID, t)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	if err := s.publishSync(ctx, current.ID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", current.ID, "version", version, "error", err)
	}
	return nil
}

// DeleteAt soft deletes the transaction at a 1-based position. The row
// disappears from reads immediately and is purged once the mirror drops it.
func (s *LedgerService) DeleteAt(ctx context.Context, row int) error {
	current, err := s.storage.TransactionAt(ctx, row)
	if err != nil {
		return err
	}
	version, err := s.storage.SoftDeleteTransaction(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}

	if err := s.publishDelete(ctx, current.ID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", current.ID, "error", err)
	}
	return nil
}

// SetWeeklyBudget stores a category budget. Budgets are not mirrored.
func (s *LedgerService) SetWeeklyBudget(ctx context.Context, category string, amount core.Money) error {
	if category == "" || core.IsAllCategories(category) {
		return core.ErrEmptyCategory
	}
	return s.storage.SetWeeklyBudget(ctx, category, amount)
}

func (s *LedgerService) publishSync(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id, version)
}

func (s *LedgerService) publishDelete(ctx context.Context, id, version int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishTransactionDelete(ctx, id, version)
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
