package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/amqp"
	"spendwise/internal/sheets"
	"spendwise/internal/storage"
)

// SyncWorker mirrors SQLite transactions into the spreadsheet's
// transaction log. The database row, not the message, is authoritative:
// a message only names which transaction to look at.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	store     sheets.Store
	spec      string
	tracker   sheets.Range
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, store sheets.Store, trackerRange string, batchSize int) (*SyncWorker, error) {
	r, err := sheets.ParseRange(trackerRange)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		store:     store,
		spec:      trackerRange,
		tracker:   r,
		batchSize: batchSize,
	}, nil
}

// HandleMessage processes one sync message from AMQP. Returning an error
// requeues the message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"message_id", msg.MessageID,
		"id", msg.ID,
		"version", msg.Version,
		"op", msg.Op)
	return w.Mirror(ctx, msg.ID)
}

// Mirror brings the sheet in line with the current state of one transaction.
func (w *SyncWorker) Mirror(ctx context.Context, id int64) error {
	t, err := w.storage.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction already purged, nothing to mirror", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if t.Deleted {
		return w.mirrorDelete(ctx, t)
	}
	if t.SyncStatus == storage.SyncSynced {
		return nil
	}
	return w.mirrorUpsert(ctx, t)
}

func (w *SyncWorker) mirrorUpsert(ctx context.Context, t storage.Transaction) error {
	row := t.ToCore().Row()
	sheetRow := int(t.SheetRow)

	if sheetRow == 0 {
		ref, err := w.store.AppendRow(ctx, w.spec, row)
		if err != nil {
			w.markError(ctx, t.ID)
			return fmt.Errorf("append to sheet: %w", err)
		}
		sheetRow, err = sheets.RowFromRef(ref)
		if err != nil {
			w.markError(ctx, t.ID)
			return fmt.Errorf("append to sheet: %w", err)
		}
		// Record the row before anything else so a retry updates in place
		// instead of appending a duplicate.
		if err := w.storage.SetSheetRow(ctx, t.ID, sheetRow); err != nil {
			return err
		}
	} else if err := w.store.UpdateRow(ctx, w.spec, sheetRow, row); err != nil {
		w.markError(ctx, t.ID)
		return fmt.Errorf("update sheet row %d: %w", sheetRow, err)
	}

	ok, err := w.storage.MarkSynced(ctx, t.ID, t.Version, sheetRow)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID, "error", err)
		return nil
	}
	if ok {
		slog.InfoContext(ctx, "Successfully synced transaction",
			"id", t.ID,
			"version", t.Version,
			"sheet_row", sheetRow,
			"amount_cents", t.AmountCents)
	}
	return nil
}

func (w *SyncWorker) mirrorDelete(ctx context.Context, t storage.Transaction) error {
	if t.SheetRow > 0 {
		sheetID, err := w.store.SheetID(ctx, w.tracker.Sheet)
		if err != nil {
			w.markError(ctx, t.ID)
			return fmt.Errorf("resolve sheet %s: %w", w.tracker.Sheet, err)
		}
		if err := w.store.DeleteRow(ctx, sheetID, int(t.SheetRow)); err != nil {
			w.markError(ctx, t.ID)
			return fmt.Errorf("delete sheet row %d: %w", t.SheetRow, err)
		}
		if err := w.storage.ShiftSheetRowsAfter(ctx, int(t.SheetRow)); err != nil {
			return err
		}
	}
	if err := w.storage.PurgeTransaction(ctx, t.ID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Successfully deleted transaction from sheet",
		"id", t.ID,
		"sheet_row", t.SheetRow)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, id int64) {
	if err := w.storage.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
	}
}

// ProcessPending mirrors up to limit transactions that are still pending.
// It is the backstop for lost AMQP messages. A non-positive limit uses the
// worker's batch size.
func (w *SyncWorker) ProcessPending(ctx context.Context, limit int) (synced, failed int, err error) {
	if limit <= 0 {
		limit = w.batchSize
	}
	pending, err := w.storage.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))
	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.Mirror(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// StartupSyncCheck drains a larger batch of pending transactions, to
// recover from worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.ProcessPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced+failed == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"synced", synced,
		"errors", failed)
	return nil
}
