package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PendingSyncer mirrors a batch of pending transactions.
type PendingSyncer interface {
	ProcessPending(ctx context.Context, limit int) (synced, failed int, err error)
}

// SyncStatsReader counts transactions per sync status.
type SyncStatsReader interface {
	SyncStats(ctx context.Context) (map[string]int64, error)
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to sweep for pending rows (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of rows to mirror per sweep (default: 10)
	BatchSize int

	// StatsInterval is how often to log sync status counts (default: 1h)
	StatsInterval time.Duration
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval:  10 * time.Second,
		BatchSize:     10,
		StatsInterval: 1 * time.Hour,
	}
}

// SyncProcessor periodically sweeps transactions that were never mirrored,
// e.g. because their AMQP message was lost or the sheet write failed.
type SyncProcessor struct {
	syncer PendingSyncer
	stats  SyncStatsReader
	config SyncProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor. stats may be nil.
func NewSyncProcessor(syncer PendingSyncer, stats SyncStatsReader, config SyncProcessorConfig) *SyncProcessor {
	defaults := DefaultSyncProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.StatsInterval <= 0 {
		config.StatsInterval = defaults.StatsInterval
	}
	return &SyncProcessor{
		syncer: syncer,
		stats:  stats,
		config: config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	statsTicker := time.NewTicker(p.config.StatsInterval)
	defer statsTicker.Stop()

	p.sweep(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.sweep(ctx)
		case <-statsTicker.C:
			p.logStats(ctx)
		}
	}
}

func (p *SyncProcessor) sweep(ctx context.Context) {
	synced, failed, err := p.syncer.ProcessPending(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
		return
	}
	if synced+failed > 0 {
		slog.InfoContext(ctx, "Periodic sync swept pending transactions",
			"synced", synced,
			"errors", failed)
	}
}

func (p *SyncProcessor) logStats(ctx context.Context) {
	if p.stats == nil {
		return
	}
	stats, err := p.stats.SyncStats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read sync stats", "error", err)
		return
	}
	args := make([]any, 0, 2*len(stats))
	for status, n := range stats {
		args = append(args, status, n)
	}
	slog.InfoContext(ctx, "Sync status", args...)
}
