package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/rs/zerolog"
)

// SnapshotWorker periodically archives a report snapshot for every workspace
type SnapshotWorker struct {
	snapshotService *SnapshotService
	transactionRepo domain.TransactionRepository
	logger          zerolog.Logger
	interval        time.Duration
	stopCh          chan struct{}
	doneCh          chan struct{}
	mu              sync.Mutex
	running         bool
}

// SnapshotWorkerConfig holds configuration for the snapshot worker
type SnapshotWorkerConfig struct {
	Interval time.Duration
}

// DefaultSnapshotWorkerConfig returns the daily schedule
func DefaultSnapshotWorkerConfig() SnapshotWorkerConfig {
	return SnapshotWorkerConfig{Interval: 24 * time.Hour}
}

// NewSnapshotWorker creates a new snapshot worker
func NewSnapshotWorker(
	snapshotService *SnapshotService,
	transactionRepo domain.TransactionRepository,
	logger zerolog.Logger,
	config SnapshotWorkerConfig,
) *SnapshotWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultSnapshotWorkerConfig().Interval
	}

	return &SnapshotWorker{
		snapshotService: snapshotService,
		transactionRepo: transactionRepo,
		logger:          logger.With().Str("component", "snapshot_worker").Logger(),
		interval:        config.Interval,
	}
}

// Start begins the background archive loop. A stopped worker can be started again.
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting snapshot worker")

	go w.run(ctx, stopCh, doneCh)
}

// Stop gracefully stops the snapshot worker and waits for the loop to exit
func (w *SnapshotWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping snapshot worker")
	close(stopCh)
	<-doneCh
	w.logger.Info().Msg("Snapshot worker stopped")
}

func (w *SnapshotWorker) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		w.mu.Lock()
		// a Stop followed by Start may already own the flag
		if w.doneCh == doneCh {
			w.running = false
		}
		w.mu.Unlock()
	}()

	w.archiveAllWorkspaces(ctx, stopCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.archiveAllWorkspaces(ctx, stopCh)
		}
	}
}

// archiveAllWorkspaces stores one snapshot per workspace and returns how many were archived
func (w *SnapshotWorker) archiveAllWorkspaces(ctx context.Context, stopCh <-chan struct{}) int {
	startTime := time.Now()

	workspaceIDs, err := w.transactionRepo.ListWorkspaceIDs(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list workspaces for snapshot archive")
		return 0
	}

	archived, failed := 0, 0
	for _, id := range workspaceIDs {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Context cancelled, stopping archive")
			return archived
		case <-stopCh:
			w.logger.Info().Msg("Stop signal received, stopping archive")
			return archived
		default:
		}

		snapshot, err := w.snapshotService.Archive(ctx, id)
		if err != nil {
			w.logger.Error().Err(err).Int32("workspace_id", id).Msg("Failed to archive snapshot")
			failed++
			continue
		}
		archived++
		w.logger.Debug().Int32("workspace_id", id).Str("key", snapshot.Key).Msg("Archived snapshot")
	}

	w.logger.Info().
		Int("workspaces", len(workspaceIDs)).
		Int("archived", archived).
		Int("failed", failed).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed snapshot archive")
	return archived
}

// ArchiveNow runs one archive pass outside the schedule
func (w *SnapshotWorker) ArchiveNow(ctx context.Context) int {
	return w.archiveAllWorkspaces(ctx, nil)
}

// IsRunning returns whether the worker is currently running
func (w *SnapshotWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
