// Package worker runs the background side of the app: cloud sync on store
// change messages and the cron jobs for backups and nudges.
package worker

import (
	"context"
	"errors"
	"sync"

	"lifeadmin/internal/amqp"
	"lifeadmin/internal/cloud"
	"lifeadmin/internal/log"
)

// Syncer is the part of cloud.Syncer the worker needs.
type Syncer interface {
	SyncNow(ctx context.Context) (cloud.Outcome, error)
}

// Refresher re-reads the persisted store. The worker runs in its own process,
// so its view of the store must be refreshed before every job.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// SyncWorker mirrors the store to the cloud whenever the server reports a save.
type SyncWorker struct {
	store  Refresher
	syncer Syncer
	logger *log.Logger

	mu     sync.Mutex
	lastFP string
}

func NewSyncWorker(store Refresher, syncer Syncer, logger *log.Logger) *SyncWorker {
	return &SyncWorker{store: store, syncer: syncer, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleStoreChanged syncs once per distinct fingerprint. Sync being disabled
// is not an error, so such messages are acked rather than requeued.
func (w *SyncWorker) HandleStoreChanged(ctx context.Context, msg *amqp.StoreChangedMessage) error {
	w.mu.Lock()
	dup := msg.Fingerprint != "" && msg.Fingerprint == w.lastFP
	w.mu.Unlock()
	if dup {
		w.logger.DebugContext(ctx, "Store change already synced", log.FieldFingerprint, msg.Fingerprint)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing store change",
		log.FieldUpdatedAt, msg.UpdatedAt, log.FieldFingerprint, msg.Fingerprint)
	if err := w.sync(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	w.lastFP = msg.Fingerprint
	w.mu.Unlock()
	return nil
}

// StartupSyncCheck runs one sync when the worker starts, catching up on
// changes made while it was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Running startup sync check", log.FieldOperation, log.OpStartup)
	return w.sync(ctx)
}

func (w *SyncWorker) sync(ctx context.Context) error {
	if _, err := w.store.Refresh(ctx); err != nil {
		return err
	}
	out, err := w.syncer.SyncNow(ctx)
	if errors.Is(err, cloud.ErrDisabled) || errors.Is(err, cloud.ErrNoUser) {
		w.logger.DebugContext(ctx, "Cloud sync not configured, skipping", log.FieldReason, err)
		return nil
	}
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Store synced",
		log.FieldAction, string(out.Action), "conflict", out.Conflict)
	return nil
}
