package worker

import (
	"context"

	"lifeadmin/internal/log"
	"lifeadmin/internal/notify"
	"lifeadmin/internal/store"
)

// BackupJob records an auto-backup when the newest one is old enough.
func BackupJob(m *store.Manager, logger *log.Logger) Job {
	return func(ctx context.Context) error {
		if _, err := m.Refresh(ctx); err != nil {
			return err
		}
		made, err := m.MaybeAutoBackup(ctx)
		if err != nil {
			return err
		}
		if made {
			logger.InfoContext(ctx, "Auto-backup recorded", log.FieldOperation, log.OpBackup)
		}
		return nil
	}
}

// NudgeJob sends at most one nudge per run.
func NudgeJob(m *store.Manager, d *notify.Dispatcher) Job {
	return func(ctx context.Context) error {
		if _, err := m.Refresh(ctx); err != nil {
			return err
		}
		_, err := d.Run(ctx)
		return err
	}
}

// SyncJob runs a periodic sync through w, independent of change messages.
func SyncJob(w *SyncWorker) Job {
	return w.StartupSyncCheck
}
