package cloud

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/singleflight"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/store"
)

// Outcome describes one completed sync.
type Outcome struct {
	Decision
	UserID          string `json:"userId"`
	LocalUpdatedAt  int64  `json:"localUpdatedAt"`
	RemoteUpdatedAt int64  `json:"remoteUpdatedAt,omitempty"`
	SyncedAt        int64  `json:"syncedAt"`
}

// Syncer runs pull/decide/push against one Remote. Concurrent SyncNow calls
// share a single run. Failures are recorded and returned; nothing retries.
type Syncer struct {
	m      *store.Manager
	remote Remote
	logger *log.Logger
	group  singleflight.Group
}

func NewSyncer(m *store.Manager, remote Remote, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.Default(log.ComponentCloud)
	}
	return &Syncer{m: m, remote: remote, logger: logger.WithComponent(log.ComponentCloud)}
}

func (s *Syncer) SyncNow(ctx context.Context) (Outcome, error) {
	v, err, shared := s.group.Do("sync", func() (any, error) {
		return s.sync(ctx)
	})
	if shared {
		s.logger.DebugContext(ctx, "Joined in-flight sync")
	}
	out, _ := v.(Outcome)
	return out, err
}

func (s *Syncer) sync(ctx context.Context) (Outcome, error) {
	snap, err := s.m.Snapshot(ctx)
	if err != nil {
		return Outcome{}, err
	}
	cfg := snap.Settings.Cloud
	if !cfg.Enabled {
		return Outcome{}, ErrDisabled
	}
	if cfg.UserID == "" {
		return Outcome{}, ErrNoUser
	}
	out := Outcome{UserID: cfg.UserID, LocalUpdatedAt: snap.UpdatedAt}

	remote, err := s.remote.Pull(ctx, cfg.UserID)
	if err != nil {
		return out, s.fail(ctx, cfg, fmt.Errorf("cloud pull: %w", err))
	}
	if remote != nil {
		out.RemoteUpdatedAt = remote.UpdatedAt
	}
	out.Decision = Decide(snap.UpdatedAt, remote)
	if out.Conflict {
		s.logger.WarnContext(ctx, "Local and remote changed close together",
			log.FieldUserID, cfg.UserID, "local", snap.UpdatedAt, "remote", out.RemoteUpdatedAt)
	}

	switch out.Action {
	case ActionNone:
	case ActionPull:
		if _, err := s.m.AddBackup(ctx, store.ReasonCloudPull); err != nil {
			return out, s.fail(ctx, cfg, fmt.Errorf("backup before pull: %w", err))
		}
		if _, err := s.m.Adopt(ctx, remote.Store, remote.UpdatedAt); err != nil {
			return out, s.fail(ctx, cfg, fmt.Errorf("apply remote: %w", err))
		}
	default:
		body, err := json.Marshal(snap)
		if err != nil {
			return out, s.fail(ctx, cfg, fmt.Errorf("encode store: %w", err))
		}
		if err := s.remote.Push(ctx, cfg.UserID, Document{Store: body, UpdatedAt: snap.UpdatedAt}); err != nil {
			return out, s.fail(ctx, cfg, fmt.Errorf("cloud push: %w", err))
		}
	}

	out.SyncedAt = s.m.Now()().UnixMilli()
	if err := s.record(ctx, core.CloudSettings{Enabled: true, UserID: cfg.UserID, Status: core.CloudReady, LastSyncAt: out.SyncedAt}); err != nil {
		return out, err
	}
	s.logger.InfoContext(ctx, "Cloud sync complete", log.FieldOperation, log.OpSync,
		log.FieldUserID, cfg.UserID, log.FieldAction, string(out.Action))
	return out, nil
}

// fail records the error status, keeping the last successful sync time.
func (s *Syncer) fail(ctx context.Context, cfg core.CloudSettings, cause error) error {
	s.logger.ErrorContext(ctx, "Cloud sync failed", log.FieldOperation, log.OpSync, log.FieldError, cause)
	cfg.Status = core.CloudError
	if err := s.record(ctx, cfg); err != nil {
		s.logger.WarnContext(ctx, "Recording sync status failed", log.FieldError, err)
	}
	return cause
}

// record writes cloud settings back. A pulled document may carry stale cloud
// settings, so the full block is replaced.
func (s *Syncer) record(ctx context.Context, cfg core.CloudSettings) error {
	_, err := s.m.UpdateMeta(ctx, func(st *core.Store) error {
		st.Settings.Cloud = cfg
		return nil
	})
	if err != nil {
		return fmt.Errorf("record sync status: %w", err)
	}
	return nil
}
