package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/normalize"
)

const (
	// MaxBackups bounds the history; the oldest entries are dropped.
	MaxBackups = 30
	// AutoBackupInterval is the minimum age of the newest backup before an auto-backup.
	AutoBackupInterval = time.Hour
)

// Backup reasons.
const (
	ReasonAuto       = "auto"
	ReasonManual     = "manual-backup"
	ReasonRestore    = "restore"
	ReasonPreRestore = "pre-restore-safety"
	ReasonImport     = "import"
	ReasonCloudPull  = "pre-cloud-pull"
)

var (
	ErrBackupNotFound = errors.New("backup not found")
	ErrNoBackups      = errors.New("no backups available")
)

// Snapshot is the reduced document a backup keeps: admin items, home, skills
// and money. Settings and wins are not part of it.
type Snapshot struct {
	Admin     core.LifeAdmin `json:"admin"`
	Home      core.Home      `json:"home"`
	Skills    core.Skills    `json:"skills"`
	Money     core.Money     `json:"money"`
	UpdatedAt int64          `json:"updatedAt"`
}

// Backup is one history entry. Snapshot stays raw so that entries written by
// older builds are restored through the normalizers.
type Backup struct {
	ID       string          `json:"id"`
	TS       int64           `json:"ts"`
	Reason   string          `json:"reason"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// BackupSnapshot returns the reduced read-only view of the current document.
func (m *Manager) BackupSnapshot(ctx context.Context) (Snapshot, error) {
	s, err := m.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Admin:     s.LifeAdmin,
		Home:      s.Home,
		Skills:    s.Skills,
		Money:     s.Money,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

// Backups lists the history, newest first. An unreadable history is empty.
func (m *Manager) Backups(ctx context.Context) ([]Backup, error) {
	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	return m.readBackups(ctx)
}

func (m *Manager) readBackups(ctx context.Context) ([]Backup, error) {
	raw, ok, err := m.p.Get(ctx, KeyBackups)
	if err != nil {
		return nil, fmt.Errorf("read backups: %w", err)
	}
	if !ok {
		return []Backup{}, nil
	}
	var hist []Backup
	if err := json.Unmarshal(raw, &hist); err != nil {
		m.logger.WarnContext(ctx, "Backup history unparsable, starting fresh", log.FieldError, err)
		return []Backup{}, nil
	}
	return hist, nil
}

// AddBackup records the current snapshot at the head of the history.
func (m *Manager) AddBackup(ctx context.Context, reason string) (Backup, error) {
	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	return m.addBackupLocked(ctx, reason)
}

func (m *Manager) addBackupLocked(ctx context.Context, reason string) (Backup, error) {
	snap, err := m.BackupSnapshot(ctx)
	if err != nil {
		return Backup{}, err
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return Backup{}, fmt.Errorf("encode snapshot: %w", err)
	}
	hist, err := m.readBackups(ctx)
	if err != nil {
		return Backup{}, err
	}
	if reason == "" {
		reason = ReasonAuto
	}
	b := Backup{ID: m.newID(), TS: m.now().UnixMilli(), Reason: reason, Snapshot: body}
	hist = append([]Backup{b}, hist...)
	if len(hist) > MaxBackups {
		hist = hist[:MaxBackups]
	}
	out, err := json.Marshal(hist)
	if err != nil {
		return Backup{}, fmt.Errorf("encode backups: %w", err)
	}
	if err := m.p.Put(ctx, KeyBackups, out); err != nil {
		return Backup{}, fmt.Errorf("write backups: %w", err)
	}
	m.logger.InfoContext(ctx, "Backup recorded", log.FieldBackupID, b.ID, log.FieldReason, reason)
	return b, nil
}

// MaybeAutoBackup records an auto backup when the newest entry is at least
// AutoBackupInterval old. It reports whether a backup was taken.
func (m *Manager) MaybeAutoBackup(ctx context.Context) (bool, error) {
	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	hist, err := m.readBackups(ctx)
	if err != nil {
		return false, err
	}
	if len(hist) > 0 && m.now().Sub(time.UnixMilli(hist[0].TS)) < AutoBackupInterval {
		return false, nil
	}
	if _, err := m.addBackupLocked(ctx, ReasonAuto); err != nil {
		return false, err
	}
	return true, nil
}

// RestoreBackup replaces admin items, home, skills and money with the
// backup's snapshot. Settings and wins are kept. With safety set, the current
// state is backed up first.
func (m *Manager) RestoreBackup(ctx context.Context, id string, safety bool) (core.Store, error) {
	hist, err := m.Backups(ctx)
	if err != nil {
		return core.Store{}, err
	}
	for _, b := range hist {
		if b.ID == id {
			return m.restore(ctx, b, safety)
		}
	}
	return core.Store{}, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
}

// RestoreLatest restores the newest backup.
func (m *Manager) RestoreLatest(ctx context.Context, safety bool) (core.Store, error) {
	hist, err := m.Backups(ctx)
	if err != nil {
		return core.Store{}, err
	}
	if len(hist) == 0 {
		return core.Store{}, ErrNoBackups
	}
	return m.restore(ctx, hist[0], safety)
}

func (m *Manager) restore(ctx context.Context, b Backup, safety bool) (core.Store, error) {
	if safety {
		if _, err := m.AddBackup(ctx, ReasonPreRestore); err != nil {
			return core.Store{}, err
		}
	}
	s, err := m.Update(ctx, func(s *core.Store) error {
		merged, err := mergeSnapshot(*s, b.Snapshot, m.opts())
		if err != nil {
			return err
		}
		*s = merged
		return nil
	})
	if err != nil {
		return core.Store{}, fmt.Errorf("restore backup %s: %w", b.ID, err)
	}
	if _, err := m.AddBackup(ctx, ReasonRestore); err != nil {
		return core.Store{}, err
	}
	m.logger.InfoContext(ctx, "Backup restored", log.FieldBackupID, b.ID, log.FieldOperation, log.OpRestore)
	return s, nil
}

// snapshotSections maps snapshot keys onto document keys. Later entries win.
var snapshotSections = [][2]string{
	{"lifeAdmin", "lifeAdmin"},
	{"admin", "lifeAdmin"},
	{"home", "home"},
	{"skills", "skills"},
	{"money", "money"},
}

// mergeSnapshot lays the snapshot's sections over the current document and
// normalizes the result.
func mergeSnapshot(current core.Store, snapshot json.RawMessage, o normalize.Options) (core.Store, error) {
	var snap map[string]any
	if err := json.Unmarshal(snapshot, &snap); err != nil || snap == nil {
		return core.Store{}, fmt.Errorf("%w: snapshot is not an object", ErrBadShape)
	}
	b, err := json.Marshal(current)
	if err != nil {
		return core.Store{}, fmt.Errorf("encode store: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return core.Store{}, fmt.Errorf("decode store: %w", err)
	}
	for _, sec := range snapshotSections {
		if v, ok := snap[sec[0]]; ok {
			doc[sec[1]] = v
		}
	}
	return normalize.Store(doc, o), nil
}
