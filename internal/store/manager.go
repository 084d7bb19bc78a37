// Package store owns the persisted Store document: loading with legacy
// migration and fallback, whole-document saves, backups, import/export and
// change notification.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/normalize"
)

// Persisted keys. The names match the browser build so its exports import unchanged.
const (
	KeyStore       = "lifeSetup.store.v1"
	KeyLegacyItems = "lifeSetup.lifeAdmin.items.v5"
	KeyBackups     = "lifeAdmin:backups:v1"
	KeyGroceries   = "lifeAdmin:groceries:v1"

	// keyCorrupt keeps the last unparsable store document before it is replaced.
	keyCorrupt = KeyStore + ".corrupt"
)

// Persistence is a byte-oriented key/value store.
type Persistence interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// ChangePublisher is told about every persisted save.
type ChangePublisher interface {
	StoreChanged(ctx context.Context, updatedAt int64, fingerprint string) error
}

// Manager is the single owner of the store document. All reads and writes
// are serialized.
type Manager struct {
	p         Persistence
	now       core.Clock
	newID     func() string
	logger    *log.Logger
	publisher ChangePublisher

	mu          sync.Mutex
	current     core.Store
	loaded      bool
	fingerprint string

	backupMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

type Option func(*Manager)

func WithClock(c core.Clock) Option { return func(m *Manager) { m.now = c } }

func WithIDs(f func() string) Option { return func(m *Manager) { m.newID = f } }

func WithLogger(l *log.Logger) Option { return func(m *Manager) { m.logger = l.WithComponent(log.ComponentStore) } }

func WithPublisher(p ChangePublisher) Option { return func(m *Manager) { m.publisher = p } }

func NewManager(p Persistence, opts ...Option) *Manager {
	m := &Manager{
		p:      p,
		now:    core.SystemClock,
		newID:  uuid.NewString,
		logger: log.Default(log.ComponentStore),
		subs:   map[int]func(){},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Persistence exposes the underlying key/value store to collaborators that
// keep their own documents (groceries).
func (m *Manager) Persistence() Persistence { return m.p }

// Now returns the manager's clock reading.
func (m *Manager) Now() core.Clock { return m.now }

// NewID returns a fresh id from the manager's generator.
func (m *Manager) NewID() string { return m.newID() }

func (m *Manager) opts() normalize.Options {
	return normalize.Options{Now: m.now, NewID: m.newID}
}

// Load reads the persisted document. A parsable current document is
// normalized and returned; otherwise legacy items are migrated; otherwise a
// default document is created. Migrated and default documents are persisted.
// Errors come only from the persistence layer.
func (m *Manager) Load(ctx context.Context) (core.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.loadLocked(ctx); err != nil {
		return core.Store{}, err
	}
	return clone(m.current), nil
}

func (m *Manager) loadLocked(ctx context.Context) error {
	raw, ok, err := m.p.Get(ctx, KeyStore)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	if ok {
		var doc any
		if err := json.Unmarshal(raw, &doc); err == nil {
			if _, isObj := doc.(map[string]any); isObj {
				m.current = normalize.Store(doc, m.opts())
				m.fingerprint = Fingerprint(raw)
				m.loaded = true
				return nil
			}
		}
		m.logger.WarnContext(ctx, "Persisted store unparsable, keeping a copy and falling back",
			log.FieldKey, KeyStore, "bytes", len(raw))
		if err := m.p.Put(ctx, keyCorrupt, raw); err != nil {
			return fmt.Errorf("keep corrupt store: %w", err)
		}
	}

	s, reason := m.legacyOrDefault(ctx)
	if err := m.writeLocked(ctx, s); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "Store initialised", log.FieldReason, reason, "items", len(s.LifeAdmin.Items))
	return nil
}

func (m *Manager) legacyOrDefault(ctx context.Context) (core.Store, string) {
	raw, ok, err := m.p.Get(ctx, KeyLegacyItems)
	if err != nil {
		m.logger.WarnContext(ctx, "Reading legacy items failed", log.FieldError, err)
	}
	if ok && err == nil {
		var list any
		if err := json.Unmarshal(raw, &list); err == nil {
			if _, isList := list.([]any); isList {
				return normalize.MigrateLegacy(list, m.opts()), "legacy-migration"
			}
		}
		m.logger.WarnContext(ctx, "Legacy items unparsable, ignoring", log.FieldKey, KeyLegacyItems)
	}
	return core.NewStore(m.newID, core.Timestamp(m.now())), "default"
}

func (m *Manager) ensureLoadedLocked(ctx context.Context) error {
	if m.loaded {
		return nil
	}
	return m.loadLocked(ctx)
}

// writeLocked serializes s and overwrites the store key.
func (m *Manager) writeLocked(ctx context.Context, s core.Store) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := m.p.Put(ctx, KeyStore, b); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	m.current = s
	m.fingerprint = Fingerprint(b)
	m.loaded = true
	return nil
}

// Save normalizes s, stamps updatedAt and overwrites the persisted document.
func (m *Manager) Save(ctx context.Context, s core.Store) error {
	m.mu.Lock()
	saved, err := m.saveLocked(ctx, s, 0)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.afterSave(ctx, saved)
	return nil
}

// saveLocked writes s stamped with updatedAt, or with the clock when
// updatedAt is zero.
func (m *Manager) saveLocked(ctx context.Context, s core.Store, updatedAt int64) (core.Store, error) {
	s = normalize.Typed(s, m.opts())
	if updatedAt <= 0 {
		updatedAt = m.now().UnixMilli()
	}
	s.UpdatedAt = updatedAt
	if err := m.writeLocked(ctx, s); err != nil {
		return core.Store{}, err
	}
	return s, nil
}

// Update applies fn to a copy of the current document and saves it when fn
// returns nil. On error the store is untouched and the error is returned as is.
func (m *Manager) Update(ctx context.Context, fn func(*core.Store) error) (core.Store, error) {
	return m.update(ctx, fn, func(core.Store) int64 { return 0 })
}

// UpdateMeta is Update for bookkeeping writes (sync status, nudge stamps).
// The document keeps its updatedAt, so such writes never make this copy look
// newer than an edit made elsewhere.
func (m *Manager) UpdateMeta(ctx context.Context, fn func(*core.Store) error) (core.Store, error) {
	return m.update(ctx, fn, func(cur core.Store) int64 { return cur.UpdatedAt })
}

func (m *Manager) update(ctx context.Context, fn func(*core.Store) error, stamp func(core.Store) int64) (core.Store, error) {
	m.mu.Lock()
	if err := m.ensureLoadedLocked(ctx); err != nil {
		m.mu.Unlock()
		return core.Store{}, err
	}
	draft := clone(m.current)
	if err := fn(&draft); err != nil {
		m.mu.Unlock()
		return core.Store{}, err
	}
	saved, err := m.saveLocked(ctx, draft, stamp(m.current))
	m.mu.Unlock()
	if err != nil {
		return core.Store{}, err
	}
	m.afterSave(ctx, saved)
	return clone(saved), nil
}

// Snapshot returns a deep copy of the last loaded or saved document, loading
// it first if needed.
func (m *Manager) Snapshot(ctx context.Context) (core.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLoadedLocked(ctx); err != nil {
		return core.Store{}, err
	}
	return clone(m.current), nil
}

// Fingerprint is the hash of the last bytes read or written under KeyStore.
func (m *Manager) Fingerprint() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fingerprint
}

// Refresh re-reads the persisted document and notifies subscribers when it
// was changed by another writer.
func (m *Manager) Refresh(ctx context.Context) (bool, error) {
	raw, ok, err := m.p.Get(ctx, KeyStore)
	if err != nil {
		return false, fmt.Errorf("refresh store: %w", err)
	}
	m.mu.Lock()
	if ok && Fingerprint(raw) == m.fingerprint {
		m.mu.Unlock()
		return false, nil
	}
	m.loaded = false
	err = m.loadLocked(ctx)
	m.mu.Unlock()
	if err != nil {
		return false, err
	}
	m.logger.DebugContext(ctx, "Store changed externally")
	m.notify()
	return true, nil
}

// Subscribe registers fn to run after every successful persisted mutation.
func (m *Manager) Subscribe(fn func()) (unsubscribe func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notify() {
	m.subMu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (m *Manager) afterSave(ctx context.Context, saved core.Store) {
	fp := m.Fingerprint()
	m.logger.DebugContext(ctx, "Store saved",
		log.NewFields().WithStoreChange(KeyStore, saved.UpdatedAt, fp).WithOperation(log.OpSave).ToSlice()...)
	m.notify()
	if m.publisher != nil {
		if err := m.publisher.StoreChanged(ctx, saved.UpdatedAt, fp); err != nil {
			m.logger.WarnContext(ctx, "Publishing store change failed", log.FieldError, err)
		}
	}
	if _, err := m.MaybeAutoBackup(ctx); err != nil {
		m.logger.WarnContext(ctx, "Auto-backup failed", log.FieldError, err)
	}
}

// clone deep-copies a normalized document through its JSON form.
func clone(s core.Store) core.Store {
	b, err := json.Marshal(s)
	if err != nil {
		return s
	}
	var out core.Store
	if err := json.Unmarshal(b, &out); err != nil {
		return s
	}
	return out
}
