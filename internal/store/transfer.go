package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/normalize"
)

// ExportApp tags envelope exports.
const ExportApp = "LifeAdmin"

var (
	ErrUnparsable = errors.New("import: file is not valid JSON")
	ErrBadShape   = errors.New("import: no store document found")
)

// Envelope is the wrapped export format.
type Envelope struct {
	App        string     `json:"app"`
	ExportedAt int64      `json:"exportedAt"`
	State      core.Store `json:"state"`
}

// storeKeys are root keys that identify a bare store document.
var storeKeys = []string{"version", "lifeAdmin", "home", "skills", "money", "wins", "settings"}

// Export serializes the current document, either bare or wrapped in an Envelope.
func (m *Manager) Export(ctx context.Context, envelope bool) ([]byte, error) {
	s, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var v any = s
	if envelope {
		v = Envelope{App: ExportApp, ExportedAt: m.now().UnixMilli(), State: s}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return b, nil
}

// DecodeImport extracts the store document from an export. It accepts a bare
// store, an Envelope ({state}) and a cloud document ({store}).
func DecodeImport(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, ErrBadShape
	}
	for _, wrapper := range []string{"state", "store"} {
		if inner, ok := root[wrapper].(map[string]any); ok {
			return inner, nil
		}
	}
	for _, k := range storeKeys {
		if _, ok := root[k]; ok {
			return root, nil
		}
	}
	return nil, ErrBadShape
}

// Import replaces the store with the normalized contents of data.
func (m *Manager) Import(ctx context.Context, data []byte) (core.Store, error) {
	doc, err := DecodeImport(data)
	if err != nil {
		return core.Store{}, err
	}
	imported := normalize.Store(doc, m.opts())
	s, err := m.Update(ctx, func(s *core.Store) error {
		*s = imported
		return nil
	})
	if err != nil {
		return core.Store{}, err
	}
	if _, err := m.AddBackup(ctx, ReasonImport); err != nil {
		m.logger.WarnContext(ctx, "Post-import backup failed", log.FieldError, err)
	}
	m.logger.InfoContext(ctx, "Store imported", log.FieldOperation, log.OpImport, "items", len(s.LifeAdmin.Items))
	return s, nil
}

// Adopt replaces the store with a document pulled from another copy, keeping
// that copy's updatedAt so both sides agree on which revision is newest.
func (m *Manager) Adopt(ctx context.Context, data []byte, updatedAt int64) (core.Store, error) {
	doc, err := DecodeImport(data)
	if err != nil {
		return core.Store{}, err
	}
	adopted := normalize.Store(doc, m.opts())
	return m.update(ctx, func(s *core.Store) error {
		*s = adopted
		return nil
	}, func(core.Store) int64 { return updatedAt })
}
