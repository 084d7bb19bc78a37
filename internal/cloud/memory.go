package cloud

import (
	"context"
	"sync"

	"lifeadmin/internal/core"
)

// Memory is an in-process Remote.
type Memory struct {
	now core.Clock

	mu   sync.Mutex
	docs map[string]Document
}

func NewMemory(now core.Clock) *Memory {
	if now == nil {
		now = core.SystemClock
	}
	return &Memory{now: now, docs: map[string]Document{}}
}

func (m *Memory) Pull(_ context.Context, uid string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[uid]
	if !ok {
		return nil, nil
	}
	d.Store = append([]byte(nil), d.Store...)
	return &d, nil
}

func (m *Memory) Push(_ context.Context, uid string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.Store = append([]byte(nil), doc.Store...)
	doc.ServerUpdatedAt = m.now().UnixMilli()
	m.docs[uid] = doc
	return nil
}
