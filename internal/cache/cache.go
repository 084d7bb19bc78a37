// Package cache holds derived view models between store changes.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"lifeadmin/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge() int
	Size() int
}

// Cleaner is a cache whose expired entries can be swept.
type Cleaner interface {
	CleanExpired() int
	Purge() int
}

// Manager sweeps registered caches on an interval and drops them all at once
// when the store changes.
type Manager struct {
	logger *log.Logger

	mu     sync.Mutex
	caches []Cleaner
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{logger: logger.WithComponent(log.ComponentCache)}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	m.caches = append(m.caches, c)
	m.mu.Unlock()
}

// Invalidate empties every registered cache.
func (m *Manager) Invalidate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.caches {
		n += c.Purge()
	}
	return n
}

func (m *Manager) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.caches {
		n += c.CleanExpired()
	}
	return n
}

// Run sweeps expired entries every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				m.logger.DebugContext(ctx, "Expired cache entries removed", "count", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// ViewKey builds the cache key for a view model. The fingerprint makes any
// entry computed before a store change unreachable.
func ViewKey(fingerprint, view string, params ...string) string {
	var b strings.Builder
	b.WriteString(fingerprint)
	b.WriteByte('|')
	b.WriteString(view)
	b.WriteByte('|')
	b.WriteString(strings.Join(params, "&"))
	return b.String()
}
