package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"lifeadmin/internal/core"
	"lifeadmin/internal/storage/memory"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type recordingPublisher struct {
	calls []int64
}

func (p *recordingPublisher) StoreChanged(_ context.Context, updatedAt int64, _ string) error {
	p.calls = append(p.calls, updatedAt)
	return nil
}

func newTestManagerParts() (*memory.Store, *fakeClock) {
	return memory.New(), &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func newTestManager(t *testing.T) (*Manager, *memory.Store, *fakeClock) {
	t.Helper()
	mem, clock := newTestManagerParts()
	return NewManager(mem, WithClock(clock.Now), WithIDs(seqIDs())), mem, clock
}

func addItem(name string) func(*core.Store) error {
	return func(s *core.Store) error {
		s.LifeAdmin.Items = append(s.LifeAdmin.Items, core.AdminItem{
			ID:              "item-" + name,
			Name:            name,
			Category:        core.CategoryRenewal,
			ReminderProfile: core.ProfileGentle,
			Priority:        core.PriorityNormal,
			Recurrence:      core.RecurrenceNone,
		})
		return nil
	}
}
