package groceries

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/store"
)

// Manager reads and writes the grocery document. Every operation is a
// read-modify-write of the whole document under one lock.
type Manager struct {
	p        store.Persistence
	now      core.Clock
	newID    func() string
	logger   *log.Logger
	onChange func(context.Context)

	mu sync.Mutex
}

type Option func(*Manager)

func WithClock(c core.Clock) Option { return func(m *Manager) { m.now = c } }

func WithIDs(f func() string) Option { return func(m *Manager) { m.newID = f } }

func WithLogger(l *log.Logger) Option { return func(m *Manager) { m.logger = l.WithComponent(log.ComponentStore) } }

// WithOnChange registers a callback run after every successful save.
func WithOnChange(f func(context.Context)) Option { return func(m *Manager) { m.onChange = f } }

func NewManager(p store.Persistence, opts ...Option) *Manager {
	m := &Manager{
		p:      p,
		now:    core.SystemClock,
		newID:  uuid.NewString,
		logger: log.Default(log.ComponentStore),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Load returns the stored list. A missing or unreadable document yields an
// empty list with default meta.
func (m *Manager) Load(ctx context.Context) (List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(ctx)
}

func (m *Manager) loadLocked(ctx context.Context) (List, error) {
	raw, ok, err := m.p.Get(ctx, store.KeyGroceries)
	if err != nil {
		return List{}, fmt.Errorf("load groceries: %w", err)
	}
	l := NewList()
	if !ok {
		return l, nil
	}
	if err := json.Unmarshal(raw, &l); err != nil {
		m.logger.WarnContext(ctx, "Unreadable grocery list, starting fresh", log.FieldError, err)
		return NewList(), nil
	}
	if l.Meta.Shop == "" {
		l.Meta.Shop = DefaultShop
	}
	if l.Items == nil {
		l.Items = []Item{}
	}
	for i := range l.Items {
		l.Items[i].Name = normName(l.Items[i].Name)
		l.Items[i].Category = normCategory(l.Items[i].Category)
	}
	return l, nil
}

func (m *Manager) update(ctx context.Context, action string, fn func(*List) error) (List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, err := m.loadLocked(ctx)
	if err != nil {
		return List{}, err
	}
	if err := fn(&l); err != nil {
		return List{}, err
	}
	b, err := json.Marshal(l)
	if err != nil {
		return List{}, fmt.Errorf("encode groceries: %w", err)
	}
	if err := m.p.Put(ctx, store.KeyGroceries, b); err != nil {
		return List{}, fmt.Errorf("save groceries: %w", err)
	}
	m.logger.DebugContext(ctx, "Grocery list saved", log.FieldAction, action, "items", len(l.Items))
	if m.onChange != nil {
		m.onChange(ctx)
	}
	return l, nil
}

func (m *Manager) millis() int64 { return m.now().UnixMilli() }

// Add puts a new unbought item at the top of the list. Unknown categories
// become Other.
func (m *Manager) Add(ctx context.Context, name string, category Category) (Item, error) {
	name = normName(name)
	if name == "" {
		return Item{}, ErrEmptyName
	}
	it := Item{
		ID:        m.newID(),
		Name:      name,
		Category:  normCategory(category),
		CreatedAt: m.millis(),
	}
	_, err := m.update(ctx, "groceries.add", func(l *List) error {
		if l.duplicate(it.Name, it.Category) {
			return ErrDuplicate
		}
		l.Items = append([]Item{it}, l.Items...)
		return nil
	})
	return it, err
}

// Toggle flips an item between bought and unbought.
func (m *Manager) Toggle(ctx context.Context, id string) (Item, error) {
	var out Item
	_, err := m.update(ctx, "groceries.toggle", func(l *List) error {
		i := l.find(id)
		if i < 0 {
			return ErrNotFound
		}
		l.Items[i].Bought = !l.Items[i].Bought
		l.Items[i].UpdatedAt = m.millis()
		out = l.Items[i]
		return nil
	})
	return out, err
}

func (m *Manager) Remove(ctx context.Context, id string) error {
	_, err := m.update(ctx, "groceries.remove", func(l *List) error {
		i := l.find(id)
		if i < 0 {
			return ErrNotFound
		}
		l.Items = append(l.Items[:i], l.Items[i+1:]...)
		return nil
	})
	return err
}

// Repeat adds a fresh unbought copy of an item. The source item is kept.
func (m *Manager) Repeat(ctx context.Context, id string) (Item, error) {
	var out Item
	_, err := m.update(ctx, "groceries.repeat", func(l *List) error {
		i := l.find(id)
		if i < 0 {
			return ErrNotFound
		}
		src := l.Items[i]
		out = Item{
			ID:        m.newID(),
			Name:      src.Name,
			Category:  normCategory(src.Category),
			CreatedAt: m.millis(),
		}
		l.Items = append([]Item{out}, l.Items...)
		return nil
	})
	return out, err
}

// ClearBought drops every bought item and returns how many were removed.
func (m *Manager) ClearBought(ctx context.Context) (int, error) {
	removed := 0
	_, err := m.update(ctx, "groceries.clear", func(l *List) error {
		kept := l.Items[:0]
		for _, it := range l.Items {
			if it.Bought {
				removed++
				continue
			}
			kept = append(kept, it)
		}
		l.Items = kept
		return nil
	})
	return removed, err
}

// Reset empties the list and restores default meta.
func (m *Manager) Reset(ctx context.Context) error {
	_, err := m.update(ctx, "groceries.reset", func(l *List) error {
		*l = NewList()
		return nil
	})
	return err
}

// SetMeta replaces shop and weekly budget. An empty shop falls back to the default.
func (m *Manager) SetMeta(ctx context.Context, meta Meta) (Meta, error) {
	if meta.Budget < 0 {
		return Meta{}, ErrNegativeBudget
	}
	meta.Shop = normName(meta.Shop)
	if meta.Shop == "" {
		meta.Shop = DefaultShop
	}
	_, err := m.update(ctx, "groceries.meta", func(l *List) error {
		l.Meta = meta
		return nil
	})
	return meta, err
}
