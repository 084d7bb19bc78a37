package groceries

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"lifeadmin/internal/log"
	"lifeadmin/internal/storage/memory"
	"lifeadmin/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *memory.Store) {
	t.Helper()
	p := memory.New()
	tick := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	n := 0
	m := NewManager(p,
		WithClock(func() time.Time { tick = tick.Add(time.Second); return tick }),
		WithIDs(func() string { n++; return fmt.Sprintf("g-%d", n) }),
		WithLogger(log.Nop()),
	)
	return m, p
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	if _, err := m.Add(ctx, "   ", Dairy); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("empty name: got %v, want ErrEmptyName", err)
	}
	it, err := m.Add(ctx, "  oat   milk ", Dairy)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if it.Name != "oat milk" {
		t.Errorf("name = %q, want collapsed whitespace", it.Name)
	}
	if _, err := m.Add(ctx, "Oat Milk", Dairy); !errors.Is(err, ErrDuplicate) {
		t.Errorf("same name and category: got %v, want ErrDuplicate", err)
	}
	if _, err := m.Add(ctx, "oat milk", Cupboard); err != nil {
		t.Errorf("same name in another category should be allowed: %v", err)
	}
	odd, err := m.Add(ctx, "bin bags", Category("Garage"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if odd.Category != Other {
		t.Errorf("unknown category = %q, want Other", odd.Category)
	}

	if _, err := m.Toggle(ctx, it.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := m.Add(ctx, "oat milk", Dairy); err != nil {
		t.Errorf("bought item must not block a re-add: %v", err)
	}
}

func TestToggleRepeatClear(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	bread, _ := m.Add(ctx, "bread", Cupboard)
	eggs, _ := m.Add(ctx, "eggs", Dairy)

	got, err := m.Toggle(ctx, bread.ID)
	if err != nil || !got.Bought {
		t.Fatalf("Toggle = %+v, %v; want bought", got, err)
	}
	again, err := m.Repeat(ctx, bread.ID)
	if err != nil {
		t.Fatalf("Repeat: %v", err)
	}
	if again.ID == bread.ID || again.Bought || again.Name != "bread" {
		t.Errorf("Repeat = %+v, want a new unbought copy", again)
	}

	n, err := m.ClearBought(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ClearBought = %d, %v; want 1", n, err)
	}
	l, _ := m.Load(ctx)
	if len(l.Items) != 2 || l.Active() != 2 {
		t.Errorf("after clear: %v", names(l.Items))
	}

	if err := m.Remove(ctx, eggs.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := m.Remove(ctx, eggs.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove: got %v, want ErrNotFound", err)
	}
	if _, err := m.Toggle(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Toggle missing: got %v", err)
	}
}

func TestMetaAndReset(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	if _, err := m.SetMeta(ctx, Meta{Shop: "Aldi", Budget: -1}); !errors.Is(err, ErrNegativeBudget) {
		t.Fatalf("negative budget: got %v", err)
	}
	meta, err := m.SetMeta(ctx, Meta{Shop: " ", Budget: 60})
	if err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if meta.Shop != DefaultShop || meta.Budget != 60 {
		t.Errorf("meta = %+v", meta)
	}
	_, _ = m.Add(ctx, "apples", FruitVeg)
	if err := m.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	l, _ := m.Load(ctx)
	if len(l.Items) != 0 || l.Meta.Budget != 0 || l.Meta.Shop != DefaultShop {
		t.Errorf("after reset: %+v", l)
	}
}

func TestLoadBrowserDocument(t *testing.T) {
	ctx := context.Background()
	m, p := newTestManager(t)

	raw := `{"meta":{"shop":"","budget":"45.5"},"items":[{"id":"a","name":" tea ","category":"Drinks","bought":false,"createdAt":1}]}`
	if err := p.Put(ctx, store.KeyGroceries, []byte(raw)); err != nil {
		t.Fatal(err)
	}
	l, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Meta.Shop != DefaultShop || l.Meta.Budget != 45.5 {
		t.Errorf("meta = %+v", l.Meta)
	}
	if l.Items[0].Name != "tea" {
		t.Errorf("name = %q", l.Items[0].Name)
	}

	var buf bytes.Buffer
	m.logger = log.New(log.Config{Level: slog.LevelDebug, Output: &buf})
	_ = p.Put(ctx, store.KeyGroceries, []byte("{not json"))
	l, err = m.Load(ctx)
	if err != nil || len(l.Items) != 0 {
		t.Errorf("corrupt document: %+v, %v", l, err)
	}
	if !strings.Contains(buf.String(), `msg="Unreadable grocery list, starting fresh"`) {
		t.Errorf("corrupt document not logged: %s", buf.String())
	}
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`""`, 0},
		{`null`, 0},
		{`"12.345"`, 12.35},
		{`30`, 30},
		{`"-4"`, 0},
		{`"abc"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseBudget(json.RawMessage(tt.in)); got != tt.want {
				t.Errorf("parseBudget(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSorted(t *testing.T) {
	l := List{Items: []Item{
		{ID: "1", Name: "milk", Category: Dairy, CreatedAt: 1},
		{ID: "2", Name: "Bananas", Category: FruitVeg, CreatedAt: 3},
		{ID: "3", Name: "cheese", Category: Dairy, CreatedAt: 2},
		{ID: "4", Name: "soap", Category: Household, Bought: true, CreatedAt: 5},
		{ID: "5", Name: "apples", Category: FruitVeg, Bought: true, CreatedAt: 4},
	}}

	tests := []struct {
		name     string
		mode     SortMode
		category Category
		want     []string
	}{
		{"recent", SortRecent, "", []string{"Bananas", "cheese", "milk", "soap", "apples"}},
		{"alpha", SortAlpha, "", []string{"Bananas", "cheese", "milk", "soap", "apples"}},
		{"category", SortCategory, "", []string{"cheese", "milk", "Bananas", "soap", "apples"}},
		{"filtered", SortAlpha, Dairy, []string{"cheese", "milk", "soap", "apples"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(l.Sorted(tt.mode, tt.category))
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Sorted = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOnChange(t *testing.T) {
	ctx := context.Background()
	calls := 0
	m := NewManager(memory.New(), WithLogger(log.Nop()), WithOnChange(func(context.Context) { calls++ }))
	_, _ = m.Add(ctx, "rice", Cupboard)
	_, _ = m.Add(ctx, "rice", Cupboard)
	if calls != 1 {
		t.Errorf("onChange calls = %d, want 1 (failed add must not notify)", calls)
	}
}
