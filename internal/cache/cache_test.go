package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s missing", k)
		}
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clk.now)
	c.Set("a", "x")
	c.Set("b", "y")

	clk.t = clk.t.Add(30 * time.Second)
	c.Set("b", "z")
	clk.t = clk.t.Add(45 * time.Second)

	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired = %d, want 1", n)
	}
	if v, ok := c.Get("b"); !ok || v != "z" {
		t.Errorf("Get(b) = %q, %v", v, ok)
	}
	clk.t = clk.t.Add(time.Minute)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have expired")
	}
}

func TestGetOrCompute(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	calls := 0
	fn := func() (int, error) { calls++; return 42, nil }

	for range 3 {
		if v, err := c.GetOrCompute("k", fn); err != nil || v != 42 {
			t.Fatalf("GetOrCompute = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("computed %d times, want 1", calls)
	}
	if _, err := c.GetOrCompute("bad", func() (int, error) { return 0, errors.New("boom") }); err == nil {
		t.Error("error should propagate")
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("errors must not be cached")
	}
	if hits, misses := c.Stats(); hits != 2 || misses != 3 {
		t.Errorf("Stats = %d/%d, want 2/3", hits, misses)
	}
}

func TestManagerInvalidate(t *testing.T) {
	a := NewLRUCache[int](4, time.Minute)
	b := NewLRUCache[string](4, time.Minute)
	m := NewManager(nil)
	m.Register(a)
	m.Register(b)

	a.Set("1", 1)
	a.Set("2", 2)
	b.Set("x", "x")
	if n := m.Invalidate(); n != 3 {
		t.Errorf("Invalidate = %d, want 3", n)
	}
	if a.Size()+b.Size() != 0 {
		t.Error("caches not emptied")
	}
}

func TestManagerRunStopsOnCancel(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestViewKey(t *testing.T) {
	if got := ViewKey("fp1", "admin", "q=tax", "sort=due"); got != "fp1|admin|q=tax&sort=due" {
		t.Errorf("ViewKey = %q", got)
	}
	if ViewKey("fp1", "admin") == ViewKey("fp2", "admin") {
		t.Error("fingerprint must be part of the key")
	}
}
