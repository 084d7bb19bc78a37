package store

import (
	"context"
	"testing"
	"time"

	"lifeadmin/internal/storage/memory"
)

func TestWatcherPoll(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	calls := 0
	w := NewWatcher(mem, KeyStore, time.Second, func(context.Context) { calls++ })

	if changed, _ := w.Poll(ctx); changed {
		t.Fatal("first poll only primes")
	}
	mem.Put(ctx, KeyStore, []byte(`{"version":2}`))
	if changed, _ := w.Poll(ctx); !changed || calls != 1 {
		t.Fatalf("changed = %v, calls = %d", changed, calls)
	}
	if changed, _ := w.Poll(ctx); changed {
		t.Fatal("unchanged bytes reported as change")
	}
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(memory.New(), KeyStore, time.Millisecond, nil)
	if w.interval != MinWatchInterval {
		t.Fatalf("interval = %v, want clamp to %v", w.interval, MinWatchInterval)
	}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestFingerprintIsStable(t *testing.T) {
	if Fingerprint([]byte("abc")) != Fingerprint([]byte("abc")) || Fingerprint([]byte("abc")) == Fingerprint([]byte("abd")) {
		t.Fatal("fingerprint must be deterministic and content sensitive")
	}
}
