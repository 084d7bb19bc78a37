package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/storage/memory"
	"lifeadmin/internal/store"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newManager(t *testing.T, c *clock) *store.Manager {
	t.Helper()
	n := 0
	m := store.NewManager(memory.New(),
		store.WithClock(c.Now),
		store.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		store.WithLogger(log.Nop()),
	)
	if _, err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func enable(t *testing.T, m *store.Manager, uid string) core.Store {
	t.Helper()
	s, err := m.Update(context.Background(), func(s *core.Store) error {
		s.Settings.Cloud.Enabled = true
		s.Settings.Cloud.UserID = uid
		return nil
	})
	if err != nil {
		t.Fatalf("enable cloud: %v", err)
	}
	return s
}

func TestDecide(t *testing.T) {
	local := t0.UnixMilli()
	min := time.Minute.Milliseconds()
	tests := []struct {
		name     string
		remote   *Document
		action   Action
		conflict bool
	}{
		{"no remote", nil, ActionPush, false},
		{"remote much newer", &Document{UpdatedAt: local + 60*min}, ActionPull, false},
		{"remote much older", &Document{UpdatedAt: local - 60*min}, ActionPush, false},
		{"remote slightly newer", &Document{UpdatedAt: local + 2*min}, ActionPull, true},
		{"remote slightly older", &Document{UpdatedAt: local - 2*min}, ActionPush, true},
		{"same stamp", &Document{UpdatedAt: local}, ActionNone, false},
		{"window edge", &Document{UpdatedAt: local + 5*min}, ActionPull, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(local, tt.remote)
			if d.Action != tt.action || d.Conflict != tt.conflict {
				t.Errorf("Decide = %+v, want action %s conflict %v", d, tt.action, tt.conflict)
			}
		})
	}
}

func TestDocumentStateAlias(t *testing.T) {
	var d Document
	if err := json.Unmarshal([]byte(`{"state":{"version":1},"updatedAt":5}`), &d); err != nil {
		t.Fatal(err)
	}
	if string(d.Store) != `{"version":1}` || d.UpdatedAt != 5 {
		t.Errorf("decoded %s / %d", d.Store, d.UpdatedAt)
	}
	if err := json.Unmarshal([]byte(`{"store":{"version":2},"state":{"version":1}}`), &d); err != nil {
		t.Fatal(err)
	}
	if string(d.Store) != `{"version":2}` {
		t.Errorf("store should win over state, got %s", d.Store)
	}
}

func TestSyncDisabled(t *testing.T) {
	c := &clock{t: t0}
	m := newManager(t, c)
	s := NewSyncer(m, NewMemory(c.Now), log.Nop())
	if _, err := s.SyncNow(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("got %v, want ErrDisabled", err)
	}
}

func TestSyncPushesWhenRemoteMissing(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: t0}
	m := newManager(t, c)
	local := enable(t, m, "u1")
	remote := NewMemory(c.Now)

	c.Advance(time.Minute)
	out, err := NewSyncer(m, remote, log.Nop()).SyncNow(ctx)
	if err != nil {
		t.Fatalf("SyncNow: %v", err)
	}
	if out.Action != ActionPush || out.Conflict {
		t.Errorf("outcome = %+v", out)
	}
	doc, _ := remote.Pull(ctx, "u1")
	if doc == nil || doc.UpdatedAt != local.UpdatedAt || doc.ServerUpdatedAt != c.Now().UnixMilli() {
		t.Fatalf("remote doc = %+v", doc)
	}
	snap, _ := m.Snapshot(ctx)
	if snap.Settings.Cloud.Status != core.CloudReady || snap.Settings.Cloud.LastSyncAt != c.Now().UnixMilli() {
		t.Errorf("cloud settings = %+v", snap.Settings.Cloud)
	}
}

func TestSyncPullsNewerRemote(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: t0}
	m := newManager(t, c)
	local := enable(t, m, "u1")

	other := core.NewStore(func() string { return "x" }, core.Timestamp(t0))
	other.LifeAdmin.Items = append(other.LifeAdmin.Items, core.AdminItem{
		ID: "cloud-1", Category: core.CategoryRenewal, Name: "From cloud",
		ReminderProfile: core.ProfileGentle, Priority: core.PriorityNormal, Recurrence: core.RecurrenceNone,
	})
	other.Settings.Cloud = core.CloudSettings{}
	body, _ := json.Marshal(other)
	remote := NewMemory(c.Now)
	_ = remote.Push(ctx, "u1", Document{Store: body, UpdatedAt: local.UpdatedAt + time.Hour.Milliseconds()})

	out, err := NewSyncer(m, remote, log.Nop()).SyncNow(ctx)
	if err != nil {
		t.Fatalf("SyncNow: %v", err)
	}
	if out.Action != ActionPull {
		t.Fatalf("action = %s, want pull", out.Action)
	}
	snap, _ := m.Snapshot(ctx)
	if snap.FindItem("cloud-1") < 0 {
		t.Errorf("pulled item missing")
	}
	if !snap.Settings.Cloud.Enabled || snap.Settings.Cloud.UserID != "u1" {
		t.Errorf("local cloud settings lost: %+v", snap.Settings.Cloud)
	}
	backups, _ := m.Backups(ctx)
	found := false
	for _, b := range backups {
		found = found || b.Reason == store.ReasonCloudPull
	}
	if !found {
		t.Errorf("no safety backup before pull")
	}
}

func TestIdleSyncsDoNotOverwriteNewerEdits(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: t0}
	remote := NewMemory(c.Now)
	a, b := newManager(t, c), newManager(t, c)
	enable(t, a, "u1")
	c.Advance(time.Minute)
	enable(t, b, "u1")
	syncA, syncB := NewSyncer(a, remote, log.Nop()), NewSyncer(b, remote, log.Nop())

	run := func(name string, s *Syncer, want Action) {
		t.Helper()
		c.Advance(10 * time.Minute)
		out, err := s.SyncNow(ctx)
		if err != nil {
			t.Fatalf("%s SyncNow: %v", name, err)
		}
		if out.Action != want {
			t.Fatalf("%s action = %s, want %s", name, out.Action, want)
		}
	}

	run("b first", syncB, ActionPush)
	run("a adopts b", syncA, ActionPull)
	run("a idle", syncA, ActionNone)

	c.Advance(10 * time.Minute)
	if _, err := b.Update(ctx, func(s *core.Store) error {
		s.LifeAdmin.Items = append(s.LifeAdmin.Items, core.AdminItem{
			ID: "b-edit", Category: core.CategoryRenewal, Name: "Edited on b",
			ReminderProfile: core.ProfileGentle, Priority: core.PriorityNormal, Recurrence: core.RecurrenceNone,
		})
		return nil
	}); err != nil {
		t.Fatalf("edit on b: %v", err)
	}

	run("a idle again", syncA, ActionNone)
	run("a idle once more", syncA, ActionNone)
	run("b pushes edit", syncB, ActionPush)
	run("a picks up edit", syncA, ActionPull)

	snap, _ := a.Snapshot(ctx)
	if snap.FindItem("b-edit") < 0 {
		t.Fatal("edit made on b never reached a")
	}
	doc, _ := remote.Pull(ctx, "u1")
	local, _ := b.Snapshot(ctx)
	if doc.UpdatedAt != local.UpdatedAt {
		t.Errorf("remote updatedAt = %d, want b's edit at %d", doc.UpdatedAt, local.UpdatedAt)
	}
}

type failingRemote struct{ err error }

func (f failingRemote) Pull(context.Context, string) (*Document, error) { return nil, f.err }
func (f failingRemote) Push(context.Context, string, Document) error    { return f.err }

func TestSyncRecordsFailure(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: t0}
	m := newManager(t, c)
	enable(t, m, "u1")
	boom := errors.New("network down")

	_, err := NewSyncer(m, failingRemote{err: boom}, log.Nop()).SyncNow(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped cause", err)
	}
	snap, _ := m.Snapshot(ctx)
	if snap.Settings.Cloud.Status != core.CloudError || snap.Settings.Cloud.LastSyncAt != 0 {
		t.Errorf("cloud settings = %+v", snap.Settings.Cloud)
	}
}

type slowRemote struct {
	*Memory
	pulls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (r *slowRemote) Pull(ctx context.Context, uid string) (*Document, error) {
	if r.pulls.Add(1) == 1 {
		close(r.entered)
	}
	<-r.release
	return r.Memory.Pull(ctx, uid)
}

func TestSyncNowCoalescesConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: t0}
	m := newManager(t, c)
	enable(t, m, "u1")
	r := &slowRemote{Memory: NewMemory(c.Now), entered: make(chan struct{}), release: make(chan struct{})}
	s := NewSyncer(m, r, log.Nop())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _, _ = s.SyncNow(ctx) }()
	<-r.entered
	go func() { defer wg.Done(); _, _ = s.SyncNow(ctx) }()
	time.Sleep(50 * time.Millisecond)
	close(r.release)
	wg.Wait()

	if n := r.pulls.Load(); n != 1 {
		t.Errorf("pulls = %d, want 1", n)
	}
}
