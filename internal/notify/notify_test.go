package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/storage/memory"
	"lifeadmin/internal/store"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func at(hh, mm int) time.Time {
	return time.Date(2025, 3, 10, hh, mm, 0, 0, time.UTC)
}

func TestInQuietHours(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		now      time.Time
		want     bool
	}{
		{"unset", "", "", at(23, 0), false},
		{"malformed", "25:00", "07:00", at(23, 0), false},
		{"inside same day", "13:00", "15:00", at(14, 0), true},
		{"end inclusive", "13:00", "15:00", at(15, 0), true},
		{"outside same day", "13:00", "15:00", at(16, 0), false},
		{"wrap late", "22:00", "07:00", at(23, 30), true},
		{"wrap early", "22:00", "07:00", at(6, 59), true},
		{"wrap daytime", "22:00", "07:00", at(12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InQuietHours(tt.from, tt.to, tt.now); got != tt.want {
				t.Errorf("InQuietHours(%q, %q, %s) = %v, want %v", tt.from, tt.to, tt.now.Format("15:04"), got, tt.want)
			}
		})
	}
}

func TestPolicyAllow(t *testing.T) {
	on := core.NotificationSettings{Enabled: true, Level: core.NotifyAll}
	tests := []struct {
		name string
		p    Policy
		want string
	}{
		{"disabled", Policy{Settings: core.NotificationSettings{Level: core.NotifyAll}}, ReasonDisabled},
		{"level off", Policy{Settings: core.NotificationSettings{Enabled: true, Level: core.NotifyOff}}, ReasonLevelOff},
		{"quiet", Policy{Settings: core.NotificationSettings{Enabled: true, Level: core.NotifyAll, QuietFrom: "11:00", QuietTo: "13:00"}}, ReasonQuiet},
		{"never nudged", Policy{Settings: on}, ""},
		{"gap not reached", Policy{Settings: withLast(on, now.Add(-5*time.Hour))}, ReasonTooSoon},
		{"gap reached", Policy{Settings: withLast(on, now.Add(-6*time.Hour))}, ""},
		{"calm gap not reached", Policy{Settings: withLast(on, now.Add(-23*time.Hour)), Calm: true}, ReasonTooSoon},
		{"calm gap reached", Policy{Settings: withLast(on, now.Add(-24*time.Hour)), Calm: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Allow(now); got != tt.want {
				t.Errorf("Allow = %q, want %q", got, tt.want)
			}
		})
	}
}

func withLast(s core.NotificationSettings, t time.Time) core.NotificationSettings {
	s.LastNudgeAt = t.UnixMilli()
	return s
}

func TestPolicyConsiders(t *testing.T) {
	urgent := Policy{Settings: core.NotificationSettings{Level: core.NotifyUrgent}}
	all := Policy{Settings: core.NotificationSettings{Level: core.NotifyAll}}
	if urgent.Considers(core.StatusGreen) || !urgent.Considers(core.StatusAmber) || !urgent.Considers(core.StatusRed) {
		t.Error("urgent level should only consider red and amber")
	}
	if !all.Considers(core.StatusGreen) {
		t.Error("all level should consider green")
	}
}

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotify(t *testing.T) {
	bot := &fakeBot{}
	tg := &Telegram{bot: bot, chatID: 42}
	if err := tg.Notify(context.Background(), "Life Admin", "Passport (In 7 days)."); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok || msg.ChatID != 42 || msg.Text != "Life Admin\nPassport (In 7 days)." {
		t.Errorf("sent %#v", bot.sent[0])
	}

	bot.err = errors.New("blocked")
	if err := tg.Notify(context.Background(), "t", "b"); err == nil || !strings.Contains(err.Error(), "blocked") {
		t.Errorf("want wrapped send error, got %v", err)
	}
}

type recorder struct {
	bodies []string
	err    error
}

func (r *recorder) Notify(_ context.Context, _, body string) error {
	if r.err != nil {
		return r.err
	}
	r.bodies = append(r.bodies, body)
	return nil
}

func newStore(t *testing.T, items ...core.AdminItem) *store.Manager {
	t.Helper()
	n := 0
	m := store.NewManager(memory.New(),
		store.WithClock(func() time.Time { return now }),
		store.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		store.WithLogger(log.Nop()),
	)
	_, err := m.Update(context.Background(), func(s *core.Store) error {
		s.LifeAdmin.Items = items
		s.Settings.Notifications = core.NotificationSettings{Enabled: true, Level: core.NotifyAll}
		return nil
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return m
}

func adminItem(id, name, due string) core.AdminItem {
	return core.AdminItem{
		ID: id, Name: name, Category: core.CategoryRenewal, DueDateISO: core.Ptr(due),
		ReminderProfile: core.ProfileGentle, Priority: core.PriorityNormal, Recurrence: core.RecurrenceNone,
	}
}

func TestDispatcherSendsDueNudge(t *testing.T) {
	ctx := context.Background()
	m := newStore(t,
		adminItem("a", "Passport", "2025-03-17"),   // d=7, a gentle window
		adminItem("b", "TV licence", "2025-03-15"), // d=5, not a window
	)
	rec := &recorder{}
	res, err := NewDispatcher(m, rec, log.Nop()).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Sent || res.ItemID != "a" || len(rec.bodies) != 1 {
		t.Fatalf("result = %+v, bodies = %v", res, rec.bodies)
	}
	snap, _ := m.Snapshot(ctx)
	if snap.Settings.Notifications.LastNudgeAt != now.UnixMilli() {
		t.Errorf("lastNudgeAt = %d", snap.Settings.Notifications.LastNudgeAt)
	}

	res, err = NewDispatcher(m, rec, log.Nop()).Run(ctx)
	if err != nil || res.Skipped != ReasonTooSoon {
		t.Errorf("second run = %+v, %v; want too-soon", res, err)
	}
}

func TestDispatcherNothingDue(t *testing.T) {
	m := newStore(t, adminItem("b", "TV licence", "2025-03-15"))
	res, err := NewDispatcher(m, &recorder{}, log.Nop()).Run(context.Background())
	if err != nil || res.Sent || res.Skipped != ReasonNothing {
		t.Errorf("Run = %+v, %v", res, err)
	}
}

func TestDispatcherSendFailureKeepsStamp(t *testing.T) {
	ctx := context.Background()
	m := newStore(t, adminItem("a", "Passport", "2025-03-17"))
	boom := errors.New("offline")
	if _, err := NewDispatcher(m, &recorder{err: boom}, log.Nop()).Run(ctx); !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped send error", err)
	}
	snap, _ := m.Snapshot(ctx)
	if snap.Settings.Notifications.LastNudgeAt != 0 {
		t.Errorf("lastNudgeAt changed to %d", snap.Settings.Notifications.LastNudgeAt)
	}
}
