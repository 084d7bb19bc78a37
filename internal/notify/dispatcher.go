package notify

import (
	"context"
	"fmt"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/store"
	"lifeadmin/internal/views"
)

// Title is the heading of every nudge.
const Title = "Life Admin"

// Result describes one dispatcher run. Sent is false when Skipped names why.
type Result struct {
	Sent    bool   `json:"sent"`
	Skipped string `json:"skipped,omitempty"`
	ItemID  string `json:"itemId,omitempty"`
	Body    string `json:"body,omitempty"`
}

type Dispatcher struct {
	m        *store.Manager
	notifier Notifier
	logger   *log.Logger
}

func NewDispatcher(m *store.Manager, n Notifier, logger *log.Logger) *Dispatcher {
	return &Dispatcher{m: m, notifier: n, logger: logger.WithComponent(log.ComponentNotify)}
}

// Run sends at most one nudge: the top smart alert whose nudge window is due.
// lastNudgeAt is stamped only after a successful send.
func (d *Dispatcher) Run(ctx context.Context) (Result, error) {
	snap, err := d.m.Snapshot(ctx)
	if err != nil {
		return Result{}, err
	}
	now := d.m.Now()()
	items := snap.LifeAdmin.Items
	calm, _ := views.CalmMode(items, snap.Settings, views.Session{}, now)
	p := Policy{Settings: snap.Settings.Notifications, Calm: calm}
	if reason := p.Allow(now); reason != "" {
		d.logger.DebugContext(ctx, "Nudge held back", log.FieldReason, reason)
		return Result{Skipped: reason}, nil
	}

	byID := make(map[string]core.AdminItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, a := range views.SmartAlerts(items, now) {
		it := byID[a.ID]
		if !p.Considers(a.Status) || !views.NudgeDue(it, core.DaysUntil(it.DueDateISO, now)) {
			continue
		}
		body := fmt.Sprintf("%s (%s). %s", a.Title, a.DueText, a.Nudge)
		if err := d.notifier.Notify(ctx, Title, body); err != nil {
			return Result{}, fmt.Errorf("send nudge: %w", err)
		}
		stamp := now.UnixMilli()
		if _, err := d.m.UpdateMeta(ctx, func(s *core.Store) error {
			s.Settings.Notifications.LastNudgeAt = stamp
			return nil
		}); err != nil {
			return Result{}, fmt.Errorf("stamp last nudge: %w", err)
		}
		d.logger.InfoContext(ctx, "Nudge sent", log.FieldOperation, log.OpNudge, log.FieldItemID, a.ID)
		return Result{Sent: true, ItemID: a.ID, Body: body}, nil
	}
	return Result{Skipped: ReasonNothing}, nil
}
