package views

import (
	"sort"
	"time"

	"lifeadmin/internal/core"
)

// MaxAlerts bounds the smart alert list.
const MaxAlerts = 4

// IsUrgent reports whether an active item is red or amber.
func IsUrgent(it core.AdminItem, now time.Time) bool {
	if it.Archived {
		return false
	}
	s := core.StatusFromDays(core.DaysUntil(it.DueDateISO, now))
	return s == core.StatusRed || s == core.StatusAmber
}

func UrgentCount(items []core.AdminItem, now time.Time) int {
	n := 0
	for _, it := range items {
		if IsUrgent(it, now) {
			n++
		}
	}
	return n
}

// CalmMode decides whether the admin list shows urgent items only. A session
// override wins; otherwise calm mode turns on when auto mode is enabled and
// the urgent count exceeds the threshold.
func CalmMode(items []core.AdminItem, set core.Settings, sess Session, now time.Time) (on bool, manual bool) {
	if sess.CalmOverride != nil {
		return *sess.CalmOverride, true
	}
	if !set.CalmModeAuto {
		return false, false
	}
	return float64(UrgentCount(items, now)) > set.CalmThreshold, false
}

// ApplyCalm keeps only urgent items.
func ApplyCalm(items []core.AdminItem, now time.Time) []core.AdminItem {
	out := make([]core.AdminItem, 0, len(items))
	for _, it := range items {
		if IsUrgent(it, now) {
			out = append(out, it)
		}
	}
	return out
}

// Alert is one ranked entry of the smart alerts panel.
type Alert struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	DueText string      `json:"dueText"`
	Status  core.Status `json:"status"`
	Nudge   string      `json:"nudge"`
	Score   int         `json:"score"`
}

// AlertScore weighs status, priority and closeness of the due date.
func AlertScore(it core.AdminItem, d *int) int {
	score := 10
	switch core.StatusFromDays(d) {
	case core.StatusRed:
		score = 120
	case core.StatusAmber:
		score = 70
	}
	if it.Priority == core.PriorityHigh {
		score += 20
	}
	if d == nil {
		return score - 10
	}
	return score + max(0, 40-min(40, *d))
}

// SmartAlerts returns the top scoring active items. Ties keep input order.
func SmartAlerts(items []core.AdminItem, now time.Time) []Alert {
	alerts := make([]Alert, 0, len(items))
	for _, it := range items {
		if it.Archived {
			continue
		}
		d := core.DaysUntil(it.DueDateISO, now)
		alerts = append(alerts, Alert{
			ID:      it.ID,
			Title:   it.Name,
			DueText: core.FmtDueText(d),
			Status:  core.StatusFromDays(d),
			Nudge:   GentleNudge(it, d),
			Score:   AlertScore(it, d),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].Score > alerts[j].Score })
	if len(alerts) > MaxAlerts {
		alerts = alerts[:MaxAlerts]
	}
	return alerts
}

// NextSteps buckets dated active items: Today holds overdue and due-today
// items, Week holds the next seven days.
type NextSteps struct {
	Today []ItemView `json:"today"`
	Week  []ItemView `json:"week"`
}

func BuildNextSteps(items []core.AdminItem, now time.Time) NextSteps {
	ns := NextSteps{Today: []ItemView{}, Week: []ItemView{}}
	for _, v := range describeAll(items, now) {
		if v.Archived || v.DaysUntil == nil {
			continue
		}
		switch d := *v.DaysUntil; {
		case d <= 0:
			ns.Today = append(ns.Today, v)
		case d <= 7:
			ns.Week = append(ns.Week, v)
		}
	}
	sortByDays(ns.Today)
	sortByDays(ns.Week)
	return ns
}

// DueSoon counts active items due within 0..days.
func DueSoon(items []core.AdminItem, days int, now time.Time) int {
	n := 0
	for _, it := range items {
		if it.Archived {
			continue
		}
		if d := core.DaysUntil(it.DueDateISO, now); d != nil && *d >= 0 && *d <= days {
			n++
		}
	}
	return n
}

// DueSoonCounts feeds the 7 and 30 day badges.
type DueSoonCounts struct {
	Week  int `json:"week"`
	Month int `json:"month"`
}

func DueSoonBadges(items []core.AdminItem, now time.Time) DueSoonCounts {
	return DueSoonCounts{Week: DueSoon(items, 7, now), Month: DueSoon(items, 30, now)}
}
