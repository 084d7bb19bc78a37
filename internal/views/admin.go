package views

import (
	"sort"
	"strings"
	"time"

	"lifeadmin/internal/core"
)

// ItemView is an admin item annotated with its derived due state.
type ItemView struct {
	core.AdminItem
	DaysUntil *int        `json:"daysUntil"`
	Status    core.Status `json:"status"`
	DueText   string      `json:"dueText"`
	Nudge     string      `json:"nudge"`
}

// Describe derives the due state of one item as of now.
func Describe(it core.AdminItem, now time.Time) ItemView {
	d := core.DaysUntil(it.DueDateISO, now)
	return ItemView{
		AdminItem: it,
		DaysUntil: d,
		Status:    core.StatusFromDays(d),
		DueText:   core.FmtDueText(d),
		Nudge:     GentleNudge(it, d),
	}
}

func describeAll(items []core.AdminItem, now time.Time) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, Describe(it, now))
	}
	return out
}

// AdminQuery holds the list controls. Zero values mean "no filter" and the
// settings' default sort.
type AdminQuery struct {
	Query    string        `json:"query"`
	Category core.Category `json:"category"`
	Sort     core.SortMode `json:"sort"`
}

// FilterAndSort applies archive, category, search and focus-week filters, then
// the sort mode, then a stable pass that lifts high priority items to the top.
func FilterAndSort(items []core.AdminItem, q AdminQuery, set core.Settings, sess Session, now time.Time) []ItemView {
	showArchived := sess.showArchived(set)
	focus := sess.focusWeek(set)
	query := strings.ToLower(strings.TrimSpace(q.Query))

	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		if it.Archived && !showArchived {
			continue
		}
		if q.Category != "" && it.Category != q.Category {
			continue
		}
		if query != "" && !matches(it, query) {
			continue
		}
		v := Describe(it, now)
		if focus && (v.DaysUntil == nil || *v.DaysUntil > 7) {
			continue
		}
		out = append(out, v)
	}

	mode := q.Sort
	if !mode.IsValid() {
		mode = set.DefaultSort
	}
	sortItems(out, mode)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority == core.PriorityHigh && out[j].Priority != core.PriorityHigh
	})
	return out
}

func matches(it core.AdminItem, q string) bool {
	if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Details), q) {
		return true
	}
	return it.DueDateISO != nil && strings.Contains(*it.DueDateISO, q)
}

// compareDays orders by due offset with undated items last.
func compareDays(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return *a - *b
}

func sortItems(items []ItemView, mode core.SortMode) {
	var less func(a, b ItemView) bool
	switch mode {
	case core.SortDueLatest:
		less = func(a, b ItemView) bool { return compareDays(a.DaysUntil, b.DaysUntil) > 0 }
	case core.SortCreatedOldest:
		less = func(a, b ItemView) bool { return a.CreatedAtISO < b.CreatedAtISO }
	case core.SortCreatedNewest:
		less = func(a, b ItemView) bool { return a.CreatedAtISO > b.CreatedAtISO }
	case core.SortNameAZ:
		less = func(a, b ItemView) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case core.SortNameZA:
		less = func(a, b ItemView) bool { return strings.ToLower(a.Name) > strings.ToLower(b.Name) }
	default:
		less = func(a, b ItemView) bool { return compareDays(a.DaysUntil, b.DaysUntil) < 0 }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func sortByDays(items []ItemView) {
	sort.SliceStable(items, func(i, j int) bool { return compareDays(items[i].DaysUntil, items[j].DaysUntil) < 0 })
}

// OverallStatus is the worst status among non-archived items.
func OverallStatus(items []core.AdminItem, now time.Time) core.Status {
	worst := core.StatusGreen
	for _, it := range items {
		if it.Archived {
			continue
		}
		s := core.StatusFromDays(core.DaysUntil(it.DueDateISO, now))
		if s.Severity() > worst.Severity() {
			worst = s
		}
	}
	return worst
}

// StatusLabel is the headline text for an overall status.
func StatusLabel(s core.Status) string {
	switch s {
	case core.StatusRed:
		return "Needs attention"
	case core.StatusAmber:
		return "Coming up"
	}
	return "All good"
}

// AdminStats summarizes the active items.
type AdminStats struct {
	Total     int       `json:"total"`
	DueSoon   int       `json:"dueSoon"`
	OnTrack   int       `json:"onTrack"`
	High      int       `json:"highPriority"`
	NextNudge *ItemView `json:"nextNudge"`
}

// Stats counts active items: due within 30 days, green, and high priority.
func Stats(items []core.AdminItem, now time.Time) AdminStats {
	var st AdminStats
	active := make([]ItemView, 0, len(items))
	for _, it := range items {
		if it.Archived {
			continue
		}
		v := Describe(it, now)
		active = append(active, v)
		st.Total++
		if d := v.DaysUntil; d != nil && *d >= 0 && *d <= 30 {
			st.DueSoon++
		}
		if v.Status == core.StatusGreen {
			st.OnTrack++
		}
		if it.Priority == core.PriorityHigh {
			st.High++
		}
	}
	st.NextNudge = nextNudge(active)
	return st
}

// nextNudge prefers the overdue item closest to today, then the soonest
// upcoming one, then any active item.
func nextNudge(active []ItemView) *ItemView {
	var overdue, upcoming *ItemView
	for i := range active {
		v := &active[i]
		if v.DaysUntil == nil {
			continue
		}
		d := *v.DaysUntil
		if d < 0 && (overdue == nil || d > *overdue.DaysUntil) {
			overdue = v
		}
		if d >= 0 && (upcoming == nil || d < *upcoming.DaysUntil) {
			upcoming = v
		}
	}
	switch {
	case overdue != nil:
		return overdue
	case upcoming != nil:
		return upcoming
	case len(active) > 0:
		return &active[0]
	}
	return nil
}

// AdminList is the full admin screen model.
type AdminList struct {
	Items        []ItemView                   `json:"items"`
	ByCategory   map[core.Category][]ItemView `json:"byCategory"`
	Overall      core.Status                  `json:"overall"`
	OverallLabel string                       `json:"overallLabel"`
	Calm         bool                         `json:"calm"`
	CalmManual   bool                         `json:"calmManual"`
	Stats        AdminStats                   `json:"stats"`
	Alerts       []Alert                      `json:"alerts"`
	NextSteps    NextSteps                    `json:"nextSteps"`
}

// BuildAdminList assembles the admin screen. Calm mode narrows the visible
// list only; stats, alerts and next steps always see every item.
func BuildAdminList(items []core.AdminItem, q AdminQuery, set core.Settings, sess Session, now time.Time) AdminList {
	calm, manual := CalmMode(items, set, sess, now)
	visible := items
	if calm {
		visible = ApplyCalm(items, now)
	}
	list := FilterAndSort(visible, q, set, sess, now)
	byCat := make(map[core.Category][]ItemView)
	for _, v := range list {
		byCat[v.Category] = append(byCat[v.Category], v)
	}
	overall := OverallStatus(items, now)
	return AdminList{
		Items:        list,
		ByCategory:   byCat,
		Overall:      overall,
		OverallLabel: StatusLabel(overall),
		Calm:         calm,
		CalmManual:   manual,
		Stats:        Stats(items, now),
		Alerts:       SmartAlerts(items, now),
		NextSteps:    BuildNextSteps(items, now),
	}
}
