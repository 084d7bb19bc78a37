package views

import (
	"slices"
	"strings"
	"time"

	"lifeadmin/internal/core"
)

// ProfileWindows returns the day offsets at which a profile nudges, largest first.
func ProfileWindows(p core.ReminderProfile) []int {
	switch p {
	case core.ProfileCareful:
		return []int{56, 28, 14, 7, 1}
	case core.ProfileTight:
		return []int{21, 7, 1}
	}
	return []int{42, 21, 7, 1}
}

// NudgeDue reports whether an item should nudge today: d lands on one of its
// profile windows, or the item is overdue.
func NudgeDue(it core.AdminItem, d *int) bool {
	if it.Archived || d == nil {
		return false
	}
	if *d < 0 {
		return true
	}
	return slices.Contains(ProfileWindows(it.ReminderProfile), *d)
}

func windowAt(w []int, i, fallback int) int {
	if i < len(w) {
		return w[i]
	}
	return fallback
}

// GentleNudge returns the calm one-line hint shown next to an item.
func GentleNudge(it core.AdminItem, d *int) string {
	name := strings.ToLower(it.Name)
	w := ProfileWindows(it.ReminderProfile)

	if it.Archived {
		return "Archived. You can unarchive it any time."
	}
	if d == nil {
		switch it.Category {
		case core.CategoryInfo:
			return "Handy to keep this here so you don't have to hunt for it later."
		case core.CategoryMoney:
			return "Worth keeping this saved so your money plan stays simple."
		}
		return "Worth keeping this saved so it stays easy to manage."
	}
	days := *d
	if days < 0 {
		return "It might be worth sorting this soon, just to get it off your mind."
	}

	switch it.Category {
	case core.CategoryMoney:
		switch {
		case strings.Contains(name, "budget"):
			return "A quick check-in can keep things feeling under control."
		case strings.Contains(name, "payday"):
			return "Might be a good time to plan transfers before money disappears."
		case strings.Contains(name, "savings"), strings.Contains(name, "fund"):
			return "Even a small top-up helps over time."
		case days <= w[0]:
			return "A calm check-in now can help you stay on track."
		}
	case core.CategoryRenewal:
		if strings.Contains(name, "insurance") {
			switch {
			case days <= w[0] && days > windowAt(w, 1, 0):
				return "Good time to start checking quotes calmly."
			case days <= windowAt(w, 1, w[0]) && days > windowAt(w, 2, 0):
				return "You could shortlist a couple of quotes."
			case days <= windowAt(w, 2, w[0]) && days > windowAt(w, 3, 0):
				return "Worth checking auto-renew settings."
			case days <= w[len(w)-1]:
				return "Gentle reminder to confirm you're covered."
			}
		}
		switch {
		case strings.Contains(name, "mot") && days <= 30:
			return "Might be a good time to book a slot so you get a convenient date."
		case strings.Contains(name, "passport") && days <= 180:
			return "Some countries require 6 months validity. Worth checking."
		case days <= w[0]:
			return "A small plan now keeps it low-stress later."
		}
	case core.CategoryVehicle:
		switch {
		case strings.Contains(name, "tyre"):
			return "Quick tyre pressure check can prevent surprises."
		case strings.Contains(name, "oil"):
			return "A quick oil check now and then can help."
		case days <= w[0]:
			return "Small check-ins keep things running smoothly."
		}
	case core.CategoryAccount:
		switch {
		case strings.Contains(name, "phone"):
			return "If you're near contract end, SIM-only can be worth a look."
		case strings.Contains(name, "subscription"):
			return "A quick review can save more than you'd expect."
		case days <= w[0]:
			return "A small review soon keeps it easy."
		}
	}

	if it.Priority == core.PriorityHigh && days <= 30 {
		return "High priority. Worth a quick look soon."
	}
	return "All seems fine. Just keeping it on your radar."
}

// NudgeCandidates returns the active items whose nudge is due, most overdue first.
func NudgeCandidates(items []core.AdminItem, now time.Time) []ItemView {
	var out []ItemView
	for _, it := range items {
		d := core.DaysUntil(it.DueDateISO, now)
		if NudgeDue(it, d) {
			out = append(out, Describe(it, now))
		}
	}
	sortByDays(out)
	return out
}
