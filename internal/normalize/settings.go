package normalize

import (
	"strings"

	"lifeadmin/internal/core"
)

const (
	minIdleMinutes = 1
	maxIdleMinutes = 240
)

// Settings merges persisted preferences over the defaults, coercing or
// clamping every field.
func Settings(raw any) core.Settings {
	d := core.DefaultSettings()
	m, _ := asMap(raw)
	s := d

	s.CalmModeAuto = boolOr(m, "calmModeAuto", d.CalmModeAuto)
	if n, ok := num(m["calmThreshold"]); ok && n >= 0 {
		s.CalmThreshold = n
	}
	s.FocusWeekDefault = boolOr(m, "focusWeekDefault", d.FocusWeekDefault)
	s.ShowArchivedDefault = boolOr(m, "showArchivedDefault", d.ShowArchivedDefault)
	if sort := core.SortMode(text(m["defaultSort"])); sort.IsValid() {
		s.DefaultSort = sort
	}
	s.HideMoney = boolOr(m, "hideMoney", d.HideMoney)
	if c := strings.ToUpper(text(m["currency"])); core.ValidCurrency(c) {
		s.Currency = c
	}

	n, _ := asMap(m["notifications"])
	s.Notifications.Enabled = boolOr(n, "enabled", d.Notifications.Enabled)
	if lvl := core.NotificationLevel(text(n["level"])); lvl.IsValid() {
		s.Notifications.Level = lvl
	}
	s.Notifications.QuietFrom = clockTime(n["quietFrom"])
	s.Notifications.QuietTo = clockTime(n["quietTo"])
	if ts, ok := epochMillis(n["lastNudgeAt"]); ok {
		s.Notifications.LastNudgeAt = ts
	}

	v, _ := asMap(m["vault"])
	s.Vault.AutoLockEnabled = boolOr(v, "autoLockEnabled", d.Vault.AutoLockEnabled)
	if idle, ok := num(v["idleMinutes"]); ok {
		s.Vault.IdleMinutes = floorClamp(idle, minIdleMinutes, maxIdleMinutes)
	}

	c, _ := asMap(m["cloud"])
	s.Cloud.Enabled = boolOr(c, "enabled", d.Cloud.Enabled)
	s.Cloud.UserID = text(c["userId"])
	if st := core.CloudStatus(text(c["status"])); st.IsValid() {
		s.Cloud.Status = st
	}
	if ts, ok := epochMillis(c["lastSyncAt"]); ok {
		s.Cloud.LastSyncAt = ts
	}
	return s
}
