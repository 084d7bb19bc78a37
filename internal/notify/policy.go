package notify

import (
	"strconv"
	"strings"
	"time"

	"lifeadmin/internal/core"
)

// Minimum time between two nudges.
const (
	CalmGap   = 24 * time.Hour
	NormalGap = 6 * time.Hour
)

// Reasons a nudge is held back.
const (
	ReasonDisabled = "disabled"
	ReasonLevelOff = "level-off"
	ReasonQuiet    = "quiet-hours"
	ReasonTooSoon  = "too-soon"
	ReasonNothing  = "nothing-due"
)

// Policy decides whether a nudge may be sent now.
type Policy struct {
	Settings core.NotificationSettings
	Calm     bool
}

func (p Policy) MinGap() time.Duration {
	if p.Calm {
		return CalmGap
	}
	return NormalGap
}

// Allow returns "" when a nudge may go out at now, otherwise the reason it may not.
func (p Policy) Allow(now time.Time) string {
	switch {
	case !p.Settings.Enabled:
		return ReasonDisabled
	case p.Settings.Level == core.NotifyOff:
		return ReasonLevelOff
	case InQuietHours(p.Settings.QuietFrom, p.Settings.QuietTo, now):
		return ReasonQuiet
	case now.UnixMilli()-p.Settings.LastNudgeAt < p.MinGap().Milliseconds():
		return ReasonTooSoon
	}
	return ""
}

// Considers reports whether an item with status s is eligible at the
// configured level. Level urgent only looks at red and amber items.
func (p Policy) Considers(s core.Status) bool {
	if p.Settings.Level == core.NotifyUrgent {
		return s == core.StatusRed || s == core.StatusAmber
	}
	return true
}

func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

// InQuietHours reports whether now falls in the inclusive "HH:MM" range
// from..to, which may wrap midnight. An unset or malformed bound disables it.
func InQuietHours(from, to string, now time.Time) bool {
	f, ok1 := parseClock(from)
	t, ok2 := parseClock(to)
	if !ok1 || !ok2 {
		return false
	}
	mins := now.Hour()*60 + now.Minute()
	if f <= t {
		return mins >= f && mins <= t
	}
	return mins >= f || mins <= t
}
