// Package views derives read models from a normalized store. Every function
// here is pure: it never mutates its inputs and treats missing or malformed
// fields as "not shown" rather than failing.
package views

import "lifeadmin/internal/core"

// Session is ephemeral UI state. It is never persisted with the store; nil
// pointers fall back to the matching persisted preference.
type Session struct {
	CalmOverride *bool            `json:"calmOverride"`
	Dismissed    map[string]int64 `json:"dismissed"`
	ShowArchived *bool            `json:"showArchived"`
	FocusWeek    *bool            `json:"focusWeek"`
}

func (s Session) showArchived(set core.Settings) bool {
	if s.ShowArchived != nil {
		return *s.ShowArchived
	}
	return set.ShowArchivedDefault
}

func (s Session) focusWeek(set core.Settings) bool {
	if s.FocusWeek != nil {
		return *s.FocusWeek
	}
	return set.FocusWeekDefault
}

// IsDismissed reports whether a dashboard task was dismissed this session.
func (s Session) IsDismissed(taskID string) bool {
	_, ok := s.Dismissed[taskID]
	return ok
}

// Dismiss returns a copy of s with taskID dismissed at ts.
func (s Session) Dismiss(taskID string, ts int64) Session {
	out := s
	out.Dismissed = make(map[string]int64, len(s.Dismissed)+1)
	for k, v := range s.Dismissed {
		out.Dismissed[k] = v
	}
	out.Dismissed[taskID] = ts
	return out
}
