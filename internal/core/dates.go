package core

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

// ISODateLayout is the persisted calendar date format.
const ISODateLayout = "2006-01-02"

// TimestampLayout matches the millisecond UTC timestamps used for createdAtISO/updatedAtISO.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Clock returns the current time. Components take a Clock so tests can pin "now".
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsISODate reports whether s is a strict, existing YYYY-MM-DD date.
func IsISODate(s string) bool {
	_, ok := parseISODate(s)
	return ok
}

// parseISODate returns the date at UTC midnight.
func parseISODate(s string) (time.Time, bool) {
	if !isoDatePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// calendarDay maps the local calendar date of t onto UTC midnight, so that
// differences between two calendar days are always whole multiples of 24h.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TodayISO formats the local calendar date of now.
func TodayISO(now time.Time) string {
	return now.Format(ISODateLayout)
}

// Timestamp formats t as a millisecond UTC timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts RFC 3339 timestamps with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthKey returns the YYYY-MM key of t in its own location.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthKeyOfISO returns the YYYY-MM prefix of a valid ISO date, or "".
func MonthKeyOfISO(dateISO string) string {
	if !IsISODate(dateISO) {
		return ""
	}
	return dateISO[:7]
}

// DaysUntil returns the calendar-day offset from today to dateISO, or nil when
// there is no valid date. Today is 0, yesterday is -1.
func DaysUntil(dateISO *string, now time.Time) *int {
	if dateISO == nil {
		return nil
	}
	due, ok := parseISODate(*dateISO)
	if !ok {
		return nil
	}
	d := int(math.Round(due.Sub(calendarDay(now)).Hours() / 24))
	return &d
}

// Status is the traffic-light classification of an item.
type Status string

const (
	StatusGreen Status = "green"
	StatusAmber Status = "amber"
	StatusRed   Status = "red"
)

// Severity orders statuses: red is the worst.
func (s Status) Severity() int {
	switch s {
	case StatusRed:
		return 2
	case StatusAmber:
		return 1
	}
	return 0
}

// StatusFromDays classifies a day offset. Items without a date are green.
func StatusFromDays(d *int) Status {
	switch {
	case d == nil:
		return StatusGreen
	case *d <= 14:
		return StatusRed
	case *d <= 30:
		return StatusAmber
	default:
		return StatusGreen
	}
}

// FmtDueText renders a day offset as a short phrase.
func FmtDueText(d *int) string {
	switch {
	case d == nil:
		return "No due date"
	case *d < 0:
		return fmt.Sprintf("Overdue by %d %s", -*d, plural(-*d, "day"))
	case *d == 0:
		return "Due today"
	default:
		return fmt.Sprintf("Due in %d %s", *d, plural(*d, "day"))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// baseDate resolves an optional ISO date, defaulting to today.
func baseDate(dateISO string, now time.Time) time.Time {
	if t, ok := parseISODate(dateISO); ok {
		return t
	}
	return calendarDay(now)
}

// AddDaysISO adds n calendar days. An empty or invalid base means today.
func AddDaysISO(dateISO string, n int, now time.Time) string {
	return baseDate(dateISO, now).AddDate(0, 0, n).Format(ISODateLayout)
}

// AddMonthsISO adds n months, clamping to the last day of the target month
// (2024-01-31 + 1 month is 2024-02-29).
func AddMonthsISO(dateISO string, n int, now time.Time) string {
	return addMonthsClamped(baseDate(dateISO, now), n).Format(ISODateLayout)
}

// AddYearsISO adds n years with the same clamping (2024-02-29 + 1 year is 2025-02-28).
func AddYearsISO(dateISO string, n int, now time.Time) string {
	return addMonthsClamped(baseDate(dateISO, now), 12*n).Format(ISODateLayout)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
