// Package normalize turns untyped JSON trees (freshly parsed persisted data or
// imported backups) into canonical, schema-valid records. Nothing in this
// package returns an error or panics: invalid list entries are dropped and
// invalid scalars fall back to their defaults.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"lifeadmin/internal/core"
)

// Options supplies the clock and id source used for missing fields.
type Options struct {
	Now   core.Clock
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = core.SystemClock
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

func (o Options) nowISO() string { return core.Timestamp(o.Now()) }

// Result is the outcome of normalizing one record.
type Result[T any] struct {
	Value   T
	Dropped bool
	Reason  string
}

func keep[T any](v T) Result[T] { return Result[T]{Value: v} }

func drop[T any](reason string) Result[T] { return Result[T]{Dropped: true, Reason: reason} }

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// text returns v as a trimmed string. Numbers are formatted so that numeric
// ids from older exports survive.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}

// firstText returns the first non-empty text among keys.
func firstText(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := text(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// num coerces v to a finite float. Strings are parsed.
func num(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// nonNegative returns v as a number ≥ 0, or 0.
func nonNegative(v any) float64 {
	f, ok := num(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

// truthy mirrors loose boolean coercion: non-zero numbers and non-empty strings are true.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	case nil:
		return false
	}
	return true
}

// boolOr returns truthy(m[key]) when the key is present, else def.
func boolOr(m map[string]any, key string, def bool) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	return truthy(v)
}

// optDate returns a pointer to a strict ISO date or nil.
func optDate(v any) *string {
	s := text(v)
	if !core.IsISODate(s) {
		return nil
	}
	return &s
}

func optID(v any) *string {
	s := text(v)
	if s == "" {
		return nil
	}
	return &s
}

func priority(v any) core.Priority {
	if p := core.Priority(text(v)); p == core.PriorityHigh {
		return p
	}
	return core.PriorityNormal
}

func timestamp(v any, o Options) string {
	if s := text(v); s != "" {
		return s
	}
	return o.nowISO()
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// clockTime returns "HH:MM" when valid, else "".
func clockTime(v any) string {
	s := text(v)
	if clockPattern.MatchString(s) {
		return s
	}
	return ""
}

// idSet reassigns ids that repeat within one list.
type idSet map[string]struct{}

func (s idSet) claim(id string, o Options) string {
	if _, dup := s[id]; dup || id == "" {
		id = o.NewID()
	}
	s[id] = struct{}{}
	return id
}

// epochMillis converts a number to a positive epoch-ms value.
// maxCount bounds integer fields so float conversions cannot overflow.
const maxCount = math.MaxInt32

// maxEpochMillis is 9999-12-31T23:59:59.999Z.
const maxEpochMillis = 253402300799999

// floorClamp floors f and clamps it to [lo, hi] before converting.
func floorClamp(f float64, lo, hi int) int {
	f = math.Floor(f)
	if f < float64(lo) {
		return lo
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}

func epochMillis(v any) (int64, bool) {
	f, ok := num(v)
	if !ok || f <= 0 || f > maxEpochMillis {
		return 0, false
	}
	return int64(f), true
}

func today(o Options) string { return core.TodayISO(o.Now()) }
