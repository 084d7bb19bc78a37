package normalize

import (
	"math"

	"lifeadmin/internal/core"
)

// WinsVersion is the schema version of the wins log.
const WinsVersion = 1

// WinEvent normalizes one log entry. ts, type and label are required.
func WinEvent(raw any) Result[core.WinEvent] {
	m, ok := asMap(raw)
	if !ok {
		return drop[core.WinEvent]("not an object")
	}
	ts, ok := epochMillis(m["ts"])
	if !ok {
		return drop[core.WinEvent]("invalid ts")
	}
	typ, label := text(m["type"]), text(m["label"])
	if typ == "" || label == "" {
		return drop[core.WinEvent]("missing type or label")
	}
	delta, ok := num(m["delta"])
	if !ok {
		delta = 1
	}
	ev := core.WinEvent{
		ID:    text(m["id"]),
		TS:    ts,
		Type:  typ,
		Label: label,
		Delta: delta,
	}
	if meta, ok := asMap(m["meta"]); ok && len(meta) > 0 {
		ev.Meta = finiteMeta(meta)
	}
	return keep(ev)
}

// Wins normalizes the log and keeps the most recent entries.
func Wins(raw any) core.Wins {
	m, _ := asMap(raw)
	list, _ := asSlice(m["events"])
	events := make([]core.WinEvent, 0, len(list))
	for _, r := range list {
		if res := WinEvent(r); !res.Dropped {
			events = append(events, res.Value)
		}
	}
	return core.Wins{Version: WinsVersion, Events: core.CapWins(events)}
}

// finiteMeta copies meta, dropping values that cannot be encoded as JSON.
func finiteMeta(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			continue
		}
		out[k] = v
	}
	return out
}
