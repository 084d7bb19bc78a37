package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lifeadmin/internal/core"
	"lifeadmin/internal/normalize"
)

// mergePatch overlays patch on base. Nested objects merge key by key.
func mergePatch(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		pm, pok := v.(map[string]any)
		bm, bok := out[k].(map[string]any)
		if pok && bok {
			out[k] = mergePatch(bm, pm)
			continue
		}
		out[k] = v
	}
	return out
}

func settingsMap(s core.Settings) (map[string]any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateSettings applies a partial settings object. The result goes through
// the settings normalizer, so invalid values fall back instead of failing.
func (s *Service) UpdateSettings(ctx context.Context, patch map[string]any) (core.Settings, error) {
	var out core.Settings
	_, err := s.update(ctx, "settings.update", func(st *core.Store) error {
		base, err := settingsMap(st.Settings)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		st.Settings = normalize.Settings(mergePatch(base, patch))
		out = st.Settings
		return nil
	})
	return out, err
}

// LogWin appends a free-form win. An empty type is recorded as "other".
func (s *Service) LogWin(ctx context.Context, winType, label string, delta float64, meta map[string]any) (core.WinEvent, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return core.WinEvent{}, invalid("label", core.ErrEmptyLabel)
	}
	if delta == 0 {
		delta = 1
	}
	var out core.WinEvent
	_, err := s.update(ctx, "win.log", func(st *core.Store) error {
		s.appendWin(st, strings.TrimSpace(winType), label, delta, meta)
		out = st.Wins.Events[len(st.Wins.Events)-1]
		return nil
	})
	return out, err
}
