package store

import (
	"context"
	"encoding/json"
	"fmt"

	"lifeadmin/internal/core"
)

// Report is the result of an integrity check.
type Report struct {
	OK     bool     `json:"ok"`
	Issues []string `json:"issues"`
}

// Check inspects the raw persisted document for missing sections and
// out-of-range settings. It never modifies anything.
func (m *Manager) Check(ctx context.Context) (Report, error) {
	raw, ok, err := m.p.Get(ctx, KeyStore)
	if err != nil {
		return Report{}, fmt.Errorf("integrity check: %w", err)
	}
	if !ok {
		return report([]string{"Store missing"}), nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return report([]string{"State missing"}), nil
	}
	return report(inspect(doc)), nil
}

func inspect(doc map[string]any) []string {
	var issues []string
	if _, ok := doc["version"].(float64); !ok {
		issues = append(issues, "Version missing")
	}
	settings, ok := doc["settings"].(map[string]any)
	if !ok {
		issues = append(issues, "Settings missing")
	}
	notifications, ok := settings["notifications"].(map[string]any)
	if !ok {
		issues = append(issues, "Notifications missing")
	}
	vault, ok := settings["vault"].(map[string]any)
	if !ok {
		issues = append(issues, "Vault missing")
	}
	if _, ok := settings["cloud"].(map[string]any); !ok {
		issues = append(issues, "Cloud missing")
	}
	if mins, ok := vault["idleMinutes"].(float64); ok && (mins < 1 || mins > 240) {
		issues = append(issues, "Vault idle minutes out of range")
	}
	if level, ok := notifications["level"].(string); ok && level != "" && !core.NotificationLevel(level).IsValid() {
		issues = append(issues, "Notification level invalid")
	}
	return issues
}

func report(issues []string) Report {
	if issues == nil {
		issues = []string{}
	}
	return Report{OK: len(issues) == 0, Issues: issues}
}

// Repair reloads the document through the normalizers and saves it.
func (m *Manager) Repair(ctx context.Context) (Report, error) {
	m.mu.Lock()
	m.loaded = false
	err := m.loadLocked(ctx)
	var s core.Store
	if err == nil {
		s, err = m.saveLocked(ctx, m.current, 0)
	}
	m.mu.Unlock()
	if err != nil {
		return Report{}, fmt.Errorf("repair: %w", err)
	}
	m.afterSave(ctx, s)
	return m.Check(ctx)
}
