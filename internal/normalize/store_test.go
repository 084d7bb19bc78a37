package normalize

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"lifeadmin/internal/core"
)

// reparse returns the JSON form of s as an untyped tree.
func reparse(t *testing.T, s core.Store) any {
	t.Helper()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return raw
}

func TestStoreIsTotal(t *testing.T) {
	inputs := map[string]any{
		"nil":          nil,
		"empty object": map[string]any{},
		"array":        []any{1.0, "x"},
		"string":       "corrupt",
		"garbage lists": map[string]any{
			"lifeAdmin": map[string]any{"items": []any{nil, 3.0, "x", map[string]any{}}},
			"money":     map[string]any{"funds": "nope", "txns": []any{map[string]any{"type": "spend"}}},
			"wins":      []any{1.0},
			"home":      map[string]any{"rooms": []any{}},
			"settings":  42.0,
		},
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			s := Store(raw, testOptions())
			if s.Version != core.SchemaVersion {
				t.Fatalf("version = %d", s.Version)
			}
			if s.LifeAdmin.Items == nil || s.Money.Funds == nil || s.Money.Budgets == nil || s.Money.Txns == nil || s.Wins.Events == nil {
				t.Fatalf("lists must be non-nil: %+v", s)
			}
			if len(s.Home.Rooms) == 0 || len(s.Skills.Categories) == 0 {
				t.Fatal("defaults not seeded")
			}
			if s.Settings.Vault.IdleMinutes != 5 {
				t.Fatalf("settings not defaulted: %+v", s.Settings)
			}
		})
	}
}

func TestStoreIsIdempotent(t *testing.T) {
	raw := map[string]any{
		"version":   2.0,
		"updatedAt": 1700000000000.0,
		"lifeAdmin": map[string]any{"items": []any{
			map[string]any{"title": "Car insurance", "dueDate": "2025-03-20", "priority": "high", "recurrence": "yearly"},
			map[string]any{"name": "Boiler", "recurrence": "custom"},
			map[string]any{"id": "x", "name": "Dup"},
			map[string]any{"id": "x", "name": "Dup 2"},
		}},
		"money": map[string]any{
			"currency": "usd",
			"txns":     []any{map[string]any{"type": "income", "label": "Pay", "amount": 10.0}},
		},
		"wins": map[string]any{"events": []any{
			map[string]any{"ts": 1.0, "type": "plan", "label": "a", "meta": map[string]any{"itemId": "x"}},
		}},
		"settings": map[string]any{"vault": map[string]any{"idleMinutes": 0.0}},
	}

	first := Store(raw, testOptions())
	second := Store(reparse(t, first), testOptions())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
	if first.Settings.Currency != "USD" {
		t.Fatalf("legacy money.currency not migrated: %q", first.Settings.Currency)
	}
	if first.Settings.Vault.IdleMinutes != 1 {
		t.Fatalf("idleMinutes = %d, want 1", first.Settings.Vault.IdleMinutes)
	}
	if first.UpdatedAt != 1700000000000 {
		t.Fatalf("updatedAt = %d", first.UpdatedAt)
	}

	t.Run("huge numbers", func(t *testing.T) {
		raw := map[string]any{
			"version": 1e300,
			"lifeAdmin": map[string]any{"items": []any{
				map[string]any{"name": "Boiler", "recurrence": "custom", "customDays": 1e300, "doneCount": 1e300},
			}},
			"wins": map[string]any{"events": []any{
				map[string]any{"ts": 1e300, "type": "plan", "label": "far future"},
				map[string]any{"ts": 5.0, "type": "plan", "label": "kept"},
			}},
			"settings": map[string]any{
				"vault":         map[string]any{"idleMinutes": 1e300},
				"notifications": map[string]any{"lastNudgeAt": 1e300},
				"cloud":         map[string]any{"lastSyncAt": 1e300},
			},
		}
		first := Store(raw, testOptions())
		second := Store(reparse(t, first), testOptions())
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("not idempotent:\nfirst  %+v\nsecond %+v", first, second)
		}
		it := first.LifeAdmin.Items[0]
		if it.CustomDays == nil || *it.CustomDays != 30 {
			t.Errorf("customDays = %v, want 30", it.CustomDays)
		}
		if it.DoneCount != math.MaxInt32 {
			t.Errorf("doneCount = %d, want %d", it.DoneCount, math.MaxInt32)
		}
		if got := first.Settings.Vault.IdleMinutes; got != 240 {
			t.Errorf("idleMinutes = %d, want 240", got)
		}
		if first.Settings.Notifications.LastNudgeAt != 0 || first.Settings.Cloud.LastSyncAt != 0 {
			t.Errorf("out of range timestamps kept: %+v", first.Settings)
		}
		if len(first.Wins.Events) != 1 || first.Wins.Events[0].Label != "kept" {
			t.Errorf("wins = %+v", first.Wins.Events)
		}
	})
}

func TestStoreMigratesVersionOne(t *testing.T) {
	tests := map[string]map[string]any{
		"lifeAdmin array": {"version": 1.0, "lifeAdmin": []any{map[string]any{"name": "MOT"}}},
		"root items":      {"items": []any{map[string]any{"name": "MOT"}}},
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			s := Store(raw, testOptions())
			if len(s.LifeAdmin.Items) != 1 || s.LifeAdmin.Items[0].Name != "MOT" {
				t.Fatalf("items = %+v", s.LifeAdmin.Items)
			}
		})
	}
}

func TestStoreDoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"lifeAdmin": []any{map[string]any{"name": "MOT"}}}
	Store(raw, testOptions())
	if _, ok := raw["lifeAdmin"].([]any); !ok {
		t.Fatal("input document was modified")
	}
}

func TestMigrateLegacyKeepsProvenance(t *testing.T) {
	raw := []any{
		map[string]any{"id": "legacy-1", "name": "Passport", "createdAtISO": "2019-06-01T10:00:00.000Z", "dueDateISO": "2029-06-01"},
		"junk",
	}
	s := MigrateLegacy(raw, testOptions())
	if len(s.LifeAdmin.Items) != 1 {
		t.Fatalf("got %d items", len(s.LifeAdmin.Items))
	}
	it := s.LifeAdmin.Items[0]
	if it.ID != "legacy-1" || it.CreatedAtISO != "2019-06-01T10:00:00.000Z" {
		t.Fatalf("provenance lost: %+v", it)
	}
	if s.Settings != core.DefaultSettings() {
		t.Fatal("legacy migration should start from default settings")
	}
}

func TestTypedScrubsNonFinite(t *testing.T) {
	s := core.NewStore(testOptions().NewID, "2025-03-10T09:30:00.000Z")
	s.Money.Funds = append(s.Money.Funds, core.Fund{ID: "f", Name: "Trip", Target: math.Inf(1), Current: math.NaN()})
	s.Settings.CalmThreshold = math.NaN()

	got := Typed(s, testOptions())
	if len(got.Money.Funds) != 1 {
		t.Fatalf("fund lost: %+v", got.Money.Funds)
	}
	if f := got.Money.Funds[0]; f.Target != 0 || f.Current != 0 {
		t.Fatalf("non-finite amounts kept: %+v", f)
	}
	if got.Settings.CalmThreshold != 0 {
		t.Fatalf("calmThreshold = %v, want 0", got.Settings.CalmThreshold)
	}
}
