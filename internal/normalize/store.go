package normalize

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"lifeadmin/internal/core"
)

// migration upgrades a raw document from one schema version to the next.
type migration func(doc map[string]any) map[string]any

// migrations is keyed by the version being upgraded from.
var migrations = map[int]migration{
	1: migrateV1,
}

// migrateV1 moves admin items into lifeAdmin.items. Version 1 documents kept
// them either as a bare lifeAdmin array or as a root level items array.
func migrateV1(doc map[string]any) map[string]any {
	if list, ok := asSlice(doc["lifeAdmin"]); ok {
		doc["lifeAdmin"] = map[string]any{"items": list}
		return doc
	}
	if _, ok := asMap(doc["lifeAdmin"]); !ok {
		if list, ok := asSlice(doc["items"]); ok {
			doc["lifeAdmin"] = map[string]any{"items": list}
			delete(doc, "items")
		}
	}
	return doc
}

// Store normalizes a whole document. It is total: any input, including nil,
// yields a valid Store.
func Store(raw any, o Options) core.Store {
	o = o.withDefaults()
	src, _ := asMap(raw)
	doc := make(map[string]any, len(src))
	for k, v := range src {
		doc[k] = v
	}

	version := 1
	if v, ok := num(doc["version"]); ok && v >= 1 {
		version = floorClamp(v, 1, core.SchemaVersion)
	}
	for v := version; v < core.SchemaVersion; v++ {
		if up, ok := migrations[v]; ok {
			doc = up(doc)
		}
	}

	var updatedAt int64
	if ts, ok := epochMillis(doc["updatedAt"]); ok {
		updatedAt = ts
	}

	admin, _ := asMap(doc["lifeAdmin"])
	return core.Store{
		Version:   core.SchemaVersion,
		UpdatedAt: updatedAt,
		LifeAdmin: core.LifeAdmin{Items: AdminItems(admin["items"], o)},
		Home:      Home(doc["home"], o),
		Skills:    Skills(doc["skills"], o),
		Money:     Money(doc["money"], o),
		Wins:      Wins(doc["wins"]),
		Settings:  Settings(settingsWithLegacyCurrency(doc)),
	}
}

// settingsWithLegacyCurrency reads money.currency into settings when the
// settings block has no currency of its own.
func settingsWithLegacyCurrency(doc map[string]any) any {
	settings, _ := asMap(doc["settings"])
	if _, has := settings["currency"]; has {
		return settings
	}
	money, _ := asMap(doc["money"])
	code := strings.ToUpper(text(money["currency"]))
	if !core.ValidCurrency(code) {
		return settings
	}
	merged := make(map[string]any, len(settings)+1)
	for k, v := range settings {
		merged[k] = v
	}
	merged["currency"] = code
	return merged
}

// MigrateLegacy builds a fresh document around a legacy flat array of admin
// items. Item ids and timestamps are preserved.
func MigrateLegacy(raw any, o Options) core.Store {
	o = o.withDefaults()
	s := core.NewStore(o.NewID, o.nowISO())
	s.LifeAdmin.Items = AdminItems(raw, o)
	return s
}

// Typed re-normalizes an in-memory Store by round-tripping it through its
// JSON form.
func Typed(s core.Store, o Options) core.Store {
	scrubFloats(reflect.ValueOf(&s).Elem())
	b, err := json.Marshal(s)
	if err != nil {
		return Store(nil, o)
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return Store(nil, o)
	}
	return Store(raw, o)
}

// scrubFloats zeroes NaN and infinite floats so the value can be encoded.
func scrubFloats(v reflect.Value) {
	switch v.Kind() {
	case reflect.Float64:
		if f := v.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			v.SetFloat(0)
		}
	case reflect.Pointer:
		if !v.IsNil() {
			scrubFloats(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				scrubFloats(v.Field(i))
			}
		}
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			scrubFloats(v.Index(i))
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			val := iter.Value()
			if val.Kind() == reflect.Interface {
				if f, ok := val.Interface().(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
					v.SetMapIndex(iter.Key(), reflect.Zero(val.Type()))
				}
				continue
			}
			cp := reflect.New(val.Type()).Elem()
			cp.Set(val)
			scrubFloats(cp)
			v.SetMapIndex(iter.Key(), cp)
		}
	}
}
