package normalize

import (
	"sort"
	"strings"

	"lifeadmin/internal/core"
)

// Skills normalizes the skills tracker. An absent or empty categories map is
// seeded with the default skills.
func Skills(raw any, o Options) core.Skills {
	o = o.withDefaults()
	m, _ := asMap(raw)
	catsRaw, _ := asMap(m["categories"])

	keys := make([]string, 0, len(catsRaw))
	for k := range catsRaw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cats := make(map[string]core.SkillCategory, len(keys))
	seen := idSet{}
	for _, key := range keys {
		name := strings.TrimSpace(key)
		c, ok := asMap(catsRaw[key])
		if name == "" || !ok {
			continue
		}
		list, _ := asSlice(c["items"])
		items := make([]core.Skill, 0, len(list))
		for _, r := range list {
			res := Skill(r, o)
			if res.Dropped {
				continue
			}
			res.Value.ID = seen.claim(res.Value.ID, o)
			items = append(items, res.Value)
		}
		if prev, dup := cats[name]; dup {
			items = append(prev.Items, items...)
		}
		cats[name] = core.SkillCategory{Category: name, Items: items}
	}
	if len(cats) == 0 {
		cats = core.DefaultSkills(o.NewID, o.nowISO())
	}
	return core.Skills{Categories: cats}
}

// Skill normalizes one skill. Unknown levels fall back to not started.
func Skill(raw any, o Options) Result[core.Skill] {
	o = o.withDefaults()
	m, ok := asMap(raw)
	if !ok {
		return drop[core.Skill]("not an object")
	}
	name := text(m["name"])
	if name == "" {
		return drop[core.Skill]("missing name")
	}
	level := core.SkillLevel(strings.ToLower(text(m["level"])))
	if !level.IsValid() {
		level = core.LevelNotStarted
	}
	s := core.Skill{
		ID:           text(m["id"]),
		Name:         name,
		Level:        level,
		Notes:        text(m["notes"]),
		CreatedAtISO: timestamp(m["createdAtISO"], o),
		UpdatedAtISO: timestamp(m["updatedAtISO"], o),
	}
	if s.ID == "" {
		s.ID = o.NewID()
	}
	return keep(s)
}
