package normalize

import (
	"regexp"
	"sort"

	"lifeadmin/internal/core"
)

// HomeVersion is the schema version of the home section.
const HomeVersion = 2

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Home normalizes the room checklist. An absent or empty rooms map is seeded
// with the default rooms.
func Home(raw any, o Options) core.Home {
	o = o.withDefaults()
	m, _ := asMap(raw)
	roomsRaw, _ := asMap(m["rooms"])

	keys := make([]string, 0, len(roomsRaw))
	for k := range roomsRaw {
		keys = append(keys, k)
	}
	// Regenerated ids must not depend on map iteration order.
	sort.Strings(keys)

	rooms := make(map[string]core.HomeRoom, len(keys))
	seen := idSet{}
	for _, key := range keys {
		if !slugPattern.MatchString(key) {
			continue
		}
		r, ok := asMap(roomsRaw[key])
		if !ok {
			continue
		}
		title := text(r["title"])
		if title == "" {
			title = key
		}
		rooms[key] = core.HomeRoom{
			Title:      title,
			Notes:      text(r["notes"]),
			Essentials: roomItems(r["essentials"], o, seen),
			Extras:     roomItems(r["extras"], o, seen),
		}
	}
	if len(rooms) == 0 {
		rooms = core.DefaultRooms(o.NewID, o.nowISO())
	}
	return core.Home{Version: HomeVersion, Rooms: rooms}
}

func roomItems(raw any, o Options, seen idSet) []core.RoomItem {
	list, _ := asSlice(raw)
	out := make([]core.RoomItem, 0, len(list))
	for _, r := range list {
		res := RoomItem(r, o)
		if res.Dropped {
			continue
		}
		res.Value.ID = seen.claim(res.Value.ID, o)
		out = append(out, res.Value)
	}
	return out
}

// RoomItem normalizes one furnishing entry. Only non-objects are dropped;
// a missing name becomes "Unnamed".
func RoomItem(raw any, o Options) Result[core.RoomItem] {
	o = o.withDefaults()
	m, ok := asMap(raw)
	if !ok {
		return drop[core.RoomItem]("not an object")
	}
	name := text(m["name"])
	if name == "" {
		name = "Unnamed"
	}
	item := core.RoomItem{
		ID:           text(m["id"]),
		Name:         name,
		Planned:      truthy(m["planned"]),
		Owned:        truthy(m["owned"]),
		NextToBuy:    truthy(m["nextToBuy"]),
		Priority:     priority(m["priority"]),
		Cost:         nonNegative(m["cost"]),
		Notes:        text(m["notes"]),
		CreatedAtISO: timestamp(m["createdAtISO"], o),
		UpdatedAtISO: timestamp(m["updatedAtISO"], o),
	}
	if item.ID == "" {
		item.ID = o.NewID()
	}
	return keep(item)
}
