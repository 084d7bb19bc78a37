package views

import (
	"sort"
	"strings"

	"lifeadmin/internal/core"
)

// RoomProgress summarizes one room's checklist.
type RoomProgress struct {
	Key               string  `json:"key"`
	Title             string  `json:"title"`
	EssentialsPlanned int     `json:"essentialsPlanned"`
	EssentialsTotal   int     `json:"essentialsTotal"`
	EssentialsPct     int     `json:"essentialsPct"`
	ExtrasPlanned     int     `json:"extrasPlanned"`
	ExtrasTotal       int     `json:"extrasTotal"`
	ExtrasPct         int     `json:"extrasPct"`
	CompletionPct     int     `json:"completionPct"`
	Owned             int     `json:"owned"`
	EssentialsCost    float64 `json:"essentialsCost"`
	ExtrasCost        float64 `json:"extrasCost"`
	PlannedCost       float64 `json:"plannedCost"`
	OwnedCost         float64 `json:"ownedCost"`
}

func countPlanned(items []core.RoomItem) int {
	n := 0
	for _, it := range items {
		if it.Planned {
			n++
		}
	}
	return n
}

// Room derives the progress of one room.
func Room(key string, r core.HomeRoom) RoomProgress {
	p := RoomProgress{
		Key:               key,
		Title:             r.Title,
		EssentialsPlanned: countPlanned(r.Essentials),
		EssentialsTotal:   len(r.Essentials),
		ExtrasPlanned:     countPlanned(r.Extras),
		ExtrasTotal:       len(r.Extras),
	}
	p.EssentialsPct = pct(p.EssentialsPlanned, p.EssentialsTotal)
	p.ExtrasPct = pct(p.ExtrasPlanned, p.ExtrasTotal)
	p.CompletionPct = pct(p.EssentialsPlanned+p.ExtrasPlanned, p.EssentialsTotal+p.ExtrasTotal)

	var planned, owned []float64
	for i, list := range [][]core.RoomItem{r.Essentials, r.Extras} {
		costs := make([]float64, 0, len(list))
		for _, it := range list {
			costs = append(costs, it.Cost)
			if it.Owned {
				p.Owned++
				owned = append(owned, it.Cost)
			}
			if it.Planned {
				planned = append(planned, it.Cost)
			}
		}
		if i == 0 {
			p.EssentialsCost = core.SumAmounts(costs...)
		} else {
			p.ExtrasCost = core.SumAmounts(costs...)
		}
	}
	p.PlannedCost = core.SumAmounts(planned...)
	p.OwnedCost = core.SumAmounts(owned...)
	return p
}

func pct(part, whole int) int {
	return core.Percent(float64(part), float64(whole))
}

// sortedRoomKeys lists the seeded rooms in their display order, then any
// custom rooms alphabetically.
func sortedRoomKeys(rooms map[string]core.HomeRoom) []string {
	keys := make([]string, 0, len(rooms))
	seen := make(map[string]bool, len(rooms))
	for _, k := range core.DefaultRoomKeys() {
		if _, ok := rooms[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range rooms {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// HomeStats aggregates every room.
type HomeStats struct {
	Rooms             []RoomProgress `json:"rooms"`
	EssentialsPlanned int            `json:"essentialsPlanned"`
	EssentialsTotal   int            `json:"essentialsTotal"`
	ExtrasPlanned     int            `json:"extrasPlanned"`
	ExtrasTotal       int            `json:"extrasTotal"`
	Owned             int            `json:"owned"`
	TotalItems        int            `json:"totalItems"`
	EssentialsPct     int            `json:"essentialsPct"`
	ExtrasPct         int            `json:"extrasPct"`
	CompletionPct     int            `json:"completionPct"`
	EssentialsCost    float64        `json:"essentialsCost"`
	ExtrasCost        float64        `json:"extrasCost"`
	PlannedCost       float64        `json:"plannedCost"`
	OwnedCost         float64        `json:"ownedCost"`
}

// Home derives per-room progress and the overall totals. CompletionPct is
// planned items over all items.
func Home(h core.Home) HomeStats {
	st := HomeStats{Rooms: []RoomProgress{}}
	var planned, owned, ess, ext []float64
	for _, k := range sortedRoomKeys(h.Rooms) {
		p := Room(k, h.Rooms[k])
		st.Rooms = append(st.Rooms, p)
		st.EssentialsPlanned += p.EssentialsPlanned
		st.EssentialsTotal += p.EssentialsTotal
		st.ExtrasPlanned += p.ExtrasPlanned
		st.ExtrasTotal += p.ExtrasTotal
		st.Owned += p.Owned
		planned = append(planned, p.PlannedCost)
		owned = append(owned, p.OwnedCost)
		ess = append(ess, p.EssentialsCost)
		ext = append(ext, p.ExtrasCost)
	}
	st.TotalItems = st.EssentialsTotal + st.ExtrasTotal
	st.EssentialsPct = pct(st.EssentialsPlanned, st.EssentialsTotal)
	st.ExtrasPct = pct(st.ExtrasPlanned, st.ExtrasTotal)
	st.CompletionPct = pct(st.EssentialsPlanned+st.ExtrasPlanned, st.TotalItems)
	st.EssentialsCost = core.SumAmounts(ess...)
	st.ExtrasCost = core.SumAmounts(ext...)
	st.PlannedCost = core.SumAmounts(planned...)
	st.OwnedCost = core.SumAmounts(owned...)
	return st
}

// ShoppingSort orders the shopping list.
type ShoppingSort string

const (
	ShopDefault  ShoppingSort = "default"
	ShopCostLow  ShoppingSort = "costLow"
	ShopCostHigh ShoppingSort = "costHigh"
	ShopRoomAZ   ShoppingSort = "roomAZ"
)

// ShoppingQuery filters the shopping list.
type ShoppingQuery struct {
	NextOnly       bool         `json:"nextOnly"`
	EssentialsOnly bool         `json:"essentialsOnly"`
	Sort           ShoppingSort `json:"sort"`
}

// ShoppingEntry is a planned, not yet owned room item.
type ShoppingEntry struct {
	core.RoomItem
	RoomKey   string `json:"roomKey"`
	RoomTitle string `json:"roomTitle"`
	Essential bool   `json:"essential"`
}

// ShoppingList is the candidate list plus its total cost.
type ShoppingList struct {
	Items     []ShoppingEntry `json:"items"`
	TotalCost float64         `json:"totalCost"`
}

// Shopping collects planned && !owned items across all rooms.
func Shopping(h core.Home, q ShoppingQuery) ShoppingList {
	out := ShoppingList{Items: []ShoppingEntry{}}
	var costs []float64
	for _, k := range sortedRoomKeys(h.Rooms) {
		r := h.Rooms[k]
		add := func(items []core.RoomItem, essential bool) {
			for _, it := range items {
				if !it.Planned || it.Owned {
					continue
				}
				if q.NextOnly && !it.NextToBuy {
					continue
				}
				out.Items = append(out.Items, ShoppingEntry{RoomItem: it, RoomKey: k, RoomTitle: r.Title, Essential: essential})
				costs = append(costs, it.Cost)
			}
		}
		add(r.Essentials, true)
		if !q.EssentialsOnly {
			add(r.Extras, false)
		}
	}
	sortShopping(out.Items, q.Sort)
	out.TotalCost = core.SumAmounts(costs...)
	return out
}

func sortShopping(items []ShoppingEntry, mode ShoppingSort) {
	name := func(e ShoppingEntry) string { return strings.ToLower(e.Name) }
	var less func(a, b ShoppingEntry) bool
	switch mode {
	case ShopCostLow:
		less = func(a, b ShoppingEntry) bool { return a.Cost < b.Cost }
	case ShopCostHigh:
		less = func(a, b ShoppingEntry) bool { return a.Cost > b.Cost }
	case ShopRoomAZ:
		less = func(a, b ShoppingEntry) bool {
			ra, rb := strings.ToLower(a.RoomTitle), strings.ToLower(b.RoomTitle)
			if ra != rb {
				return ra < rb
			}
			return name(a) < name(b)
		}
	default:
		less = func(a, b ShoppingEntry) bool {
			ha, hb := a.Priority == core.PriorityHigh, b.Priority == core.PriorityHigh
			if ha != hb {
				return ha
			}
			if a.NextToBuy != b.NextToBuy {
				return a.NextToBuy
			}
			return name(a) < name(b)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
