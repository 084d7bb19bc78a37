package core

import "slices"

// DefaultCurrency is used when no valid currency code is configured.
const DefaultCurrency = "GBP"

// DefaultSettings returns the preferences of a fresh store.
func DefaultSettings() Settings {
	return Settings{
		CalmModeAuto:        true,
		CalmThreshold:       3,
		FocusWeekDefault:    false,
		ShowArchivedDefault: false,
		DefaultSort:         SortDueSoonest,
		HideMoney:           false,
		Currency:            DefaultCurrency,
		Notifications: NotificationSettings{
			Enabled: false,
			Level:   NotifyOff,
		},
		Vault: VaultSettings{
			AutoLockEnabled: false,
			IdleMinutes:     5,
		},
		Cloud: CloudSettings{
			Status: CloudLocalOnly,
		},
	}
}

type roomSeed struct {
	key, title         string
	essentials, extras []string
}

var roomSeeds = []roomSeed{
	{"bedroom", "Bedroom",
		[]string{"Bed frame", "Mattress", "Pillows", "Duvet", "Bedding set", "Wardrobe or rail", "Curtains or blinds"},
		[]string{"Bedside table", "Lamp", "Mirror", "Rug"}},
	{"kitchen", "Kitchen",
		[]string{"Pots and pans", "Cutlery", "Plates and bowls", "Mugs and glasses", "Chopping board", "Knives", "Kettle"},
		[]string{"Toaster", "Microwave", "Air fryer", "Storage tubs"}},
	{"living", "Living room",
		[]string{"Sofa", "Coffee table", "Lighting"},
		[]string{"TV", "Rug", "Cushions", "Plants", "Bookshelf"}},
	{"bathroom", "Bathroom",
		[]string{"Towels", "Bath mat", "Shower curtain", "Toilet brush", "Bin"},
		[]string{"Storage caddy", "Mirror cabinet"}},
	{"office", "Office",
		[]string{"Desk", "Chair", "Desk lamp"},
		[]string{"Monitor", "Filing box", "Cable tidy"}},
	{"utility", "Utility",
		[]string{"Vacuum", "Mop and bucket", "Iron", "Ironing board", "Laundry basket", "Drying rack"},
		[]string{"Toolkit", "Step ladder", "First aid kit"}},
}

// DefaultRoomKeys lists the seeded room slugs in display order.
func DefaultRoomKeys() []string {
	keys := make([]string, len(roomSeeds))
	for i, r := range roomSeeds {
		keys[i] = r.key
	}
	return keys
}

// DefaultRooms seeds the home checklist. ids and timestamps come from the caller
// so that seeding stays deterministic in tests.
func DefaultRooms(newID func() string, nowISO string) map[string]HomeRoom {
	rooms := make(map[string]HomeRoom, len(roomSeeds))
	for _, seed := range roomSeeds {
		rooms[seed.key] = HomeRoom{
			Title:      seed.title,
			Essentials: seedItems(seed.essentials, newID, nowISO),
			Extras:     seedItems(seed.extras, newID, nowISO),
		}
	}
	return rooms
}

func seedItems(names []string, newID func() string, nowISO string) []RoomItem {
	items := make([]RoomItem, 0, len(names))
	for _, n := range names {
		items = append(items, RoomItem{
			ID:           newID(),
			Name:         n,
			Priority:     PriorityNormal,
			CreatedAtISO: nowISO,
			UpdatedAtISO: nowISO,
		})
	}
	return items
}

var skillSeeds = []struct {
	category string
	skills   []string
}{
	{"Cooking", []string{"Plan a weekly menu", "Cook 5 simple meals", "Batch cook and freeze"}},
	{"Cleaning", []string{"Weekly clean routine", "Deep clean a room", "Descale kettle and shower"}},
	{"Laundry", []string{"Read care labels", "Wash darks and lights", "Remove common stains"}},
	{"Personal Admin", []string{"File important documents", "Track renewals", "Check bank statements"}},
	{"Health", []string{"Register with a GP", "Book a dentist check-up", "Keep a basic first aid kit"}},
	{"Home Basics", []string{"Find the stopcock", "Reset the fuse box", "Bleed a radiator"}},
}

// DefaultSkills seeds the skills tracker with every skill not started.
func DefaultSkills(newID func() string, nowISO string) map[string]SkillCategory {
	cats := make(map[string]SkillCategory, len(skillSeeds))
	for _, seed := range skillSeeds {
		items := make([]Skill, 0, len(seed.skills))
		for _, name := range seed.skills {
			items = append(items, Skill{
				ID:           newID(),
				Name:         name,
				Level:        LevelNotStarted,
				CreatedAtISO: nowISO,
				UpdatedAtISO: nowISO,
			})
		}
		cats[seed.category] = SkillCategory{Category: seed.category, Items: items}
	}
	return cats
}

// IsUntouchedSeed reports whether s is a default skill of category that the
// user has never changed.
func IsUntouchedSeed(category string, s Skill) bool {
	if s.Level != LevelNotStarted || s.Notes != "" || s.CreatedAtISO != s.UpdatedAtISO {
		return false
	}
	for _, seed := range skillSeeds {
		if seed.category == category {
			return slices.Contains(seed.skills, s.Name)
		}
	}
	return false
}

// NewStore returns an empty document with seeded rooms and skills.
func NewStore(newID func() string, nowISO string) Store {
	return Store{
		Version:   SchemaVersion,
		LifeAdmin: LifeAdmin{Items: []AdminItem{}},
		Home:      Home{Version: 2, Rooms: DefaultRooms(newID, nowISO)},
		Skills:    Skills{Categories: DefaultSkills(newID, nowISO)},
		Money: Money{
			Funds:   []Fund{},
			Budgets: []Budget{},
			Txns:    []Transaction{},
		},
		Wins:     Wins{Version: 1, Events: []WinEvent{}},
		Settings: DefaultSettings(),
	}
}
