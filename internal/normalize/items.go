package normalize

import "lifeadmin/internal/core"

// defaultCustomDays replaces a missing or invalid interval on custom recurrence.
const defaultCustomDays = 30

// AdminItem normalizes one life admin item. Records without a name are dropped.
func AdminItem(raw any, o Options) Result[core.AdminItem] {
	o = o.withDefaults()
	m, ok := asMap(raw)
	if !ok {
		return drop[core.AdminItem]("not an object")
	}
	name := firstText(m, "name", "title")
	if name == "" {
		return drop[core.AdminItem]("missing name")
	}

	item := core.AdminItem{
		ID:              text(m["id"]),
		Category:        core.Category(text(m["category"])),
		Name:            name,
		Details:         text(m["details"]),
		DueDateISO:      optDate(m["dueDateISO"]),
		ReminderProfile: core.ReminderProfile(text(m["reminderProfile"])),
		Priority:        priority(m["priority"]),
		Archived:        truthy(m["archived"]),
		Recurrence:      core.Recurrence(text(m["recurrence"])),
		CreatedAtISO:    timestamp(m["createdAtISO"], o),
	}
	if item.ID == "" {
		item.ID = o.NewID()
	}
	if item.DueDateISO == nil {
		item.DueDateISO = optDate(m["dueDate"])
	}
	if !item.Category.IsValid() {
		item.Category = core.CategoryRenewal
	}
	if !item.ReminderProfile.IsValid() {
		item.ReminderProfile = core.ProfileGentle
	}
	if !item.Recurrence.IsValid() {
		item.Recurrence = core.RecurrenceNone
	}
	if item.Recurrence == core.RecurrenceCustom {
		days := defaultCustomDays
		if n, ok := num(m["customDays"]); ok && n >= 1 && n <= maxCount {
			days = floorClamp(n, 1, maxCount)
		}
		item.CustomDays = &days
	}
	if n, ok := num(m["doneCount"]); ok && n > 0 {
		item.DoneCount = floorClamp(n, 0, maxCount)
	}
	item.UpdatedAtISO = timestamp(m["updatedAtISO"], o)
	return keep(item)
}

// AdminItems normalizes a list, dropping invalid entries. Non-lists yield an empty list.
func AdminItems(raw any, o Options) []core.AdminItem {
	o = o.withDefaults()
	list, _ := asSlice(raw)
	out := make([]core.AdminItem, 0, len(list))
	seen := idSet{}
	for _, r := range list {
		res := AdminItem(r, o)
		if res.Dropped {
			continue
		}
		res.Value.ID = seen.claim(res.Value.ID, o)
		out = append(out, res.Value)
	}
	return out
}
