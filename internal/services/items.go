package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"lifeadmin/internal/core"
)

// ItemInput is the user editable part of an admin item.
type ItemInput struct {
	Category        core.Category        `json:"category"`
	Name            string               `json:"name"`
	Details         string               `json:"details"`
	DueDateISO      *string              `json:"dueDateISO"`
	ReminderProfile core.ReminderProfile `json:"reminderProfile"`
	Priority        core.Priority        `json:"priority"`
	Recurrence      core.Recurrence      `json:"recurrence"`
	CustomDays      *int                 `json:"customDays"`
}

// withDefaults fills empty enums the way the add form does.
func (in ItemInput) withDefaults() ItemInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Details = strings.TrimSpace(in.Details)
	if in.Category == "" {
		in.Category = core.CategoryRenewal
	}
	if in.ReminderProfile == "" {
		in.ReminderProfile = core.ProfileGentle
	}
	if in.Priority == "" {
		in.Priority = core.PriorityNormal
	}
	if in.Recurrence == "" {
		in.Recurrence = core.RecurrenceNone
	}
	if in.DueDateISO != nil && strings.TrimSpace(*in.DueDateISO) == "" {
		in.DueDateISO = nil
	}
	return in
}

func (in ItemInput) apply(it *core.AdminItem) {
	it.Category = in.Category
	it.Name = in.Name
	it.Details = in.Details
	it.DueDateISO = in.DueDateISO
	it.ReminderProfile = in.ReminderProfile
	it.Priority = in.Priority
	it.Recurrence = in.Recurrence
	it.CustomDays = in.CustomDays
}

// Validate applies the item rules to the input after defaults.
func (in ItemInput) Validate() error {
	var it core.AdminItem
	in.withDefaults().apply(&it)
	return invalid("item", it.Validate())
}

// AddItem creates an admin item.
func (s *Service) AddItem(ctx context.Context, in ItemInput) (core.AdminItem, error) {
	in = in.withDefaults()
	if err := in.Validate(); err != nil {
		return core.AdminItem{}, err
	}
	ts := s.nowISO()
	it := core.AdminItem{ID: s.m.NewID(), CreatedAtISO: ts, UpdatedAtISO: ts}
	in.apply(&it)
	_, err := s.update(ctx, "item.add", func(st *core.Store) error {
		st.LifeAdmin.Items = append(st.LifeAdmin.Items, it)
		return nil
	})
	return it, err
}

// UpdateItem replaces the editable fields of an item.
func (s *Service) UpdateItem(ctx context.Context, id string, in ItemInput) (core.AdminItem, error) {
	in = in.withDefaults()
	if err := in.Validate(); err != nil {
		return core.AdminItem{}, err
	}
	var out core.AdminItem
	_, err := s.update(ctx, "item.update", func(st *core.Store) error {
		i := st.FindItem(id)
		if i < 0 {
			return notFound("item", id)
		}
		it := &st.LifeAdmin.Items[i]
		in.apply(it)
		it.UpdatedAtISO = s.nowISO()
		out = *it
		return nil
	})
	return out, err
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	_, err := s.update(ctx, "item.delete", func(st *core.Store) error {
		i := st.FindItem(id)
		if i < 0 {
			return notFound("item", id)
		}
		st.LifeAdmin.Items = append(st.LifeAdmin.Items[:i], st.LifeAdmin.Items[i+1:]...)
		return nil
	})
	return err
}

func (s *Service) SetArchived(ctx context.Context, id string, archived bool) (core.AdminItem, error) {
	var out core.AdminItem
	_, err := s.update(ctx, "item.archive", func(st *core.Store) error {
		i := st.FindItem(id)
		if i < 0 {
			return notFound("item", id)
		}
		it := &st.LifeAdmin.Items[i]
		it.Archived = archived
		it.UpdatedAtISO = s.nowISO()
		out = *it
		return nil
	})
	return out, err
}

// MarkDone completes an item. A recurring item rolls its due date forward
// (from today when it has none); any other item is archived. Only dueDateISO,
// doneCount, archived and updatedAtISO change.
func (s *Service) MarkDone(ctx context.Context, id string) (core.AdminItem, error) {
	var out core.AdminItem
	_, err := s.update(ctx, "item.done", func(st *core.Store) error {
		i := st.FindItem(id)
		if i < 0 {
			return notFound("item", id)
		}
		it := &st.LifeAdmin.Items[i]
		now := s.now()
		if it.Recurrence == core.RecurrenceNone {
			it.Archived = true
		} else {
			adv, err := GetAdvancer(it.Recurrence)
			if err != nil {
				return invalid("recurrence", err)
			}
			due := ""
			if it.DueDateISO != nil {
				due = *it.DueDateISO
			}
			next, err := adv.Advance(due, *it, now)
			if err != nil {
				return invalid("recurrence", err)
			}
			it.DueDateISO = &next
		}
		it.DoneCount++
		it.UpdatedAtISO = core.Timestamp(now)
		out = *it
		s.appendWin(st, core.WinPlan, "Done: "+it.Name, 1, map[string]any{"itemId": it.ID})
		return nil
	})
	return out, err
}

// ErrUnknownTemplate is returned by AddFromTemplate for an unknown key.
var ErrUnknownTemplate = errors.New("unknown template")

type template struct {
	input ItemInput
	// due computes the first due date from today, nil for undated templates.
	due func(today string, st *Service) string
}

func inYears(n int) func(string, *Service) string {
	return func(today string, s *Service) string { return core.AddYearsISO(today, n, s.now()) }
}

var templates = map[string]template{
	"carInsurance": {
		input: ItemInput{Category: core.CategoryRenewal, Name: "Car insurance", Details: "Compare quotes • check auto-renew",
			Recurrence: core.RecurrenceYearly, Priority: core.PriorityHigh},
		due: inYears(1),
	},
	"mot": {
		input: ItemInput{Category: core.CategoryVehicle, Name: "MOT", Details: "Book early for a convenient date",
			Recurrence: core.RecurrenceYearly, Priority: core.PriorityHigh},
		due: inYears(1),
	},
	"carService": {
		input: ItemInput{Category: core.CategoryVehicle, Name: "Car service", Details: "Full/Interim (note mileage)",
			Recurrence: core.RecurrenceYearly},
		due: inYears(1),
	},
	"passport": {
		input: ItemInput{Category: core.CategoryRenewal, Name: "Passport expiry", Details: "Some countries require 6 months validity"},
	},
	"travelInsurance": {
		input: ItemInput{Category: core.CategoryRenewal, Name: "Travel insurance", Details: "Check cover for the trip dates"},
	},
	"phoneContract": {
		input: ItemInput{Category: core.CategoryAccount, Name: "Phone contract", Details: "Consider SIM-only options",
			Recurrence: core.RecurrenceMonthly},
		due: func(today string, s *Service) string { return core.AddMonthsISO(today, 1, s.now()) },
	},
	"subscriptionReview": {
		input: ItemInput{Category: core.CategoryAccount, Name: "Subscription review", Details: "Cancel anything unused",
			Recurrence: core.RecurrenceCustom, CustomDays: core.Ptr(90)},
		due: func(today string, s *Service) string { return core.AddDaysISO(today, 90, s.now()) },
	},
}

// TemplateKeys lists the quick-add templates.
func TemplateKeys() []string {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddFromTemplate adds a preset item.
func (s *Service) AddFromTemplate(ctx context.Context, key string) (core.AdminItem, error) {
	tpl, ok := templates[key]
	if !ok {
		return core.AdminItem{}, invalid("template", fmt.Errorf("%w: %s", ErrUnknownTemplate, key))
	}
	in := tpl.input
	if in.CustomDays != nil {
		in.CustomDays = core.Ptr(*in.CustomDays)
	}
	if tpl.due != nil {
		due := tpl.due(core.TodayISO(s.now()), s)
		in.DueDateISO = &due
	}
	return s.AddItem(ctx, in)
}
