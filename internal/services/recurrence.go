// Package services implements the user-facing actions. Every action validates
// its input at the boundary and then mutates the store through a single
// store.Manager.Update call, so a rejected action never touches the store.
//
// This file implements the strategy registry used by MarkDone: each
// recurrence has an advancer that computes the next due date.
package services

import (
	"fmt"
	"time"

	"lifeadmin/internal/core"
)

// RecurrenceAdvancer computes the next due date of a recurring item.
type RecurrenceAdvancer interface {
	// Advance moves dueISO one period forward. An empty dueISO means today.
	Advance(dueISO string, it core.AdminItem, now time.Time) (string, error)
}

// WeeklyAdvancer adds seven calendar days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Advance(dueISO string, _ core.AdminItem, now time.Time) (string, error) {
	return core.AddDaysISO(dueISO, 7, now), nil
}

// MonthlyAdvancer adds one month, clamped to the end of the target month.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Advance(dueISO string, _ core.AdminItem, now time.Time) (string, error) {
	return core.AddMonthsISO(dueISO, 1, now), nil
}

// YearlyAdvancer adds one year; 29 February clamps to the 28th.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Advance(dueISO string, _ core.AdminItem, now time.Time) (string, error) {
	return core.AddYearsISO(dueISO, 1, now), nil
}

// CustomAdvancer adds the item's customDays.
type CustomAdvancer struct{}

func (CustomAdvancer) Advance(dueISO string, it core.AdminItem, now time.Time) (string, error) {
	if it.CustomDays == nil || *it.CustomDays <= 0 {
		return "", core.ErrInvalidCustomDays
	}
	return core.AddDaysISO(dueISO, *it.CustomDays, now), nil
}

var advancers = map[core.Recurrence]RecurrenceAdvancer{
	core.RecurrenceWeekly:  WeeklyAdvancer{},
	core.RecurrenceMonthly: MonthlyAdvancer{},
	core.RecurrenceYearly:  YearlyAdvancer{},
	core.RecurrenceCustom:  CustomAdvancer{},
}

// GetAdvancer returns the advancer for r. RecurrenceNone has none.
func GetAdvancer(r core.Recurrence) (RecurrenceAdvancer, error) {
	a, ok := advancers[r]
	if !ok {
		return nil, fmt.Errorf("no advancer for recurrence: %s", r)
	}
	return a, nil
}

// RegisterAdvancer installs or replaces the advancer for r.
func RegisterAdvancer(r core.Recurrence, a RecurrenceAdvancer) {
	advancers[r] = a
}
