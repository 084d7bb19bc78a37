package views

import (
	"sort"
	"time"

	"lifeadmin/internal/core"
)

// MaxRecentWins bounds the "latest wins" list of the monthly summary.
const MaxRecentWins = 10

// MonthlySummary is the wins panel for one month.
type MonthlySummary struct {
	MonthKey string             `json:"monthKey"`
	Totals   map[string]float64 `json:"totals"`
	Events   []core.WinEvent    `json:"events"`
	Recent   []core.WinEvent    `json:"recent"`
	Inferred bool               `json:"inferred"`
}

// monthOfTS maps an epoch-ms timestamp to its local YYYY-MM key.
func monthOfTS(ts int64) string {
	return core.MonthKey(time.UnixMilli(ts).In(time.Local))
}

func monthOfTimestamp(iso string) string {
	t, ok := core.ParseTimestamp(iso)
	if !ok {
		return ""
	}
	return core.MonthKey(t.In(time.Local))
}

// MonthlyWins sums win deltas per type for monthKey. Logged events for the
// month are authoritative; only when there are none does it infer counts from
// record timestamps, and then Inferred is set.
func MonthlyWins(s core.Store, monthKey string) MonthlySummary {
	sum := MonthlySummary{MonthKey: monthKey, Totals: map[string]float64{}, Events: []core.WinEvent{}}
	for _, e := range s.Wins.Events {
		if monthOfTS(e.TS) != monthKey {
			continue
		}
		t := e.Type
		if t == "" {
			t = core.WinOther
		}
		sum.Totals[t] += e.Delta
		sum.Events = append(sum.Events, e)
	}
	if len(sum.Events) > 0 {
		recent := append([]core.WinEvent(nil), sum.Events...)
		sort.SliceStable(recent, func(i, j int) bool { return recent[i].TS > recent[j].TS })
		if len(recent) > MaxRecentWins {
			recent = recent[:MaxRecentWins]
		}
		sum.Recent = recent
		return sum
	}

	sum.Inferred = true
	sum.Recent = []core.WinEvent{}
	var skills, plans, savings float64
	for name, cat := range s.Skills.Categories {
		for _, sk := range cat.Items {
			if core.IsUntouchedSeed(name, sk) {
				continue
			}
			if monthOfTimestamp(sk.CreatedAtISO) == monthKey {
				skills++
			}
		}
	}
	for _, it := range s.LifeAdmin.Items {
		if !it.Archived && monthOfTimestamp(it.CreatedAtISO) == monthKey {
			plans++
		}
	}
	for _, tx := range s.Money.Txns {
		if tx.Amount > 0 && core.MonthKeyOfISO(tx.DateISO) == monthKey {
			savings++
		}
	}
	sum.Totals[core.WinSkill] = skills
	sum.Totals[core.WinPlan] = plans
	sum.Totals[core.WinSaving] = savings
	return sum
}
