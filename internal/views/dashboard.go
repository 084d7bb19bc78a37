package views

import (
	"fmt"
	"sort"
	"time"

	"lifeadmin/internal/core"
)

// Task is a dated entry on the dashboard, sourced from an admin item or a
// fund's target date.
type Task struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Title     string        `json:"title"`
	Subtitle  string        `json:"subtitle"`
	DueISO    string        `json:"dueISO"`
	DaysUntil int           `json:"daysUntil"`
	DueText   string        `json:"dueText"`
	Priority  core.Priority `json:"priority"`
}

// PillDueText is the compact due label used on dashboard rows.
func PillDueText(d int) string {
	switch {
	case d == 0:
		return "Today"
	case d == 1:
		return "Tomorrow"
	case d < 0:
		return fmt.Sprintf("%dd overdue", -d)
	}
	return fmt.Sprintf("In %dd", d)
}

// Tasks lists dated tasks not dismissed in sess, soonest first.
func Tasks(s core.Store, sess Session, now time.Time) []Task {
	var tasks []Task
	add := func(t Task, due *string) {
		d := core.DaysUntil(due, now)
		if d == nil || sess.IsDismissed(t.ID) {
			return
		}
		t.DueISO = *due
		t.DaysUntil = *d
		t.DueText = PillDueText(*d)
		tasks = append(tasks, t)
	}
	for _, it := range s.LifeAdmin.Items {
		if it.Archived {
			continue
		}
		add(Task{ID: "admin:" + it.ID, Source: "Life Admin", Title: it.Name, Subtitle: it.Details, Priority: it.Priority}, it.DueDateISO)
	}
	for _, f := range s.Money.Funds {
		add(Task{ID: "fund:" + f.ID, Source: "Money", Title: "Fund target: " + f.Name, Subtitle: f.Notes, Priority: f.Priority}, f.TargetDate)
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].DaysUntil < tasks[j].DaysUntil })
	return tasks
}

// Suggestion is one line of the focus card.
type Suggestion struct {
	Title string `json:"title"`
	Hint  string `json:"hint"`
}

// Focus is the dashboard's tone for the week.
type Focus struct {
	Mode        string       `json:"mode"`
	Suggestions []Suggestion `json:"suggestions"`
}

// CarefulThreshold is the this-week task count that switches focus to Careful.
const CarefulThreshold = 6

func FocusFor(thisWeek int) Focus {
	switch {
	case thisWeek >= CarefulThreshold:
		return Focus{Mode: "Careful", Suggestions: []Suggestion{
			{"Pick 1 urgent thing and do a 10-minute first step.", "Lots due soon. Keep it tiny."},
			{"Do one admin task that removes future stress.", "Insurance / renewal / bill check."},
		}}
	case thisWeek >= 1:
		return Focus{Mode: "Gentle", Suggestions: []Suggestion{
			{"Do the easiest 'due soon' task first.", "Momentum beats perfection."},
			{"If it takes <2 mins, do it now.", "Small wins reduce overwhelm."},
		}}
	}
	return Focus{Mode: "Gentle", Suggestions: []Suggestion{
		{"You're clear this week. Add one future-proof task.", "E.g. emergency fund, document tidy-up."},
	}}
}

// Dashboard is the home screen model.
type Dashboard struct {
	Today    []Task         `json:"today"`
	Week     []Task         `json:"week"`
	Overdue  []Task         `json:"overdue"`
	ThisWeek int            `json:"thisWeek"`
	Focus    Focus          `json:"focus"`
	Overall  core.Status    `json:"overall"`
	DueSoon  DueSoonCounts  `json:"dueSoon"`
	Wins     MonthlySummary `json:"wins"`
	Skills   SkillStats     `json:"skills"`
	Home     HomeStats      `json:"home"`
}

// BuildDashboard buckets tasks: Today is d == 0, Week is 1..7, and ThisWeek
// counts 0..7.
func BuildDashboard(s core.Store, sess Session, now time.Time) Dashboard {
	db := Dashboard{Today: []Task{}, Week: []Task{}, Overdue: []Task{}}
	for _, t := range Tasks(s, sess, now) {
		switch d := t.DaysUntil; {
		case d < 0:
			db.Overdue = append(db.Overdue, t)
		case d == 0:
			db.Today = append(db.Today, t)
			db.ThisWeek++
		case d <= 7:
			db.Week = append(db.Week, t)
			db.ThisWeek++
		}
	}
	db.Focus = FocusFor(db.ThisWeek)
	db.Overall = OverallStatus(s.LifeAdmin.Items, now)
	db.DueSoon = DueSoonBadges(s.LifeAdmin.Items, now)
	db.Wins = MonthlyWins(s, core.MonthKey(now))
	db.Skills = Skills(s.Skills)
	db.Home = Home(s.Home)
	return db
}
