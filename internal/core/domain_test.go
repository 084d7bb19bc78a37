package core

import (
	"errors"
	"testing"
)

func TestAdminItemValidate(t *testing.T) {
	base := AdminItem{
		Name:            "Car insurance",
		Category:        CategoryRenewal,
		ReminderProfile: ProfileGentle,
		Priority:        PriorityHigh,
		Recurrence:      RecurrenceYearly,
		DueDateISO:      Ptr("2025-01-01"),
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*AdminItem)
		want   error
	}{
		{"blank name", func(a *AdminItem) { a.Name = "  " }, ErrEmptyName},
		{"bad category", func(a *AdminItem) { a.Category = "pets" }, ErrInvalidCategory},
		{"bad date", func(a *AdminItem) { a.DueDateISO = Ptr("01-01-2025") }, ErrInvalidDate},
		{"bad profile", func(a *AdminItem) { a.ReminderProfile = "loud" }, ErrInvalidProfile},
		{"bad priority", func(a *AdminItem) { a.Priority = "urgent" }, ErrInvalidPriority},
		{"bad recurrence", func(a *AdminItem) { a.Recurrence = "daily" }, ErrInvalidRecurrence},
		{"custom without days", func(a *AdminItem) { a.Recurrence = RecurrenceCustom }, ErrInvalidCustomDays},
		{"custom zero days", func(a *AdminItem) { a.Recurrence = RecurrenceCustom; a.CustomDays = Ptr(0) }, ErrInvalidCustomDays},
		{"days without custom", func(a *AdminItem) { a.CustomDays = Ptr(10) }, ErrUnexpectedDays},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := base
			tc.mutate(&item)
			if err := item.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Type: TxnSpend, Label: "Food shop", Amount: 42.5, DateISO: "2024-05-01"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []struct {
		txn  Transaction
		want error
	}{
		{Transaction{Type: "refund", Label: "x", Amount: 1, DateISO: "2024-05-01"}, ErrInvalidTxnType},
		{Transaction{Type: TxnSpend, Label: "", Amount: 1, DateISO: "2024-05-01"}, ErrEmptyLabel},
		{Transaction{Type: TxnSpend, Label: "x", Amount: 0, DateISO: "2024-05-01"}, ErrNonPositive},
		{Transaction{Type: TxnSpend, Label: "x", Amount: -3, DateISO: "2024-05-01"}, ErrNonPositive},
		{Transaction{Type: TxnSpend, Label: "x", Amount: 1, DateISO: "May 1"}, ErrInvalidDate},
	}
	for i, tc := range bads {
		if err := tc.txn.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}

func TestSkillLevelScore(t *testing.T) {
	cases := []struct {
		level SkillLevel
		score int
		label string
	}{
		{LevelNotStarted, 0, "Not started"},
		{Level1, 1, "Level 1"},
		{Level5, 5, "Level 5"},
		{"l9", -1, "l9"},
	}
	for _, tc := range cases {
		if got := tc.level.Score(); got != tc.score {
			t.Fatalf("%s score = %d, want %d", tc.level, got, tc.score)
		}
		if got := tc.level.Label(); got != tc.label {
			t.Fatalf("%s label = %q, want %q", tc.level, got, tc.label)
		}
	}
}

func TestNewStoreSeeds(t *testing.T) {
	n := 0
	newID := func() string { n++; return "id" }
	s := NewStore(newID, "2024-01-01T00:00:00.000Z")
	if s.Version != SchemaVersion {
		t.Fatalf("version = %d", s.Version)
	}
	if len(s.Home.Rooms) != len(DefaultRoomKeys()) {
		t.Fatalf("expected %d rooms, got %d", len(DefaultRoomKeys()), len(s.Home.Rooms))
	}
	if len(s.Skills.Categories) != 6 {
		t.Fatalf("expected 6 skill categories, got %d", len(s.Skills.Categories))
	}
	if n == 0 {
		t.Fatalf("expected seeded records to receive ids")
	}
	if s.Settings.DefaultSort != SortDueSoonest || !s.Settings.CalmModeAuto || s.Settings.CalmThreshold != 3 {
		t.Fatalf("unexpected default settings: %+v", s.Settings)
	}
}
