package core

import (
	"testing"
	"time"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   *string
		want *int
	}{
		{"nil date", nil, nil},
		{"invalid date", Ptr("10/03/2024"), nil},
		{"impossible date", Ptr("2024-02-30"), nil},
		{"today", Ptr("2024-03-10"), Ptr(0)},
		{"tomorrow", Ptr("2024-03-11"), Ptr(1)},
		{"yesterday", Ptr("2024-03-09"), Ptr(-1)},
		{"across month", Ptr("2024-04-09"), Ptr(30)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DaysUntil(tc.in, now)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("DaysUntil(%v) = %v, want %v", tc.in, got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("DaysUntil = %d, want %d", *got, *tc.want)
			}
		})
	}
}

func TestDaysUntilUsesLocalCalendarDay(t *testing.T) {
	// 23:30 on the 10th in UTC-5 is already the 11th in UTC.
	zone := time.FixedZone("EST", -5*3600)
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, zone)
	if d := DaysUntil(Ptr("2024-03-10"), now); d == nil || *d != 0 {
		t.Fatalf("expected 0 for local today, got %v", d)
	}
	// Spanning the spring-forward weekend still counts calendar days.
	london := time.FixedZone("BST", 3600)
	now = time.Date(2024, 3, 30, 0, 30, 0, 0, london)
	if d := DaysUntil(Ptr("2024-04-01"), now); d == nil || *d != 2 {
		t.Fatalf("expected 2, got %v", d)
	}
}

func TestStatusFromDays(t *testing.T) {
	cases := []struct {
		d    *int
		want Status
	}{
		{nil, StatusGreen},
		{Ptr(-5), StatusRed},
		{Ptr(0), StatusRed},
		{Ptr(14), StatusRed},
		{Ptr(15), StatusAmber},
		{Ptr(30), StatusAmber},
		{Ptr(31), StatusGreen},
	}
	for _, tc := range cases {
		if got := StatusFromDays(tc.d); got != tc.want {
			t.Fatalf("StatusFromDays(%v) = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestFmtDueText(t *testing.T) {
	cases := []struct {
		d    *int
		want string
	}{
		{nil, "No due date"},
		{Ptr(-1), "Overdue by 1 day"},
		{Ptr(-3), "Overdue by 3 days"},
		{Ptr(0), "Due today"},
		{Ptr(1), "Due in 1 day"},
		{Ptr(12), "Due in 12 days"},
	}
	for _, tc := range cases {
		if got := FmtDueText(tc.d); got != tc.want {
			t.Fatalf("FmtDueText(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestAddISO(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"days", AddDaysISO("2024-02-27", 3, now), "2024-03-01"},
		{"weekly", AddDaysISO("2024-12-29", 7, now), "2025-01-05"},
		{"negative days", AddDaysISO("2024-03-01", -1, now), "2024-02-29"},
		{"month clamp leap", AddMonthsISO("2024-01-31", 1, now), "2024-02-29"},
		{"month clamp", AddMonthsISO("2023-01-31", 1, now), "2023-02-28"},
		{"month plain", AddMonthsISO("2024-01-15", 1, now), "2024-02-15"},
		{"month year roll", AddMonthsISO("2024-12-31", 2, now), "2025-02-28"},
		{"year leap clamp", AddYearsISO("2024-02-29", 1, now), "2025-02-28"},
		{"year plain", AddYearsISO("2023-07-04", 1, now), "2024-07-04"},
		{"empty base is today", AddDaysISO("", 1, now), "2024-06-16"},
		{"invalid base is today", AddMonthsISO("garbage", 1, now), "2024-07-15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Fatalf("got %s, want %s", tc.got, tc.want)
			}
		})
	}
}

func TestMonthKeyOfISO(t *testing.T) {
	if got := MonthKeyOfISO("2024-05-31"); got != "2024-05" {
		t.Fatalf("got %q", got)
	}
	if got := MonthKeyOfISO("2024-5-31"); got != "" {
		t.Fatalf("expected empty key for invalid date, got %q", got)
	}
}
