package core

import "testing"

func TestAppendWinEvictsOldestFirst(t *testing.T) {
	var events []WinEvent
	for i := 1; i <= MaxWinEvents; i++ {
		events = AppendWin(events, WinEvent{TS: int64(i), Type: WinPlan, Label: "x", Delta: 1})
	}
	if len(events) != MaxWinEvents || events[0].TS != 1 {
		t.Fatalf("expected full log starting at 1, got len=%d first=%d", len(events), events[0].TS)
	}

	prevFirst := events[0].TS
	for i := MaxWinEvents + 1; i <= MaxWinEvents+50; i++ {
		events = AppendWin(events, WinEvent{TS: int64(i), Type: WinPlan, Label: "x", Delta: 1})
		if len(events) != MaxWinEvents {
			t.Fatalf("log grew to %d", len(events))
		}
		if events[0].TS <= prevFirst {
			t.Fatalf("earliest surviving event did not advance: %d <= %d", events[0].TS, prevFirst)
		}
		prevFirst = events[0].TS
		if events[len(events)-1].TS != int64(i) {
			t.Fatalf("newest event missing")
		}
	}
}
