package core

// AppendWin appends ev to the log and evicts the oldest events beyond MaxWinEvents.
// The returned slice never aliases a truncated head of events.
func AppendWin(events []WinEvent, ev WinEvent) []WinEvent {
	out := append(events, ev)
	return CapWins(out)
}

// CapWins keeps the most recent MaxWinEvents entries.
func CapWins(events []WinEvent) []WinEvent {
	if len(events) <= MaxWinEvents {
		return events
	}
	trimmed := make([]WinEvent, MaxWinEvents)
	copy(trimmed, events[len(events)-MaxWinEvents:])
	return trimmed
}
