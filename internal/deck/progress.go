package deck

import "morningdeck/api/internal/timekey"

// ItemState is the slice of a line-item the progress logic needs. Outcome is
// "" while the item is pending.
type ItemState struct {
	ID      int64
	Ordinal int
	Outcome string
}

// NextPending returns the next pending item strictly after the given ordinal,
// wrapping to the earliest pending item when none follows. Items must be
// sorted by ordinal. The second return is false when every item is done.
func NextPending(items []ItemState, afterOrdinal int) (ItemState, bool) {
	for _, item := range items {
		if item.Ordinal > afterOrdinal && item.Outcome == "" {
			return item, true
		}
	}
	for _, item := range items {
		if item.Outcome == "" {
			return item, true
		}
	}
	return ItemState{}, false
}

// RunComplete reports whether a run is finished: at least one item, and every
// item carries an outcome. An empty run is "nothing to review", not complete.
func RunComplete(items []ItemState) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Outcome == "" {
			return false
		}
	}
	return true
}

// Streak counts consecutive completed days walking backward from today.
// days maps day key to completion for the lookback window. A day with no run
// or an incomplete run stops the walk; an unfinished (or unstarted) today is
// skipped rather than breaking the streak.
func Streak(days map[string]bool, today string) int {
	cur := today
	if complete, ok := days[cur]; !ok || !complete {
		cur = timekey.AddDays(cur, -1)
	}
	streak := 0
	for {
		complete, ok := days[cur]
		if !ok || !complete {
			return streak
		}
		streak++
		cur = timekey.AddDays(cur, -1)
	}
}
