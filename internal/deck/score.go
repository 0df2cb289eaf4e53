// Package deck holds the pure review-queue logic: urgency ranking, bullet
// normalization, queue progress, and the completion streak. Nothing in here
// touches storage; the app service feeds it rows and persists the results.
package deck

import (
	"sort"
	"strings"
	"time"
)

// NeverTouchedDays is the staleness assigned to a client with no recorded
// touch. Recorded staleness is capped just below it so a never-touched
// client always outranks a touched one within the same priority tier.
const NeverTouchedDays = 999

// Candidate is the slice of a client the scorer needs.
type Candidate struct {
	ID        int64
	Name      string
	Priority  string
	LastTouch *time.Time
}

func PriorityWeight(priority string) int {
	switch priority {
	case "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

// Staleness returns whole days elapsed since the last touch, floored at zero.
func Staleness(lastTouch *time.Time, now time.Time) int {
	if lastTouch == nil {
		return NeverTouchedDays
	}
	days := int(now.Sub(*lastTouch) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	if days >= NeverTouchedDays {
		days = NeverTouchedDays - 1
	}
	return days
}

// Score is the urgency sort key: priority weight times staleness. It is
// computed once when a run is first filled; the stored ordinal is a snapshot,
// not a live ranking.
func Score(c Candidate, now time.Time) int {
	return PriorityWeight(c.Priority) * Staleness(c.LastTouch, now)
}

// Rank orders candidates by descending urgency, breaking ties by
// case-insensitive name so the queue order is deterministic.
func Rank(clients []Candidate, now time.Time) []Candidate {
	ranked := make([]Candidate, len(clients))
	copy(ranked, clients)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := Score(ranked[i], now), Score(ranked[j], now)
		if si != sj {
			return si > sj
		}
		return strings.ToLower(ranked[i].Name) < strings.ToLower(ranked[j].Name)
	})
	return ranked
}
