// Package timekey resolves the business-day identity for daily runs.
//
// The deck operates on civil dates in a single fixed zone so that a user
// checking in from another timezone (or a laptop with a skewed clock) still
// lands on the same "today" as every other device. The key is the sole
// identity of a day's run.
package timekey

import (
	"fmt"
	"time"
)

// BusinessZone is the reference zone for day boundaries.
const BusinessZone = "America/New_York"

const Layout = "2006-01-02"

var businessLoc *time.Location

func init() {
	loc, err := time.LoadLocation(BusinessZone)
	if err != nil {
		// Zone database missing from the host. Fall back to a fixed offset
		// rather than UTC so day boundaries stay roughly aligned.
		loc = time.FixedZone("EST", -5*60*60)
	}
	businessLoc = loc
}

// DayKey returns the YYYY-MM-DD key for the instant t in the business zone.
func DayKey(t time.Time) string {
	return t.In(businessLoc).Format(Layout)
}

// Today returns the current day key. Callers should resolve this per request,
// not memoize it per session: a session held open across midnight keeps the
// stale key until it computes a fresh one.
func Today() string {
	return DayKey(time.Now())
}

// Parse converts a day key back to midnight of that civil date in the
// business zone. Rejects anything that is not a valid YYYY-MM-DD date.
func Parse(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, key, businessLoc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day key %q: %w", key, err)
	}
	return t, nil
}

// AddDays shifts a day key by n calendar days. Invalid keys are returned
// unchanged so a malformed key fails loudly downstream instead of silently
// walking the calendar.
func AddDays(key string, n int) string {
	t, err := Parse(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(Layout)
}
