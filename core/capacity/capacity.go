// Package capacity counts already assigned rides per driver within the
// calendar week of a candidate ride.
package capacity

import (
	"strings"
	"time"

	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/timeframe"
)

// excludedStatuses never count toward a driver's weekly load.
var excludedStatuses = map[string]struct{}{
	"unassigned": {},
	"canceled":   {},
	"cancelled":  {},
	"declined":   {},
}

// Bounds is an inclusive week interval.
type Bounds struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the inclusive bounds.
func (b Bounds) Contains(t time.Time) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

// WeekBounds returns Sunday 00:00:00.000 through Saturday 23:59:59.999 in loc
// for the week containing t.
func WeekBounds(t time.Time, loc *time.Location) Bounds {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	y, m, d := lt.Date()
	start := time.Date(y, m, d-int(lt.Weekday()), 0, 0, 0, 0, loc)
	end := time.Date(y, m, d-int(lt.Weekday())+6, 23, 59, 59, int(999*time.Millisecond), loc)
	return Bounds{Start: start, End: end}
}

// Counts maps driver identifiers to the number of rides they hold.
type Counts map[string]int

// For returns the largest count across a driver's aliases.
func (c Counts) For(ids []string) int {
	best := 0
	for _, id := range ids {
		if n := c[id]; n > best {
			best = n
		}
	}
	return best
}

// Exceeded reports whether a driver with the given weekly maximum is full.
func Exceeded(max, count int) bool {
	return max > 0 && count >= max
}

// Count tallies rides within bounds, skipping the current ride, voided rides
// and rides whose start cannot be placed in the week. Each ride counts once per
// unique assigned identifier.
func Count(rides []model.Ride, current model.Ride, bounds Bounds, loc *time.Location) Counts {
	counts := Counts{}
	currentIDs := current.IDs()
	for _, r := range rides {
		if isCurrent(r, currentIDs) || isExcluded(r.Status) {
			continue
		}
		start, ok := RideStart(r, loc)
		if !ok || !bounds.Contains(start) {
			continue
		}
		seen := map[string]struct{}{}
		for _, id := range r.AssignedDriverIDs {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			counts[id]++
		}
	}
	return counts
}

func isCurrent(r model.Ride, currentIDs []string) bool {
	for _, id := range currentIDs {
		if r.HasID(id) {
			return true
		}
	}
	return false
}

func isExcluded(status string) bool {
	_, ok := excludedStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// RideStart resolves the start of a ride: the computed timeframe when
// possible, else the date at pickup or appointment time, else the date at
// midnight.
func RideStart(r model.Ride, loc *time.Location) (time.Time, bool) {
	if tf, err := timeframe.Compute(r.Times, loc); err == nil {
		return tf.Start, true
	}
	if r.Times.PickupAt != nil && !r.Times.PickupAt.IsZero() {
		return *r.Times.PickupAt, true
	}
	if r.Times.AppointmentAt != nil && !r.Times.AppointmentAt.IsZero() {
		return *r.Times.AppointmentAt, true
	}
	day, err := timeframe.ParseDate(r.Times.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	for _, clock := range []string{r.Times.PickupTime, r.Times.AppointmentTime} {
		if clock == "" {
			continue
		}
		if at, err := timeframe.AtClock(day, clock); err == nil {
			return at, true
		}
	}
	return day, true
}
