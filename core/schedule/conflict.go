package schedule

import (
	"fmt"
	"time"

	"github.com/kilianp07/ridematch/core/model"
)

// ConflictKind discriminates Conflict.
type ConflictKind int

const (
	ConflictNone ConflictKind = iota
	ConflictSingle
	ConflictRecurring
)

// Conflict is the first unavailability entry overlapping a ride window.
type Conflict struct {
	Kind  ConflictKind
	Entry model.UnavailabilityEntry
}

// Found reports whether a conflict was detected.
func (c Conflict) Found() bool { return c.Kind != ConflictNone }

// Describe renders the conflict for a match result reason.
func (c Conflict) Describe() string {
	e := c.Entry
	switch c.Kind {
	case ConflictSingle:
		return fmt.Sprintf("unavailable %s to %s",
			e.Start.Format("2006-01-02 15:04"), e.End.Format("2006-01-02 15:04"))
	case ConflictRecurring:
		msg := fmt.Sprintf("unavailable every %s %s-%s",
			e.Weekday, model.FormatMinutes(e.StartMinutes), model.FormatMinutes(e.EndMinutes))
		switch {
		case e.EffectiveFrom != nil && e.EffectiveTo != nil:
			msg += fmt.Sprintf(" (%s to %s)", e.EffectiveFrom.Format("2006-01-02"), e.EffectiveTo.Format("2006-01-02"))
		case e.EffectiveFrom != nil:
			msg += fmt.Sprintf(" (from %s)", e.EffectiveFrom.Format("2006-01-02"))
		case e.EffectiveTo != nil:
			msg += fmt.Sprintf(" (until %s)", e.EffectiveTo.Format("2006-01-02"))
		}
		return msg
	default:
		return ""
	}
}

// Overlaps is the half-open interval test a.start < b.end && a.end > b.start.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func overlapsMinutes(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// LocalWindow is a ride window expressed in the schedule zone.
type LocalWindow struct {
	Date         time.Time
	Weekday      time.Weekday
	StartMinutes int
	// EndMinutes may exceed a day when the window crosses local midnight.
	EndMinutes int
}

// ToLocal converts an absolute ride window to the schedule zone.
func ToLocal(start, end time.Time, zone *time.Location) LocalWindow {
	ls := start.In(zone)
	day := calendarDay(ls, zone)
	return LocalWindow{
		Date:         day,
		Weekday:      ls.Weekday(),
		StartMinutes: ls.Hour()*60 + ls.Minute(),
		EndMinutes:   int(end.In(zone).Sub(day) / time.Minute),
	}
}

// Conflict tests the ride window [start,end) against the index. Singles are
// scanned first in index order, then recurring entries for the ride's local
// weekday. A window crossing local midnight also checks the following day.
func (ix Index) Conflict(start, end time.Time) Conflict {
	for _, e := range ix.Singles {
		if Overlaps(start, end, e.Start, e.End) {
			return Conflict{Kind: ConflictSingle, Entry: e}
		}
	}
	if len(ix.Recurring) == 0 {
		return Conflict{}
	}
	w := ToLocal(start, end, ix.Zone())
	for day := 0; day*model.MinutesPerDay < w.EndMinutes; day++ {
		date := w.Date.AddDate(0, 0, day)
		offset := day * model.MinutesPerDay
		ws := w.StartMinutes - offset
		if ws < 0 {
			ws = 0
		}
		we := w.EndMinutes - offset
		for _, e := range ix.Recurring {
			if e.Weekday != date.Weekday() || !inBounds(e, date) {
				continue
			}
			if overlapsMinutes(ws, we, e.StartMinutes, e.EndMinutes) {
				return Conflict{Kind: ConflictRecurring, Entry: e}
			}
		}
	}
	return Conflict{}
}

// inBounds compares at day granularity; bounds are inclusive.
func inBounds(e model.UnavailabilityEntry, date time.Time) bool {
	if e.EffectiveFrom != nil && date.Before(calendarDay(*e.EffectiveFrom, date.Location())) {
		return false
	}
	if e.EffectiveTo != nil && date.After(calendarDay(*e.EffectiveTo, date.Location())) {
		return false
	}
	return true
}

// WithinSlots reports whether the local ride window sits entirely inside one
// of the slots of its weekday. A window crossing midnight never fits.
func WithinSlots(slots []model.AvailabilitySlot, start, end time.Time, zone *time.Location) bool {
	w := ToLocal(start, end, zone)
	if w.EndMinutes > model.MinutesPerDay {
		return false
	}
	for _, s := range slots {
		if s.Weekday == w.Weekday && s.StartMinutes <= w.StartMinutes && w.EndMinutes <= s.EndMinutes {
			return true
		}
	}
	return false
}
