package model

import (
	"fmt"
	"time"
)

// AvailabilitySlot is a recurring weekly time-of-day interval.
// StartMinutes and EndMinutes are minutes after local midnight.
type AvailabilitySlot struct {
	Weekday      time.Weekday `json:"weekday"`
	StartMinutes int          `json:"start_minutes"`
	EndMinutes   int          `json:"end_minutes"`
}

// Valid reports whether the slot respects 0 <= start < end < 1440.
func (s AvailabilitySlot) Valid() bool {
	return s.StartMinutes >= 0 && s.StartMinutes < s.EndMinutes && s.EndMinutes < MinutesPerDay
}

// String renders the slot as "Monday 09:00-17:00".
func (s AvailabilitySlot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Weekday, FormatMinutes(s.StartMinutes), FormatMinutes(s.EndMinutes))
}

// MinutesPerDay is the number of minutes in a day.
const MinutesPerDay = 24 * 60

// FormatMinutes renders minutes after midnight as HH:MM.
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// EntryKind discriminates UnavailabilityEntry.
type EntryKind int

const (
	EntrySingle EntryKind = iota + 1
	EntryRecurring
)

// UnavailabilityEntry is either a concrete dated interval (Single) or a weekly
// time-of-day interval with optional inclusive date bounds (Recurring).
type UnavailabilityEntry struct {
	Kind EntryKind

	// Single
	Start time.Time
	End   time.Time

	// Recurring
	Weekday       time.Weekday
	StartMinutes  int
	EndMinutes    int
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time

	Source string
}

// NewSingle builds a Single entry.
func NewSingle(start, end time.Time, source string) UnavailabilityEntry {
	return UnavailabilityEntry{Kind: EntrySingle, Start: start, End: end, Source: source}
}

// NewRecurring builds a Recurring entry.
func NewRecurring(day time.Weekday, startMin, endMin int, from, to *time.Time, source string) UnavailabilityEntry {
	return UnavailabilityEntry{
		Kind:          EntryRecurring,
		Weekday:       day,
		StartMinutes:  startMin,
		EndMinutes:    endMin,
		EffectiveFrom: from,
		EffectiveTo:   to,
		Source:        source,
	}
}
