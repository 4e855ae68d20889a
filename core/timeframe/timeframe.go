// Package timeframe derives the pickup-to-end window of a ride from its raw
// trip fields.
package timeframe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/ridematch/core/model"
)

// DefaultPickupLead is subtracted from the appointment when no pickup time is known.
const DefaultPickupLead = 25 * time.Minute

var (
	// ErrTimeframe is the parent of every timeframe failure.
	ErrTimeframe       = errors.New("timeframe")
	ErrUnknownTripType = fmt.Errorf("%w: unknown trip type", ErrTimeframe)
	ErrMissingField    = fmt.Errorf("%w: missing field", ErrTimeframe)
	ErrInvalidWindow   = fmt.Errorf("%w: invalid window", ErrTimeframe)
)

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}

// Compute resolves the ride times in loc and applies the trip type formula.
func Compute(rt model.RideTimes, loc *time.Location) (model.RideTimeframe, error) {
	if loc == nil {
		loc = time.Local
	}
	if rt.TripType == model.TripUnknown {
		return model.RideTimeframe{}, fmt.Errorf("%w %q", ErrUnknownTripType, rt.RawTripType)
	}
	duration := 0
	if rt.DurationMinutes != nil {
		duration = *rt.DurationMinutes
	}
	if duration < 0 {
		return model.RideTimeframe{}, fmt.Errorf("%w: negative duration %d", ErrInvalidWindow, duration)
	}

	appt, err := resolveAppointment(rt, loc)
	if err != nil {
		return model.RideTimeframe{}, err
	}
	pickup, ok := resolvePickup(rt, appt, loc)
	if !ok {
		pickup = appt.Add(-DefaultPickupLead)
	}

	d := time.Duration(duration) * time.Minute
	leg := int(appt.Sub(pickup) / time.Minute)
	tf := model.RideTimeframe{
		Start:                    pickup,
		Appointment:              appt,
		EstimatedDurationMinutes: duration,
		TripType:                 rt.TripType,
	}
	switch rt.TripType {
	case model.TripRoundTrip:
		tf.TotalDurationMinutes = leg + duration
		tf.End = pickup.Add(time.Duration(tf.TotalDurationMinutes) * time.Minute)
	case model.TripOneWayTo:
		tf.TotalDurationMinutes = leg + duration
		tf.End = appt.Add(d)
	case model.TripOneWayFrom:
		tf.TotalDurationMinutes = duration
		tf.End = appt.Add(d)
	}
	if !tf.End.After(tf.Start) {
		return model.RideTimeframe{}, fmt.Errorf("%w: end %s not after start %s", ErrInvalidWindow,
			tf.End.Format(time.RFC3339), tf.Start.Format(time.RFC3339))
	}
	return tf, nil
}

func resolveAppointment(rt model.RideTimes, loc *time.Location) (time.Time, error) {
	if rt.AppointmentAt != nil && !rt.AppointmentAt.IsZero() {
		return *rt.AppointmentAt, nil
	}
	if strings.TrimSpace(rt.Date) == "" {
		return time.Time{}, fmt.Errorf("%w: date", ErrMissingField)
	}
	if strings.TrimSpace(rt.AppointmentTime) == "" {
		return time.Time{}, fmt.Errorf("%w: appointment time", ErrMissingField)
	}
	day, err := ParseDate(rt.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date: %v", ErrMissingField, err)
	}
	at, err := AtClock(day, rt.AppointmentTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: appointment time: %v", ErrMissingField, err)
	}
	return at, nil
}

// resolvePickup returns false when the pickup is absent or unparseable.
func resolvePickup(rt model.RideTimes, appt time.Time, loc *time.Location) (time.Time, bool) {
	if rt.PickupAt != nil && !rt.PickupAt.IsZero() {
		return *rt.PickupAt, true
	}
	if strings.TrimSpace(rt.PickupTime) == "" {
		return time.Time{}, false
	}
	day := appt.In(loc)
	if rt.Date != "" {
		if d, err := ParseDate(rt.Date, loc); err == nil {
			day = d
		}
	}
	at, err := AtClock(day, rt.PickupTime)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// ParseDate parses a calendar date and returns midnight of that date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseClock parses a time of day and returns minutes after midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}

// AtClock places the clock value s on the calendar day of day.
func AtClock(day time.Time, s string) (time.Time, error) {
	m, err := ParseClock(s)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, m/60, m%60, 0, 0, day.Location()), nil
}
