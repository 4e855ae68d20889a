// Package schedule parses weekly availability and unavailability encodings,
// builds a driver's unavailability index and detects conflicts with a ride.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/ridematch/core/model"
)

// ErrMalformed is returned for encodings that cannot be decoded.
var ErrMalformed = errors.New("malformed schedule value")

// ParseStats counts what a parse pass dropped.
type ParseStats struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

// Add accumulates o into s.
func (s *ParseStats) Add(o ParseStats) {
	s.Accepted += o.Accepted
	s.Skipped += o.Skipped
}

// dayCodes is ordered longest match first.
var dayCodes = []struct {
	code string
	day  time.Weekday
}{
	{"Sun", time.Sunday},
	{"Sat", time.Saturday},
	{"Mon", time.Monday},
	{"Tue", time.Tuesday},
	{"Wed", time.Wednesday},
	{"Thu", time.Thursday},
	{"Fri", time.Friday},
	{"Su", time.Sunday},
	{"Sa", time.Saturday},
	{"Th", time.Thursday},
	{"S", time.Sunday},
	{"M", time.Monday},
	{"T", time.Tuesday},
	{"W", time.Wednesday},
	{"F", time.Friday},
}

type slotToken struct {
	day     time.Weekday
	minutes int
}

func parseToken(tok string) (slotToken, bool) {
	for _, dc := range dayCodes {
		if !strings.HasPrefix(tok, dc.code) {
			continue
		}
		m, ok := parseHHMM(tok[len(dc.code):])
		if !ok {
			return slotToken{}, false
		}
		return slotToken{day: dc.day, minutes: m}, true
	}
	return slotToken{}, false
}

// parseHHMM accepts H:MM or HH:MM with 0-23 hours and 0-59 minutes.
func parseHHMM(s string) (int, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, false
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

// ParseAvailability decodes a compact weekly slot string such as
// "M09:00;M17:00;Th13:00;Th15:30". Tokens are consumed in pairs; a pair is
// kept only when both ends share a day, both times are valid and start < end.
// Invalid pairs and a trailing unpaired token are dropped and counted.
func ParseAvailability(s string) ([]model.AvailabilitySlot, ParseStats) {
	var stats ParseStats
	var toks []string
	for _, raw := range strings.Split(s, ";") {
		if t := strings.TrimSpace(raw); t != "" {
			toks = append(toks, t)
		}
	}
	var slots []model.AvailabilitySlot
	for i := 0; i+1 < len(toks); i += 2 {
		a, okA := parseToken(toks[i])
		b, okB := parseToken(toks[i+1])
		slot := model.AvailabilitySlot{Weekday: a.day, StartMinutes: a.minutes, EndMinutes: b.minutes}
		if !okA || !okB || a.day != b.day || !slot.Valid() {
			stats.Skipped++
			continue
		}
		slots = append(slots, slot)
		stats.Accepted++
	}
	if len(toks)%2 == 1 {
		stats.Skipped++
	}
	return slots, stats
}

// ParseUnavailabilityRange decodes "D,M,Y,HH:MM;D,M,Y,HH:MM" into instants in loc.
func ParseUnavailabilityRange(s string, loc *time.Location) (time.Time, time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ";")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range %q needs two segments", ErrMalformed, s)
	}
	start, err := parseRangeSegment(parts[0], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseRangeSegment(parts[1], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range %q ends before it starts", ErrMalformed, s)
	}
	return start, end, nil
}

func parseRangeSegment(seg string, loc *time.Location) (time.Time, error) {
	f := strings.Split(strings.TrimSpace(seg), ",")
	if len(f) != 4 {
		return time.Time{}, fmt.Errorf("%w: segment %q needs D,M,Y,HH:MM", ErrMalformed, seg)
	}
	nums := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(f[i]))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: segment %q: %v", ErrMalformed, seg, err)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: segment %q: date out of range", ErrMalformed, seg)
	}
	mins, ok := parseHHMM(f[3])
	if !ok {
		return time.Time{}, fmt.Errorf("%w: segment %q: bad time", ErrMalformed, seg)
	}
	t := time.Date(year, time.Month(month), day, mins/60, mins%60, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: segment %q: no such day", ErrMalformed, seg)
	}
	return t, nil
}

// ParseWeekday accepts full names, day codes, three letter abbreviations and
// numbers 0-6 (Sunday = 0).
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, false
		}
		return time.Weekday(n), true
	}
	lower := strings.ToLower(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if lower == name || lower == name[:3] {
			return d, true
		}
	}
	for _, dc := range dayCodes {
		if s == dc.code {
			return dc.day, true
		}
	}
	return 0, false
}
