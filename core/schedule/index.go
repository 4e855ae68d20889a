package schedule

import (
	"math"
	"strings"
	"time"

	"github.com/kilianp07/ridematch/core/model"
)

// DefaultZoneOffset is the fixed offset used to interpret weekly schedules.
// It is not daylight saving aware.
const DefaultZoneOffset = -5 * time.Hour

// FixedZone returns a location with the given fixed offset from UTC.
func FixedZone(offset time.Duration) *time.Location {
	return time.FixedZone("schedule", int(offset/time.Second))
}

// DefaultZone is FixedZone(DefaultZoneOffset).
var DefaultZone = FixedZone(DefaultZoneOffset)

// maxExpandDays bounds the day-by-day expansion of dated slot records.
const maxExpandDays = 366 * 2

// Index is a driver's decoded unavailability: concrete dated intervals kept in
// input order and weekly recurring intervals.
type Index struct {
	Singles   []model.UnavailabilityEntry
	Recurring []model.UnavailabilityEntry
	zone      *time.Location
}

// Zone returns the location recurring entries are expressed in.
func (ix Index) Zone() *time.Location {
	if ix.zone == nil {
		return DefaultZone
	}
	return ix.zone
}

// Len returns the number of decoded entries.
func (ix Index) Len() int { return len(ix.Singles) + len(ix.Recurring) }

// BuildIndex decodes raw unavailability records. For each record the first
// applicable rule wins: explicit instants, range string, compact slot string,
// legacy minute or decimal hour fields. Records matching no rule, or failing
// the rule they match, are skipped and counted.
func BuildIndex(raw []model.RawUnavailability, zone *time.Location) (Index, ParseStats) {
	if zone == nil {
		zone = DefaultZone
	}
	ix := Index{zone: zone}
	var stats ParseStats
	for _, r := range raw {
		before := ix.Len()
		ok := ix.add(r, &stats)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Accepted += ix.Len() - before
	}
	return ix, stats
}

func (ix *Index) add(r model.RawUnavailability, stats *ParseStats) bool {
	if r.EffectiveFrom != nil && r.EffectiveTo != nil && calendarDay(*r.EffectiveTo, ix.zone).Before(calendarDay(*r.EffectiveFrom, ix.zone)) {
		return false
	}
	switch {
	case r.Start != nil && r.End != nil:
		if !r.End.After(*r.Start) {
			return false
		}
		ix.Singles = append(ix.Singles, model.NewSingle(*r.Start, *r.End, r.Source))
		return true
	case strings.TrimSpace(r.Range) != "":
		start, end, err := ParseUnavailabilityRange(r.Range, ix.zone)
		if err != nil {
			return false
		}
		ix.Singles = append(ix.Singles, model.NewSingle(start, end, r.Source))
		return true
	case strings.TrimSpace(r.Slots) != "":
		return ix.addSlots(r, stats)
	case r.Day != "":
		return ix.addLegacy(r)
	default:
		return false
	}
}

func (ix *Index) addSlots(r model.RawUnavailability, stats *ParseStats) bool {
	slots, ps := ParseAvailability(r.Slots)
	stats.Skipped += ps.Skipped
	if len(slots) == 0 {
		return false
	}
	if r.Repeated {
		for _, s := range slots {
			ix.Recurring = append(ix.Recurring,
				model.NewRecurring(s.Weekday, s.StartMinutes, s.EndMinutes, r.EffectiveFrom, r.EffectiveTo, r.Source))
		}
		return true
	}
	if r.EffectiveFrom == nil {
		return false
	}
	from := calendarDay(*r.EffectiveFrom, ix.zone)
	to := from
	if r.EffectiveTo != nil {
		to = calendarDay(*r.EffectiveTo, ix.zone)
	}
	n := 0
	for d := from; !d.After(to) && n < maxExpandDays; d = d.AddDate(0, 0, 1) {
		n++
		for _, s := range slots {
			if s.Weekday != d.Weekday() {
				continue
			}
			start := d.Add(time.Duration(s.StartMinutes) * time.Minute)
			end := d.Add(time.Duration(s.EndMinutes) * time.Minute)
			ix.Singles = append(ix.Singles, model.NewSingle(start, end, r.Source))
		}
	}
	return true
}

func (ix *Index) addLegacy(r model.RawUnavailability) bool {
	day, ok := ParseWeekday(r.Day)
	if !ok {
		return false
	}
	var start, end int
	switch {
	case r.StartMinutes != nil && r.EndMinutes != nil:
		start, end = *r.StartMinutes, *r.EndMinutes
	case r.StartHour != nil && r.EndHour != nil:
		start = hoursToMinutes(*r.StartHour)
		end = hoursToMinutes(*r.EndHour)
	default:
		return false
	}
	// End of day may be encoded as 24:00.
	if end == model.MinutesPerDay {
		end = model.MinutesPerDay - 1
	}
	if !(model.AvailabilitySlot{Weekday: day, StartMinutes: start, EndMinutes: end}).Valid() {
		return false
	}
	ix.Recurring = append(ix.Recurring, model.NewRecurring(day, start, end, r.EffectiveFrom, r.EffectiveTo, r.Source))
	return true
}

func hoursToMinutes(h float64) int {
	return int(math.Round(h * 60))
}

// calendarDay returns midnight in loc of the calendar date t carries in its
// own location. Effective bounds are dates, not instants.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
