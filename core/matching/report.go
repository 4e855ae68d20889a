package matching

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/ridematch/core/model"
)

// Reason codes for unavailable drivers. They are stable across releases.
const (
	CodeNotDriver           = "not_driver"
	CodeInactive            = "inactive"
	CodeOnLeave             = "on_leave"
	CodeWeeklyLimit         = "weekly_limit"
	CodeUnavailable         = "unavailable"
	CodeOutsideAvailability = "outside_availability"
)

// RideSummary describes the ride a report was computed for.
type RideSummary struct {
	ID              string              `json:"id"`
	UID             string              `json:"uid,omitempty"`
	ClientRef       string              `json:"client_ref,omitempty"`
	DestinationRef  string              `json:"destination_ref,omitempty"`
	DestinationTown string              `json:"destination_town,omitempty"`
	ClientName      string              `json:"client_name,omitempty"`
	TripType        string              `json:"trip_type"`
	Timeframe       model.RideTimeframe `json:"timeframe"`
}

// Counts aggregates the classification.
type Counts struct {
	Total       int            `json:"total"`
	Available   int            `json:"available"`
	Unavailable int            `json:"unavailable"`
	ByReason    map[string]int `json:"by_reason"`
}

// LoadStats describes the weekly ride load across drivers.
type LoadStats struct {
	Drivers int     `json:"drivers"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Max     float64 `json:"max"`
}

// Report is the result of a match request.
type Report struct {
	Success        bool                `json:"success"`
	MatchID        string              `json:"match_id"`
	Ride           RideSummary         `json:"ride"`
	Available      []model.MatchResult `json:"available"`
	Unavailable    []model.MatchResult `json:"unavailable"`
	Counts         Counts              `json:"counts"`
	Warnings       []string            `json:"warnings"`
	SkippedEntries int                 `json:"skipped_entries"`
	Load           LoadStats           `json:"load"`
}

// Results returns every driver result, available first.
func (r *Report) Results() []model.MatchResult {
	out := make([]model.MatchResult, 0, len(r.Available)+len(r.Unavailable))
	out = append(out, r.Available...)
	return append(out, r.Unavailable...)
}

func countResults(results []model.MatchResult) Counts {
	c := Counts{Total: len(results), ByReason: map[string]int{}}
	for _, r := range results {
		if r.Available {
			c.Available++
			continue
		}
		c.Unavailable++
		c.ByReason[r.ReasonCode]++
	}
	return c
}

// loadStats uses the population standard deviation; a single driver has none.
func loadStats(weekly []float64) LoadStats {
	if len(weekly) == 0 {
		return LoadStats{}
	}
	ls := LoadStats{
		Drivers: len(weekly),
		Mean:    stat.Mean(weekly, nil),
		Max:     floats.Max(weekly),
	}
	if len(weekly) > 1 {
		ls.StdDev = math.Sqrt(stat.PopVariance(weekly, nil))
	}
	return ls
}
