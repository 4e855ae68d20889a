package events

import (
	"time"

	"github.com/kilianp07/ridematch/core/model"
)

// MatchCompleted is published after a successful match request.
type MatchCompleted struct {
	MatchID  string              `json:"match_id"`
	RideID   string              `json:"ride_id"`
	Results  []model.MatchResult `json:"results"`
	Warnings []string            `json:"warnings,omitempty"`
	Skipped  int                 `json:"skipped_entries"`
	Duration time.Duration       `json:"duration_ns"`
	Time     time.Time           `json:"time"`
}

// AvailableIDs returns the driver ids classified available, in result order.
func (e MatchCompleted) AvailableIDs() []string {
	var ids []string
	for _, r := range e.Results {
		if r.Available {
			ids = append(ids, r.DriverID)
		}
	}
	return ids
}

// ReasonCounts counts unavailable drivers per reason code.
func (e MatchCompleted) ReasonCounts() map[string]int {
	out := map[string]int{}
	for _, r := range e.Results {
		if !r.Available {
			out[r.ReasonCode]++
		}
	}
	return out
}

// MatchFailed is published when a match request returns an error.
type MatchFailed struct {
	RideID string
	// Kind classifies the failure, e.g. "not_found", "timeframe", "repository".
	Kind string
	Err  error
	Time time.Time
}

// MatchPublished reports the delivery of a MatchCompleted event to an
// external backend. Err is nil on success.
type MatchPublished struct {
	MatchID string
	RideID  string
	Backend string
	Err     error
	Time    time.Time
}
