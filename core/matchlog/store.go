// Package matchlog persists an audit trail of match decisions.
package matchlog

import (
	"context"
	"time"

	"github.com/kilianp07/ridematch/core/events"
)

// Record captures the decisions of one match request.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	MatchID   string    `json:"match_id"`
	RideID    string    `json:"ride_id"`
	Available []string  `json:"available"`
	// Unavailable maps a driver id to its reason code.
	Unavailable map[string]string `json:"unavailable"`
	Warnings    []string          `json:"warnings,omitempty"`
	Skipped     int               `json:"skipped_entries"`
	DurationMS  int64             `json:"duration_ms"`
}

// Involves reports whether the driver was evaluated in this record.
func (r Record) Involves(driverID string) bool {
	for _, id := range r.Available {
		if id == driverID {
			return true
		}
	}
	_, ok := r.Unavailable[driverID]
	return ok
}

// FromEvent builds the record for a completed match.
func FromEvent(ev events.MatchCompleted) Record {
	rec := Record{
		Timestamp:   ev.Time,
		MatchID:     ev.MatchID,
		RideID:      ev.RideID,
		Available:   []string{},
		Unavailable: map[string]string{},
		Warnings:    ev.Warnings,
		Skipped:     ev.Skipped,
		DurationMS:  ev.Duration.Milliseconds(),
	}
	for _, r := range ev.Results {
		if r.Available {
			rec.Available = append(rec.Available, r.DriverID)
		} else {
			rec.Unavailable[r.DriverID] = r.ReasonCode
		}
	}
	return rec
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start    time.Time
	End      time.Time
	RideID   string
	DriverID string
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RideID != "" && r.RideID != q.RideID {
		return false
	}
	if q.DriverID != "" && !r.Involves(q.DriverID) {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
