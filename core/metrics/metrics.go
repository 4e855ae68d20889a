package metrics

import "time"

// MatchRecord summarizes one completed match request.
type MatchRecord struct {
	MatchID     string
	RideID      string
	Available   int
	Unavailable int
	// Reasons counts unavailable drivers per reason code.
	Reasons  map[string]int
	Warnings int
	Skipped  int
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records match requests for observability purposes.
type MetricsSink interface {
	RecordMatch(rec MatchRecord) error
}

// DriverDecision is the per-driver outcome of a match request.
type DriverDecision struct {
	MatchID     string
	RideID      string
	DriverID    string
	Available   bool
	ReasonCode  string
	WeeklyRides int
	Time        time.Time
}

// DriverDecisionRecorder records per-driver decisions.
type DriverDecisionRecorder interface {
	RecordDriverDecisions(decisions []DriverDecision) error
}

// MatchFailure describes a match request that returned an error.
type MatchFailure struct {
	RideID string
	// Kind is a short classification such as "not_found" or "timeframe".
	Kind string
	Time time.Time
}

// MatchFailureRecorder records failed match requests.
type MatchFailureRecorder interface {
	RecordMatchFailure(ev MatchFailure) error
}

// PublishResult reports the outcome of publishing a match event.
type PublishResult struct {
	Backend string
	Success bool
	Time    time.Time
}

// PublishRecorder records publish attempts.
type PublishRecorder interface {
	RecordPublish(ev PublishResult) error
}

// NopSink implements MetricsSink and every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordMatch(MatchRecord) error                { return nil }
func (NopSink) RecordDriverDecisions([]DriverDecision) error { return nil }
func (NopSink) RecordMatchFailure(MatchFailure) error        { return nil }
func (NopSink) RecordPublish(PublishResult) error            { return nil }
