package matching

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	matchDuration    *prometheus.HistogramVec
	matchRequests    *prometheus.CounterVec
	driversEvaluated *prometheus.CounterVec
	skippedEntries   prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ridematch_match_duration_seconds",
			Help:    "Duration of match requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	req := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridematch_match_requests_total",
			Help: "Number of match requests by outcome",
		},
		[]string{"outcome"},
	)
	drv := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ridematch_drivers_evaluated_total",
			Help: "Number of driver evaluations by reason code; empty means available",
		},
		[]string{"reason_code"},
	)
	skip := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ridematch_schedule_entries_skipped_total",
			Help: "Number of availability or unavailability entries that could not be parsed",
		},
	)
	return dur, req, drv, skip
}

func init() {
	matchDuration, matchRequests, driversEvaluated, skippedEntries = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers matching metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(matchDuration, matchRequests, driversEvaluated, skippedEntries)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	matchDuration, matchRequests, driversEvaluated, skippedEntries = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
