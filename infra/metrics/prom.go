package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/ridematch/core/metrics"
)

// PromSink records match outcomes in Prometheus metrics.
type PromSink struct {
	available   prometheus.Histogram
	decisions   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	publishes   *prometheus.CounterVec
	lastMatched prometheus.Gauge
}

// NewPromSink registers match metrics on the default Prometheus registerer.
// The metrics are served by the HTTP API on /metrics.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	available := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ridematch_available_drivers",
		Help:    "Number of available drivers per match request",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridematch_driver_decisions_total",
		Help: "Driver classifications by availability",
	}, []string{"available"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridematch_match_failures_total",
		Help: "Failed match requests by kind",
	}, []string{"kind"})
	publishes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridematch_publish_total",
		Help: "Match events forwarded to external backends",
	}, []string{"backend", "success"})
	lastMatched := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ridematch_last_match_timestamp_seconds",
		Help: "Unix time of the last successful match request",
	})

	var err error
	if available, err = register(reg, available); err != nil {
		return nil, err
	}
	if decisions, err = register(reg, decisions); err != nil {
		return nil, err
	}
	if failures, err = register(reg, failures); err != nil {
		return nil, err
	}
	if publishes, err = register(reg, publishes); err != nil {
		return nil, err
	}
	if lastMatched, err = register(reg, lastMatched); err != nil {
		return nil, err
	}
	return &PromSink{
		available:   available,
		decisions:   decisions,
		failures:    failures,
		publishes:   publishes,
		lastMatched: lastMatched,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordMatch observes the number of available drivers.
func (s *PromSink) RecordMatch(rec coremetrics.MatchRecord) error {
	s.available.Observe(float64(rec.Available))
	if !rec.Time.IsZero() {
		s.lastMatched.Set(float64(rec.Time.Unix()))
	}
	return nil
}

// RecordDriverDecisions counts each decision.
func (s *PromSink) RecordDriverDecisions(decisions []coremetrics.DriverDecision) error {
	for _, d := range decisions {
		s.decisions.WithLabelValues(strconv.FormatBool(d.Available)).Inc()
	}
	return nil
}

// RecordMatchFailure counts a failed request.
func (s *PromSink) RecordMatchFailure(ev coremetrics.MatchFailure) error {
	s.failures.WithLabelValues(ev.Kind).Inc()
	return nil
}

// RecordPublish counts a publish attempt.
func (s *PromSink) RecordPublish(ev coremetrics.PublishResult) error {
	s.publishes.WithLabelValues(ev.Backend, strconv.FormatBool(ev.Success)).Inc()
	return nil
}
