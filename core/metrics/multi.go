package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMatch forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordMatch(rec MatchRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordMatch(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordDriverDecisions forwards decisions when supported by the sink.
func (m *MultiSink) RecordDriverDecisions(d []DriverDecision) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(DriverDecisionRecorder); ok {
			if err := rec.RecordDriverDecisions(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMatchFailure forwards failures when supported by the sink.
func (m *MultiSink) RecordMatchFailure(ev MatchFailure) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(MatchFailureRecorder); ok {
			if err := rec.RecordMatchFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPublish forwards publish results when supported by the sink.
func (m *MultiSink) RecordPublish(ev PublishResult) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PublishRecorder); ok {
			if err := rec.RecordPublish(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
