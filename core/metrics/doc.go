package metrics

// Package metrics defines the sinks that observe match requests. Sinks like
// PromSink and InfluxSink record one MatchRecord per request and may also
// implement the optional recorder interfaces for per-driver decisions and
// failures. Several sinks are combined with NewMultiSink; the factory helpers
// do so automatically when more than one sink is configured.
