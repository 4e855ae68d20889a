package metrics

import "testing"

type recordSink struct {
	count int
}

func (r *recordSink) RecordMatch(MatchRecord) error {
	r.count++
	return nil
}

func (r *recordSink) RecordMatchFailure(MatchFailure) error {
	r.count++
	return nil
}

// TestMultiSink ensures records are forwarded to all sinks and optional
// recorders are skipped when a sink lacks them.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, NopSink{})
	if err := m.RecordMatch(MatchRecord{RideID: "r1"}); err != nil {
		t.Fatalf("record match: %v", err)
	}
	if err := m.RecordMatchFailure(MatchFailure{RideID: "r1", Kind: "not_found"}); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if err := m.RecordDriverDecisions(nil); err != nil {
		t.Fatalf("record decisions: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded: %d %d", s1.count, s2.count)
	}
}
