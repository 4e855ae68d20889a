package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/ridematch/core/events"
	coremetrics "github.com/kilianp07/ridematch/core/metrics"
	"github.com/kilianp07/ridematch/internal/eventbus"
)

type publishSink struct {
	coremetrics.NopSink
	mu   sync.Mutex
	recs []coremetrics.PublishResult
}

func (p *publishSink) RecordPublish(ev coremetrics.PublishResult) error {
	p.mu.Lock()
	p.recs = append(p.recs, ev)
	p.mu.Unlock()
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	sink := &publishSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartEventCollector(ctx, bus, sink)

	bus.Publish(events.MatchCompleted{MatchID: "m1"})
	bus.Publish(events.MatchPublished{MatchID: "m1", Backend: "mqtt"})
	bus.Publish(events.MatchPublished{MatchID: "m1", Backend: "kafka", Err: errors.New("broker down")})
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.recs) != 2 {
		t.Fatalf("expected 2 publish records, got %d", len(sink.recs))
	}
	if !sink.recs[0].Success || sink.recs[1].Success {
		t.Fatalf("unexpected outcomes: %+v", sink.recs)
	}
}

func TestStartEventCollector_NoRecorder(t *testing.T) {
	done := StartEventCollector(context.Background(), eventbus.New(), recordOnly{})
	select {
	case <-done:
	default:
		t.Fatal("expected immediate return for sink without PublishRecorder")
	}
}

type recordOnly struct{}

func (recordOnly) RecordMatch(coremetrics.MatchRecord) error { return nil }
