package metrics

import (
	"context"

	"github.com/kilianp07/ridematch/core/events"
	coremetrics "github.com/kilianp07/ridematch/core/metrics"
	"github.com/kilianp07/ridematch/infra/logger"
	"github.com/kilianp07/ridematch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records publish
// outcomes on sinks implementing PublishRecorder. Match results are recorded
// by the engine itself. It stops when the context is canceled or the bus is
// closed; the returned channel is closed on exit.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	rec, ok := sink.(coremetrics.PublishRecorder)
	if !ok {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, ok := ev.(events.MatchPublished)
				if !ok {
					continue
				}
				if err := rec.RecordPublish(coremetrics.PublishResult{
					Backend: e.Backend,
					Success: e.Err == nil,
					Time:    e.Time,
				}); err != nil {
					log.Errorf("record publish: %v", err)
				}
			}
		}
	}()
	return done
}
