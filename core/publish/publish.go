// Package publish declares the port used to forward completed matches to
// external systems such as an MQTT broker or a Kafka topic.
package publish

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/ridematch/core/events"
)

// Publisher forwards match outcomes to an external backend.
type Publisher interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	Publish(ctx context.Context, ev events.MatchCompleted) error
	Close() error
}

// Message is the wire payload shared by every backend.
type Message struct {
	MatchID     string         `json:"match_id"`
	RideID      string         `json:"ride_id"`
	Available   []string       `json:"available"`
	Unavailable int            `json:"unavailable"`
	Reasons     map[string]int `json:"reasons"`
	Warnings    []string       `json:"warnings,omitempty"`
	Timestamp   int64          `json:"timestamp"`
}

// NewMessage builds the wire payload for ev.
func NewMessage(ev events.MatchCompleted) Message {
	available := ev.AvailableIDs()
	if available == nil {
		available = []string{}
	}
	reasons := ev.ReasonCounts()
	unavailable := 0
	for _, n := range reasons {
		unavailable += n
	}
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return Message{
		MatchID:     ev.MatchID,
		RideID:      ev.RideID,
		Available:   available,
		Unavailable: unavailable,
		Reasons:     reasons,
		Warnings:    ev.Warnings,
		Timestamp:   ts.UnixMilli(),
	}
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Name() string                                         { return "nop" }
func (NopPublisher) Publish(context.Context, events.MatchCompleted) error { return nil }
func (NopPublisher) Close() error                                         { return nil }

// Multi fans an event out to several publishers.
type Multi struct {
	Publishers []Publisher
}

// Name returns "multi".
func (m *Multi) Name() string { return "multi" }

// Publish forwards ev to every publisher and joins their errors.
func (m *Multi) Publish(ctx context.Context, ev events.MatchCompleted) error {
	var errs []error
	for _, p := range m.Publishers {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher.
func (m *Multi) Close() error {
	var errs []error
	for _, p := range m.Publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
