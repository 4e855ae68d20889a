// Package kafka publishes match outcomes to a Kafka topic keyed by ride id.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kilianp07/ridematch/core/events"
	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/publish"
)

// DefaultTopic receives match summaries when no topic is configured.
const DefaultTopic = "ridematch.matches"

// Config selects the brokers and topic.
type Config struct {
	Brokers []string      `json:"brokers"`
	Topic   string        `json:"topic"`
	Timeout time.Duration `json:"timeout"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per completed match.
type Publisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewPublisher creates a publisher. Connections are opened lazily by the writer.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}
	return newPublisher(w, cfg.Timeout), nil
}

func newPublisher(w messageWriter, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Publisher{writer: w, timeout: timeout}
}

// Name returns "kafka".
func (p *Publisher) Name() string { return "kafka" }

// Publish writes the match summary with the ride id as key so every match of
// a ride lands on the same partition.
func (p *Publisher) Publish(ctx context.Context, ev events.MatchCompleted) error {
	b, err := json.Marshal(publish.NewMessage(ev))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.RideID), Value: b}); err != nil {
		return fmt.Errorf("kafka publish ride %s: %w", ev.RideID, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func init() {
	_ = publish.Register("kafka", func(conf map[string]any) (publish.Publisher, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPublisher(c)
	})
}
