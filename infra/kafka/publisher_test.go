package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/events"
	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/publish"
)

type fakeWriter struct {
	msgs     []kafka.Message
	err      error
	closed   bool
	deadline bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_KeyAndPayload(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, 0)
	ev := events.MatchCompleted{
		MatchID: "m1",
		RideID:  "r7",
		Results: []model.MatchResult{{DriverID: "v1", Available: true}},
		Time:    time.Unix(1717405200, 0),
	}
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "r7", string(w.msgs[0].Key))
	assert.True(t, w.deadline)

	var msg publish.Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &msg))
	assert.Equal(t, []string{"v1"}, msg.Available)
	assert.Equal(t, int64(1717405200000), msg.Timestamp)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_WrapsError(t *testing.T) {
	down := errors.New("leader not available")
	p := newPublisher(&fakeWriter{err: down}, time.Second)
	err := p.Publish(context.Background(), events.MatchCompleted{RideID: "r1"})
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "ride r1")
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := NewPublisher(Config{})
	assert.Error(t, err)

	p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	assert.Equal(t, "kafka", p.Name())
	assert.Equal(t, DefaultTopic, p.writer.(*kafka.Writer).Topic)
	require.NoError(t, p.Close())
}

func TestRegistered(t *testing.T) {
	pubs, err := publish.New([]factory.ModuleConfig{{
		Type: "kafka",
		Conf: map[string]any{"brokers": []any{"localhost:9092"}, "topic": "matches", "timeout": "500ms"},
	}})
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	kp := pubs[0].(*Publisher)
	assert.Equal(t, 500*time.Millisecond, kp.timeout)
	require.NoError(t, kp.Close())
}
