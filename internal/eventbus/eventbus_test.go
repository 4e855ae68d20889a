package eventbus

import "testing"

type rideEvent struct{ id string }

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(rideEvent{id: "r1"})
	v := <-ch
	if ev, ok := v.(rideEvent); !ok || ev.id != "r1" {
		t.Fatalf("expected ride r1 got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	bus.Publish(rideEvent{id: "late"})
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}

func TestBusDropsOnFullSubscriber(t *testing.T) {
	bus := NewWithBuffer(1)
	slow := bus.Subscribe()
	bus.Publish(rideEvent{id: "r1"})
	bus.Publish(rideEvent{id: "r2"})
	bus.Publish(rideEvent{id: "r3"})
	if got := bus.Dropped(); got != 2 {
		t.Fatalf("expected 2 dropped got %d", got)
	}
	if ev := (<-slow).(rideEvent); ev.id != "r1" {
		t.Fatalf("expected first event kept got %s", ev.id)
	}
}
