package events

import (
	"testing"
	"time"
)

func publishWithin(t *testing.T, b *Bus, msg Message, limit time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		b.Publish(msg)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(limit):
		t.Fatalf("publish did not return within %v", limit)
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	b := NewBus(4)
	publishWithin(t, b, Message{ResourceID: 1, EventType: TypeCreated}, time.Second)
}

func TestPublishDelivers(t *testing.T) {
	b := NewBus(4)
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(Message{ResourceID: 7, EventType: TypeRemoved})

	select {
	case got := <-sub.C:
		if got.ResourceID != 7 || got.EventType != TypeRemoved {
			t.Fatalf("unexpected message %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("no message delivered")
	}
}

func TestPublishFullBufferDoesNotBlock(t *testing.T) {
	b := NewBus(1)
	slow := b.Subscribe()
	defer b.Unsubscribe(slow)

	// Fill the slow subscriber's buffer and never drain it.
	b.Publish(Message{ResourceID: 1, EventType: TypeCreated})

	live := b.Subscribe()
	defer b.Unsubscribe(live)

	publishWithin(t, b, Message{ResourceID: 2, EventType: TypeCreated}, time.Second)

	// The live subscriber still got the event the slow one dropped.
	select {
	case got := <-live.C:
		if got.ResourceID != 2 {
			t.Fatalf("unexpected message %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("live subscriber starved by slow one")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus(1)
	sub := b.Subscribe()
	b.Unsubscribe(sub)

	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel after unsubscribe")
	}

	// Double unsubscribe must not panic.
	b.Unsubscribe(sub)
}

func TestSerialize(t *testing.T) {
	got := Message{ResourceID: 3, EventType: TypeRemoved}.Serialize()
	want := `{"resourceId":3,"eventType":"Removed"}`
	if got != want {
		t.Fatalf("serialize mismatch: got %s want %s", got, want)
	}
}
