package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 10)
	defer unsub()

	b.Publish(KindChatUpdated, UpdatedPayload{OwnerID: "a1", ContactID: "a2"})

	select {
	case evt := <-ch:
		if evt.Kind != KindChatUpdated {
			t.Errorf("got kind %q, want %q", evt.Kind, KindChatUpdated)
		}
		p, ok := evt.Payload.(UpdatedPayload)
		if !ok || p.OwnerID != "a1" {
			t.Errorf("payload = %#v", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("alarm.", 10)
	defer unsub()

	b.Publish(KindChatInbound, nil)
	b.Publish(KindAlarmCleared, nil)

	select {
	case evt := <-ch:
		if evt.Kind != KindAlarmCleared {
			t.Errorf("got kind %q, want %q", evt.Kind, KindAlarmCleared)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("nav.", 10)
	unsub()

	b.Publish(KindNavChanged, nil)

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("socket.", 1)
	defer unsub()

	b.Publish(KindSocketUp, nil)
	// Buffer is full, this one is dropped rather than blocking.
	b.Publish(KindSocketDown, nil)

	evt := <-ch
	if evt.Kind != KindSocketUp {
		t.Errorf("got %q, want %q", evt.Kind, KindSocketUp)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected second event: %v", evt)
	default:
	}
}
