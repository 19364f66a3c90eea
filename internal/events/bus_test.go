package events

import "testing"

func TestBus_PublishReachesEverySubscriber(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe(EventShowStart)
	b := bus.Subscribe(EventShowStart)
	other := bus.Subscribe(EventShowEnd)

	bus.Publish(EventShowStart, Payload{"show": "Drive Time Mess"})

	for name, sub := range map[string]Subscriber{"a": a, "b": b} {
		select {
		case p := <-sub:
			if p["show"] != "Drive Time Mess" {
				t.Fatalf("%s: unexpected payload %v", name, p)
			}
		default:
			t.Fatalf("%s: expected payload", name)
		}
	}
	select {
	case p := <-other:
		t.Fatalf("show.end subscriber got %v", p)
	default:
	}
}

func TestBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventScheduleUpdate)

	for i := 0; i < subscriberBuffer*2; i++ {
		bus.Publish(EventScheduleUpdate, Payload{"i": i})
	}
	if len(sub) != subscriberBuffer {
		t.Fatalf("expected %d buffered payloads, got %d", subscriberBuffer, len(sub))
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	keep := bus.Subscribe(EventShowEnd)
	drop := bus.Subscribe(EventShowEnd)

	bus.Unsubscribe(EventShowEnd, drop)
	bus.Unsubscribe(EventShowEnd, drop)

	if n := bus.Subscribers(EventShowEnd); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}
	if _, ok := <-drop; ok {
		t.Fatal("expected removed subscriber to be closed")
	}

	bus.Publish(EventShowEnd, Payload{})
	if len(keep) != 1 {
		t.Fatal("remaining subscriber should still receive events")
	}
}
