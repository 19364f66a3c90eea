/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package events is the in-process publish/subscribe bus for show
// transitions and lineup edits.
package events

import (
	"sync"

	"github.com/SICQR/hotmess/internal/telemetry"
)

// subscriberBuffer is how many undelivered payloads a subscriber may hold
// before further publishes to it are dropped.
const subscriberBuffer = 8

// EventType enumerates event categories.
type EventType string

const (
	EventNowPlaying     EventType = "now_playing"
	EventScheduleUpdate EventType = "schedule_update"

	// Show transition events
	EventShowStart EventType = "show.start"
	EventShowEnd   EventType = "show.end"
)

// TransitionEvents lists the events forwarded to external listeners.
var TransitionEvents = []EventType{EventShowStart, EventShowEnd, EventScheduleUpdate}

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Bus implements a simple in-process pubsub.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Subscriber
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Subscriber)}
}

// Subscribe registers a subscriber for event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, subscriberBuffer)
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], ch)
	b.mu.Unlock()
	return ch
}

// Publish sends payload to every subscriber without blocking. A subscriber
// whose buffer is full misses the event.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[eventType] {
		select {
		case sub <- payload:
		default:
			telemetry.EventsDroppedTotal.WithLabelValues(string(eventType)).Inc()
		}
	}
}

// Unsubscribe removes and closes the subscriber. Unknown subscribers are
// ignored.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[eventType]
	for i, candidate := range subs {
		if candidate == sub {
			b.subs[eventType] = append(subs[:i:i], subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Subscribers returns the number of subscribers for eventType.
func (b *Bus) Subscribers(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType])
}
