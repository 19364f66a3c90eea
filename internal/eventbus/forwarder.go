/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/events"
	"github.com/SICQR/hotmess/internal/telemetry"
)

// Publisher sends an encoded envelope to an external broker.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, eventType events.EventType, data []byte) error
	Close() error
}

// Forwarder copies transition events from the in-process bus to publishers.
type Forwarder struct {
	bus        *events.Bus
	publishers []Publisher
	nodeID     string
	logger     zerolog.Logger
}

// NewForwarder creates a forwarder for the given publishers.
func NewForwarder(bus *events.Bus, logger zerolog.Logger, publishers ...Publisher) *Forwarder {
	return &Forwarder{
		bus:        bus,
		publishers: publishers,
		nodeID:     NodeID(),
		logger:     logger.With().Str("component", "event_forwarder").Logger(),
	}
}

// Run forwards events until ctx is cancelled.
func (f *Forwarder) Run(ctx context.Context) {
	if len(f.publishers) == 0 {
		return
	}

	showStart := f.bus.Subscribe(events.EventShowStart)
	showEnd := f.bus.Subscribe(events.EventShowEnd)
	scheduleUpdate := f.bus.Subscribe(events.EventScheduleUpdate)
	defer func() {
		f.bus.Unsubscribe(events.EventShowStart, showStart)
		f.bus.Unsubscribe(events.EventShowEnd, showEnd)
		f.bus.Unsubscribe(events.EventScheduleUpdate, scheduleUpdate)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-showStart:
			f.Forward(ctx, events.EventShowStart, payload)
		case payload := <-showEnd:
			f.Forward(ctx, events.EventShowEnd, payload)
		case payload := <-scheduleUpdate:
			f.Forward(ctx, events.EventScheduleUpdate, payload)
		}
	}
}

// Forward encodes one event and hands it to every publisher.
func (f *Forwarder) Forward(ctx context.Context, eventType events.EventType, payload events.Payload) {
	data, err := marshalMessage(eventType, payload, f.nodeID)
	if err != nil {
		f.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to marshal event")
		return
	}
	for _, p := range f.publishers {
		if err := p.Publish(ctx, eventType, data); err != nil {
			telemetry.EventPublishTotal.WithLabelValues(p.Name(), "failure").Inc()
			f.logger.Warn().Err(err).Str("publisher", p.Name()).Str("event_type", string(eventType)).Msg("failed to publish event")
			continue
		}
		telemetry.EventPublishTotal.WithLabelValues(p.Name(), "success").Inc()
		f.logger.Debug().Str("publisher", p.Name()).Str("event_type", string(eventType)).Msg("published event")
	}
}

// Close closes every publisher.
func (f *Forwarder) Close() error {
	var firstErr error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
