/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package transitions watches the schedule and announces when a show starts
// or ends.
package transitions

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/events"
	"github.com/SICQR/hotmess/internal/nowplaying"
	"github.com/SICQR/hotmess/internal/schedule"
	"github.com/SICQR/hotmess/internal/telemetry"
)

// DefaultInterval is how often the schedule is checked.
const DefaultInterval = 30 * time.Second

// ScheduleReader provides the lineup and the station clock.
type ScheduleReader interface {
	Shows(ctx context.Context) (schedule.Schedule, error)
	Resolver() *schedule.Resolver
}

// Leader reports whether this instance should announce transitions.
// *leadership.Election satisfies it.
type Leader interface {
	IsLeader() bool
}

// Watcher publishes show.start and show.end events on the bus whenever the
// show on air changes.
type Watcher struct {
	reader   ScheduleReader
	bus      *events.Bus
	interval time.Duration
	leader   Leader
	logger   zerolog.Logger

	mu      sync.Mutex
	primed  bool
	current *nowplaying.LineupShow
}

// NewWatcher creates a watcher. A non-positive interval uses DefaultInterval.
func NewWatcher(reader ScheduleReader, bus *events.Bus, interval time.Duration, logger zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		reader:   reader,
		bus:      bus,
		interval: interval,
		logger:   logger.With().Str("component", "transitions").Logger(),
	}
}

// SetLeader gates publishing on leadership. Followers keep tracking what is
// on air so a takeover does not replay a transition. Call before Run.
func (w *Watcher) SetLeader(l Leader) {
	w.leader = l
}

// Run checks the schedule on every tick until ctx is cancelled. The first
// check only records what is on air so a restart does not announce a show
// that is already running.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("transition watcher started")

	w.Check(ctx, w.reader.Resolver().Now())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("transition watcher stopping")
			return
		case <-ticker.C:
			w.Check(ctx, w.reader.Resolver().Now())
		}
	}
}

// Check resolves the schedule at `at` and publishes any transition since the
// previous check. Source errors leave the recorded state untouched.
func (w *Watcher) Check(ctx context.Context, at time.Time) {
	shows, err := w.reader.Shows(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("schedule unavailable for transition check")
		return
	}

	at = w.reader.Resolver().In(at)
	res := schedule.Resolve(shows, at)
	current := onAir(res, at)

	w.mu.Lock()
	previous := w.current
	primed := w.primed
	w.current = current
	w.primed = true
	w.mu.Unlock()

	if !primed || sameShow(previous, current) {
		return
	}
	if w.leader != nil && !w.leader.IsLeader() {
		w.logger.Debug().Msg("transition observed, not leader")
		return
	}

	next := upcoming(res, at)
	if previous != nil {
		w.publish(events.EventShowEnd, at, previous, current)
	}
	if current != nil {
		w.publish(events.EventShowStart, at, current, next)
	}
}

// Current returns the show recorded as on air by the last check.
func (w *Watcher) Current() *nowplaying.LineupShow {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	show := *w.current
	return &show
}

func (w *Watcher) publish(event events.EventType, at time.Time, show, next *nowplaying.LineupShow) {
	payload := events.Payload{
		"event": string(event),
		"at":    at.Format(time.RFC3339),
		"show":  *show,
	}
	if next != nil {
		payload["next"] = *next
	}

	telemetry.ShowTransitionsTotal.WithLabelValues(string(event)).Inc()
	w.logger.Info().Str("event", string(event)).Str("show", show.Show).Msg("show transition")
	w.bus.Publish(event, payload)
}

func onAir(res schedule.Result, at time.Time) *nowplaying.LineupShow {
	if res.Current == nil {
		return nil
	}
	start, _ := schedule.ParseClock(res.Current.Start)
	return &nowplaying.LineupShow{
		Show:     res.Current.Title,
		Host:     res.Current.Host,
		StartsAt: schedule.At(at, start).Format(time.RFC3339),
		EndsAt:   schedule.At(at, res.CurrentEnd).Format(time.RFC3339),
	}
}

func upcoming(res schedule.Result, at time.Time) *nowplaying.LineupShow {
	if res.Next == nil {
		return nil
	}
	end, _ := schedule.ParseClock(res.Next.End)
	return &nowplaying.LineupShow{
		Show:     res.Next.Title,
		Host:     res.Next.Host,
		StartsAt: schedule.At(at, res.NextStart).Format(time.RFC3339),
		EndsAt:   schedule.At(at, end).Format(time.RFC3339),
	}
}

// sameShow compares by title and start so back-to-back episodes of the same
// show on different days still count as a transition.
func sameShow(a, b *nowplaying.LineupShow) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Show == b.Show && a.StartsAt == b.StartsAt
}
