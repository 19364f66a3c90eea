/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"sort"
	"time"
)

// Result is the outcome of a resolution. Current and Next are nil when
// nothing matches; that is a normal outcome, not an error.
type Result struct {
	Current *ShowDefinition
	Next    *ShowDefinition

	// CurrentEnd and NextStart are minutes since midnight, valid only when
	// the matching show is present.
	CurrentEnd int
	NextStart  int

	// Issues lists malformed entries that were skipped.
	Issues []EntryError
}

// Resolve finds the show on air at `at` and the next show starting later the
// same day. The weekday and minute of day are taken in at's location.
func Resolve(shows Schedule, at time.Time) Result {
	var res Result
	minute := at.Hour()*60 + at.Minute()
	day := at.Weekday()

	today := make([]slot, 0, len(shows))
	for i := range shows {
		sl, err := compile(&shows[i], i)
		if err != nil {
			res.Issues = append(res.Issues, EntryError{Index: i, Title: shows[i].Title, Err: err})
			continue
		}
		if sl.days[day] {
			today = append(today, sl)
		}
	}

	sort.SliceStable(today, func(i, j int) bool {
		return today[i].start < today[j].start
	})

	for _, sl := range today {
		if res.Current == nil && sl.contains(minute) {
			show := *sl.show
			res.Current = &show
			res.CurrentEnd = sl.end
		}
		if res.Next == nil && sl.start > minute {
			show := *sl.show
			res.Next = &show
			res.NextStart = sl.start
		}
		if res.Current != nil && res.Next != nil {
			break
		}
	}
	return res
}

// Day returns the valid shows airing on the given weekday, sorted by start.
// Entries whose end is not after their start can never be on air and are
// left out.
func Day(shows Schedule, day time.Weekday) Schedule {
	var today []slot
	for i := range shows {
		sl, err := compile(&shows[i], i)
		if err != nil || !sl.days[day] || sl.end <= sl.start {
			continue
		}
		today = append(today, sl)
	}
	sort.SliceStable(today, func(i, j int) bool {
		return today[i].start < today[j].start
	})
	out := make(Schedule, 0, len(today))
	for _, sl := range today {
		out = append(out, *sl.show)
	}
	return out
}

// Resolver binds resolution to a station time zone and a clock.
type Resolver struct {
	Location *time.Location
	Now      func() time.Time
}

// NewResolver returns a resolver for loc using the wall clock.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{Location: loc, Now: time.Now}
}

// Resolve converts at into the station zone before resolving.
func (r *Resolver) Resolve(shows Schedule, at time.Time) Result {
	return Resolve(shows, r.In(at))
}

// ResolveNow reads the clock once and resolves at that instant.
func (r *Resolver) ResolveNow(shows Schedule) (Result, time.Time) {
	at := r.In(r.Now())
	return Resolve(shows, at), at
}

// In converts t into the station zone.
func (r *Resolver) In(t time.Time) time.Time {
	if r.Location == nil {
		return t
	}
	return t.In(r.Location)
}

// At returns the instant on date's calendar day at the given minute offset,
// in date's location.
func At(date time.Time, minute int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, date.Location())
}
