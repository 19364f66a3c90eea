/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Occurrence is one concrete airing of a recurring show.
type Occurrence struct {
	Show   ShowDefinition
	Start  time.Time
	End    time.Time
	Weekly string
}

// WeeklyRule returns the RRULE describing show's weekly recurrence, e.g.
// "FREQ=WEEKLY;BYDAY=MO,FR".
func WeeklyRule(show ShowDefinition) (string, error) {
	sl, err := compile(&show, 0)
	if err != nil {
		return "", err
	}
	return sl.rule(), nil
}

func (s slot) rule() string {
	var byDay []string
	for d := time.Monday; ; d = (d + 1) % 7 {
		if s.days[d] {
			byDay = append(byDay, icalDays[d])
		}
		if d == time.Sunday {
			break
		}
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(byDay, ",")
}

// Occurrences expands the lineup into concrete airings that start within
// [from, to). Times are wall-clock in from's location. Malformed entries and
// shows without a positive window are skipped.
func Occurrences(shows Schedule, from, to time.Time) ([]Occurrence, error) {
	if !to.After(from) {
		return nil, nil
	}
	loc := from.Location()
	y, m, d := from.Date()
	anchor := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, -1)

	type indexed struct {
		Occurrence
		index int
	}
	var all []indexed

	for i := range shows {
		sl, err := compile(&shows[i], i)
		if err != nil || sl.end <= sl.start {
			continue
		}

		weekly := sl.rule()
		rr, err := rrule.StrToRRule(weekly)
		if err != nil {
			return nil, err
		}
		rr.DTStart(At(anchor, sl.start))

		duration := time.Duration(sl.end-sl.start) * time.Minute
		for _, start := range rr.Between(from, to, true) {
			if !start.Before(to) {
				continue
			}
			all = append(all, indexed{
				Occurrence: Occurrence{Show: *sl.show, Start: start, End: start.Add(duration), Weekly: weekly},
				index:      i,
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Start.Equal(all[j].Start) {
			return all[i].Start.Before(all[j].Start)
		}
		return all[i].index < all[j].index
	})

	out := make([]Occurrence, 0, len(all))
	for _, o := range all {
		out = append(out, o.Occurrence)
	}
	return out, nil
}
