/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule resolves which recurring radio show is on air and which
// one airs next.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry validation errors.
var (
	ErrEmptyTitle     = errors.New("title is empty")
	ErrNoDays         = errors.New("no days configured")
	ErrUnknownWeekday = errors.New("unknown weekday")
	ErrBadClock       = errors.New("time must be HH:MM")
	ErrEmptyWindow    = errors.New("end is not after start")
)

// ShowDefinition is a recurring weekly program slot.
type ShowDefinition struct {
	Title string   `json:"title" yaml:"title"`
	Host  string   `json:"host,omitempty" yaml:"host,omitempty"`
	Days  []string `json:"days" yaml:"days"`
	Start string   `json:"start" yaml:"start"` // HH:MM, station local time
	End   string   `json:"end" yaml:"end"`     // HH:MM, same day as Start
}

// Schedule is an ordered list of show definitions. Order breaks ties.
type Schedule []ShowDefinition

// EntryError reports a problem with a single schedule entry.
type EntryError struct {
	Index int
	Title string
	Err   error
}

func (e EntryError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("entry %d (%s): %v", e.Index, e.Title, e.Err)
}

func (e EntryError) Unwrap() error {
	return e.Err
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a weekday name ("Friday", "fri", "FRIDAY") to time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdayNames[name]; ok {
		return d, nil
	}
	if len(name) == 3 {
		for full, d := range weekdayNames {
			if strings.HasPrefix(full, name) {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}

// ParseClock converts an HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return h*60 + m, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// slot is a show that passed validation, with its parsed window.
type slot struct {
	show  *ShowDefinition
	index int
	days  [7]bool
	start int
	end   int
}

func (s slot) contains(minute int) bool {
	return s.start <= minute && minute < s.end
}

func compile(show *ShowDefinition, index int) (slot, error) {
	sl := slot{show: show, index: index}
	if strings.TrimSpace(show.Title) == "" {
		return sl, ErrEmptyTitle
	}
	if len(show.Days) == 0 {
		return sl, ErrNoDays
	}
	for _, name := range show.Days {
		d, err := ParseWeekday(name)
		if err != nil {
			return sl, err
		}
		sl.days[d] = true
	}
	var err error
	if sl.start, err = ParseClock(show.Start); err != nil {
		return sl, fmt.Errorf("start: %w", err)
	}
	if sl.end, err = ParseClock(show.End); err != nil {
		return sl, fmt.Errorf("end: %w", err)
	}
	return sl, nil
}

// Validate checks every entry and returns all problems found. Entries whose
// end is not after their start are reported with ErrEmptyWindow; they are
// still loaded by Resolve but can never be current.
func Validate(shows Schedule) []EntryError {
	var issues []EntryError
	for i := range shows {
		sl, err := compile(&shows[i], i)
		if err != nil {
			issues = append(issues, EntryError{Index: i, Title: shows[i].Title, Err: err})
			continue
		}
		if sl.end <= sl.start {
			issues = append(issues, EntryError{Index: i, Title: shows[i].Title, Err: ErrEmptyWindow})
		}
	}
	return issues
}
