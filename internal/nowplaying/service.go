/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package nowplaying turns a schedule source into the public now/next
// response and the daily lineup.
package nowplaying

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SICQR/hotmess/internal/schedule"
	"github.com/SICQR/hotmess/internal/source"
	"github.com/SICQR/hotmess/internal/telemetry"
)

// Placeholder values served when the schedule cannot be loaded.
const (
	PlaceholderShow = "Live"
	PlaceholderHost = "HOTMESS"
)

// NowShow is the show on air.
type NowShow struct {
	Show   string  `json:"show"`
	Host   string  `json:"host"`
	EndsAt *string `json:"endsAt"`
}

// NextShow is the next show starting later the same day.
type NextShow struct {
	Show     string `json:"show"`
	Host     string `json:"host"`
	StartsAt string `json:"startsAt"`
}

// Response is the JSON body of the now/next endpoint.
type Response struct {
	Now       *NowShow  `json:"now"`
	Next      *NextShow `json:"next"`
	UpdatedAt string    `json:"updatedAt"`
}

// LineupShow is one entry of a day's lineup.
type LineupShow struct {
	Show     string `json:"show"`
	Host     string `json:"host"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}

// Lineup is the sorted list of shows airing on one day.
type Lineup struct {
	Day   string       `json:"day"`
	Date  string       `json:"date"`
	Shows []LineupShow `json:"shows"`
}

// Cache stores computed responses per minute. *cache.Cache satisfies it.
type Cache interface {
	GetNowNext(ctx context.Context, source string, at time.Time, dest any) bool
	SetNowNext(ctx context.Context, source string, at time.Time, value any) error
}

// Service resolves now/next against a schedule source.
type Service struct {
	source   source.Source
	resolver *schedule.Resolver
	cache    Cache
	logger   zerolog.Logger
}

// NewService creates the service. cache may be nil.
func NewService(src source.Source, resolver *schedule.Resolver, cache Cache, logger zerolog.Logger) *Service {
	return &Service{
		source:   src,
		resolver: resolver,
		cache:    cache,
		logger:   logger.With().Str("component", "nowplaying").Logger(),
	}
}

// Resolver returns the resolver bound to the station zone.
func (s *Service) Resolver() *schedule.Resolver {
	return s.resolver
}

// Source returns the schedule source.
func (s *Service) Source() source.Source {
	return s.source
}

// Now resolves at the resolver's current time.
func (s *Service) Now(ctx context.Context) Response {
	return s.NowNext(ctx, s.resolver.Now())
}

// NowNext returns the now/next response for at. A failing source yields the
// placeholder response instead of an error.
func (s *Service) NowNext(ctx context.Context, at time.Time) Response {
	at = s.resolver.In(at)
	name := s.source.Name()

	if s.cache != nil {
		var cached Response
		if s.cache.GetNowNext(ctx, name, at, &cached) {
			telemetry.ResolutionsTotal.WithLabelValues(name, "cached").Inc()
			return cached
		}
	}

	shows, origin, err := s.load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("source", name).Msg("schedule unavailable, serving placeholder")
		telemetry.ResolutionsTotal.WithLabelValues(name, "fallback").Inc()
		return Placeholder(at)
	}

	res := schedule.Resolve(shows, at)
	s.reportIssues(origin, res.Issues)

	resp := Build(res, at)
	if origin != name {
		// A backup lineup answered; keep it out of the cache so the
		// primary is asked again on the next request.
		telemetry.ResolutionsTotal.WithLabelValues(name, "secondary").Inc()
		return resp
	}
	telemetry.ResolutionsTotal.WithLabelValues(name, "resolved").Inc()

	if s.cache != nil {
		if err := s.cache.SetNowNext(ctx, name, at, resp); err != nil {
			s.logger.Debug().Err(err).Msg("failed to cache now/next response")
		}
	}
	return resp
}

// Lineup returns the shows airing on the calendar day containing date,
// in the station zone.
func (s *Service) Lineup(ctx context.Context, date time.Time) (Lineup, error) {
	date = s.resolver.In(date)
	shows, _, err := s.load(ctx)
	if err != nil {
		return Lineup{}, err
	}
	s.reportIssues(s.source.Name(), schedule.Validate(shows))

	day := schedule.Day(shows, date.Weekday())
	out := Lineup{
		Day:   date.Weekday().String(),
		Date:  date.Format("2006-01-02"),
		Shows: make([]LineupShow, 0, len(day)),
	}
	for _, show := range day {
		start, _ := schedule.ParseClock(show.Start)
		end, _ := schedule.ParseClock(show.End)
		out.Shows = append(out.Shows, LineupShow{
			Show:     show.Title,
			Host:     show.Host,
			StartsAt: schedule.At(date, start).Format(time.RFC3339),
			EndsAt:   schedule.At(date, end).Format(time.RFC3339),
		})
	}
	return out, nil
}

// Shows loads the raw schedule from the source.
func (s *Service) Shows(ctx context.Context) (schedule.Schedule, error) {
	shows, _, err := s.load(ctx)
	return shows, err
}

// load reads the schedule and reports which source answered.
func (s *Service) load(ctx context.Context) (schedule.Schedule, string, error) {
	name := s.source.Name()
	ctx, span := telemetry.StartSpan(ctx, "nowplaying", "schedule.load", attribute.String("schedule.source", name))

	start := time.Now()
	shows, origin, err := source.LoadOrigin(ctx, s.source)
	telemetry.SourceLoadDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	span.SetAttributes(
		attribute.Int("schedule.shows", len(shows)),
		attribute.String("schedule.origin", origin),
	)
	telemetry.EndSpan(span, err)
	return shows, origin, err
}

func (s *Service) reportIssues(name string, issues []schedule.EntryError) {
	if len(issues) == 0 {
		return
	}
	telemetry.ScheduleEntryIssuesTotal.WithLabelValues(name).Add(float64(len(issues)))
	for _, issue := range issues {
		s.logger.Warn().
			Str("source", name).
			Int("index", issue.Index).
			Str("title", issue.Title).
			Err(issue.Err).
			Msg("skipping schedule entry")
	}
}

// Build maps a resolution onto the response shape. Times are placed on at's
// calendar day.
func Build(res schedule.Result, at time.Time) Response {
	resp := Response{UpdatedAt: at.Format(time.RFC3339)}
	if res.Current != nil {
		ends := schedule.At(at, res.CurrentEnd).Format(time.RFC3339)
		resp.Now = &NowShow{Show: res.Current.Title, Host: res.Current.Host, EndsAt: &ends}
	}
	if res.Next != nil {
		resp.Next = &NextShow{
			Show:     res.Next.Title,
			Host:     res.Next.Host,
			StartsAt: schedule.At(at, res.NextStart).Format(time.RFC3339),
		}
	}
	return resp
}

// Placeholder is the response served when no schedule is available.
func Placeholder(at time.Time) Response {
	return Response{
		Now:       &NowShow{Show: PlaceholderShow, Host: PlaceholderHost},
		UpdatedAt: at.Format(time.RFC3339),
	}
}
