/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package source loads the weekly show lineup from configuration or the
// content store. Sources are read on every call; nothing is cached here.
package source

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/schedule"
)

// Source provides the current schedule.
type Source interface {
	Load(ctx context.Context) (schedule.Schedule, error)
	Name() string
}

//go:embed defaults.yaml
var defaultLineup []byte

// Static serves a fixed schedule.
type Static struct {
	name  string
	shows schedule.Schedule
}

// NewStatic returns a source that always yields a copy of shows.
func NewStatic(name string, shows schedule.Schedule) *Static {
	return &Static{name: name, shows: shows}
}

// Default returns the built-in lineup shipped with the binary.
func Default() (*Static, error) {
	shows, err := Parse(defaultLineup)
	if err != nil {
		return nil, fmt.Errorf("parse built-in lineup: %w", err)
	}
	return NewStatic("default", shows), nil
}

func (s *Static) Name() string { return s.name }

func (s *Static) Load(context.Context) (schedule.Schedule, error) {
	out := make(schedule.Schedule, len(s.shows))
	copy(out, s.shows)
	return out, nil
}

// Fallback tries primary first and uses secondary when it fails.
type Fallback struct {
	primary   Source
	secondary Source
	logger    zerolog.Logger
}

// NewFallback chains two sources.
func NewFallback(primary, secondary Source, logger zerolog.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "schedule_source").Logger(),
	}
}

func (f *Fallback) Name() string { return f.primary.Name() }

func (f *Fallback) Load(ctx context.Context) (schedule.Schedule, error) {
	shows, _, err := f.loadOrigin(ctx)
	return shows, err
}

func (f *Fallback) loadOrigin(ctx context.Context) (schedule.Schedule, string, error) {
	shows, err := f.primary.Load(ctx)
	if err == nil {
		return shows, f.primary.Name(), nil
	}
	f.logger.Warn().Err(err).
		Str("primary", f.primary.Name()).
		Str("secondary", f.secondary.Name()).
		Msg("schedule source failed, using fallback")
	shows, err = f.secondary.Load(ctx)
	return shows, f.secondary.Name(), err
}

// LoadOrigin loads src and reports the name of the source that answered.
// For a Fallback that is the secondary's name when the primary failed.
func LoadOrigin(ctx context.Context, src Source) (schedule.Schedule, string, error) {
	if f, ok := src.(*Fallback); ok {
		return f.loadOrigin(ctx)
	}
	shows, err := src.Load(ctx)
	return shows, src.Name(), err
}
