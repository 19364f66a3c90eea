/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package source

import (
	"context"

	"github.com/SICQR/hotmess/internal/models"
	"github.com/SICQR/hotmess/internal/schedule"
)

// ShowLister is the part of the content store a Store source needs.
type ShowLister interface {
	List(ctx context.Context, includeInactive bool) ([]models.ShowSlot, error)
}

// Store reads active show slots from the content store in lineup order.
type Store struct {
	shows ShowLister
}

// NewStore returns a source backed by the content store.
func NewStore(shows ShowLister) *Store {
	return &Store{shows: shows}
}

func (s *Store) Name() string { return "store" }

func (s *Store) Load(ctx context.Context) (schedule.Schedule, error) {
	slots, err := s.shows.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make(schedule.Schedule, 0, len(slots))
	for i := range slots {
		out = append(out, slots[i].Definition())
	}
	return out, nil
}
