/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SICQR/hotmess/internal/models"
	"github.com/SICQR/hotmess/internal/schedule"
)

// ErrShowNotFound is returned when a show slot does not exist.
var ErrShowNotFound = errors.New("show not found")

// ShowStore persists the weekly lineup.
type ShowStore struct {
	db *gorm.DB
}

// NewShowStore wraps db.
func NewShowStore(db *gorm.DB) *ShowStore {
	return &ShowStore{db: db}
}

// List returns every slot in lineup order. Inactive slots are included only
// when includeInactive is set.
func (s *ShowStore) List(ctx context.Context, includeInactive bool) ([]models.ShowSlot, error) {
	q := s.db.WithContext(ctx).Order("position ASC").Order("created_at ASC").Order("id ASC")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var slots []models.ShowSlot
	if err := q.Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	return slots, nil
}

// Get loads a single slot.
func (s *ShowStore) Get(ctx context.Context, id string) (*models.ShowSlot, error) {
	var slot models.ShowSlot
	err := s.db.WithContext(ctx).First(&slot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	return &slot, nil
}

// Create inserts a slot.
func (s *ShowStore) Create(ctx context.Context, slot *models.ShowSlot) error {
	if err := s.db.WithContext(ctx).Create(slot).Error; err != nil {
		return fmt.Errorf("create show: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an existing slot.
func (s *ShowStore) Update(ctx context.Context, slot *models.ShowSlot) error {
	res := s.db.WithContext(ctx).Model(&models.ShowSlot{}).Where("id = ?", slot.ID).
		Select("title", "host", "days", "start_time", "end_time", "position", "active").
		Updates(slot)
	if res.Error != nil {
		return fmt.Errorf("update show: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrShowNotFound
	}
	return nil
}

// Delete removes a slot.
func (s *ShowStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.ShowSlot{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete show: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrShowNotFound
	}
	return nil
}

// ReplaceAll swaps the whole lineup for shows in one transaction, keeping
// their order as positions.
func (s *ShowStore) ReplaceAll(ctx context.Context, shows schedule.Schedule) (int, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ShowSlot{}).Error; err != nil {
			return err
		}
		if len(shows) == 0 {
			return nil
		}
		slots := make([]models.ShowSlot, 0, len(shows))
		for i, def := range shows {
			slots = append(slots, models.ShowSlotFromDefinition(def, i))
		}
		return tx.Create(&slots).Error
	})
	if err != nil {
		return 0, fmt.Errorf("replace lineup: %w", err)
	}
	return len(shows), nil
}
