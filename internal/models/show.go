/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SICQR/hotmess/internal/schedule"
)

// ShowSlot is a recurring weekly radio slot as stored in the content store.
type ShowSlot struct {
	ID       string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title    string   `gorm:"type:varchar(255);not null" json:"title"`
	Host     string   `gorm:"type:varchar(255)" json:"host,omitempty"`
	Days     []string `gorm:"type:text;serializer:json" json:"days"`
	Start    string   `gorm:"column:start_time;type:varchar(5);not null" json:"start"` // HH:MM
	End      string   `gorm:"column:end_time;type:varchar(5);not null" json:"end"`     // HH:MM
	Position int      `gorm:"not null;default:0;index:idx_show_slots_order" json:"position"`
	Active   bool     `gorm:"not null" json:"active"`

	CreatedAt time.Time `gorm:"index:idx_show_slots_order" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (ShowSlot) TableName() string {
	return "show_slots"
}

// BeforeCreate assigns an ID when none is set.
func (s *ShowSlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Definition converts the row into the resolver's input shape.
func (s *ShowSlot) Definition() schedule.ShowDefinition {
	days := make([]string, len(s.Days))
	copy(days, s.Days)
	return schedule.ShowDefinition{
		Title: s.Title,
		Host:  s.Host,
		Days:  days,
		Start: s.Start,
		End:   s.End,
	}
}

// ShowSlotFromDefinition builds a row from a resolver definition. Valid
// clock values are stored zero-padded ("9:05" becomes "09:05").
func ShowSlotFromDefinition(def schedule.ShowDefinition, position int) ShowSlot {
	days := make([]string, len(def.Days))
	copy(days, def.Days)
	return ShowSlot{
		Title:    def.Title,
		Host:     def.Host,
		Days:     days,
		Start:    canonicalClock(def.Start),
		End:      canonicalClock(def.End),
		Position: position,
		Active:   true,
	}
}

func canonicalClock(s string) string {
	minutes, err := schedule.ParseClock(s)
	if err != nil {
		return s
	}
	return schedule.FormatClock(minutes)
}
