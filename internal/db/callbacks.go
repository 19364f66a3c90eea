/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SICQR/hotmess/internal/telemetry"
)

const startTimeKey = "hotmess:start_time"

// RegisterCallbacks hooks query timing and error counting into every CRUD
// processor of db.
func RegisterCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		operation string
		register  func(before, after string) error
	}{
		{"query", func(b, a string) error {
			if err := cb.Query().Before("gorm:query").Register(b, beforeCallback); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register(a, afterCallback("query"))
		}},
		{"create", func(b, a string) error {
			if err := cb.Create().Before("gorm:create").Register(b, beforeCallback); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register(a, afterCallback("create"))
		}},
		{"update", func(b, a string) error {
			if err := cb.Update().Before("gorm:update").Register(b, beforeCallback); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register(a, afterCallback("update"))
		}},
		{"delete", func(b, a string) error {
			if err := cb.Delete().Before("gorm:delete").Register(b, beforeCallback); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register(a, afterCallback("delete"))
		}},
	}

	for _, h := range hooks {
		if err := h.register("telemetry:before_"+h.operation, "telemetry:after_"+h.operation); err != nil {
			return err
		}
	}
	return nil
}

func beforeCallback(db *gorm.DB) {
	db.InstanceSet(startTimeKey, time.Now())
}

func afterCallback(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		value, ok := db.InstanceGet(startTimeKey)
		if !ok {
			return
		}
		started, ok := value.(time.Time)
		if !ok {
			return
		}

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		telemetry.DatabaseQueryDuration.WithLabelValues(operation, table).Observe(time.Since(started).Seconds())

		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			telemetry.DatabaseErrorsTotal.WithLabelValues(operation, "query_error").Inc()
		}
	}
}

// UpdateConnectionMetrics updates connection pool metrics.
// Should be called periodically (e.g., every 30 seconds).
func UpdateConnectionMetrics(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	telemetry.DatabaseConnectionsActive.Set(float64(sqlDB.Stats().OpenConnections))
}
