/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	StationName string
	Timezone    string
	Location    *time.Location

	// Schedule sources. ScheduleFile wins over the database when both are set.
	// The admin API edits the database, so it rejects a ScheduleFile.
	ScheduleFile string
	DBBackend    DatabaseBackend
	DBDSN        string

	// Admin API
	AdminEnabled  bool
	JWTSigningKey string

	// Now/next response cache
	CacheEnabled  bool
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Show transition notifications
	TransitionInterval time.Duration
	WebhookURLs        []string
	WebhookSecret      string
	NATSURL            string
	NATSToken          string
	RedisEventsEnabled bool

	// LeaderElection limits transition announcements to one replica.
	LeaderElection bool

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnvAny([]string{"HOTMESS_ENV", "NODE_ENV"}, "development"),
		HTTPBind:    getEnvAny([]string{"HOTMESS_HTTP_BIND"}, "0.0.0.0"),
		HTTPPort:    getEnvIntAny([]string{"HOTMESS_HTTP_PORT", "PORT"}, 8080),
		StationName: getEnvAny([]string{"HOTMESS_STATION_NAME"}, "HOTMESS Radio"),
		Timezone:    getEnvAny([]string{"HOTMESS_TIMEZONE", "TZ"}, "Europe/London"),

		ScheduleFile: getEnvAny([]string{"HOTMESS_SCHEDULE_FILE"}, ""),
		DBBackend:    DatabaseBackend(getEnvAny([]string{"HOTMESS_DB_BACKEND"}, string(DatabaseSQLite))),
		DBDSN:        getEnvAny([]string{"HOTMESS_DB_DSN", "DATABASE_URL"}, ""),

		AdminEnabled:  getEnvBoolAny([]string{"HOTMESS_ADMIN_ENABLED"}, false),
		JWTSigningKey: getEnvAny([]string{"HOTMESS_JWT_SIGNING_KEY"}, ""),

		CacheEnabled:  getEnvBoolAny([]string{"HOTMESS_CACHE_ENABLED"}, false),
		CacheTTL:      time.Duration(getEnvIntAny([]string{"HOTMESS_CACHE_TTL_SECONDS"}, 60)) * time.Second,
		RedisAddr:     getEnvAny([]string{"HOTMESS_REDIS_ADDR", "REDIS_ADDR"}, "localhost:6379"),
		RedisPassword: getEnvAny([]string{"HOTMESS_REDIS_PASSWORD", "REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"HOTMESS_REDIS_DB"}, 0),

		TransitionInterval: time.Duration(getEnvIntAny([]string{"HOTMESS_TRANSITION_INTERVAL_SECONDS"}, 30)) * time.Second,
		WebhookURLs:        splitList(getEnvAny([]string{"HOTMESS_WEBHOOK_URLS"}, "")),
		WebhookSecret:      getEnvAny([]string{"HOTMESS_WEBHOOK_SECRET"}, ""),
		NATSURL:            getEnvAny([]string{"HOTMESS_NATS_URL", "NATS_URL"}, ""),
		NATSToken:          getEnvAny([]string{"HOTMESS_NATS_TOKEN"}, ""),
		RedisEventsEnabled: getEnvBoolAny([]string{"HOTMESS_REDIS_EVENTS_ENABLED"}, false),
		LeaderElection:     getEnvBoolAny([]string{"HOTMESS_LEADER_ELECTION_ENABLED"}, false),

		TracingEnabled:    getEnvBoolAny([]string{"HOTMESS_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"HOTMESS_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"HOTMESS_TRACING_SAMPLE_RATE"}, 1.0),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.AdminEnabled {
		if cfg.JWTSigningKey == "" {
			return nil, fmt.Errorf("HOTMESS_JWT_SIGNING_KEY must be provided when the admin API is enabled")
		}
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("HOTMESS_DB_DSN must be provided when the admin API is enabled")
		}
		if cfg.ScheduleFile != "" {
			return nil, fmt.Errorf("HOTMESS_SCHEDULE_FILE cannot be combined with the admin API: edits go to the database but the file would be served")
		}
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.TransitionInterval <= 0 {
		cfg.TransitionInterval = 30 * time.Second
	}

	if strings.EqualFold(cfg.Environment, "production") && len(cfg.WebhookURLs) > 0 && cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("HOTMESS_WEBHOOK_SECRET is required for webhooks in production")
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

// UsesDatabase reports whether shows are read from the content store.
func (c *Config) UsesDatabase() bool {
	return c.ScheduleFile == "" && c.DBDSN != ""
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"RADIO_TIMEZONE":      "use HOTMESS_TIMEZONE",
		"RADIO_SCHEDULE_FILE": "use HOTMESS_SCHEDULE_FILE",
		"JWT_SECRET":          "use HOTMESS_JWT_SIGNING_KEY",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
