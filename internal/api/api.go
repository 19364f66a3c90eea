/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the radio now/next, lineup and admin endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/auth"
	"github.com/SICQR/hotmess/internal/events"
	"github.com/SICQR/hotmess/internal/models"
	"github.com/SICQR/hotmess/internal/nowplaying"
	"github.com/SICQR/hotmess/internal/schedule"
)

// ShowStore is the content store used by the admin endpoints.
type ShowStore interface {
	List(ctx context.Context, includeInactive bool) ([]models.ShowSlot, error)
	Get(ctx context.Context, id string) (*models.ShowSlot, error)
	Create(ctx context.Context, slot *models.ShowSlot) error
	Update(ctx context.Context, slot *models.ShowSlot) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, shows schedule.Schedule) (int, error)
}

// CacheInvalidator drops cached now/next responses after lineup edits.
type CacheInvalidator interface {
	InvalidateNowNext(ctx context.Context) error
}

// LeaderStatus reports this instance's standing in leader election.
type LeaderStatus interface {
	InstanceID() string
	IsLeader() bool
	GetLeader(ctx context.Context) (string, error)
}

// API exposes HTTP handlers.
type API struct {
	nowPlaying  *nowplaying.Service
	shows       ShowStore
	cache       CacheInvalidator
	bus         *events.Bus
	leader      LeaderStatus
	jwtSecret   []byte
	stationName string
	logger      zerolog.Logger
}

// New creates the API router wrapper. shows and cache may be nil; without a
// store the admin routes are not mounted.
func New(nowPlaying *nowplaying.Service, shows ShowStore, cache CacheInvalidator, bus *events.Bus, jwtSecret []byte, stationName string, logger zerolog.Logger) *API {
	return &API{
		nowPlaying:  nowPlaying,
		shows:       shows,
		cache:       cache,
		bus:         bus,
		jwtSecret:   jwtSecret,
		stationName: stationName,
		logger:      logger.With().Str("component", "api").Logger(),
	}
}

// SetLeader adds leader election state to the health report.
func (a *API) SetLeader(leader LeaderStatus) {
	a.leader = leader
}

// Routes mounts API routes on provided router.
func (a *API) Routes(r chi.Router) {
	r.Get("/healthz", a.handleHealth)

	r.Route("/api/radio", func(r chi.Router) {
		r.Get("/now-next", a.handleNowNext)
		r.Get("/schedule", a.handleSchedule)
		r.Get("/schedule/week", a.handleScheduleWeek)
		r.Get("/schedule.ics", a.handleScheduleICal)
		r.Get("/events", a.handleEvents)

		if a.shows == nil {
			return
		}
		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware())
			pr.Use(a.requireRoles(auth.RoleRadioAdmin))
			a.AddShowRoutes(pr)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"source": a.nowPlaying.Source().Name(),
	}

	if a.bus != nil {
		subscribers := make(map[string]int, len(events.TransitionEvents))
		for _, eventType := range events.TransitionEvents {
			subscribers[string(eventType)] = a.bus.Subscribers(eventType)
		}
		resp["subscribers"] = subscribers
	}

	if a.leader != nil {
		leader := map[string]any{
			"instance_id": a.leader.InstanceID(),
			"is_leader":   a.leader.IsLeader(),
		}
		current, err := a.leader.GetLeader(r.Context())
		if err != nil {
			a.logger.Warn().Err(err).Msg("failed to read current leader")
		} else {
			leader["current"] = current
		}
		resp["leader"] = leader
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) authMiddleware() func(http.Handler) http.Handler {
	return auth.Middleware(a.jwtSecret)
}

func (a *API) requireRoles(allowed ...string) func(http.Handler) http.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, role := range claims.Roles {
				if _, exists := allowedSet[role]; exists {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient_role")
		})
	}
}

// lineupChanged drops cached responses and tells listeners the lineup moved.
func (a *API) lineupChanged(r *http.Request, action string, data events.Payload) {
	if a.cache != nil {
		if err := a.cache.InvalidateNowNext(r.Context()); err != nil {
			a.logger.Warn().Err(err).Msg("failed to invalidate now/next cache")
		}
	}

	payload := events.Payload{"action": action}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		payload["user_id"] = claims.UserID
	}
	for k, v := range data {
		payload[k] = v
	}
	a.bus.Publish(events.EventScheduleUpdate, payload)
}

func parseEventTypes(raw string) []events.EventType {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]events.EventType, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		out = append(out, events.EventType(part))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
