/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SICQR/hotmess/internal/db"
	"github.com/SICQR/hotmess/internal/events"
	"github.com/SICQR/hotmess/internal/models"
	"github.com/SICQR/hotmess/internal/schedule"
)

// showRequest is the request body for creating or updating a show slot.
type showRequest struct {
	Title    string   `json:"title"`
	Host     string   `json:"host"`
	Days     []string `json:"days"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Position *int     `json:"position"`
	Active   *bool    `json:"active"`
}

func (req showRequest) definition() schedule.ShowDefinition {
	return schedule.ShowDefinition{
		Title: req.Title,
		Host:  req.Host,
		Days:  req.Days,
		Start: req.Start,
		End:   req.End,
	}
}

type issueResponse struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Error string `json:"error"`
}

// AddShowRoutes registers the lineup admin routes.
func (a *API) AddShowRoutes(r chi.Router) {
	r.Route("/shows", func(r chi.Router) {
		r.Get("/", a.handleShowsList)
		r.Post("/", a.handleShowsCreate)
		r.Put("/", a.handleShowsReplace)
		r.Route("/{showID}", func(r chi.Router) {
			r.Get("/", a.handleShowsGet)
			r.Put("/", a.handleShowsUpdate)
			r.Delete("/", a.handleShowsDelete)
		})
	})
}

// handleShowsList returns all slots. ?active=true hides inactive ones.
func (a *API) handleShowsList(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("active") != "true"

	slots, err := a.shows.List(r.Context(), includeInactive)
	if err != nil {
		a.logger.Error().Err(err).Msg("list shows failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"shows": slots})
}

func (a *API) handleShowsGet(w http.ResponseWriter, r *http.Request) {
	slot, err := a.shows.Get(r.Context(), chi.URLParam(r, "showID"))
	if errors.Is(err, db.ErrShowNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("get show failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (a *API) handleShowsCreate(w http.ResponseWriter, r *http.Request) {
	var req showRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !validShows(w, schedule.Schedule{req.definition()}) {
		return
	}

	slot := models.ShowSlotFromDefinition(req.definition(), 0)
	if req.Position != nil {
		slot.Position = *req.Position
	}
	if req.Active != nil {
		slot.Active = *req.Active
	}

	if err := a.shows.Create(r.Context(), &slot); err != nil {
		a.logger.Error().Err(err).Msg("create show failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.logger.Info().Str("show_id", slot.ID).Str("title", slot.Title).Msg("show created")
	a.lineupChanged(r, "create", events.Payload{"show_id": slot.ID})
	writeJSON(w, http.StatusCreated, slot)
}

func (a *API) handleShowsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "showID")

	var req showRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !validShows(w, schedule.Schedule{req.definition()}) {
		return
	}

	slot, err := a.shows.Get(r.Context(), id)
	if errors.Is(err, db.ErrShowNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("get show failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	edited := models.ShowSlotFromDefinition(req.definition(), slot.Position)
	slot.Title = edited.Title
	slot.Host = edited.Host
	slot.Days = edited.Days
	slot.Start = edited.Start
	slot.End = edited.End
	if req.Position != nil {
		slot.Position = *req.Position
	}
	if req.Active != nil {
		slot.Active = *req.Active
	}

	if err := a.shows.Update(r.Context(), slot); err != nil {
		if errors.Is(err, db.ErrShowNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		a.logger.Error().Err(err).Msg("update show failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.logger.Info().Str("show_id", slot.ID).Msg("show updated")
	a.lineupChanged(r, "update", events.Payload{"show_id": slot.ID})
	writeJSON(w, http.StatusOK, slot)
}

func (a *API) handleShowsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "showID")

	if err := a.shows.Delete(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrShowNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		a.logger.Error().Err(err).Msg("delete show failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.logger.Info().Str("show_id", id).Msg("show deleted")
	a.lineupChanged(r, "delete", events.Payload{"show_id": id})
	w.WriteHeader(http.StatusNoContent)
}

// handleShowsReplace swaps the whole lineup for the posted list, in order.
func (a *API) handleShowsReplace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Shows schedule.Schedule `json:"shows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if !validShows(w, req.Shows) {
		return
	}

	n, err := a.shows.ReplaceAll(r.Context(), req.Shows)
	if err != nil {
		a.logger.Error().Err(err).Msg("replace lineup failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.logger.Info().Int("count", n).Msg("lineup replaced")
	a.lineupChanged(r, "replace", events.Payload{"count": n})
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// validShows writes a 400 listing every problem and reports false when the
// entries would not all be resolvable.
func validShows(w http.ResponseWriter, shows schedule.Schedule) bool {
	issues := schedule.Validate(shows)
	if len(issues) == 0 {
		return true
	}
	out := make([]issueResponse, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issueResponse{Index: issue.Index, Title: issue.Title, Error: issue.Err.Error()})
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_show", "issues": out})
	return false
}
