/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SICQR/hotmess/internal/schedule"
)

const maxWeekDays = 14

type occurrenceResponse struct {
	Show     string `json:"show"`
	Host     string `json:"host"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
	RRule    string `json:"rrule"`
}

// handleNowNext serves { now, next, updatedAt }. ?at=RFC3339 resolves at a
// fixed instant instead of the clock.
func (a *API) handleNowNext(w http.ResponseWriter, r *http.Request) {
	at := a.nowPlaying.Resolver().Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_at")
			return
		}
		at = parsed
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	writeJSON(w, http.StatusOK, a.nowPlaying.NowNext(r.Context(), at))
}

// handleSchedule serves the lineup for ?date=YYYY-MM-DD or ?day=<weekday>
// (the next such day, today included). Defaults to today.
func (a *API) handleSchedule(w http.ResponseWriter, r *http.Request) {
	date, ok := a.requestDate(w, r)
	if !ok {
		return
	}

	lineup, err := a.nowPlaying.Lineup(r.Context(), date)
	if err != nil {
		a.logger.Error().Err(err).Msg("load lineup failed")
		writeError(w, http.StatusServiceUnavailable, "schedule_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, lineup)
}

// handleScheduleWeek lists concrete airings from ?from=YYYY-MM-DD (default
// today) for ?days=N days (default 7).
func (a *API) handleScheduleWeek(w http.ResponseWriter, r *http.Request) {
	resolver := a.nowPlaying.Resolver()
	today := resolver.In(resolver.Now())
	from := schedule.At(today, 0)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, resolver.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from")
			return
		}
		from = parsed
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxWeekDays {
			writeError(w, http.StatusBadRequest, "invalid_days")
			return
		}
		days = n
	}

	shows, err := a.nowPlaying.Shows(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("load lineup failed")
		writeError(w, http.StatusServiceUnavailable, "schedule_unavailable")
		return
	}

	to := from.AddDate(0, 0, days)
	occurrences, err := schedule.Occurrences(shows, from, to)
	if err != nil {
		a.logger.Error().Err(err).Msg("expand lineup failed")
		writeError(w, http.StatusInternalServerError, "expand_failed")
		return
	}

	out := make([]occurrenceResponse, 0, len(occurrences))
	for _, o := range occurrences {
		out = append(out, occurrenceResponse{
			Show:     o.Show.Title,
			Host:     o.Show.Host,
			StartsAt: o.Start.Format(time.RFC3339),
			EndsAt:   o.End.Format(time.RFC3339),
			RRule:    o.Weekly,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"shows": out,
	})
}

// handleScheduleICal exports the weekly lineup as an iCalendar feed.
func (a *API) handleScheduleICal(w http.ResponseWriter, r *http.Request) {
	shows, err := a.nowPlaying.Shows(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("load lineup failed")
		writeError(w, http.StatusServiceUnavailable, "schedule_unavailable")
		return
	}

	resolver := a.nowPlaying.Resolver()
	today := resolver.In(resolver.Now())
	weekOf := today.AddDate(0, 0, -int((today.Weekday()+6)%7))

	result := schedule.ExportICal(a.stationName, shows, weekOf)
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (a *API) requestDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	resolver := a.nowPlaying.Resolver()
	today := resolver.In(resolver.Now())

	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, resolver.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return time.Time{}, false
		}
		return parsed, true
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("day")); raw != "" {
		day, err := schedule.ParseWeekday(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_day")
			return time.Time{}, false
		}
		ahead := (int(day) - int(today.Weekday()) + 7) % 7
		return today.AddDate(0, 0, ahead), true
	}

	return today, true
}
