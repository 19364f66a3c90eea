/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotmess_api_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_api_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hotmess_api_active_connections",
		Help: "In-flight HTTP requests.",
	})

	APIWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hotmess_api_websocket_connections",
		Help: "Open event websocket connections.",
	})

	// Schedule resolution

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_schedule_resolutions_total",
		Help: "Now/next resolutions by schedule source and outcome (resolved, cached, secondary, fallback).",
	}, []string{"source", "outcome"})

	ScheduleEntryIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_schedule_entry_issues_total",
		Help: "Malformed schedule entries skipped during resolution.",
	}, []string{"source"})

	SourceLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotmess_schedule_source_load_seconds",
		Help:    "Time spent loading the schedule from its source.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"source"})

	// Cache

	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_cache_requests_total",
		Help: "Now/next cache lookups by result (hit, miss).",
	}, []string{"result"})

	// Database

	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hotmess_database_query_duration_seconds",
		Help:    "Database operation latency by operation and table.",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_database_errors_total",
		Help: "Database errors by operation and kind.",
	}, []string{"operation", "kind"})

	DatabaseConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hotmess_database_connections_active",
		Help: "Open database connections.",
	})

	// Transitions

	ShowTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_show_transitions_total",
		Help: "Show start/end transitions detected.",
	}, []string{"event"})

	WebhookDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_webhook_deliveries_total",
		Help: "Webhook deliveries by result (success, failure).",
	}, []string{"result"})

	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_events_dropped_total",
		Help: "In-process events dropped because a subscriber was not keeping up.",
	}, []string{"event"})

	EventPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_event_publish_total",
		Help: "Transition events mirrored to external brokers by publisher and result.",
	}, []string{"publisher", "result"})

	// Leader election

	LeaderElectionStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hotmess_leader_election_status",
		Help: "1 when this instance holds the transition announcer lease.",
	}, []string{"instance_id"})

	LeaderElectionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotmess_leader_election_changes_total",
		Help: "Leadership acquisitions and losses.",
	}, []string{"instance_id", "change"})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
