/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/SICQR/hotmess/internal/api"
	"github.com/SICQR/hotmess/internal/cache"
	"github.com/SICQR/hotmess/internal/config"
	"github.com/SICQR/hotmess/internal/db"
	"github.com/SICQR/hotmess/internal/eventbus"
	"github.com/SICQR/hotmess/internal/events"
	"github.com/SICQR/hotmess/internal/leadership"
	"github.com/SICQR/hotmess/internal/nowplaying"
	"github.com/SICQR/hotmess/internal/schedule"
	"github.com/SICQR/hotmess/internal/source"
	"github.com/SICQR/hotmess/internal/telemetry"
	"github.com/SICQR/hotmess/internal/transitions"
	"github.com/SICQR/hotmess/internal/webhooks"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db         *gorm.DB
	cache      *cache.Cache
	api        *api.API
	bus        *events.Bus
	nowPlaying *nowplaying.Service
	watcher    *transitions.Watcher
	webhookSvc *webhooks.Service
	forwarder  *eventbus.Forwarder
	election   *leadership.Election

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("hotmess-radio-api"))
	router.Use(telemetry.MetricsMiddleware)
	// Skip timeout for WebSocket connections
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(30 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		_ = srv.Close()
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		// WebSocket handlers manage their own deadlines.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	var store *db.ShowStore
	if s.cfg.UsesDatabase() || s.cfg.AdminEnabled {
		database, err := db.Connect(s.cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		s.db = database
		s.DeferClose(func() error { return db.Close(database) })

		if err := db.Migrate(database); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		store = db.NewShowStore(database)
	}

	src, err := s.scheduleSource(store)
	if err != nil {
		return err
	}
	s.logger.Info().Str("source", src.Name()).Str("timezone", s.cfg.Location.String()).Msg("schedule source ready")

	var responseCache nowplaying.Cache
	if s.cfg.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		cacheCfg.NowNextTTL = s.cfg.CacheTTL

		c, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			return fmt.Errorf("create cache: %w", err)
		}
		s.cache = c
		s.DeferClose(c.Close)
		responseCache = c
	}

	s.nowPlaying = nowplaying.NewService(src, schedule.NewResolver(s.cfg.Location), responseCache, s.logger)

	var (
		adminStore  api.ShowStore
		invalidator api.CacheInvalidator
	)
	if s.cfg.AdminEnabled && store != nil {
		adminStore = store
	}
	if s.cache != nil {
		invalidator = s.cache
	}
	s.api = api.New(s.nowPlaying, adminStore, invalidator, s.bus, []byte(s.cfg.JWTSigningKey), s.cfg.StationName, s.logger)

	s.watcher = transitions.NewWatcher(s.nowPlaying, s.bus, s.cfg.TransitionInterval, s.logger)

	if s.cfg.LeaderElection {
		electionCfg := leadership.DefaultConfig()
		electionCfg.RedisAddr = s.cfg.RedisAddr
		electionCfg.RedisPassword = s.cfg.RedisPassword
		electionCfg.RedisDB = s.cfg.RedisDB
		election, err := leadership.NewElection(electionCfg, s.logger)
		if err != nil {
			return fmt.Errorf("leader election: %w", err)
		}
		s.election = election
		s.DeferClose(election.Stop)
		s.watcher.SetLeader(election)
		s.api.SetLeader(election)
	}

	if len(s.cfg.WebhookURLs) > 0 {
		s.webhookSvc = webhooks.NewService(webhooks.Config{
			URLs:    s.cfg.WebhookURLs,
			Secret:  s.cfg.WebhookSecret,
			Station: s.cfg.StationName,
		}, s.bus, s.logger)
	}

	publishers := s.eventPublishers()
	if len(publishers) > 0 {
		s.forwarder = eventbus.NewForwarder(s.bus, s.logger, publishers...)
		s.DeferClose(s.forwarder.Close)
	}

	return nil
}

// scheduleSource picks where the lineup is read from. A file wins over the
// content store; the bundled lineup backs the store and stands in when
// neither is configured.
func (s *Server) scheduleSource(store *db.ShowStore) (source.Source, error) {
	if s.cfg.ScheduleFile != "" {
		if s.cfg.AdminEnabled {
			return nil, fmt.Errorf("schedule file %s cannot be served while the admin API edits the database", s.cfg.ScheduleFile)
		}
		return source.NewFile(s.cfg.ScheduleFile), nil
	}

	builtin, err := source.Default()
	if err != nil {
		return nil, fmt.Errorf("load default lineup: %w", err)
	}
	if store != nil && s.cfg.UsesDatabase() {
		return source.NewFallback(source.NewStore(store), builtin, s.logger), nil
	}
	return builtin, nil
}

func (s *Server) eventPublishers() []eventbus.Publisher {
	var publishers []eventbus.Publisher

	if s.cfg.NATSURL != "" {
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = s.cfg.NATSURL
		natsCfg.Token = s.cfg.NATSToken
		p, err := eventbus.NewNATSPublisher(natsCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("NATS unavailable, transition events stay local")
		} else {
			publishers = append(publishers, p)
		}
	}

	if s.cfg.RedisEventsEnabled {
		redisCfg := eventbus.DefaultRedisConfig()
		redisCfg.Addr = s.cfg.RedisAddr
		redisCfg.Password = s.cfg.RedisPassword
		redisCfg.DB = s.cfg.RedisDB
		p, err := eventbus.NewRedisPublisher(redisCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Redis pub/sub unavailable, transition events stay local")
		} else {
			publishers = append(publishers, p)
		}
	}

	return publishers
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	if s.election != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.election.Run(ctx)
		}()
	}

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.watcher.Run(ctx)
	}()

	if s.webhookSvc != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.webhookSvc.Start(ctx)
		}()
	}

	if s.forwarder != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.forwarder.Run(ctx)
		}()
	}

	// Start database metrics updater
	if s.db != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					db.UpdateConnectionMetrics(s.db)
				}
			}
		}()
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Handle("/metrics", telemetry.Handler())
	s.api.Routes(s.router)
}
