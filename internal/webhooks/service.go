/*
Copyright (C) 2026 SICQR

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package webhooks delivers show transition events to configured HTTP
// endpoints.
package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/events"
	"github.com/SICQR/hotmess/internal/telemetry"
	"github.com/SICQR/hotmess/internal/version"
)

// Header names set on every delivery.
const (
	HeaderEvent     = "X-Hotmess-Event"
	HeaderDelivery  = "X-Hotmess-Delivery"
	HeaderTimestamp = "X-Hotmess-Timestamp"
	HeaderSignature = "X-Hotmess-Signature"
)

// Payload is the body sent to webhook endpoints.
type Payload struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Station   string    `json:"station"`
	Data      any       `json:"data"`
}

// Config controls delivery.
type Config struct {
	URLs    []string
	Secret  string
	Station string
	Timeout time.Duration
}

// Service handles webhook delivery.
type Service struct {
	cfg    Config
	bus    *events.Bus
	logger zerolog.Logger
	client *http.Client
}

// NewService creates a new webhook service.
func NewService(cfg Config, bus *events.Bus, logger zerolog.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Service{
		cfg:    cfg,
		bus:    bus,
		logger: logger.With().Str("component", "webhooks").Logger(),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Start listens for transition events until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if len(s.cfg.URLs) == 0 {
		s.logger.Debug().Msg("no webhook targets configured")
		return
	}
	s.logger.Info().Int("targets", len(s.cfg.URLs)).Msg("webhook service starting")

	showStart := s.bus.Subscribe(events.EventShowStart)
	showEnd := s.bus.Subscribe(events.EventShowEnd)

	defer func() {
		s.bus.Unsubscribe(events.EventShowStart, showStart)
		s.bus.Unsubscribe(events.EventShowEnd, showEnd)
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("webhook service stopping")
			return

		case payload, ok := <-showStart:
			if !ok {
				return
			}
			s.Deliver(ctx, events.EventShowStart, payload)

		case payload, ok := <-showEnd:
			if !ok {
				return
			}
			s.Deliver(ctx, events.EventShowEnd, payload)
		}
	}
}

// Deliver posts the event to every target and waits for all attempts.
func (s *Service) Deliver(ctx context.Context, event events.EventType, data events.Payload) {
	body, err := json.Marshal(Payload{
		Event:     string(event),
		Timestamp: time.Now().UTC(),
		Station:   s.cfg.Station,
		Data:      data,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("event", string(event)).Msg("failed to marshal webhook payload")
		return
	}

	var wg sync.WaitGroup
	for _, url := range s.cfg.URLs {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			if err := s.send(ctx, url, string(event), body); err != nil {
				telemetry.WebhookDeliveriesTotal.WithLabelValues("failure").Inc()
				s.logger.Warn().Err(err).Str("url", url).Str("event", string(event)).Msg("webhook delivery failed")
				return
			}
			telemetry.WebhookDeliveriesTotal.WithLabelValues("success").Inc()
			s.logger.Debug().Str("url", url).Str("event", string(event)).Msg("webhook delivered")
		}(url)
	}
	wg.Wait()
}

func (s *Service) send(ctx context.Context, url, event string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Hotmess-Radio-Webhook/"+version.Version)
	req.Header.Set(HeaderEvent, event)
	req.Header.Set(HeaderDelivery, uuid.NewString())
	req.Header.Set(HeaderTimestamp, fmt.Sprintf("%d", time.Now().Unix()))

	if s.cfg.Secret != "" {
		req.Header.Set(HeaderSignature, Sign(body, s.cfg.Secret))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign creates the HMAC-SHA256 signature header value for body.
func Sign(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}
