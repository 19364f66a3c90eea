package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/auth"
	"github.com/SICQR/hotmess/internal/config"
	"github.com/SICQR/hotmess/internal/nowplaying"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:        "test",
		HTTPBind:           "127.0.0.1",
		HTTPPort:           0,
		StationName:        "HOTMESS Radio",
		Timezone:           "UTC",
		Location:           time.UTC,
		DBBackend:          config.DatabaseSQLite,
		TransitionInterval: time.Hour,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := srv.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return srv
}

func TestServer_DefaultLineup(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	for _, path := range []string{"/healthz", "/metrics", "/api/radio/now-next", "/api/radio/schedule"} {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d body=%s", path, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Frame-Options") != "DENY" {
			t.Fatalf("%s: security headers missing", path)
		}
	}

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/radio/shows", nil))
	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("admin routes should not be mounted, got %d", rr.Code)
	}
}

func TestServer_ScheduleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineup.yaml")
	lineup := []byte(`shows:
  - title: All Day Mess
    host: HOTMESS
    days: [Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday]
    start: "00:00"
    end: "23:59"
`)
	if err := os.WriteFile(path, lineup, 0o644); err != nil {
		t.Fatalf("write lineup: %v", err)
	}

	cfg := testConfig(t)
	cfg.ScheduleFile = path
	srv := newTestServer(t, cfg)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/radio/now-next?at=2026-10-23T12:00:00Z", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp nowplaying.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Now.Show != "All Day Mess" {
		t.Fatalf("expected show from file, got %+v", resp.Now)
	}
}

func TestServer_AdminEditsReachNowNext(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminEnabled = true
	cfg.JWTSigningKey = "test-signing-key"
	cfg.DBDSN = filepath.Join(t.TempDir(), "hotmess.db")
	srv := newTestServer(t, cfg)

	token, err := auth.Issue([]byte(cfg.JWTSigningKey), auth.Claims{UserID: "ops", Roles: []string{auth.RoleRadioAdmin}}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	body, _ := json.Marshal(map[string]any{
		"title": "Late Lunch Mess",
		"host":  "HOTMESS Kitchen",
		"days":  []string{"Friday"},
		"start": "12:00",
		"end":   "14:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/radio/shows", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create show: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/radio/now-next?at=2026-10-23T12:30:00Z", nil))
	var resp nowplaying.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Now.Show != "Late Lunch Mess" {
		t.Fatalf("expected stored show on air, got %+v", resp.Now)
	}
}
