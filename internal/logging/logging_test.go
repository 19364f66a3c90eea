package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSetupWithWriter_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("production", &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("component", "test").Msg("visible")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug line logged in production: %s", line)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	if entry["component"] != "test" || entry["message"] != "visible" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestSetupWithWriter_DevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("development", &buf)

	logger.Debug().Msg("resolver trace")
	if !strings.Contains(buf.String(), "resolver trace") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}
