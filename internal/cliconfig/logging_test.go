package cliconfig

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	logger, err := NewLogger(&buf, cfg)
	if err != nil {
		t.Fatalf("NewLogger() unexpected error: %v", err)
	}

	logger.Info().Msg("hidden")
	logger.Warn().Str("addr", ":2345").Msg("shown")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "shown" || entry["addr"] != ":2345" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if _, err := NewLogger(&bytes.Buffer{}, cfg); err == nil {
		t.Error("NewLogger() expected error for unknown level")
	}
}
