package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env, name string
		want      zerolog.Level
	}{
		{env: "development", want: zerolog.DebugLevel},
		{env: "production", want: zerolog.InfoLevel},
		{env: "production", name: "WARN", want: zerolog.WarnLevel},
		{env: "development", name: " error ", want: zerolog.ErrorLevel},
		{env: "production", name: "chatty", want: zerolog.InfoLevel},
	}

	for _, tc := range tests {
		if got := logLevel(tc.env, tc.name); got != tc.want {
			t.Fatalf("logLevel(%q, %q) = %s, want %s", tc.env, tc.name, got, tc.want)
		}
	}
}

func TestNewLoggerWritesServiceJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogOptions{Env: "production", Level: "warn", Service: "credits-cli", Out: &buf})

	logger.Info().Msg("dropped")
	logger.Warn().Str("uid", "u1").Msg("kept")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "credits-cli" || entry["message"] != "kept" || entry["uid"] != "u1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("entry missing timestamp: %v", entry)
	}
}

func TestNewLoggerDefaultsService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogOptions{Out: &buf})
	logger.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["service"] != "smart-studio" {
		t.Fatalf("service = %v", entry["service"])
	}
}
