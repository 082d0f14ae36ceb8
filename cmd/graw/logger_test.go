package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlogBridge(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(logOptions{Level: "debug", Format: "json", Writer: &buf})
	logger := newSlogLogger(log).With("request_id", "r1").WithGroup("http")

	logger.Debug("reddit response",
		"status", 200,
		"duration", 1500*time.Millisecond,
		"authenticated", true,
		"error", errors.New("boom"),
	)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}

	want := map[string]any{
		"level":              "debug",
		"message":            "reddit response",
		"request_id":         "r1",
		"http.status":        float64(200),
		"http.authenticated": true,
		"http.error":         "boom",
		"component":          "graw",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["http.duration"]; !ok {
		t.Error("duration field missing")
	}
}

func TestSlogBridge_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newSlogLogger(newLogger(logOptions{Level: "warn", Format: "json", Writer: &buf}))

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug/info written at warn level: %s", buf.String())
	}

	logger.Error("shown", slog.Int("n", 1))
	if !bytes.Contains(buf.Bytes(), []byte(`"shown"`)) {
		t.Errorf("error not written: %s", buf.String())
	}
}
