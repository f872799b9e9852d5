package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		wantJSON bool
	}{
		{"json", FormatJSON, true},
		{"text", FormatText, false},
		{"unknown defaults to text", Format("xml"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: slog.LevelInfo, Format: tt.format, Output: &buf})
			logger.Info("copy planned", "resources", 3)

			var parsed map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &parsed) == nil
			if isJSON != tt.wantJSON {
				t.Errorf("json output = %v, want %v: %q", isJSON, tt.wantJSON, buf.String())
			}
			if !strings.Contains(buf.String(), "copy planned") {
				t.Errorf("output missing message: %q", buf.String())
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn not logged at warn level: %q", buf.String())
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      slog.Level
	}{
		{-1, slog.LevelWarn},
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{3, LevelTrace},
		{7, LevelTrace},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := NewDiscard()
	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext() did not return the stored logger")
	}
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext() without a logger should return slog.Default()")
	}
}

func TestForTest(t *testing.T) {
	logger := ForTest(t)
	logger.Log(context.Background(), LevelTrace, "trace from test logger")
	logger.Info("info from test logger", "test", t.Name())
}

func TestTestWriter_TrimsNewline(t *testing.T) {
	tw := &testWriter{t: t}
	n, err := tw.Write([]byte("line\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Write() n = %d, want 5", n)
	}
}

func TestMaskEnv(t *testing.T) {
	env := map[string]string{
		"GITHUB_TOKEN": "${GITHUB_TOKEN}",
		"DB_PASSWORD":  "hunter2hunter2",
		"REGION":       "eu-west-1",
		"OTHER":        "ghp_abcdefgh",
	}
	got := MaskEnv(env)

	if got["GITHUB_TOKEN"] != "${GITHUB_TOKEN}" {
		t.Errorf("placeholder masked: %q", got["GITHUB_TOKEN"])
	}
	if got["DB_PASSWORD"] != "****ter2" {
		t.Errorf("DB_PASSWORD = %q, want %q", got["DB_PASSWORD"], "****ter2")
	}
	if got["REGION"] != "eu-west-1" {
		t.Errorf("REGION = %q, want unchanged", got["REGION"])
	}
	if got["OTHER"] != "****efgh" {
		t.Errorf("OTHER = %q, want %q", got["OTHER"], "****efgh")
	}
	if env["DB_PASSWORD"] != "hunter2hunter2" {
		t.Error("MaskEnv mutated its input")
	}
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"${TOKEN}", true},
		{"$TOKEN", true},
		{"Bearer ${TOKEN}", false},
		{"${A}${B}", false},
		{"$", false},
		{"plain", false},
	}
	for _, tt := range tests {
		if got := IsPlaceholder(tt.in); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
