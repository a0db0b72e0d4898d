package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"msg=analyzed", "frame_size=2"}},
		{"TEXT", []string{"msg=analyzed", "frame_size=2"}},
		{"json", []string{`"msg":"analyzed"`, `"frame_size":2`}},
		{"JSON", []string{`"msg":"analyzed"`, `"frame_size":2`}},
		{"other", []string{"msg=analyzed"}},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		NewLoggerWithWriter(slog.LevelInfo, tt.format, &buf).Info("analyzed", "frame_size", 2)
		for _, w := range tt.want {
			if !strings.Contains(buf.String(), w) {
				t.Errorf("format %q: expected %s in %q", tt.format, w, buf.String())
			}
		}
	}
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("INFO record passed a WARN logger: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("WARN record missing: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger accepts ERROR records")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCheckFormat(t *testing.T) {
	for _, ok := range []string{"text", "json", "JSON"} {
		if err := CheckFormat(ok); err != nil {
			t.Errorf("CheckFormat(%q) = %v", ok, err)
		}
	}
	if err := CheckFormat("xml"); err == nil {
		t.Error("CheckFormat(xml) = nil, want error")
	}
}
