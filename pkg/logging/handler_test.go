package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sethvargo/go-githubactions"
)

func newTestLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	action := githubactions.New(githubactions.WithWriter(&buf))
	return New(action, level), &buf
}

func TestHandlerLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func(l *slog.Logger)
		want string
	}{
		{"info", func(l *slog.Logger) { l.Info("found tasks", "count", 2) }, "found tasks count=2\n"},
		{"warn", func(l *slog.Logger) { l.Warn("skipping") }, "::warning::skipping\n"},
		{"error", func(l *slog.Logger) { l.Error("Asana section Done not found.") }, "::error::Asana section Done not found.\n"},
		{"debug", func(l *slog.Logger) { l.Debug("payload", "sha", "abc") }, "::debug::payload sha=abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger(slog.LevelDebug)
			tt.log(logger)
			if got := buf.String(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHandlerDropsBelowLevel(t *testing.T) {
	logger, buf := newTestLogger(slog.LevelInfo)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestHandlerAttrsAndGroups(t *testing.T) {
	logger, buf := newTestLogger(slog.LevelInfo)
	logger.With("action", "move-section").WithGroup("target").Info("moved", "project", "Eng")
	if got := buf.String(); !strings.Contains(got, "moved action=move-section target.project=Eng") {
		t.Errorf("unexpected output %q", got)
	}
}

func TestLevelFromEnv(t *testing.T) {
	env := map[string]string{"RUNNER_DEBUG": "1"}
	if got := LevelFromEnv(func(k string) string { return env[k] }); got != slog.LevelDebug {
		t.Errorf("Expected debug, got %v", got)
	}
	if got := LevelFromEnv(func(string) string { return "" }); got != slog.LevelInfo {
		t.Errorf("Expected info, got %v", got)
	}
}
