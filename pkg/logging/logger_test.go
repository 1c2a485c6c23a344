package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"WARN", false, false},
		{"", false, true},
		{"bogus", false, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := New(Config{Level: tt.level, Output: &buf})
		logger.Debug().Msg("debug message")
		logger.Info().Msg("info message")

		out := buf.String()
		if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
			t.Errorf("level %q: debug logged = %v, want %v", tt.level, got, tt.wantDebug)
		}
		if got := strings.Contains(out, "info message"); got != tt.wantInfo {
			t.Errorf("level %q: info logged = %v, want %v", tt.level, got, tt.wantInfo)
		}
	}
}

func TestNewWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithComponent(Config{Output: &buf}, "sqlio")
	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"sqlio"`) {
		t.Errorf("component field missing: %s", buf.String())
	}
}
