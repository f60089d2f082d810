package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		log   func(*log.Logger)
		want  bool
	}{
		{"info at info", LogInfo, func(l *log.Logger) { l.Info("exported graphic") }, true},
		{"debug at info", LogInfo, func(l *log.Logger) { l.Debug("resolved metrics") }, false},
		{"debug at debug", LogDebug, func(l *log.Logger) { l.Debug("resolved metrics") }, true},
		{"warn at info", LogInfo, func(l *log.Logger) { l.Warn("cache write failed") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).With("request", "abc").Info("exported graphic", "file", "chart.png")

	out := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(out) {
		t.Errorf("output %q does not start with an HH:MM:SS.ms timestamp", out)
	}
	for _, want := range []string{"request=abc", "file=chart.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, LogInfo)).done("Exported 2 graphic(s)")

	if !regexp.MustCompile(`Exported 2 graphic\(s\) \(\d+m?s\)`).MatchString(buf.String()) {
		t.Errorf("done() output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, LogInfo)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext() should return the attached logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext() should fall back to log.Default()")
	}
}
