package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		emit    func(*log.Logger)
		wantLog bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("placed") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("placed") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("placed") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("rebuilding frontier") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Laid out 12 items")

	got := buf.String()
	if !strings.Contains(got, "Laid out 12 items") {
		t.Errorf("output = %q, want the message", got)
	}
	if !strings.Contains(got, "ms)") && !strings.Contains(got, "s)") {
		t.Errorf("output = %q, want an elapsed time", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("empty context should give log.Default()")
	}

	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}
