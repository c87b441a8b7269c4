package log

import (
	"log/slog"
	"testing"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

func TestTestLoggerCapturesAllLevels(t *testing.T) {
	logger, buffer := NewTestLogger(slog.LevelDebug)

	logger.Debug("debug message", "key1", "value1")
	logger.Info("info message", OperationKey, "fit")
	logger.Warn("warning message")
	logger.Error("error message", ErrAttr(errors.New("boom")))

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !buffer.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
}

func TestTestLoggerHonorsLevel(t *testing.T) {
	logger, buffer := NewTestLogger(slog.LevelWarn)

	logger.Info("below threshold")
	logger.Warn("at threshold")

	if buffer.ContainsMessage("below threshold") {
		t.Error("info record should have been filtered out")
	}
	if !buffer.ContainsMessage("at threshold") {
		t.Error("warn record missing")
	}
}

func TestErrFmtHandlerExtractsStacktrace(t *testing.T) {
	logger, buffer := NewTestLogger(slog.LevelInfo)

	logger.Error("operation failed", ErrAttr(errors.New("with stack")))

	entries, err := buffer.Entries()
	if err != nil {
		t.Fatalf("parsing entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	stack, ok := entries[0][StacktraceAttrKey].(string)
	if !ok || stack == "" {
		t.Error("expected a non-empty stacktrace attribute")
	}
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "warn", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
	}
	for _, tt := range tests {
		if got := ToLogLevel(tt.level); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestToLogLevelPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unknown level")
		}
	}()
	ToLogLevel("verbose")
}

func TestGetLoggerWithNameAddsComponent(t *testing.T) {
	logger := GetLoggerWithName("tuner")
	if logger == nil {
		t.Fatal("expected a logger")
	}
}
