// Package log provides structured JSON logging for mindgauge.
//
// Log records are emitted in a Cloud Logging compatible format (severity,
// message, sourceLocation keys) so that both the training pipeline steps and
// the serving container produce logs the hosting platform can ingest without
// an agent. Errors carrying stack traces from cockroachdb/errors are expanded
// into a dedicated stacktrace attribute by ErrFmtHandler.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger = slog.New(WrapByErrFmtHandler(slog.NewJSONHandler(os.Stdout, nil)))
)

// SetupLogger configures the process-wide logger at the given level.
// It panics on an unknown level string; levels are operator input validated
// at startup, not request data.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			case slog.SourceKey:
				attr = slog.Attr{
					Key:   "logging.googleapis.com/sourceLocation",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)

	mu.Lock()
	defaultLogger = slog.New(errFmtHandler)
	mu.Unlock()
	slog.SetDefault(defaultLogger)
}

// ToLogLevel converts a level name into a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

// GetLogger returns the process-wide logger.
func GetLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// GetLoggerWithName returns the process-wide logger scoped to a component.
func GetLoggerWithName(name string) *slog.Logger {
	return GetLogger().With(ComponentKey, name)
}

const (
	// ErrAttrKey is the attribute key under which errors are logged.
	ErrAttrKey = "error"
	// StacktraceAttrKey is the attribute key for extracted stack traces.
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
