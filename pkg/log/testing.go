package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// TestBuffer captures log output in memory for assertions in tests.
type TestBuffer struct {
	buf bytes.Buffer
}

// NewTestLogger returns a logger writing JSON records into the returned
// buffer. The level is honored the same way SetupLogger honors it.
func NewTestLogger(level slog.Level) (*slog.Logger, *TestBuffer) {
	tb := &TestBuffer{}
	handler := slog.NewJSONHandler(&tb.buf, &slog.HandlerOptions{Level: level})
	return slog.New(WrapByErrFmtHandler(handler)), tb
}

func (tb *TestBuffer) Write(p []byte) (int, error) {
	return tb.buf.Write(p)
}

// String returns everything logged so far.
func (tb *TestBuffer) String() string {
	return tb.buf.String()
}

// ContainsMessage reports whether any captured record contains the message.
func (tb *TestBuffer) ContainsMessage(message string) bool {
	return strings.Contains(tb.buf.String(), message)
}

// Entries parses the captured output into one map per record.
func (tb *TestBuffer) Entries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(tb.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
