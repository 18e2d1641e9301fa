// Package diagnostics writes redacted, trimmed JSON-lines event logs.
// Grounded on original_source/core/src/diagnostics.rs (sanitize, LogEvent,
// trim-to-tail-half policy), reimplemented with the teacher's rotation
// library (gopkg.in/natefinch/lumberjack.v2) in place of the original's
// hand-rolled truncation.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// MaxLogMegabytes bounds a single diagnostics.log file before lumberjack
// rotates it. 1 chunk ~= the original's MAX_LOG_BYTES (1,500,000 bytes).
const MaxLogMegabytes = 2

// LogEvent is one JSON-lines diagnostics record.
type LogEvent struct {
	Ts      string `json:"ts"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Logger appends sanitized LogEvent lines to diagnostics.log directly inside
// the directory given to New (no logs/ subdirectory is added), rotating by
// size; the file is not trimmed in place.
type Logger struct {
	writer *lumberjack.Logger
	now    func() time.Time
}

// New returns a Logger writing to logDir/diagnostics.log.
func New(logDir string) *Logger {
	return &Logger{
		writer: &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "diagnostics.log"),
			MaxSize:    MaxLogMegabytes,
			MaxBackups: 3,
			Compress:   false,
		},
		now: time.Now,
	}
}

// Log appends one sanitized event.
func (l *Logger) Log(kind, message string) error {
	ev := LogEvent{Ts: l.now().UTC().Format(time.RFC3339), Kind: kind, Message: Sanitize(message)}
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal diagnostics event: %w", err)
	}
	line = append(line, '\n')
	_, err = l.writer.Write(line)
	return err
}

// Close releases the underlying log file handle.
func (l *Logger) Close() error { return l.writer.Close() }

var pathPrefixes = []string{"/Users/", "/var/", "/private/", `C:\`, `D:\`}

// Sanitize redacts a log message before it is written: everything from the
// first filesystem path prefix (/Users/, /var/, /private/, C:\, D:\) to the
// end of the message becomes "[redacted]", then every whitespace-separated
// token carrying ≥10 digit characters (phone numbers, ids) becomes
// "[redacted]" and whitespace runs collapse to single spaces, matching
// sanitize in the original source.
func Sanitize(input string) string {
	out := input
	for _, prefix := range pathPrefixes {
		if idx := strings.Index(out, prefix); idx >= 0 {
			out = out[:idx] + "[redacted]"
			break
		}
	}

	fields := strings.Fields(out)
	for i, f := range fields {
		if countDigits(f) >= 10 {
			fields[i] = "[redacted]"
		}
	}
	return strings.Join(fields, " ")
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
