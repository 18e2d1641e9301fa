package diagnostics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeRedactsPathPrefix(t *testing.T) {
	got := Sanitize("failed to read /Users/alice/Documents/backup.backup")
	if strings.Contains(got, "alice") {
		t.Fatalf("path not redacted: %q", got)
	}
	if !strings.Contains(got, "[redacted]") {
		t.Fatalf("expected redaction marker: %q", got)
	}
}

func TestSanitizeRedactsLongDigitRuns(t *testing.T) {
	got := Sanitize("recipient +15550001234 imported")
	if strings.Contains(got, "15550001234") {
		t.Fatalf("phone number not redacted: %q", got)
	}
}

func TestSanitizeLeavesShortNumbersAlone(t *testing.T) {
	got := Sanitize("imported 42 messages")
	if got != "imported 42 messages" {
		t.Fatalf("short numbers should be untouched: %q", got)
	}
}

func TestLoggerWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	defer l.Close()

	if err := l.Log("import", "started"); err != nil {
		t.Fatal(err)
	}
	if err := l.Log("import", "finished"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "diagnostics.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"kind":"import"`) {
		t.Fatalf("missing kind field: %s", lines[0])
	}
}
