package archivestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteMetadataSidecarEncodesCounters(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.sqlite")
	a, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ctx := context.Background()
	if _, err := a.DB.ExecContext(ctx, `INSERT INTO threads (id, name) VALUES ('t1', 'Thread')`); err != nil {
		t.Fatal(err)
	}
	if _, err := a.DB.ExecContext(ctx, `INSERT INTO recipients (id) VALUES ('r1')`); err != nil {
		t.Fatal(err)
	}

	sidecarPath := filepath.Join(t.TempDir(), "goldenthread.toml")
	if err := a.WriteMetadataSidecar(ctx, sidecarPath); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "threads = 1") {
		t.Errorf("sidecar missing threads count: %s", content)
	}
	if !strings.Contains(content, "recipients = 1") {
		t.Errorf("sidecar missing recipients count: %s", content)
	}
}
