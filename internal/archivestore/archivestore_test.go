package archivestore

import (
	"path/filepath"
	"testing"
)

func TestOpenAppliesMigrationsAndLocks(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.sqlite")

	a, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()

	var name string
	if err := a.DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='messages'").Scan(&name); err != nil {
		t.Fatalf("messages table missing: %v", err)
	}

	if _, err := Open(dbPath); err == nil {
		t.Fatal("second Open on the same archive should fail while the first holds the lock")
	}
}

func TestOpenRecoversCrashedImport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.sqlite")

	a, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.DB.Exec(`INSERT INTO imports (id, imported_at, source_filename, source_hash, status)
		VALUES ('imp1', 1, 'x.backup', 'deadbeef', 'running')`); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	a2, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer a2.Close()

	var status string
	if err := a2.DB.QueryRow("SELECT status FROM imports WHERE id = 'imp1'").Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != "failed" {
		t.Fatalf("status = %q, want failed", status)
	}
}
