package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func TestApplyCreatesSchemaAndIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.sqlite")
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := Apply(db); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	// Re-applying against an already-migrated database must be a no-op.
	if err := Apply(db); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != len(Ordered) {
		t.Fatalf("user_version = %d, want %d", version, len(Ordered))
	}

	for _, table := range []string{"imports", "threads", "recipients", "thread_members", "messages", "attachments", "reactions", "tags", "message_tags"} {
		var name string
		if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestSortTsTriggerBackfillsOnInsert(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "archive.sqlite")
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := Apply(db); err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(`INSERT INTO threads (id, name) VALUES ('t1', 'Thread')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO messages (id, thread_id, type, is_outgoing, is_view_once, sent_at, dedupe_key)
		VALUES ('sms:1', 't1', 'sms', 0, 0, 12345, 'sms:1')`); err != nil {
		t.Fatal(err)
	}

	var sortTs int64
	if err := db.QueryRow("SELECT sort_ts FROM messages WHERE id = 'sms:1'").Scan(&sortTs); err != nil {
		t.Fatal(err)
	}
	if sortTs != 12345 {
		t.Fatalf("sort_ts = %d, want 12345", sortTs)
	}
}
