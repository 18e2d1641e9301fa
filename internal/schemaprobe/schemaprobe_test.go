package schemaprobe

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "probe.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE sms (_id INTEGER, thread_id INTEGER, address TEXT, body TEXT)`); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestTableExists(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	ok, err := TableExists(db, "sms")
	if err != nil || !ok {
		t.Fatalf("TableExists(sms) = %v, %v", ok, err)
	}
	ok, err = TableExists(db, "mms")
	if err != nil || ok {
		t.Fatalf("TableExists(mms) = %v, %v, want false", ok, err)
	}
}

func TestPickColumnPrefersFirstMatch(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	got, err := PickColumn(db, "sms", "recipient_id", "address", "phone")
	if err != nil {
		t.Fatal(err)
	}
	if got != "address" {
		t.Fatalf("PickColumn = %q, want address", got)
	}

	got, err = PickColumn(db, "sms", "nonexistent_a", "nonexistent_b")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("PickColumn = %q, want empty", got)
	}
}
