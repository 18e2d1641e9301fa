package importer

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/untoldecay/goldenthread/internal/archivestore"
)

// fakeDecoder skips the real signalbackup binary and instead builds a
// minimal foreign SQLite database directly at outDBPath plus a single
// attachment frame file, matching the fixture shape Signal's decoder would
// produce for a one-recipient, one-thread, one-sms, one-mms, one-part,
// one-reaction backup.
type fakeDecoder struct{}

func (fakeDecoder) Decode(ctx context.Context, sourcePath, passphrase, outDBPath, framesDir string) error {
	db, err := sql.Open("sqlite3", "file:"+outDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	schema := `
		CREATE TABLE recipient (_id INTEGER PRIMARY KEY, phone TEXT);
		CREATE TABLE thread (_id INTEGER PRIMARY KEY, date INTEGER);
		CREATE TABLE sms (_id INTEGER PRIMARY KEY, thread_id INTEGER, address INTEGER,
			date INTEGER, type INTEGER, body TEXT, quote_id INTEGER, quote_body TEXT);
		CREATE TABLE mms (_id INTEGER PRIMARY KEY, thread_id INTEGER, address INTEGER,
			date INTEGER, type INTEGER, body TEXT);
		CREATE TABLE part (_id INTEGER PRIMARY KEY, mid INTEGER, unique_id INTEGER,
			ct TEXT, data_size INTEGER);
		CREATE TABLE reaction (message_id INTEGER, author_id INTEGER, emoji TEXT);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	if _, err := db.Exec(`INSERT INTO recipient (_id, phone) VALUES (1, '+15550001111')`); err != nil {
		return err
	}
	if _, err := db.Exec(`INSERT INTO thread (_id, date) VALUES (1, 1700000000000)`); err != nil {
		return err
	}
	if _, err := db.Exec(`
		INSERT INTO sms (_id, thread_id, address, date, type, body, quote_id, quote_body)
		VALUES (10, 1, 1, 1700000000000, 1, 'sms body', 10, 'quoted')`); err != nil {
		return err
	}
	if _, err := db.Exec(`
		INSERT INTO mms (_id, thread_id, address, date, type, body)
		VALUES (1, 1, 1, 1700000001000, 1, 'mms body')`); err != nil {
		return err
	}
	if _, err := db.Exec(`
		INSERT INTO part (_id, mid, unique_id, ct, data_size) VALUES (5, 1, 1, 'image/jpeg', 4)`); err != nil {
		return err
	}
	if _, err := db.Exec(`INSERT INTO reaction (message_id, author_id, emoji) VALUES (10, 1, '👍')`); err != nil {
		return err
	}

	if err := os.MkdirAll(framesDir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(AttachmentFrameFile(framesDir, 5, 1), []byte("test"), 0o600)
}

func writeFakeBackup(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.backup")
	if err := os.WriteFile(path, []byte("not a real signal backup, just needs to be non-empty"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportBasicScenario(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "archive.sqlite")
	archive, err := archivestore.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer archive.Close()

	attachmentsDir := t.TempDir()
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}

	result, err := Import(context.Background(), archive, Options{
		SourcePath:     writeFakeBackup(t),
		Passphrase:     "111111111111111111111111111111"[:30],
		AttachmentsDir: attachmentsDir,
		Key:            key,
		Decoder:        fakeDecoder{},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.ImportID == "" {
		t.Fatal("expected a non-empty import id")
	}

	var messageCount int
	if err := archive.DB.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&messageCount); err != nil {
		t.Fatal(err)
	}
	if messageCount != 2 {
		t.Fatalf("expected 2 messages, got %d", messageCount)
	}

	var attachmentCount int
	if err := archive.DB.QueryRow(`SELECT COUNT(*) FROM attachments`).Scan(&attachmentCount); err != nil {
		t.Fatal(err)
	}
	if attachmentCount != 1 {
		t.Fatalf("expected 1 attachment, got %d", attachmentCount)
	}

	var reactionCount int
	if err := archive.DB.QueryRow(`SELECT COUNT(*) FROM reactions`).Scan(&reactionCount); err != nil {
		t.Fatal(err)
	}
	if reactionCount != 1 {
		t.Fatalf("expected 1 reaction, got %d", reactionCount)
	}

	var attachmentID, attachmentSHA256 string
	if err := archive.DB.QueryRow(`SELECT id, sha256 FROM attachments LIMIT 1`).Scan(&attachmentID, &attachmentSHA256); err != nil {
		t.Fatal(err)
	}
	if want := "att:mms:1:" + attachmentSHA256; attachmentID != want {
		t.Fatalf("attachment id = %q, want %q", attachmentID, want)
	}

	var metadataJSON sql.NullString
	if err := archive.DB.QueryRow(`SELECT metadata_json FROM messages WHERE id = 'sms:10'`).Scan(&metadataJSON); err != nil {
		t.Fatalf("query sms:10: %v", err)
	}
	if !metadataJSON.Valid || metadataJSON.String == "" {
		t.Fatal("expected sms:10 to have non-null metadata_json")
	}

	var importStatus string
	if err := archive.DB.QueryRow(`SELECT status FROM imports WHERE id = ?`, result.ImportID).Scan(&importStatus); err != nil {
		t.Fatal(err)
	}
	if importStatus != "success" {
		t.Fatalf("expected import status success, got %s", importStatus)
	}
}

func TestImportRejectsDuplicateSourceHash(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "archive.sqlite")
	archive, err := archivestore.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer archive.Close()

	attachmentsDir := t.TempDir()
	var key [32]byte
	backupPath := writeFakeBackup(t)
	opts := Options{
		SourcePath:     backupPath,
		Passphrase:     "111111111111111111111111111111"[:30],
		AttachmentsDir: attachmentsDir,
		Key:            key,
		Decoder:        fakeDecoder{},
	}

	if _, err := Import(context.Background(), archive, opts); err != nil {
		t.Fatalf("first import: %v", err)
	}

	if _, err := Import(context.Background(), archive, opts); err == nil {
		t.Fatal("expected second import of the same backup to be rejected")
	}
}

// TestImportReactionsAreIdempotentAcrossOverlappingBackups re-imports the
// same reaction/message data from a second backup whose file contents (and
// therefore source_hash) differ, so the per-source dedupe in
// sourceAlreadyImported doesn't short-circuit the second run. The reaction
// row must still land once, on its (message_id, recipient_id, emoji)
// natural key, not once per import.
func TestImportReactionsAreIdempotentAcrossOverlappingBackups(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "archive.sqlite")
	archive, err := archivestore.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer archive.Close()

	attachmentsDir := t.TempDir()
	var key [32]byte

	firstBackup := writeFakeBackup(t)
	secondPath := filepath.Join(t.TempDir(), "chat2.backup")
	if err := os.WriteFile(secondPath, []byte("a different backup file, same decoded contents"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{firstBackup, secondPath} {
		if _, err := Import(context.Background(), archive, Options{
			SourcePath:     path,
			Passphrase:     "111111111111111111111111111111"[:30],
			AttachmentsDir: attachmentsDir,
			Key:            key,
			Decoder:        fakeDecoder{},
		}); err != nil {
			t.Fatalf("import %s: %v", path, err)
		}
	}

	var reactionCount int
	if err := archive.DB.QueryRow(`SELECT COUNT(*) FROM reactions`).Scan(&reactionCount); err != nil {
		t.Fatal(err)
	}
	if reactionCount != 1 {
		t.Fatalf("expected reactions to dedupe across overlapping backups, got %d", reactionCount)
	}

	var attachmentCount int
	if err := archive.DB.QueryRow(`SELECT COUNT(*) FROM attachments`).Scan(&attachmentCount); err != nil {
		t.Fatal(err)
	}
	if attachmentCount != 1 {
		t.Fatalf("expected attachments to dedupe across overlapping backups, got %d", attachmentCount)
	}
}
