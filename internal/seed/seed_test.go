package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/untoldecay/goldenthread/internal/archivestore"
)

func openTestArchive(t *testing.T) *archivestore.Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.sqlite")
	a, err := archivestore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestDemoPopulatesPrimaryAndSecondaryThreads(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	if err := Demo(ctx, a.DB, 12, 2); err != nil {
		t.Fatal(err)
	}

	var threadCount int
	if err := a.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM threads`).Scan(&threadCount); err != nil {
		t.Fatal(err)
	}
	if threadCount != 3 {
		t.Fatalf("thread count = %d, want 3", threadCount)
	}

	var messageCount int
	if err := a.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&messageCount); err != nil {
		t.Fatal(err)
	}
	if messageCount != 14 {
		t.Fatalf("message count = %d, want 14", messageCount)
	}

	var quoteID sql.NullString
	if err := a.DB.QueryRowContext(ctx, `SELECT quote_message_id FROM messages WHERE id = 'demo:m10'`).Scan(&quoteID); err != nil {
		t.Fatal(err)
	}
	if !quoteID.Valid || quoteID.String != "demo:m1" {
		t.Fatalf("demo:m10 quote_message_id = %+v, want demo:m1", quoteID)
	}

	var reactionCount int
	if err := a.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reactions WHERE message_id = 'demo:m4'`).Scan(&reactionCount); err != nil {
		t.Fatal(err)
	}
	if reactionCount != 1 {
		t.Fatalf("reactions on demo:m4 = %d, want 1", reactionCount)
	}
}

func TestDemoIsIdempotent(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	if err := Demo(ctx, a.DB, 5, 1); err != nil {
		t.Fatal(err)
	}
	if err := Demo(ctx, a.DB, 5, 1); err != nil {
		t.Fatal(err)
	}

	var messageCount int
	if err := a.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&messageCount); err != nil {
		t.Fatal(err)
	}
	if messageCount != 6 {
		t.Fatalf("message count after reseed = %d, want 6", messageCount)
	}
}
