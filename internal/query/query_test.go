package query

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/untoldecay/goldenthread/internal/archivestore/migrations"
)

func openTestArchive(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "archive.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	if err := migrations.Apply(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func seedThreadWithMessages(t *testing.T, db *sql.DB, threadID string, n int) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `INSERT INTO threads (id, name) VALUES (?, ?)`, threadID, "Thread "+threadID); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		id := threadID + ":m" + string(rune('a'+i))
		sentAt := int64((i + 1) * 1000)
		if _, err := db.ExecContext(ctx, `
			INSERT INTO messages (id, thread_id, type, is_outgoing, is_view_once, sent_at, body, dedupe_key)
			VALUES (?, ?, 'sms', 0, 0, ?, ?, ?)`, id, threadID, sentAt, "body "+id, id); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCursorTotalityAcrossPages(t *testing.T) {
	db := openTestArchive(t)
	defer db.Close()
	seedThreadWithMessages(t, db, "t1", 10)
	ctx := context.Background()

	var all []MessageRow
	var beforeTs *int64
	var beforeID *string
	for {
		page, err := ListMessages(ctx, db, "t1", beforeTs, beforeID, 3)
		if err != nil {
			t.Fatal(err)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		last := page[len(page)-1]
		ts, id := last.SortTs, last.ID
		beforeTs, beforeID = &ts, &id
	}

	if len(all) != 10 {
		t.Fatalf("got %d messages across pages, want 10", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].SortTs < all[i].SortTs {
			t.Fatalf("pages not in descending sort_ts order at %d", i)
		}
	}
	seen := map[string]bool{}
	for _, m := range all {
		if seen[m.ID] {
			t.Fatalf("duplicate message %s across pages", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestScrapbookDiscontinuity(t *testing.T) {
	db := openTestArchive(t)
	defer db.Close()
	seedThreadWithMessages(t, db, "t1", 5)
	ctx := context.Background()

	tag, err := CreateTag(ctx, db, 1, "favorites", "#ff0000")
	if err != nil {
		t.Fatal(err)
	}

	// Tag messages 0 (ma) and 2 (mc), skipping 1 (mb) — there is an
	// intervening untagged message in the timeline, so the pair must be
	// reported discontinuous.
	if err := SetMessageTags(ctx, db, "t1:ma", []string{tag.ID}, 100); err != nil {
		t.Fatal(err)
	}
	if err := SetMessageTags(ctx, db, "t1:mc", []string{tag.ID}, 200); err != nil {
		t.Fatal(err)
	}

	page, err := ListScrapbookMessages(ctx, db, tag.ID, nil, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d scrapbook entries, want 2", len(page))
	}
	if page[0].IsDiscontinuous {
		t.Fatal("first scrapbook entry must never be discontinuous")
	}
	if !page[1].IsDiscontinuous {
		t.Fatal("entry with an intervening untagged message must be discontinuous")
	}
}

func TestScrapbookAdjacentNotDiscontinuous(t *testing.T) {
	db := openTestArchive(t)
	defer db.Close()
	seedThreadWithMessages(t, db, "t1", 5)
	ctx := context.Background()

	tag, err := CreateTag(ctx, db, 1, "favorites", "#ff0000")
	if err != nil {
		t.Fatal(err)
	}
	// Tag two adjacent messages (ma, mb) — no intervening message exists.
	if err := SetMessageTags(ctx, db, "t1:ma", []string{tag.ID}, 100); err != nil {
		t.Fatal(err)
	}
	if err := SetMessageTags(ctx, db, "t1:mb", []string{tag.ID}, 200); err != nil {
		t.Fatal(err)
	}

	page, err := ListScrapbookMessages(ctx, db, tag.ID, nil, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d scrapbook entries, want 2", len(page))
	}
	if page[1].IsDiscontinuous {
		t.Fatal("adjacent messages must not be reported discontinuous")
	}
}

func TestSearchMessagesRanksByBM25(t *testing.T) {
	db := openTestArchive(t)
	defer db.Close()
	seedThreadWithMessages(t, db, "t1", 3)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `INSERT INTO message_fts (message_id, thread_id, sender_id, body)
		SELECT id, thread_id, sender_id, body FROM messages`); err != nil {
		t.Fatal(err)
	}

	hits, err := SearchMessages(ctx, db, "body", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Rank < hits[i-1].Rank {
			t.Fatalf("hit %d rank %v sorts after hit %d rank %v; want ascending bm25", i, hits[i].Rank, i-1, hits[i-1].Rank)
		}
	}
}
