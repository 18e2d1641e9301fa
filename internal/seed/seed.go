// Package seed generates a small deterministic demo archive: two
// recipients, one primary thread of back-and-forth messages plus a batch
// of short secondary threads. Grounded on seed_demo in
// original_source/core/src/seed.rs, adapted to this schema's dedupe_key
// and sort_ts columns.
package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

const baseTs int64 = 1_700_000_000

// Demo populates db with a "You"/"Partner" recipient pair, a primary
// thread of primaryCount alternating messages (every 10th quoting an
// earlier one, every 4th carrying a thumbs-up reaction), and
// secondaryThreads additional one-message threads. All inserts are
// INSERT OR IGNORE so re-seeding an already-seeded archive is a no-op.
func Demo(ctx context.Context, db *sql.DB, primaryCount, secondaryThreads int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "begin seed transaction", err)
	}
	defer tx.Rollback()

	if err := seedTx(ctx, tx, primaryCount, secondaryThreads); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "commit seed transaction", err)
	}
	return nil
}

func seedTx(ctx context.Context, tx *sql.Tx, primaryCount, secondaryThreads int64) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO recipients (id, profile_name) VALUES ('r1', 'You')`); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "seed recipient r1", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO recipients (id, profile_name) VALUES ('r2', 'Partner')`); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "seed recipient r2", err)
	}

	lastPrimaryTs := baseTs
	if primaryCount > 0 {
		lastPrimaryTs = baseTs + (primaryCount-1)*60
	}
	if err := seedThread(ctx, tx, "t1", "Chat with Partner", lastPrimaryTs); err != nil {
		return err
	}

	for idx := int64(0); idx < primaryCount; idx++ {
		id := fmt.Sprintf("demo:m%d", idx+1)
		ts := baseTs + idx*60

		sender, outgoing, body := "r1", 1, fmt.Sprintf("Demo message %d", idx+1)
		if idx%2 != 0 {
			sender, outgoing, body = "r2", 0, fmt.Sprintf("Reply %d", idx+1)
		}

		var quoteID, metadataJSON sql.NullString
		if (idx+1)%10 == 0 {
			target := (idx + 1) / 10
			if target >= 1 {
				quoteID = sql.NullString{String: fmt.Sprintf("demo:m%d", target), Valid: true}
				quotedBody := fmt.Sprintf("Reply %d", target)
				if target%2 == 1 {
					quotedBody = fmt.Sprintf("Demo message %d", target)
				}
				metadataJSON = sql.NullString{String: fmt.Sprintf(`{"quote_body":%q}`, quotedBody), Valid: true}
			}
		}

		if err := insertMessage(ctx, tx, id, "t1", sender, ts, outgoing, body, quoteID, metadataJSON); err != nil {
			return err
		}
		if (idx+1)%4 == 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO reactions (message_id, recipient_id, emoji, reacted_at) VALUES (?, 'r2', '👍', ?)`,
				id, ts); err != nil {
				return archiveerr.Wrap(archiveerr.KindSqlite, "seed reaction", err)
			}
		}
	}

	for idx := int64(0); idx < secondaryThreads; idx++ {
		threadID := fmt.Sprintf("t%d", idx+2)
		name := fmt.Sprintf("Secondary %d", idx+1)
		ts := baseTs + idx*120

		if err := seedThread(ctx, tx, threadID, name, ts); err != nil {
			return err
		}
		msgID := fmt.Sprintf("demo:s%d", idx+1)
		body := fmt.Sprintf("Short thread %d", idx+1)
		if err := insertMessage(ctx, tx, msgID, threadID, "r2", ts, 0, body, sql.NullString{}, sql.NullString{}); err != nil {
			return err
		}
	}

	return nil
}

func seedThread(ctx context.Context, tx *sql.Tx, id, name string, lastMessageAt int64) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO threads (id, name, last_message_at) VALUES (?, ?, ?)`,
		id, name, lastMessageAt); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "seed thread", err)
	}
	for _, recipientID := range []string{"r1", "r2"} {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO thread_members (thread_id, recipient_id) VALUES (?, ?)`,
			id, recipientID); err != nil {
			return archiveerr.Wrap(archiveerr.KindSqlite, "seed thread member", err)
		}
	}
	return nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, id, threadID, sender string, ts int64, outgoing int, body string, quoteID, metadataJSON sql.NullString) error {
	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages
			(id, thread_id, sender_id, sent_at, sort_ts, type, body, is_outgoing, quote_message_id, metadata_json, dedupe_key)
		VALUES (?, ?, ?, ?, ?, 'text', ?, ?, ?, ?, ?)`,
		id, threadID, sender, ts, ts, body, outgoing, quoteID, metadataJSON, id)
	if err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "seed message", err)
	}
	// message_fts has no unique key, so only index a message that was
	// actually inserted; otherwise re-seeding would duplicate its FTS row.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO message_fts (message_id, thread_id, sender_id, body) VALUES (?, ?, ?, ?)`,
		id, threadID, sender, body); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "seed message fts row", err)
	}
	return nil
}
