package importer

import (
	"context"
	"database/sql"
	"fmt"
)

const ftsBatchSize = 50000

// BuildMessageFTS rebuilds the message_fts index from scratch in rowid
// batches, reporting progress, then asks FTS5 to optimize the index.
// Matches build_message_fts in importer/fts.rs.
func BuildMessageFTS(ctx context.Context, tx *sql.Tx, progress ProgressFunc) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM message_fts`); err != nil {
		return 0, err
	}

	var maxRowID sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(rowid) FROM messages`).Scan(&maxRowID); err != nil {
		return 0, err
	}
	if !maxRowID.Valid {
		return 0, nil
	}

	inserted := 0
	for start := int64(0); start <= maxRowID.Int64; start += ftsBatchSize {
		end := start + ftsBatchSize
		res, err := tx.ExecContext(ctx, `
			INSERT INTO message_fts (message_id, thread_id, sender_id, body)
			SELECT id, thread_id, sender_id, body FROM messages
			WHERE rowid >= ? AND rowid < ? AND body IS NOT NULL AND body != ''`, start, end)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
		if progress != nil {
			progress(fmt.Sprintf("fts: indexed %d messages", inserted))
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO message_fts(message_fts) VALUES('optimize')`); err != nil {
		return inserted, err
	}
	if progress != nil {
		progress("fts: optimize complete")
	}
	return inserted, nil
}
