package query

import (
	"context"
	"database/sql"
)

// ListThreads returns up to limit threads starting at offset, ordered by
// last_message_at DESC (nulls last), id ASC as tie-break, matching
// list_threads in query.rs.
func ListThreads(ctx context.Context, db *sql.DB, limit, offset int) ([]ThreadSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.name, t.last_message_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.thread_id = t.id) AS message_count
		FROM threads t
		ORDER BY t.last_message_at IS NULL, t.last_message_at DESC, t.id ASC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ThreadSummary
	for rows.Next() {
		var s ThreadSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.LastMessageAt, &s.MessageCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ThreadExists reports whether a thread with the given id exists.
func ThreadExists(ctx context.Context, db *sql.DB, threadID string) (bool, error) {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM threads WHERE id = ?`, threadID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// UpdateThreadActivity recomputes every thread's last_message_at as the max
// sort_ts over its messages, matching update_thread_activity in importer.rs.
func UpdateThreadActivity(ctx context.Context, db execer) error {
	_, err := db.ExecContext(ctx, `
		UPDATE threads SET last_message_at = (
			SELECT MAX(sort_ts) FROM messages WHERE messages.thread_id = threads.id
		)`)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
