package query

import (
	"context"
	"database/sql"
)

// ListScrapbookMessages returns messages tagged with tagID, ordered by
// tagged_at DESC, message_id DESC, cursor-paginated on that same ordering.
// Each result carries its thread's name and a discontinuity flag computed
// over the message timeline (sort_ts, id), not the tagged_at order — see
// isDiscontinuous.
func ListScrapbookMessages(ctx context.Context, db *sql.DB, tagID string, beforeTaggedAt *int64, beforeMessageID *string, limit int) ([]ScrapbookMessage, error) {
	var rows *sql.Rows
	var err error
	switch {
	case beforeTaggedAt == nil:
		rows, err = db.QueryContext(ctx, `
			SELECT `+searchMessageColumns+`, t.name, mt.tagged_at
			FROM message_tags mt
			JOIN messages m ON m.id = mt.message_id
			JOIN threads t ON t.id = m.thread_id
			WHERE mt.tag_id = ?
			ORDER BY mt.tagged_at DESC, mt.message_id DESC
			LIMIT ?`, tagID, limit)
	default:
		rows, err = db.QueryContext(ctx, `
			SELECT `+searchMessageColumns+`, t.name, mt.tagged_at
			FROM message_tags mt
			JOIN messages m ON m.id = mt.message_id
			JOIN threads t ON t.id = m.thread_id
			WHERE mt.tag_id = ? AND (mt.tagged_at < ? OR (mt.tagged_at = ? AND mt.message_id < ?))
			ORDER BY mt.tagged_at DESC, mt.message_id DESC
			LIMIT ?`, tagID, *beforeTaggedAt, *beforeTaggedAt, *beforeMessageID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScrapbookMessage
	for rows.Next() {
		var sb ScrapbookMessage
		var isOutgoing, isViewOnce int
		var taggedAt int64
		if err := rows.Scan(&sb.Message.ID, &sb.Message.ThreadID, &sb.Message.SenderID, &sb.Message.SentAt,
			&sb.Message.ReceivedAt, &sb.Message.Type, &sb.Message.Body, &isOutgoing, &isViewOnce,
			&sb.Message.QuoteMessageID, &sb.Message.MetadataJSON, &sb.Message.SortTs,
			&sb.ThreadName, &taggedAt); err != nil {
			return nil, err
		}
		sb.Message.IsOutgoing = isOutgoing != 0
		sb.Message.IsViewOnce = isViewOnce != 0
		out = append(out, sb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1].Message, out[i].Message
		if prev.ThreadID != cur.ThreadID {
			continue
		}
		disc, err := isDiscontinuous(ctx, db, prev, cur)
		if err != nil {
			return nil, err
		}
		out[i].IsDiscontinuous = disc
	}
	return out, nil
}

// isDiscontinuous reports whether, in the (sort_ts, id)-ordered timeline of
// a's thread, some third message lies strictly between a and b. a and b
// need not be supplied in timeline order.
func isDiscontinuous(ctx context.Context, db *sql.DB, a, b MessageRow) (bool, error) {
	earlier, later := a, b
	if laterFirst(a, b) {
		earlier, later = b, a
	}

	var count int64
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE thread_id = ?
		  AND (sort_ts > ? OR (sort_ts = ? AND id > ?))
		  AND (sort_ts < ? OR (sort_ts = ? AND id < ?))`,
		earlier.ThreadID,
		earlier.SortTs, earlier.SortTs, earlier.ID,
		later.SortTs, later.SortTs, later.ID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// laterFirst reports whether a sorts after b under the lexicographic
// (sort_ts, id) order.
func laterFirst(a, b MessageRow) bool {
	if a.SortTs != b.SortTs {
		return a.SortTs > b.SortTs
	}
	return a.ID > b.ID
}
