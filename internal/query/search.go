package query

import (
	"context"
	"database/sql"
)

const searchMessageColumns = `m.id, m.thread_id, m.sender_id, m.sent_at, m.received_at, m.type, m.body,
	m.is_outgoing, m.is_view_once, m.quote_message_id, m.metadata_json, m.sort_ts`

// SearchMessages runs a full-text search over message bodies via the
// message_fts virtual table, optionally scoped to one thread, ranked by
// FTS5 bm25(). Matches search_messages in query.rs.
func SearchMessages(ctx context.Context, db *sql.DB, ftsQuery string, threadID *string, limit int) ([]SearchHit, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+searchMessageColumns+`, bm25(message_fts) AS rank
		FROM message_fts
		JOIN messages m ON m.id = message_fts.message_id
		WHERE message_fts MATCH ?1 AND (?2 IS NULL OR m.thread_id = ?2)
		ORDER BY bm25(message_fts)
		LIMIT ?3`, ftsQuery, threadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		var isOutgoing, isViewOnce int
		if err := rows.Scan(&h.Message.ID, &h.Message.ThreadID, &h.Message.SenderID, &h.Message.SentAt,
			&h.Message.ReceivedAt, &h.Message.Type, &h.Message.Body, &isOutgoing, &isViewOnce,
			&h.Message.QuoteMessageID, &h.Message.MetadataJSON, &h.Message.SortTs, &h.Rank); err != nil {
			return nil, err
		}
		h.Message.IsOutgoing = isOutgoing != 0
		h.Message.IsViewOnce = isViewOnce != 0
		out = append(out, h)
	}
	return out, rows.Err()
}
