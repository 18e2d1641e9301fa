package query

import (
	"context"
	"database/sql"
)

const messageColumns = `id, thread_id, sender_id, sent_at, received_at, type, body,
	is_outgoing, is_view_once, quote_message_id, metadata_json, sort_ts`

func scanMessage(row interface{ Scan(...any) error }) (MessageRow, error) {
	var m MessageRow
	var isOutgoing, isViewOnce int
	err := row.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.SentAt, &m.ReceivedAt, &m.Type, &m.Body,
		&isOutgoing, &isViewOnce, &m.QuoteMessageID, &m.MetadataJSON, &m.SortTs)
	m.IsOutgoing = isOutgoing != 0
	m.IsViewOnce = isViewOnce != 0
	return m, err
}

// GetMessage fetches a single message by id.
func GetMessage(ctx context.Context, db *sql.DB, id string) (MessageRow, error) {
	row := db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

// ListMessages returns up to limit messages in thread, ordered sort_ts DESC,
// id DESC, optionally starting strictly before the (beforeTs, beforeID)
// cursor. A nil cursor starts from the most recent message.
func ListMessages(ctx context.Context, db *sql.DB, threadID string, beforeTs *int64, beforeID *string, limit int) ([]MessageRow, error) {
	var rows *sql.Rows
	var err error
	switch {
	case beforeTs == nil:
		rows, err = db.QueryContext(ctx, `
			SELECT `+messageColumns+` FROM messages
			WHERE thread_id = ?
			ORDER BY sort_ts DESC, id DESC LIMIT ?`, threadID, limit)
	default:
		rows, err = db.QueryContext(ctx, `
			SELECT `+messageColumns+` FROM messages
			WHERE thread_id = ? AND (sort_ts < ? OR (sort_ts = ? AND id < ?))
			ORDER BY sort_ts DESC, id DESC LIMIT ?`, threadID, *beforeTs, *beforeTs, *beforeID, limit)
	}
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// ListMessagesAfter mirrors ListMessages but moves forward (ASC) from an
// exclusive (afterTs, afterID) cursor.
func ListMessagesAfter(ctx context.Context, db *sql.DB, threadID string, afterTs *int64, afterID *string, limit int) ([]MessageRow, error) {
	var rows *sql.Rows
	var err error
	switch {
	case afterTs == nil:
		rows, err = db.QueryContext(ctx, `
			SELECT `+messageColumns+` FROM messages
			WHERE thread_id = ?
			ORDER BY sort_ts ASC, id ASC LIMIT ?`, threadID, limit)
	default:
		rows, err = db.QueryContext(ctx, `
			SELECT `+messageColumns+` FROM messages
			WHERE thread_id = ? AND (sort_ts > ? OR (sort_ts = ? AND id > ?))
			ORDER BY sort_ts ASC, id ASC LIMIT ?`, threadID, *afterTs, *afterTs, *afterID, limit)
	}
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

// ListMessagesAround returns up to before older messages, the center
// message itself, and up to after newer messages, concatenated in
// chronological (sort_ts ASC, id ASC) order.
func ListMessagesAround(ctx context.Context, db *sql.DB, centerID string, before, after int) ([]MessageRow, error) {
	center, err := GetMessage(ctx, db, centerID)
	if err != nil {
		return nil, err
	}

	olderDesc, err := ListMessages(ctx, db, center.ThreadID, &center.SortTs, &center.ID, before)
	if err != nil {
		return nil, err
	}
	newer, err := ListMessagesAfter(ctx, db, center.ThreadID, &center.SortTs, &center.ID, after)
	if err != nil {
		return nil, err
	}

	out := make([]MessageRow, 0, len(olderDesc)+1+len(newer))
	for i := len(olderDesc) - 1; i >= 0; i-- {
		out = append(out, olderDesc[i])
	}
	out = append(out, center)
	out = append(out, newer...)
	return out, nil
}

func scanMessages(rows *sql.Rows) ([]MessageRow, error) {
	defer rows.Close()
	var out []MessageRow
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
