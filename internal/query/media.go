package query

import (
	"context"
	"database/sql"
	"fmt"
)

const mediaColumns = `a.id, a.message_id, a.sha256, a.mime, a.size_bytes, a.original_filename,
	a.kind, a.width, a.height, a.duration_ms`

func scanMedia(row interface{ Scan(...any) error }) (MediaRow, error) {
	var m MediaRow
	err := row.Scan(&m.ID, &m.MessageID, &m.SHA256, &m.Mime, &m.SizeBytes, &m.OriginalFilename,
		&m.Kind, &m.Width, &m.Height, &m.DurationMs)
	return m, err
}

// ListMedia lists every attachment archive-wide, ordered by the owning
// message's sent_at DESC (nulls last), attachment id ASC as tie-break.
func ListMedia(ctx context.Context, db *sql.DB, limit int) ([]MediaRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+mediaColumns+`
		FROM attachments a
		JOIN messages m ON m.id = a.message_id
		ORDER BY m.sent_at IS NULL, m.sent_at DESC, a.id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MediaRow
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ThreadMediaSort selects the ordering for ListThreadMedia.
type ThreadMediaSort int

const (
	SortDateDesc ThreadMediaSort = iota
	SortDateAsc
	SortSizeAsc
	SortSizeDesc
)

// ThreadMediaFilter narrows ListThreadMedia to a time range and/or size bucket.
type ThreadMediaFilter struct {
	FromTs     *int64
	ToTs       *int64
	SizeBucket *int
	Sort       ThreadMediaSort
}

// ListThreadMedia lists attachments within one thread under an optional
// time-range/size-bucket filter and one of four sort orders, matching
// list_thread_media in query.rs.
func ListThreadMedia(ctx context.Context, db *sql.DB, threadID string, filter ThreadMediaFilter, limit int) ([]ThreadMediaRow, error) {
	where := []string{"m.thread_id = ?"}
	args := []any{threadID}

	if filter.FromTs != nil {
		where = append(where, "COALESCE(m.sent_at, m.received_at, 0) >= ?")
		args = append(args, *filter.FromTs)
	}
	if filter.ToTs != nil {
		where = append(where, "COALESCE(m.sent_at, m.received_at, 0) <= ?")
		args = append(args, *filter.ToTs)
	}
	if filter.SizeBucket != nil {
		where = append(where, "a.size_bucket = ?")
		args = append(args, *filter.SizeBucket)
	}

	var order string
	switch filter.Sort {
	case SortSizeAsc:
		order = "a.size_bytes IS NULL, a.size_bytes ASC, a.id ASC"
	case SortSizeDesc:
		order = "a.size_bytes IS NULL, a.size_bytes DESC, a.id ASC"
	case SortDateAsc:
		order = "COALESCE(m.sent_at, m.received_at, 0) ASC, a.id ASC"
	default: // SortDateDesc
		order = "COALESCE(m.sent_at, m.received_at, 0) DESC, a.id ASC"
	}

	whereSQL := ""
	for i, w := range where {
		if i > 0 {
			whereSQL += " AND "
		}
		whereSQL += w
	}

	args = append(args, limit)
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, m.thread_id, m.sent_at, m.received_at
		FROM attachments a
		JOIN messages m ON m.id = a.message_id
		WHERE %s
		ORDER BY %s
		LIMIT ?`, mediaColumns, whereSQL, order), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ThreadMediaRow
	for rows.Next() {
		var tm ThreadMediaRow
		if err := rows.Scan(&tm.ID, &tm.MessageID, &tm.SHA256, &tm.Mime, &tm.SizeBytes, &tm.OriginalFilename,
			&tm.Kind, &tm.Width, &tm.Height, &tm.DurationMs, &tm.ThreadID, &tm.SentAt, &tm.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, tm)
	}
	return out, rows.Err()
}

// ListAttachmentsForMessage lists every attachment belonging to one message.
func ListAttachmentsForMessage(ctx context.Context, db *sql.DB, messageID string) ([]MediaRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+mediaColumns+` FROM attachments a WHERE a.message_id = ? ORDER BY a.id`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MediaRow
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
