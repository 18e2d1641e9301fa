package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// CreateTag inserts a new tag with id "tag:<nowMs>" and the next
// display_order (max existing + 1, starting at 0).
func CreateTag(ctx context.Context, db *sql.DB, nowMs int64, name, color string) (Tag, error) {
	var maxOrder sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(display_order) FROM tags`).Scan(&maxOrder); err != nil {
		return Tag{}, err
	}
	order := int64(0)
	if maxOrder.Valid {
		order = maxOrder.Int64 + 1
	}

	t := Tag{ID: fmt.Sprintf("tag:%d", nowMs), Name: name, Color: color, CreatedAt: nowMs, DisplayOrder: order}
	_, err := db.ExecContext(ctx, `INSERT INTO tags (id, name, color, created_at, display_order) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Color, t.CreatedAt, t.DisplayOrder)
	if err != nil {
		return Tag{}, err
	}
	return t, nil
}

// UpdateTag changes only a tag's name and color.
func UpdateTag(ctx context.Context, db *sql.DB, id, name, color string) error {
	_, err := db.ExecContext(ctx, `UPDATE tags SET name = ?, color = ? WHERE id = ?`, name, color, id)
	return err
}

// DeleteTag removes a tag; message_tags rows cascade via foreign key.
func DeleteTag(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	return err
}

// ListTags returns every tag ordered by display_order.
func ListTags(ctx context.Context, db *sql.DB) ([]Tag, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, color, created_at, display_order FROM tags ORDER BY display_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt, &t.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MessageTagsFor returns the tags applied to one message.
func MessageTagsFor(ctx context.Context, db *sql.DB, messageID string) (MessageTags, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tg.id, tg.name, tg.color, tg.created_at, tg.display_order
		FROM message_tags mt
		JOIN tags tg ON tg.id = mt.tag_id
		WHERE mt.message_id = ?
		ORDER BY tg.display_order`, messageID)
	if err != nil {
		return MessageTags{}, err
	}
	defer rows.Close()

	mt := MessageTags{MessageID: messageID}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt, &t.DisplayOrder); err != nil {
			return MessageTags{}, err
		}
		mt.Tags = append(mt.Tags, t)
	}
	return mt, rows.Err()
}

// SetMessageTags atomically replaces the full tag set for one message: all
// existing rows are deleted, then the new set is inserted with a common
// tagged_at timestamp.
func SetMessageTags(ctx context.Context, db *sql.DB, messageID string, tagIDs []string, taggedAt int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM message_tags WHERE message_id = ?`, messageID); err != nil {
		return err
	}
	if len(tagIDs) > 0 {
		placeholders := make([]string, len(tagIDs))
		args := make([]any, 0, len(tagIDs)*3)
		for i, tagID := range tagIDs {
			placeholders[i] = "(?, ?, ?)"
			args = append(args, messageID, tagID, taggedAt)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO message_tags (message_id, tag_id, tagged_at) VALUES `+strings.Join(placeholders, ","),
			args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
