package query

import (
	"context"
	"database/sql"
	"strings"
)

// ListReactionsForMessages returns a reaction emoji/count summary for every
// message id supplied, grouped by (message_id, emoji).
func ListReactionsForMessages(ctx context.Context, db *sql.DB, messageIDs []string) ([]ReactionSummary, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(messageIDs))
	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, `
		SELECT message_id, emoji, COUNT(*) AS count
		FROM reactions
		WHERE message_id IN (`+strings.Join(placeholders, ",")+`)
		GROUP BY message_id, emoji
		ORDER BY message_id, emoji`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReactionSummary
	for rows.Next() {
		var r ReactionSummary
		if err := rows.Scan(&r.MessageID, &r.Emoji, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
