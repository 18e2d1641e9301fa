package query

import (
	"context"
	"database/sql"
)

// GetArchiveStats returns the archive's top-level counters.
func GetArchiveStats(ctx context.Context, db *sql.DB) (ArchiveStats, error) {
	var s ArchiveStats
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM threads`).Scan(&s.Threads); err != nil {
		return ArchiveStats{}, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&s.Messages); err != nil {
		return ArchiveStats{}, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipients`).Scan(&s.Recipients); err != nil {
		return ArchiveStats{}, err
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attachments`).Scan(&s.Attachments); err != nil {
		return ArchiveStats{}, err
	}
	return s, nil
}
