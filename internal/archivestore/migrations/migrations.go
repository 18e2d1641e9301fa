// Package migrations applies the archive's ordered schema migrations,
// tracked via PRAGMA user_version, one migration per version bump.
// Grounded on original_source/core/src/db.rs (apply_migrations) for the
// user_version mechanism and the teacher's
// internal/storage/sqlite/migrations.go for the ordered-registration-list
// structuring (one named step per file).
package migrations

import (
	"database/sql"
	"fmt"
)

// Step is one ordered schema migration.
type Step struct {
	Name string
	SQL  string
}

// Ordered lists every migration in application order. Index+1 is its
// resulting user_version.
var Ordered = []Step{
	{Name: "initial_schema", SQL: initialSchemaSQL},
	{Name: "attachment_size_bucket", SQL: attachmentSizeBucketSQL},
	{Name: "tags", SQL: tagsSQL},
	{Name: "message_tags_index", SQL: messageTagsIndexSQL},
	{Name: "imports_source_hash_unique", SQL: importsSourceHashUniqueSQL},
	{Name: "messages_sort_ts", SQL: messagesSortTsSQL},
	{Name: "messages_sort_ts_trigger", SQL: messagesSortTsTriggerSQL},
}

// Apply brings db's schema up to the latest version, executing any
// migration whose version exceeds the database's current PRAGMA
// user_version.
func Apply(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for i, step := range Ordered {
		version := i + 1
		if version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", step.Name, err)
		}
		if _, err := tx.Exec(step.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", step.Name, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("bump user_version after %s: %w", step.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", step.Name, err)
		}
	}
	return nil
}
