// Package schemaprobe tolerates variant table/column names across Signal
// backup schema versions. Grounded on table_exists/column_exists/pick_column
// in original_source/core/src/importer.rs.
package schemaprobe

import "database/sql"

// TableExists reports whether a table with the given name exists.
func TableExists(db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type IN ('table','view') AND name = ?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ColumnExists reports whether table has a column named column.
func ColumnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query("PRAGMA table_info(" + quoteIdent(table) + ")")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return false, err
	}
	dest := make([]any, len(cols))
	raw := make([]sql.RawBytes, len(cols))
	for i := range dest {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return false, err
		}
		// PRAGMA table_info columns: cid, name, type, notnull, dflt_value, pk
		if len(raw) > 1 && string(raw[1]) == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// PickColumn returns the first candidate column that exists on table, or
// "" if none do.
func PickColumn(db *sql.DB, table string, candidates ...string) (string, error) {
	for _, c := range candidates {
		ok, err := ColumnExists(db, table, c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return "", nil
}

func quoteIdent(ident string) string {
	return "\"" + ident + "\""
}
