// Package archivestore owns the archive's SQLite connection: opening with
// the pragma set the archive requires, running ordered migrations tracked
// via PRAGMA user_version, and recovering imports left "running" by a
// crashed process. Grounded on original_source/core/src/db.rs, generalized
// to Go with the teacher's internal/storage/sqlite/migrations.go structuring
// and its sqlite_test.go/freshness_test.go DSN convention.
package archivestore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofrs/flock"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
	"github.com/untoldecay/goldenthread/internal/archivestore/migrations"
)

// Archive owns the single writer connection to one archive database file,
// plus the on-disk lock that keeps a second process from opening it
// concurrently.
type Archive struct {
	DB   *sql.DB
	lock *flock.Flock
	path string
}

// Option configures Open.
type Option func(*options)

type options struct {
	busyTimeout time.Duration
}

// WithBusyTimeout overrides the default 5s SQLite busy_timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// Open opens (creating if absent) the archive database at path, applies the
// pragma batch, runs any pending migrations, locks the archive against
// concurrent writers from other processes, and marks any import left
// "running" by a crashed process as failed.
func Open(path string, opts ...Option) (*Archive, error) {
	o := options{busyTimeout: 5 * time.Second}
	for _, fn := range opts {
		fn(&o)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, archiveerr.Wrap(archiveerr.KindSqlite, "acquire archive lock", err)
	}
	if !locked {
		return nil, archiveerr.InvalidArgument("archive %s is already open by another process", path)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(ON)",
		path, o.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		lock.Unlock()
		return nil, archiveerr.Sqlite(err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA journal_size_limit=67108864",
		"PRAGMA temp_store=MEMORY",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			lock.Unlock()
			return nil, archiveerr.Wrap(archiveerr.KindSqlite, "apply pragma "+pragma, err)
		}
	}

	if err := migrations.Apply(db); err != nil {
		db.Close()
		lock.Unlock()
		return nil, err
	}

	if _, err := db.Exec(`UPDATE imports SET status = 'failed',
		stats_json = COALESCE(stats_json, '{"error":"import interrupted"}')
		WHERE status = 'running'`); err != nil {
		db.Close()
		lock.Unlock()
		return nil, archiveerr.Wrap(archiveerr.KindSqlite, "recover crashed imports", err)
	}

	return &Archive{DB: db, lock: lock, path: path}, nil
}

// Close releases the database connection and the archive lock.
func (a *Archive) Close() error {
	dbErr := a.DB.Close()
	lockErr := a.lock.Unlock()
	if dbErr != nil {
		return dbErr
	}
	return lockErr
}

// Path returns the archive's database file path.
func (a *Archive) Path() string { return a.path }
