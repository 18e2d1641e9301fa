package archivestore

import (
	"context"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

// MetadataSidecar is a small human-readable summary of an archive's
// contents, written alongside the database file for users who want to
// glance at what's inside without opening a SQLite client. Mirrors the
// teacher's own use of TOML for sidecar config/metadata files.
type MetadataSidecar struct {
	ArchivePath string `toml:"archive_path"`
	Threads     int64  `toml:"threads"`
	Messages    int64  `toml:"messages"`
	Recipients  int64  `toml:"recipients"`
	Attachments int64  `toml:"attachments"`
}

// WriteMetadataSidecar computes the archive's aggregate counters and
// writes them as a goldenthread.toml file at sidecarPath.
func (a *Archive) WriteMetadataSidecar(ctx context.Context, sidecarPath string) error {
	var m MetadataSidecar
	m.ArchivePath = a.path

	if err := a.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM threads`).Scan(&m.Threads); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "count threads for sidecar", err)
	}
	if err := a.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&m.Messages); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "count messages for sidecar", err)
	}
	if err := a.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipients`).Scan(&m.Recipients); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "count recipients for sidecar", err)
	}
	if err := a.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM attachments`).Scan(&m.Attachments); err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "count attachments for sidecar", err)
	}

	f, err := os.Create(sidecarPath)
	if err != nil {
		return archiveerr.Wrap(archiveerr.KindInvalidArgument, "create metadata sidecar", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(m); err != nil {
		return archiveerr.Wrap(archiveerr.KindInvalidArgument, "encode metadata sidecar", err)
	}
	return nil
}
