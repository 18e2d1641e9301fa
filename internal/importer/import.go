package importer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
	"github.com/untoldecay/goldenthread/internal/archivestore"
	"github.com/untoldecay/goldenthread/internal/decoder"
)

// Options configures a single Import run.
type Options struct {
	// SourcePath is the encrypted .backup file to import.
	SourcePath string
	// Passphrase is the raw (possibly dash/space-grouped) 30-digit code.
	Passphrase string
	// TempDir is the scratch directory the decoded db and extracted
	// attachment frames are written to. Removed on success; preserved on
	// decode failure so the caller can inspect it.
	TempDir string
	// AttachmentsDir is where encrypted attachment blobs are persisted,
	// content-addressed by plaintext SHA-256.
	AttachmentsDir string
	// Key is the derived attachment AEAD key (see keystore.AttachmentKey).
	Key         [32]byte
	Decoder     decoder.Decoder
	Progress    ProgressFunc
}

// Result summarizes a completed import.
type Result struct {
	ImportID  string
	StatsJSON string
}

// Import runs the full pipeline against an already-open archive: plans
// (normalizes passphrase, hashes source), rejects a source already loaded
// successfully, decodes the Signal backup, maps it into the archive schema
// inside one transaction, and records the outcome on the imports row.
// Matches the top-level flow of import_backup in importer.rs.
func Import(ctx context.Context, archive *archivestore.Archive, opts Options) (Result, error) {
	plan, err := PlanImport(opts.SourcePath, opts.Passphrase, opts.Progress)
	if err != nil {
		return Result{}, err
	}

	if alreadyLoaded, err := sourceAlreadyImported(ctx, archive.DB, plan.SourceHash); err != nil {
		return Result{}, err
	} else if alreadyLoaded {
		return Result{}, archiveerr.InvalidArgument("backup %s is already loaded in this archive", plan.SourceFilename)
	}

	info, err := os.Stat(plan.SourcePath)
	if err != nil {
		return Result{}, archiveerr.InvalidArgument("backup file not found: %v", err)
	}

	if err := os.MkdirAll(opts.AttachmentsDir, 0o700); err != nil {
		return Result{}, archiveerr.Wrap(archiveerr.KindInvalidArgument, "create attachments dir", err)
	}

	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir, err = os.MkdirTemp("", "goldenthread-import-*")
		if err != nil {
			return Result{}, archiveerr.Wrap(archiveerr.KindInvalidArgument, "create temp dir", err)
		}
	}
	framesDir := filepath.Join(tempDir, "frames")
	if err := os.MkdirAll(framesDir, 0o700); err != nil {
		return Result{}, archiveerr.Wrap(archiveerr.KindInvalidArgument, "create frames dir", err)
	}
	decodedDBPath := filepath.Join(tempDir, "signal.sqlite")

	if err := CheckDiskSpace(tempDir, filepath.Dir(archive.Path()), info.Size()); err != nil {
		return Result{}, err
	}

	importID := "import:" + uuid.NewString()
	if _, err := archive.DB.ExecContext(ctx, `
		INSERT INTO imports (id, imported_at, source_filename, source_hash, status)
		VALUES (?,?,?,?,'running')`,
		importID, time.Now().UnixMilli(), plan.SourceFilename, plan.SourceHash); err != nil {
		return Result{}, archiveerr.Wrap(archiveerr.KindSqlite, "record import start", err)
	}

	report := func(msg string) {
		if opts.Progress != nil {
			opts.Progress(msg)
		}
	}

	report("decoding backup")
	dec := opts.Decoder
	if dec == nil {
		dec = decoder.NewExternal("")
	}
	if err := dec.Decode(ctx, plan.SourcePath, plan.NormalizedPassphrase, decodedDBPath, framesDir); err != nil {
		failErr := finalizeImportFailure(ctx, archive.DB, importID, err)
		if strings.Contains(strings.ToLower(err.Error()), "unsupported") {
			return Result{}, archiveerr.InvalidArgument("unsupported backup format: %v", err)
		}
		if failErr != nil {
			return Result{}, failErr
		}
		return Result{}, archiveerr.Wrap(archiveerr.KindInvalidArgument, "decode backup", err)
	}
	defer os.RemoveAll(tempDir)

	foreignDB, err := sql.Open("sqlite3", "file:"+decodedDBPath+"?mode=ro&immutable=1")
	if err != nil {
		_ = finalizeImportFailure(ctx, archive.DB, importID, err)
		return Result{}, archiveerr.Wrap(archiveerr.KindSqlite, "open decoded backup", err)
	}
	defer foreignDB.Close()

	report("mapping messages")
	tx, err := archive.DB.BeginTx(ctx, nil)
	if err != nil {
		_ = finalizeImportFailure(ctx, archive.DB, importID, err)
		return Result{}, archiveerr.Wrap(archiveerr.KindSqlite, "begin import transaction", err)
	}

	statsJSON, err := MapSignalDB(ctx, foreignDB, tx, framesDir, opts.AttachmentsDir, opts.Key, opts.Progress)
	if err != nil {
		tx.Rollback()
		_ = finalizeImportFailure(ctx, archive.DB, importID, err)
		return Result{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE imports SET status = 'success', imported_at = ?, stats_json = ? WHERE id = ?`,
		time.Now().UnixMilli(), statsJSON, importID); err != nil {
		tx.Rollback()
		return Result{}, archiveerr.Wrap(archiveerr.KindSqlite, "record import success", err)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, archiveerr.Wrap(archiveerr.KindSqlite, "commit import transaction", err)
	}

	report("import complete")
	return Result{ImportID: importID, StatsJSON: statsJSON}, nil
}

func sourceAlreadyImported(ctx context.Context, db *sql.DB, sourceHash string) (bool, error) {
	var id string
	err := db.QueryRowContext(ctx,
		`SELECT id FROM imports WHERE source_hash = ? AND status = 'success'`, sourceHash).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, archiveerr.Wrap(archiveerr.KindSqlite, "check prior imports", err)
	}
	return true, nil
}

// finalizeImportFailure records the decode/mapping error on the imports row
// with a truncated tail of the error text. It does not touch the temp dir:
// a decode failure leaves it in place, while failures after a successful
// decode remove it through the deferred cleanup registered at that point.
func finalizeImportFailure(ctx context.Context, db *sql.DB, importID string, cause error) error {
	tail := cause.Error()
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	statsJSON := fmt.Sprintf(`{"error":%q}`, tail)
	_, err := db.ExecContext(ctx, `
		UPDATE imports SET status = 'failed', imported_at = ?, stats_json = ? WHERE id = ?`,
		time.Now().UnixMilli(), statsJSON, importID)
	if err != nil {
		return archiveerr.Wrap(archiveerr.KindSqlite, "record import failure", err)
	}
	return nil
}
