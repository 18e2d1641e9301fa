package importer

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/untoldecay/goldenthread/internal/aead"
	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

const (
	attachmentBatchSize    = 500
	attachmentProgressEvery = 2000
	attachmentWorkers      = 4

	sizeSmallMax  = 1<<20 - 1
	sizeMediumMax = 10<<20 - 1
)

// AttachmentJob describes one extracted attachment file ready to be
// encrypted and inserted, matching the job shape built in
// importer/attachments.rs's map_attachments. The attachment's id isn't
// known until its content hash is, so it's computed in attachmentWorker
// as att:<MessageID>:<sha256> rather than carried on the job itself.
type AttachmentJob struct {
	MessageID        string
	SourcePath       string
	Mime             *string
	SizeBytes        *int64
	OriginalFilename *string
	Width            *int64
	Height           *int64
	DurationMs       *int64
}

// AttachmentFrameFile returns the extracted file path for a part/attachment
// row identified by (id, uniqueID), where uniqueID defaults to -1 when the
// source value is 0 or NULL.
func AttachmentFrameFile(framesDir string, id, uniqueID int64) string {
	if uniqueID == 0 {
		uniqueID = -1
	}
	return filepath.Join(framesDir, fmt.Sprintf("Attachment_%d_%d.bin", id, uniqueID))
}

type attachmentRow struct {
	id, messageID, sha256      string
	mime, originalFilename     *string
	sizeBytes, width, height   *int64
	durationMs                 *int64
	sizeBucket                 *int
	kind                       string
}

type attachmentResult struct {
	row     *attachmentRow
	missing bool
	err     error
}

// MapAttachments encrypts every job's source file under the attachment key
// and inserts the resulting rows, parallelized across attachmentWorkers
// goroutines funneling results to the single caller-held transaction.
// Matches map_attachments in importer/attachments.rs: jobs are split into
// disjoint interleaved subsets, worker i taking jobs i, i+workers,
// i+2*workers, ...; a single hard worker error aborts the whole import.
func MapAttachments(ctx context.Context, tx *sql.Tx, jobs []AttachmentJob, attachmentsDir string, key [32]byte, progress ProgressFunc) (found, missing int, err error) {
	if len(jobs) == 0 {
		return 0, 0, nil
	}
	workers := attachmentWorkers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make(chan attachmentResult, workers)
	for i := 0; i < workers; i++ {
		go attachmentWorker(jobs, i, workers, attachmentsDir, key, results)
	}

	var batch []attachmentRow
	received := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := insertAttachmentBatch(ctx, tx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for received < len(jobs) {
		res := <-results
		received++
		switch {
		case res.err != nil:
			return found, missing, archiveerr.InvalidArgument("attachment worker failed: %v", res.err)
		case res.missing:
			missing++
		default:
			found++
			batch = append(batch, *res.row)
			if len(batch) >= attachmentBatchSize {
				if err := flush(); err != nil {
					return found, missing, err
				}
			}
		}
		if progress != nil && received%attachmentProgressEvery == 0 {
			progress(fmt.Sprintf("attachments: %d/%d processed", received, len(jobs)))
		}
	}
	if err := flush(); err != nil {
		return found, missing, err
	}
	return found, missing, nil
}

func attachmentWorker(jobs []AttachmentJob, workerIdx, workerCount int, attachmentsDir string, key [32]byte, results chan<- attachmentResult) {
	for i := workerIdx; i < len(jobs); i += workerCount {
		job := jobs[i]
		if _, err := os.Stat(job.SourcePath); err != nil {
			results <- attachmentResult{missing: true}
			continue
		}

		sha, err := copyAttachment(job.SourcePath, attachmentsDir, key)
		if err != nil {
			results <- attachmentResult{err: err}
			continue
		}

		var bucket *int
		if job.SizeBytes != nil {
			b := bucketFromSize(*job.SizeBytes)
			bucket = &b
		}
		results <- attachmentResult{row: &attachmentRow{
			id: fmt.Sprintf("att:%s:%s", job.MessageID, sha), messageID: job.MessageID, sha256: sha,
			mime: job.Mime, originalFilename: job.OriginalFilename,
			sizeBytes: job.SizeBytes, width: job.Width, height: job.Height, durationMs: job.DurationMs,
			sizeBucket: bucket, kind: inferKind(job.Mime),
		}}
	}
}

// bucketFromSize maps a byte size to the 0/1/2 size_bucket enum.
func bucketFromSize(size int64) int {
	switch {
	case size <= sizeSmallMax:
		return 0
	case size <= sizeMediumMax:
		return 1
	default:
		return 2
	}
}

// inferKind maps a mime type's top-level type to the image/video/audio/file
// kind enum, matching infer_kind in the original source.
func inferKind(mime *string) string {
	if mime == nil {
		return "file"
	}
	switch {
	case strings.HasPrefix(*mime, "image/"):
		return "image"
	case strings.HasPrefix(*mime, "video/"):
		return "video"
	case strings.HasPrefix(*mime, "audio/"):
		return "audio"
	default:
		return "file"
	}
}

// attachmentChunkSize picks the AEAD chunk size for a plaintext of the
// given size: 4 MiB at or above 10 MiB, else 1 MiB.
func attachmentChunkSize(plaintextSize int64) int {
	if plaintextSize >= 10<<20 {
		return aead.LargeChunkSize
	}
	return aead.DefaultChunkSize
}

// copyAttachment streams src through the AEAD container under key,
// learning its plaintext SHA-256 as it goes, and atomically renames the
// result into attachmentsDir/<sha256>. If that destination already exists
// (a concurrent import raced us to the same content), the new temp file is
// discarded and the existing one is kept — AlreadyExists is treated as
// success, matching copy_attachment in the original source.
func copyAttachment(srcPath, attachmentsDir string, key [32]byte) (string, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return "", err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(attachmentsDir, "attachment-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp attachment file: %w", err)
	}
	tmpPath := tmp.Name()

	hasher := sha256.New()
	chunkSize := attachmentChunkSize(info.Size())
	if _, err := aead.EncryptWithHash(src, tmp, key, chunkSize, hasher); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	tmp.Close()

	sha := hex.EncodeToString(hasher.Sum(nil))
	destPath := filepath.Join(attachmentsDir, sha)
	if _, err := os.Stat(destPath); err == nil {
		os.Remove(tmpPath)
		return sha, nil
	}
	if err := os.Rename(tmpPath, destPath); err != nil && !os.IsExist(err) {
		os.Remove(tmpPath)
		return "", fmt.Errorf("persist attachment: %w", err)
	}
	return sha, nil
}

func insertAttachmentBatch(ctx context.Context, tx *sql.Tx, rows []attachmentRow) error {
	if len(rows) == 0 {
		return nil
	}
	placeholders := make([]string, len(rows))
	args := make([]any, 0, len(rows)*10)
	for i, r := range rows {
		placeholders[i] = "(?,?,?,?,?,?,?,?,?,?)"
		args = append(args, r.id, r.messageID, r.sha256, r.mime, r.sizeBytes,
			r.originalFilename, r.kind, r.width, r.height, r.durationMs)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO attachments
			(id, message_id, sha256, mime, size_bytes, original_filename, kind, width, height, duration_ms)
		VALUES `+strings.Join(placeholders, ","), args...)
	if err != nil {
		return err
	}

	for _, r := range rows {
		if r.sizeBucket == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE attachments SET size_bucket = ? WHERE id = ?`, *r.sizeBucket, r.id); err != nil {
			return err
		}
	}
	return nil
}
