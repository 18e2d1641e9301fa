// Package importer implements the archive's import pipeline: planning
// (passphrase normalization, source hashing), preflight (disk space),
// decoding (via internal/decoder), schema-tolerant mapping into the
// archive schema, attachment extraction, FTS rebuild, and thread-activity
// recomputation. Grounded on original_source/core/src/importer.rs,
// importer/attachments.rs, and importer/fts.rs.
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

// Plan describes a validated, hashed import about to run.
type Plan struct {
	SourcePath          string
	NormalizedPassphrase string
	SourceFilename      string
	SourceHash          string
}

// NormalizePassphrase trims whitespace and separator dashes and requires
// exactly 30 ASCII digits remain, matching normalize_passphrase in the
// original source (Signal backup passphrases are 30-digit codes grouped by
// dashes/spaces for display).
func NormalizePassphrase(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r == ' ' || r == '-' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) != 30 {
		return "", archiveerr.InvalidPassphrase("passphrase must contain exactly 30 digits, got %d", len(out))
	}
	for _, r := range out {
		if r < '0' || r > '9' {
			return "", archiveerr.InvalidPassphrase("passphrase must be all digits")
		}
	}
	return out, nil
}

// ProgressFunc reports human-readable progress lines during long-running
// stages (hashing, mapping, attachment extraction, FTS rebuild).
type ProgressFunc func(string)

// PlanImport validates sourcePath, normalizes passphrase, and computes the
// source file's SHA-256, reporting percent-boundary progress via progress.
func PlanImport(sourcePath, passphrase string, progress ProgressFunc) (Plan, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return Plan{}, archiveerr.InvalidArgument("backup file not found: %v", err)
	}
	if info.Size() == 0 {
		return Plan{}, archiveerr.InvalidArgument("backup file is empty")
	}
	if !strings.HasSuffix(sourcePath, ".backup") {
		return Plan{}, archiveerr.InvalidArgument("backup file must have a .backup extension")
	}

	normalized, err := NormalizePassphrase(passphrase)
	if err != nil {
		return Plan{}, err
	}

	hash, err := hashFileWithProgress(sourcePath, info.Size(), progress)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		SourcePath:           sourcePath,
		NormalizedPassphrase: normalized,
		SourceFilename:       baseName(sourcePath),
		SourceHash:           hash,
	}, nil
}

func hashFileWithProgress(path string, size int64, progress ProgressFunc) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 1<<20)
	var read int64
	lastPct := -1
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			read += int64(n)
			if progress != nil && size > 0 {
				pct := int(read * 100 / size)
				if pct != lastPct {
					progress("hashing: " + itoa(pct) + "%")
					lastPct = pct
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func baseName(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path
	}
	return path[i+1:]
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [12]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
