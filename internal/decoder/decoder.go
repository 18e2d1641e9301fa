// Package decoder models the external Signal backup decoder as a
// collaborator boundary, mirroring the FFI shim in
// original_source/core/src/ffi/signalbackup.rs. Go has no direct FFI
// equivalent in this stack, so the default implementation shells out to an
// external binary instead of linking a native decoder.
package decoder

import (
	"context"
	"fmt"
	"os/exec"
)

// Decoder turns an encrypted Signal .backup file into a plain SQLite
// database plus an extracted attachment frames directory.
type Decoder interface {
	Decode(ctx context.Context, sourcePath, passphrase, outDBPath, framesDir string) error
}

// External shells out to a `signalbackup` binary on PATH. On failure the
// tail of its combined output is included in the returned error, whose text
// the importer records on the failed imports row.
type External struct {
	BinaryPath string
}

// NewExternal returns a Decoder backed by the named binary (default
// "signalbackup" if empty).
func NewExternal(binaryPath string) External {
	if binaryPath == "" {
		binaryPath = "signalbackup"
	}
	return External{BinaryPath: binaryPath}
}

func (e External) Decode(ctx context.Context, sourcePath, passphrase, outDBPath, framesDir string) error {
	cmd := exec.CommandContext(ctx, e.BinaryPath,
		"--input", sourcePath,
		"--passphrase", passphrase,
		"--output-db", outDBPath,
		"--output-frames", framesDir,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("decode backup: %w: %s", err, truncate(out, 4096))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
