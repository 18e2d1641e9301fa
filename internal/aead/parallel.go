package aead

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

// ParallelDecryptThreshold is the plaintext size at or above which
// DecryptFileParallel is used instead of the serial Decrypt path, matching
// PARALLEL_DECRYPT_THRESHOLD in original_source/app/src-tauri/src/media_ops.rs.
const ParallelDecryptThreshold = 10 << 20

// DefaultParallelWorkers matches PARALLEL_DECRYPT_WORKERS in the original.
const DefaultParallelWorkers = 4

// DecryptFileParallel decrypts a container using workers goroutines that
// each claim chunk indices from a shared atomic counter and perform
// positional reads/writes on disjoint byte ranges, avoiding any
// inter-worker synchronization beyond the counter itself. The output file
// is pre-truncated to its known plaintext length before workers start.
func DecryptFileParallel(inputPath, outputPath string, key [32]byte, workers int) (int64, error) {
	if workers < 1 {
		workers = 1
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return 0, fmt.Errorf("stat container file: %w", err)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("open container file: %w", err)
	}
	defer in.Close()
	h, err := readHeader(in)
	if err != nil {
		return 0, err
	}

	plaintextLen, err := PlaintextLen(inputPath)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()
	if err := out.Truncate(plaintextLen); err != nil {
		return 0, fmt.Errorf("truncate output file: %w", err)
	}

	ctChunkLen := int64(h.ChunkSize) + TagLen
	body := info.Size() - HeaderLen
	numChunks := body / ctChunkLen
	if body%ctChunkLen != 0 {
		numChunks++
	}
	if numChunks == 0 {
		return plaintextLen, nil
	}

	gcm, err := newGCM(key)
	if err != nil {
		return 0, err
	}

	var next atomic.Int64
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			ctBuf := make([]byte, ctChunkLen)
			for {
				idx := next.Add(1) - 1
				if idx >= numChunks {
					return nil
				}

				inOff := HeaderLen + idx*ctChunkLen
				n := ctChunkLen
				if idx == numChunks-1 && body%ctChunkLen != 0 {
					n = body % ctChunkLen
				}
				if _, err := in.ReadAt(ctBuf[:n], inOff); err != nil {
					return fmt.Errorf("read chunk %d: %w", idx, err)
				}

				nonce := nonceForChunk(h.BaseNonce, uint64(idx))
				pt, err := gcm.Open(nil, nonce[:], ctBuf[:n], nil)
				if err != nil {
					return archiveerr.Wrap(archiveerr.KindCrypto, fmt.Sprintf("decrypt chunk %d", idx), err)
				}

				outOff := idx * int64(h.ChunkSize)
				if _, err := out.WriteAt(pt, outOff); err != nil {
					return fmt.Errorf("write chunk %d: %w", idx, err)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return plaintextLen, nil
}
