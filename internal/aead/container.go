// Package aead implements the chunked AES-256-GCM container format used to
// encrypt attachments and thumbnails at rest.
//
// Layout (21-byte header, grounded on original_source/core/src/crypto.rs):
//
//	offset 0:  magic "GTAT"       (4 bytes)
//	offset 4:  version            (1 byte, currently 1)
//	offset 5:  chunk size, LE u32 (4 bytes) — plaintext bytes per chunk
//	offset 9:  base nonce          (12 bytes)
//	offset 21: chunk 0 ciphertext+tag, chunk 1 ciphertext+tag, ...
//
// Each chunk's nonce is base_nonce with bytes [4:12] overwritten by the
// chunk's big-endian uint64 counter, so chunk nonces never repeat for a
// given base nonce as long as there are fewer than 2^64 chunks.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

const (
	// Magic is the 4-byte container magic.
	Magic = "GTAT"
	// Version is the only supported container version.
	Version byte = 1
	// TagLen is the AES-GCM authentication tag length.
	TagLen = 16
	// HeaderLen is the fixed header size in bytes.
	HeaderLen = 21
	// DefaultChunkSize is used for attachments below the large-file threshold.
	DefaultChunkSize = 1 << 20
	// LargeChunkSize is used for attachments at or above 10 MiB.
	LargeChunkSize = 4 << 20
	// MaxChunkSize is the largest chunk size the format allows.
	MaxChunkSize = 8 << 20

	nonceLen = 12
)

// Header describes a container's fixed prefix.
type Header struct {
	ChunkSize uint32
	BaseNonce [nonceLen]byte
}

func writeHeader(w io.Writer, h Header) error {
	buf := make([]byte, HeaderLen)
	copy(buf[0:4], Magic)
	buf[4] = Version
	binary.LittleEndian.PutUint32(buf[5:9], h.ChunkSize)
	copy(buf[9:21], h.BaseNonce[:])
	_, err := w.Write(buf)
	return err
}

func readHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("read container header: %w", err)
	}
	if string(buf[0:4]) != Magic {
		return Header{}, archiveerr.Crypto("bad container magic")
	}
	if buf[4] != Version {
		return Header{}, archiveerr.Crypto("unsupported container version %d", buf[4])
	}
	h := Header{ChunkSize: binary.LittleEndian.Uint32(buf[5:9])}
	copy(h.BaseNonce[:], buf[9:21])
	return h, nil
}

func nonceForChunk(base [nonceLen]byte, counter uint64) [nonceLen]byte {
	n := base
	binary.BigEndian.PutUint64(n[4:12], counter)
	return n
}

func newGCM(key [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, archiveerr.Wrap(archiveerr.KindCrypto, "init aes cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, archiveerr.Wrap(archiveerr.KindCrypto, "init gcm", err)
	}
	return gcm, nil
}

// Encrypt streams r through AES-256-GCM in fixed-size chunks, writing a
// container to w. chunkSize must be in (0, MaxChunkSize].
func Encrypt(r io.Reader, w io.Writer, key [32]byte, chunkSize int) (int64, error) {
	return encrypt(r, w, key, chunkSize, nil)
}

// EncryptWithHash is Encrypt but also feeds every plaintext chunk into hash,
// matching encrypt_stream_with_hash in the original source (used so the
// importer can learn an attachment's content hash while encrypting it).
func EncryptWithHash(r io.Reader, w io.Writer, key [32]byte, chunkSize int, hash io.Writer) (int64, error) {
	return encrypt(r, w, key, chunkSize, hash)
}

func encrypt(r io.Reader, w io.Writer, key [32]byte, chunkSize int, hash io.Writer) (int64, error) {
	if chunkSize <= 0 || chunkSize > MaxChunkSize {
		return 0, archiveerr.InvalidArgument("chunk size %d out of range", chunkSize)
	}
	gcm, err := newGCM(key)
	if err != nil {
		return 0, err
	}

	var base [nonceLen]byte
	if _, err := rand.Read(base[:]); err != nil {
		return 0, archiveerr.Wrap(archiveerr.KindCrypto, "generate base nonce", err)
	}
	if err := writeHeader(w, Header{ChunkSize: uint32(chunkSize), BaseNonce: base}); err != nil {
		return 0, fmt.Errorf("write container header: %w", err)
	}

	buf := make([]byte, chunkSize)
	var total int64
	var counter uint64
	for {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			if hash != nil {
				hash.Write(buf[:n])
			}
			nonce := nonceForChunk(base, counter)
			ct := gcm.Seal(nil, nonce[:], buf[:n], nil)
			if _, err := w.Write(ct); err != nil {
				return total, fmt.Errorf("write ciphertext chunk: %w", err)
			}
			total += int64(n)
			counter++
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return total, fmt.Errorf("read plaintext chunk: %w", readErr)
		}
	}
	return total, nil
}

// Decrypt streams a container from r, writing decrypted plaintext to w.
func Decrypt(r io.Reader, w io.Writer, key [32]byte) (int64, error) {
	h, err := readHeader(r)
	if err != nil {
		return 0, err
	}
	gcm, err := newGCM(key)
	if err != nil {
		return 0, err
	}

	ctChunkLen := int(h.ChunkSize) + TagLen
	buf := make([]byte, ctChunkLen)
	var total int64
	var counter uint64
	for {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			nonce := nonceForChunk(h.BaseNonce, counter)
			pt, err := gcm.Open(nil, nonce[:], buf[:n], nil)
			if err != nil {
				return total, archiveerr.Wrap(archiveerr.KindCrypto, "decrypt chunk", err)
			}
			if _, err := w.Write(pt); err != nil {
				return total, fmt.Errorf("write plaintext chunk: %w", err)
			}
			total += int64(len(pt))
			counter++
		}
		if readErr == io.EOF {
			break
		}
		if readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return total, fmt.Errorf("read ciphertext chunk: %w", readErr)
		}
	}
	return total, nil
}
