package aead

import (
	"fmt"
	"os"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

// EncryptFile encrypts srcPath into a new container at dstPath.
func EncryptFile(srcPath, dstPath string, key [32]byte, chunkSize int) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("create destination file: %w", err)
	}
	defer dst.Close()

	return Encrypt(src, dst, key, chunkSize)
}

// DecryptFile decrypts a container at srcPath into dstPath.
func DecryptFile(srcPath, dstPath string, key [32]byte) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("open container file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("create destination file: %w", err)
	}
	defer dst.Close()

	return Decrypt(src, dst, key)
}

// PlaintextLen computes the decrypted length of a container file from its
// on-disk size, without decrypting it. Matches encrypted_plaintext_len in
// the original source.
func PlaintextLen(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat container file: %w", err)
	}
	size := info.Size()
	if size < HeaderLen {
		return 0, archiveerr.Crypto("container file too small: %d bytes", size)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open container file: %w", err)
	}
	defer f.Close()
	h, err := readHeader(f)
	if err != nil {
		return 0, err
	}

	ctChunkLen := int64(h.ChunkSize) + TagLen
	body := size - HeaderLen
	fullChunks := body / ctChunkLen
	remainder := body % ctChunkLen

	plaintext := fullChunks * int64(h.ChunkSize)
	if remainder > 0 {
		if remainder < TagLen {
			return 0, archiveerr.Crypto("container file truncated mid-tag")
		}
		plaintext += remainder - TagLen
	}
	return plaintext, nil
}
