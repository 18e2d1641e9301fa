package keystore

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

// Purpose is a domain-separation label for key derivation.
type Purpose int

const (
	// PurposeDatabase derives the key used for database-adjacent secrets.
	PurposeDatabase Purpose = iota
	// PurposeAttachments derives the key used to encrypt attachment blobs
	// and thumbnails.
	PurposeAttachments
)

// info returns the literal HKDF info string for a purpose, matching
// KeyPurpose::info in original_source/core/src/crypto.rs exactly.
func (p Purpose) info() []byte {
	switch p {
	case PurposeDatabase:
		return []byte("golden-thread-db-v1")
	case PurposeAttachments:
		return []byte("golden-thread-attachments-v1")
	default:
		panic("keystore: unknown purpose")
	}
}

// DerivedKey is a 32-byte key derived from the master key for one purpose.
type DerivedKey [32]byte

// Derive runs HKDF-SHA256 over master with no salt and the purpose's info
// string, producing a 32-byte output key.
func Derive(master MasterKey, purpose Purpose) (DerivedKey, error) {
	r := hkdf.New(sha256.New, master[:], nil, purpose.info())
	var out DerivedKey
	if _, err := io.ReadFull(r, out[:]); err != nil {
		return DerivedKey{}, archiveerr.Wrap(archiveerr.KindCrypto, "derive key", err)
	}
	return out, nil
}

// AttachmentKey derives the attachment/thumbnail encryption key.
func AttachmentKey(master MasterKey) (DerivedKey, error) {
	return Derive(master, PurposeAttachments)
}
