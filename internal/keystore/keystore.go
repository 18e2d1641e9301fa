// Package keystore resolves and derives the archive master key.
//
// Resolution order mirrors original_source/core/src/crypto.rs
// load_or_create_master_key: an explicit test override, then the
// GT_MASTER_KEY_HEX environment variable, then the OS keychain, creating and
// persisting a fresh random key on first use.
package keystore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
	"github.com/untoldecay/goldenthread/internal/secretstore"
)

const (
	keychainService = "com.goldenthread.app"
	keychainAccount = "archive-master-key"
	masterKeyEnvVar = "GT_MASTER_KEY_HEX"
	keyLen          = 32
)

// MasterKey is the 32-byte root key the archive's data keys derive from.
type MasterKey [keyLen]byte

var (
	overrideMu sync.Mutex
	override   *MasterKey
)

// SetTestOverride installs a key that load/create resolution will return
// before consulting the environment or the keychain. Intended for tests and
// debug tooling only — never called from a production code path.
func SetTestOverride(key MasterKey) {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	k := key
	override = &k
}

// SetTestOverrideFromPassphrase derives a deterministic test key by hashing
// passphrase with SHA-256, matching set_test_key_from_passphrase in the
// original crypto.rs.
func SetTestOverrideFromPassphrase(passphrase string) {
	SetTestOverride(MasterKey(sha256.Sum256([]byte(passphrase))))
}

// ClearTestOverride removes any installed override.
func ClearTestOverride() {
	overrideMu.Lock()
	defer overrideMu.Unlock()
	override = nil
}

// LoadOrCreate resolves the archive master key: override, then env var,
// then keychain lookup, creating and persisting a new random key if the
// keychain has none.
func LoadOrCreate(store secretstore.Store) (MasterKey, error) {
	overrideMu.Lock()
	ov := override
	overrideMu.Unlock()
	if ov != nil {
		return *ov, nil
	}

	if hexKey := os.Getenv(masterKeyEnvVar); hexKey != "" {
		return ParseHexKey(hexKey)
	}

	secret, err := store.Get(keychainService, keychainAccount)
	if err == nil {
		return ParseHexKey(secret)
	}
	if err != secretstore.ErrNotFound {
		return MasterKey{}, archiveerr.Wrap(archiveerr.KindCrypto, "read master key from keychain", err)
	}

	var fresh MasterKey
	if _, err := rand.Read(fresh[:]); err != nil {
		return MasterKey{}, archiveerr.Wrap(archiveerr.KindCrypto, "generate master key", err)
	}
	if err := store.Set(keychainService, keychainAccount, hex.EncodeToString(fresh[:])); err != nil {
		return MasterKey{}, archiveerr.Wrap(archiveerr.KindCrypto, "persist master key to keychain", err)
	}
	return fresh, nil
}

// ParseHexKey validates and decodes a 32-byte hex-encoded key.
func ParseHexKey(s string) (MasterKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return MasterKey{}, archiveerr.Wrap(archiveerr.KindCrypto, "decode hex key", err)
	}
	if len(raw) != keyLen {
		return MasterKey{}, archiveerr.Crypto("master key must be %d bytes, got %d", keyLen, len(raw))
	}
	var k MasterKey
	copy(k[:], raw)
	return k, nil
}
