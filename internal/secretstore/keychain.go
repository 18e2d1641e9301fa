package secretstore

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// Keychain stores secrets in the OS credential manager (macOS Keychain,
// Windows Credential Manager, or a DBus Secret Service on Linux).
type Keychain struct{}

// NewKeychain returns the OS-keychain-backed Store.
func NewKeychain() Keychain { return Keychain{} }

func (Keychain) Get(service, account string) (string, error) {
	v, err := keyring.Get(service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

func (Keychain) Set(service, account, secret string) error {
	return keyring.Set(service, account, secret)
}
