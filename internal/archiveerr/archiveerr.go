// Package archiveerr defines the error taxonomy shared across the archive
// engine: InvalidArgument, InvalidPassphrase, Crypto, Sqlite, NotImplemented.
package archiveerr

import (
	"errors"
	"fmt"
)

// Kind classifies an archive error so callers can branch without string
// matching.
type Kind int

const (
	// KindInvalidArgument marks a caller-supplied value that is structurally
	// wrong (bad path, empty passphrase, malformed cursor).
	KindInvalidArgument Kind = iota
	// KindInvalidPassphrase marks a passphrase that fails normalization.
	KindInvalidPassphrase
	// KindCrypto marks a key-derivation, encryption, or decryption failure.
	KindCrypto
	// KindSqlite marks an underlying SQLite failure.
	KindSqlite
	// KindNotImplemented marks a deliberately unimplemented code path.
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidPassphrase:
		return "invalid_passphrase"
	case KindCrypto:
		return "crypto"
	case KindSqlite:
		return "sqlite"
	case KindNotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned throughout the archive engine.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error that wraps an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// InvalidArgument is a convenience constructor.
func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, fmt.Sprintf(format, args...))
}

// InvalidPassphrase is a convenience constructor.
func InvalidPassphrase(format string, args ...any) *Error {
	return New(KindInvalidPassphrase, fmt.Sprintf(format, args...))
}

// Crypto is a convenience constructor.
func Crypto(format string, args ...any) *Error {
	return New(KindCrypto, fmt.Sprintf(format, args...))
}

// Sqlite wraps a SQLite driver error.
func Sqlite(err error) *Error {
	return Wrap(KindSqlite, "sqlite", err)
}

// NotImplemented is a convenience constructor.
func NotImplemented(what string) *Error {
	return New(KindNotImplemented, what+" is not implemented")
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
