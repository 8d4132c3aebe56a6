package secret

import "errors"

var (
	// ErrInvalidConfiguration is returned by constructors given unusable arguments.
	ErrInvalidConfiguration = errors.New("invalid store configuration")
	// ErrStoreNotFound is returned when the backing store file is absent.
	ErrStoreNotFound = errors.New("store not found")
	// ErrIO wraps filesystem failures other than absence.
	ErrIO = errors.New("store i/o failure")
	// ErrDecoding wraps parse failures of the persisted document.
	ErrDecoding = errors.New("store decoding failure")
	// ErrIntegrity covers every cryptographic or encoding inconsistency.
	ErrIntegrity = errors.New("store integrity failure")
)

// Store persists binary secrets addressed by string keys.
type Store interface {
	// StoreSecret stores or replaces the secret for key.
	StoreSecret(key string, secret []byte) error

	// RetrieveSecret returns the secret for key. ok is false when
	// the key is not present.
	RetrieveSecret(key string) (secret []byte, ok bool, err error)

	// DeleteSecret removes the secret for key, if any.
	DeleteSecret(key string) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	ListKeys() ([]string, error)
}
