package keyring

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/illarion/secretstore/internal/secret"
)

const DefaultService = "SecretStore"

// ErrUnsupportedPlatform is returned when no OS credential vault is available.
var ErrUnsupportedPlatform = errors.New("native secure storage is not supported on this platform")

// OperationError is returned when the OS credential vault rejects an operation.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("keyring %s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Store is a secret.Store backed by the OS credential vault (Keychain,
// Secret Service or Windows Credential Manager). Secrets are base64-encoded
// since the vaults store text.
type Store struct {
	service string
	logger  logrus.FieldLogger
}

var _ secret.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store keeping secrets under service. An empty service
// means DefaultService.
func New(service string, opts ...Option) *Store {
	if service == "" {
		service = DefaultService
	}
	s := &Store{service: service, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(logrus.Fields{"backend": "native", "service": service})
	return s
}

// Supported reports whether the OS credential vault can be reached.
func (s *Store) Supported() bool {
	_, err := gokeyring.Get(s.service, "secretstore-availability")
	return err == nil || errors.Is(err, gokeyring.ErrNotFound)
}

// StoreSecret stores or replaces the secret for key.
func (s *Store) StoreSecret(key string, value []byte) error {
	if err := gokeyring.Set(s.service, key, base64.StdEncoding.EncodeToString(value)); err != nil {
		return wrap("set", err)
	}
	s.logger.WithField("key", key).Debug("stored secret")
	return nil
}

// RetrieveSecret retrieves the secret for key.
func (s *Store) RetrieveSecret(key string) ([]byte, bool, error) {
	encoded, err := gokeyring.Get(s.service, key)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", err)
	}

	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, wrap("get", fmt.Errorf("%w: %w", secret.ErrIntegrity, err))
	}
	s.logger.WithField("key", key).Debug("retrieved secret")
	return value, true, nil
}

// DeleteSecret removes the secret for key. Missing keys are ignored.
func (s *Store) DeleteSecret(key string) error {
	err := gokeyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return wrap("delete", err)
	}
	s.logger.WithField("key", key).Debug("deleted secret")
	return nil
}

func wrap(op string, err error) error {
	if errors.Is(err, gokeyring.ErrUnsupportedPlatform) {
		return ErrUnsupportedPlatform
	}
	return &OperationError{Op: op, Err: err}
}
