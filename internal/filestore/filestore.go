package filestore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/illarion/secretstore/internal/crypto"
	"github.com/illarion/secretstore/internal/secret"
)

const filePerm = 0600 // File: owner rw only

// keystoreFile is the persisted document.
type keystoreFile struct {
	Salt       string            `json:"salt"`
	Iterations int               `json:"iterations"`
	Secrets    map[string]string `json:"secrets"`
}

// Store is a secret.Store persisted in a single encrypted JSON file.
type Store struct {
	path       string
	password   []byte
	iterations int
	random     io.Reader
	logger     logrus.FieldLogger
}

var (
	_ secret.Store  = (*Store)(nil)
	_ secret.Lister = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithRandom sets the source of salts and nonces. Tests use it to get
// deterministic output; production code should leave the crypto/rand default.
func WithRandom(r io.Reader) Option {
	return func(s *Store) { s.random = r }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New opens the keystore at path, creating an empty one with a fresh salt
// and the given iteration count when the file does not exist.
func New(path string, password []byte, iterations int, opts ...Option) (*Store, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", secret.ErrInvalidConfiguration, iterations)
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password is empty", secret.ErrInvalidConfiguration)
	}

	s := &Store{
		path:       path,
		password:   append([]byte(nil), password...),
		iterations: iterations,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(logrus.Fields{"backend": "file", "path": path})

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", secret.ErrIO, err)
		}
		if err := s.createEmpty(); err != nil {
			return nil, err
		}
		s.logger.WithField("iterations", iterations).Debug("created keystore")
	}

	return s, nil
}

// Path returns the keystore file path.
func (s *Store) Path() string {
	return s.path
}

// StoreSecret seals value under a fresh nonce and stores it under key,
// replacing any previous value.
func (s *Store) StoreSecret(key string, value []byte) error {
	ks, err := s.load()
	if err != nil {
		return err
	}

	sealed, err := s.seal(ks, value)
	if err != nil {
		return err
	}
	ks.Secrets[key] = base64.StdEncoding.EncodeToString(sealed)

	if err := s.write(ks); err != nil {
		return err
	}
	s.logger.WithField("key", key).Debug("stored secret")
	return nil
}

// RetrieveSecret returns the secret stored under key. A missing key is
// reported with ok == false; any decoding or authentication failure of the
// stored record is secret.ErrIntegrity.
func (s *Store) RetrieveSecret(key string) ([]byte, bool, error) {
	ks, err := s.load()
	if err != nil {
		return nil, false, err
	}

	encoded, ok := ks.Secrets[key]
	if !ok {
		return nil, false, nil
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, secret.ErrIntegrity
	}

	value, err := s.open(ks, sealed)
	if err != nil {
		return nil, false, err
	}
	s.logger.WithField("key", key).Debug("retrieved secret")
	return value, true, nil
}

// DeleteSecret removes key from the keystore. Deleting a missing key
// is not an error.
func (s *Store) DeleteSecret(key string) error {
	ks, err := s.load()
	if err != nil {
		return err
	}
	delete(ks.Secrets, key)

	if err := s.write(ks); err != nil {
		return err
	}
	s.logger.WithField("key", key).Debug("deleted secret")
	return nil
}

// ListKeys returns the stored keys in lexical order. It does not need
// the password to be correct.
func (s *Store) ListKeys() ([]string, error) {
	ks, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(ks.Secrets))
	for k := range ks.Secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ChangePassword re-seals every secret under newPassword and a fresh salt.
// The file is rewritten once; if any record fails to open nothing changes.
func (s *Store) ChangePassword(newPassword []byte) error {
	if len(newPassword) == 0 {
		return fmt.Errorf("%w: password is empty", secret.ErrInvalidConfiguration)
	}

	ks, err := s.load()
	if err != nil {
		return err
	}

	plain := make(map[string][]byte, len(ks.Secrets))
	defer func() {
		for _, v := range plain {
			crypto.ClearBytes(v)
		}
	}()
	for k, encoded := range ks.Secrets {
		sealed, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return secret.ErrIntegrity
		}
		value, err := s.open(ks, sealed)
		if err != nil {
			return err
		}
		plain[k] = value
	}

	salt, err := crypto.GenerateRandom(s.random, crypto.SaltSize)
	if err != nil {
		return err
	}
	rekeyed := &keystoreFile{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Iterations: ks.Iterations,
		Secrets:    make(map[string]string, len(plain)),
	}

	key, err := crypto.DeriveKey(newPassword, salt, rekeyed.Iterations, crypto.KeySize)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(key)

	for k, value := range plain {
		sealed, err := crypto.Seal(key, value, s.random)
		if err != nil {
			return err
		}
		rekeyed.Secrets[k] = base64.StdEncoding.EncodeToString(sealed)
	}

	if err := s.write(rekeyed); err != nil {
		return err
	}

	crypto.ClearBytes(s.password)
	s.password = append([]byte(nil), newPassword...)
	s.logger.WithField("secrets", len(plain)).Debug("changed password")
	return nil
}

// load reads and validates the keystore file.
func (s *Store) load() (*keystoreFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, secret.ErrStoreNotFound
		}
		return nil, fmt.Errorf("%w: %w", secret.ErrIO, err)
	}

	var doc storedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", secret.ErrDecoding, err)
	}
	switch {
	case doc.Salt == nil:
		return nil, fmt.Errorf("%w: %w", secret.ErrDecoding, missingField("salt"))
	case doc.Iterations == nil:
		return nil, fmt.Errorf("%w: %w", secret.ErrDecoding, missingField("iterations"))
	case doc.Secrets == nil:
		return nil, fmt.Errorf("%w: %w", secret.ErrDecoding, missingField("secrets"))
	}

	ks := &keystoreFile{Salt: *doc.Salt, Iterations: *doc.Iterations, Secrets: *doc.Secrets}
	if _, err := decodeSalt(ks.Salt); err != nil {
		return nil, err
	}
	if ks.Iterations <= 0 {
		return nil, secret.ErrIntegrity
	}
	return ks, nil
}

// storedDocument mirrors keystoreFile with every field required. A JSON
// null counts as missing.
type storedDocument struct {
	Salt       *string            `json:"salt"`
	Iterations *int               `json:"iterations"`
	Secrets    *map[string]string `json:"secrets"`
}

func missingField(name string) error {
	return fmt.Errorf("keystore field %q is missing", name)
}

// deriveKey derives the store key. The caller must clear the result.
func (s *Store) deriveKey(ks *keystoreFile) ([]byte, error) {
	salt, err := decodeSalt(ks.Salt)
	if err != nil {
		return nil, err
	}
	return crypto.DeriveKey(s.password, salt, ks.Iterations, crypto.KeySize)
}

func (s *Store) seal(ks *keystoreFile, value []byte) ([]byte, error) {
	key, err := s.deriveKey(ks)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(key)
	return crypto.Seal(key, value, s.random)
}

func (s *Store) open(ks *keystoreFile, sealed []byte) ([]byte, error) {
	key, err := s.deriveKey(ks)
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(key)

	value, err := crypto.Open(key, sealed)
	if err != nil {
		return nil, secret.ErrIntegrity
	}
	return value, nil
}

func (s *Store) createEmpty() error {
	salt, err := crypto.GenerateRandom(s.random, crypto.SaltSize)
	if err != nil {
		return err
	}
	return s.write(&keystoreFile{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Iterations: s.iterations,
		Secrets:    map[string]string{},
	})
}

// write replaces the keystore file atomically.
func (s *Store) write(ks *keystoreFile) error {
	data, err := json.Marshal(ks)
	if err != nil {
		return fmt.Errorf("failed to encode keystore: %w", err)
	}
	if err := writeFileAtomic(s.path, data, filePerm); err != nil {
		return fmt.Errorf("%w: %w", secret.ErrIO, err)
	}
	return nil
}

func decodeSalt(encoded string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(salt) == 0 {
		return nil, secret.ErrIntegrity
	}
	return salt, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path. The temporary file is removed on any failure.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
