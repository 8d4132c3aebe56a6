package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/illarion/secretstore/internal/crypto"
	"github.com/illarion/secretstore/internal/secret"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // KDF params (salt, iterations), timestamps - unencrypted
	SecretsBucket = []byte("secrets") // Sealed secret records
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigSalt     = []byte("salt")
	ConfigIters    = []byte("iterations")
)

const (
	filePerm      = 0600
	formatVersion = "1"
	openTimeout   = time.Second
)

// Store is a secret.Store kept in a bbolt database.
type Store struct {
	db       *bolt.DB
	path     string
	password []byte
	random   io.Reader
	logger   logrus.FieldLogger
}

var (
	_ secret.Store  = (*Store)(nil)
	_ secret.Lister = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithRandom sets the source of salts and nonces.
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

// Open opens or creates a database at path. A new database gets a fresh
// salt and the given iteration count.
func Open(path string, password []byte, iterations int, opts ...Option) (*Store, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", secret.ErrInvalidConfiguration, iterations)
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: password is empty", secret.ErrInvalidConfiguration)
	}

	s := &Store{
		path:     path,
		password: append([]byte(nil), password...),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithFields(logrus.Fields{"backend": "bolt", "path": path})

	db, err := bolt.Open(path, filePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", secret.ErrIO, err)
	}
	s.db = db

	if err := s.initialize(iterations); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	crypto.ClearBytes(s.password)
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// initialize creates the bucket structure and KDF parameters unless the
// database already has them.
func (s *Store) initialize(iterations int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		config, err := tx.CreateBucketIfNotExists(ConfigBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", ConfigBucket, err)
		}
		if _, err := tx.CreateBucketIfNotExists(SecretsBucket); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", SecretsBucket, err)
		}
		if config.Get(ConfigVersion) != nil {
			return nil
		}

		salt, err := crypto.GenerateRandom(s.random, crypto.SaltSize)
		if err != nil {
			return err
		}
		iters := make([]byte, 4)
		binary.BigEndian.PutUint32(iters, uint32(iterations))
		created, _ := time.Now().MarshalBinary()

		for k, v := range map[string][]byte{
			string(ConfigVersion):  []byte(formatVersion),
			string(ConfigSalt):     salt,
			string(ConfigIters):    iters,
			string(ConfigCreated):  created,
			string(ConfigModified): created,
		} {
			if err := config.Put([]byte(k), v); err != nil {
				return err
			}
		}
		s.logger.WithField("iterations", iterations).Debug("created database")
		return nil
	})
}

// deriveKey reads the KDF parameters inside tx and derives the store key.
// The caller must clear the result.
func (s *Store) deriveKey(tx *bolt.Tx) ([]byte, error) {
	config := tx.Bucket(ConfigBucket)
	if config == nil {
		return nil, secret.ErrIntegrity
	}
	salt := config.Get(ConfigSalt)
	iters := config.Get(ConfigIters)
	if len(salt) == 0 || len(iters) != 4 {
		return nil, secret.ErrIntegrity
	}
	iterations := int(binary.BigEndian.Uint32(iters))
	if iterations <= 0 {
		return nil, secret.ErrIntegrity
	}
	return crypto.DeriveKey(s.password, salt, iterations, crypto.KeySize)
}

func touch(tx *bolt.Tx) error {
	config := tx.Bucket(ConfigBucket)
	if config == nil {
		return secret.ErrIntegrity
	}
	modified, _ := time.Now().MarshalBinary()
	return config.Put(ConfigModified, modified)
}

// StoreSecret seals value and stores it under key.
func (s *Store) StoreSecret(key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		dk, err := s.deriveKey(tx)
		if err != nil {
			return err
		}
		defer crypto.ClearBytes(dk)

		sealed, err := crypto.Seal(dk, value, s.random)
		if err != nil {
			return err
		}
		secrets := tx.Bucket(SecretsBucket)
		if secrets == nil {
			return secret.ErrIntegrity
		}
		if err := secrets.Put([]byte(key), sealed); err != nil {
			return err
		}
		return touch(tx)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("key", key).Debug("stored secret")
	return nil
}

// RetrieveSecret returns the secret stored under key.
func (s *Store) RetrieveSecret(key string) ([]byte, bool, error) {
	var value []byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		secrets := tx.Bucket(SecretsBucket)
		if secrets == nil {
			return secret.ErrIntegrity
		}
		sealed := secrets.Get([]byte(key))
		if sealed == nil {
			return nil
		}

		dk, err := s.deriveKey(tx)
		if err != nil {
			return err
		}
		defer crypto.ClearBytes(dk)

		value, err = crypto.Open(dk, sealed)
		if err != nil {
			return secret.ErrIntegrity
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if found {
		s.logger.WithField("key", key).Debug("retrieved secret")
	}
	return value, found, nil
}

// DeleteSecret removes key if present.
func (s *Store) DeleteSecret(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		secrets := tx.Bucket(SecretsBucket)
		if secrets == nil {
			return secret.ErrIntegrity
		}
		if secrets.Get([]byte(key)) == nil {
			return nil
		}
		if err := secrets.Delete([]byte(key)); err != nil {
			return err
		}
		return touch(tx)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("key", key).Debug("deleted secret")
	return nil
}

// ListKeys returns all stored keys in byte order.
func (s *Store) ListKeys() ([]string, error) {
	keys := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		secrets := tx.Bucket(SecretsBucket)
		if secrets == nil {
			return secret.ErrIntegrity
		}
		return secrets.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Modified returns the time of the last mutation.
func (s *Store) Modified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return secret.ErrIntegrity
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return secret.ErrIntegrity
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// Compact rewrites the database into a fresh file, dropping the pages
// freed by deleted secrets, and swaps it in place of the original. On any
// failure the original file stays in place and the store stays usable.
func (s *Store) Compact() error {
	tmpPath := s.path + ".compact"
	backupPath := s.path + ".backup"

	dst, err := bolt.Open(tmpPath, filePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("%w: failed to create compact database: %w", secret.ErrIO, err)
	}
	if err := bolt.Compact(dst, s.db, 0); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to close compact database: %w", secret.ErrIO, err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return s.reopen(fmt.Errorf("%w: failed to close database: %w", secret.ErrIO, err))
	}

	if err := os.Rename(s.path, backupPath); err != nil {
		os.Remove(tmpPath)
		return s.reopen(fmt.Errorf("%w: failed to back up database: %w", secret.ErrIO, err))
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		if rerr := os.Rename(backupPath, s.path); rerr != nil {
			return fmt.Errorf("%w: failed to replace database: %w (restore failed, original kept at %s: %w)",
				secret.ErrIO, err, backupPath, rerr)
		}
		return s.reopen(fmt.Errorf("%w: failed to replace database: %w", secret.ErrIO, err))
	}
	os.Remove(backupPath)

	if err := s.reopen(nil); err != nil {
		return err
	}
	s.logger.Debug("compacted database")
	return nil
}

// reopen opens s.path again after the database was closed and returns
// cause, or the open error when cause is nil. s.db is replaced only by a
// database that opened successfully.
func (s *Store) reopen(cause error) error {
	db, err := bolt.Open(s.path, filePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		err = fmt.Errorf("%w: failed to reopen database: %w", secret.ErrIO, err)
		if cause != nil {
			return errors.Join(cause, err)
		}
		return err
	}
	s.db = db
	return cause
}
