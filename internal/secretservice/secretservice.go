package secretservice

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/illarion/secretstore/internal/proc"
	"github.com/illarion/secretstore/internal/secret"
)

const (
	DefaultTool = "secret-tool"
	labelPrefix = "SecretStore:"

	exitNotFound          = 1
	exitCollectionMissing = 2
)

// CommandError is returned when secret-tool exits with an unexpected status.
type CommandError struct {
	Code    int
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("secret-tool exited with status %d: %s", e.Code, e.Message)
}

// CollectionMissingError is returned when the Secret Service collection
// backing the store does not exist.
type CollectionMissingError struct {
	Message string
}

func (e *CollectionMissingError) Error() string {
	return "secret service collection missing: " + e.Message
}

// Store is a secret.Store backed by secret-tool.
type Store struct {
	runner      proc.Runner
	tool        string
	service     string
	label       string
	trimNewline bool
	logger      logrus.FieldLogger
}

var _ secret.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithRunner sets the runner used to invoke secret-tool.
func WithRunner(r proc.Runner) Option {
	return func(s *Store) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithTool sets the secret-tool executable name or path.
func WithTool(tool string) Option {
	return func(s *Store) {
		if tool != "" {
			s.tool = tool
		}
	}
}

// WithTrimTrailingNewline controls whether one trailing "\n" or "\r\n" is
// stripped from text secrets returned by lookup. Enabled by default.
func WithTrimTrailingNewline(trim bool) Option {
	return func(s *Store) { s.trimNewline = trim }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store keeping secrets under the given service attribute.
func New(service string, opts ...Option) *Store {
	s := &Store{
		tool:        DefaultTool,
		service:     service,
		label:       labelPrefix + service,
		trimNewline: true,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = proc.NewExecRunner(proc.WithLogger(s.logger))
	}
	s.logger = s.logger.WithFields(logrus.Fields{"backend": "secret-service", "service": service})
	return s
}

// StoreSecret stores value under key, passing it to secret-tool on stdin.
func (s *Store) StoreSecret(key string, value []byte) error {
	command := []string{s.tool, "store", "--label", s.label, "service", s.service, "account", key}
	out, err := s.runner.Run(command, value)
	if err != nil {
		return err
	}
	if out.ExitCode != 0 {
		return commandError(out)
	}
	s.logger.WithField("key", key).Debug("stored secret")
	return nil
}

// RetrieveSecret looks up key. A lookup exit status of 1 reports the key
// as absent.
func (s *Store) RetrieveSecret(key string) ([]byte, bool, error) {
	command := []string{s.tool, "lookup", "service", s.service, "account", key}
	out, err := s.runner.Run(command, nil)
	if err != nil {
		return nil, false, err
	}

	switch out.ExitCode {
	case 0:
		value := out.Stdout
		if s.trimNewline {
			value = trimTrailingNewline(value)
		}
		s.logger.WithField("key", key).Debug("retrieved secret")
		return value, true, nil
	case exitNotFound:
		return nil, false, nil
	default:
		return nil, false, commandError(out)
	}
}

// DeleteSecret clears key.
func (s *Store) DeleteSecret(key string) error {
	command := []string{s.tool, "clear", "service", s.service, "account", key}
	out, err := s.runner.Run(command, nil)
	if err != nil {
		return err
	}
	if out.ExitCode != 0 {
		return commandError(out)
	}
	s.logger.WithField("key", key).Debug("deleted secret")
	return nil
}

func commandError(out *proc.Output) error {
	message := ""
	if utf8.Valid(out.Stderr) {
		message = string(out.Stderr)
	}
	if out.ExitCode == exitCollectionMissing {
		return &CollectionMissingError{Message: message}
	}
	return &CommandError{Code: out.ExitCode, Message: message}
}

// trimTrailingNewline strips a single trailing "\r\n" or "\n" from text
// payloads. Payloads that are not valid UTF-8 are returned unchanged.
func trimTrailingNewline(b []byte) []byte {
	if !utf8.Valid(b) {
		return b
	}
	if bytes.HasSuffix(b, []byte("\r\n")) {
		return b[:len(b)-2]
	}
	if bytes.HasSuffix(b, []byte("\n")) {
		return b[:len(b)-1]
	}
	return b
}
