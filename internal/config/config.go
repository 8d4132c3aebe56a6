package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend names
const (
	BackendFile          = "file"
	BackendBolt          = "bolt"
	BackendSecretService = "secret-service"
	BackendNative        = "native"
)

var (
	ErrParsingConfig  = errors.New("failed to parse environment variables into config")
	ErrInvalidBackend = errors.New("invalid backend")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Config holds the settings of the secretstore command.
type Config struct {
	Backend     string `env:"BACKEND" envDefault:"file"`
	Path        string `env:"PATH" envDefault:".secretstore"`
	Password    string `env:"PASSWORD"`
	Iterations  int    `env:"ITERATIONS" envDefault:"210000"`
	Service     string `env:"SERVICE" envDefault:"secretstore"`
	Tool        string `env:"TOOL" envDefault:"secret-tool"`
	TrimNewline bool   `env:"TRIM_NEWLINE" envDefault:"true"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
}

// EnvPrefix is prepended to every variable name of Config.
const EnvPrefix = "SECRETSTORE_"

// Load parses Config from the environment. Variables in envFile, when
// given, are loaded first without overriding variables already set.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// Validate checks the settings for the selected backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendBolt:
		if c.Path == "" {
			return fmt.Errorf("%w: path is required for the %s backend", ErrInvalidConfig, c.Backend)
		}
		if c.Iterations <= 0 {
			return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
		}
	case BackendSecretService, BackendNative:
		if c.Service == "" {
			return fmt.Errorf("%w: service is required for the %s backend", ErrInvalidConfig, c.Backend)
		}
	default:
		return fmt.Errorf("%w: %q (want %s, %s, %s or %s)", ErrInvalidBackend, c.Backend,
			BackendFile, BackendBolt, BackendSecretService, BackendNative)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// NeedsPassword reports whether the selected backend is password protected.
func (c *Config) NeedsPassword() bool {
	return c.Backend == BackendFile || c.Backend == BackendBolt
}

// PasswordBytes returns a copy of the configured password, or nil.
// The caller is responsible for calling crypto.ClearBytes on the result.
func (c *Config) PasswordBytes() []byte {
	if c.Password == "" {
		return nil
	}
	return append([]byte(nil), c.Password...)
}
