package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, ".secretstore", cfg.Path)
	assert.Equal(t, 210000, cfg.Iterations)
	assert.Equal(t, "secretstore", cfg.Service)
	assert.Equal(t, "secret-tool", cfg.Tool)
	assert.True(t, cfg.TrimNewline)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SECRETSTORE_BACKEND", BackendSecretService)
	t.Setenv("SECRETSTORE_SERVICE", "example")
	t.Setenv("SECRETSTORE_TRIM_NEWLINE", "false")
	t.Setenv("SECRETSTORE_ITERATIONS", "1000")
	t.Setenv("SECRETSTORE_PASSWORD", "pw")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendSecretService, cfg.Backend)
	assert.Equal(t, "example", cfg.Service)
	assert.False(t, cfg.TrimNewline)
	assert.Equal(t, 1000, cfg.Iterations)
	assert.Equal(t, []byte("pw"), cfg.PasswordBytes())
	assert.False(t, cfg.NeedsPassword())
}

func TestLoadInvalidNumber(t *testing.T) {
	t.Setenv("SECRETSTORE_ITERATIONS", "many")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrParsingConfig)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SECRETSTORE_BACKEND=bolt\nSECRETSTORE_PATH=vault.db\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("SECRETSTORE_BACKEND")
		os.Unsetenv("SECRETSTORE_PATH")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendBolt, cfg.Backend)
	assert.Equal(t, "vault.db", cfg.Path)
	assert.True(t, cfg.NeedsPassword())
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Backend: BackendFile, Path: "p", Iterations: 1, Service: "s", LogLevel: "warn", LogFormat: FormatText}
	}

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"unknown backend", func(c *Config) { c.Backend = "cloud" }, ErrInvalidBackend},
		{"empty path", func(c *Config) { c.Path = "" }, ErrInvalidConfig},
		{"zero iterations", func(c *Config) { c.Backend = BackendBolt; c.Iterations = 0 }, ErrInvalidConfig},
		{"empty service", func(c *Config) { c.Backend = BackendNative; c.Service = "" }, ErrInvalidConfig},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, ErrInvalidConfig},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "debug", LogFormat: FormatJSON}

	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("key", "api-token").Debug("stored secret")
	assert.Contains(t, buf.String(), `"key":"api-token"`)
	assert.Contains(t, buf.String(), `"msg":"stored secret"`)

	cfg.LogFormat = "xml"
	_, err = cfg.NewLogger(&buf)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
