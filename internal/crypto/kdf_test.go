package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func TestDeriveKeyVectors(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		salt       string
		iterations int
		keyLength  int
		want       string
	}{
		{
			name:       "one iteration",
			password:   "password",
			salt:       "salt",
			iterations: 1,
			keyLength:  32,
			want:       "120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b",
		},
		{
			name:       "two iterations",
			password:   "password",
			salt:       "salt",
			iterations: 2,
			keyLength:  32,
			want:       "ae4d0c95af6b46d32d0adff928f06dd02a303f8ef3c251dfd6e2d85a95474c43",
		},
		{
			name:       "4096 iterations",
			password:   "password",
			salt:       "salt",
			iterations: 4096,
			keyLength:  32,
			want:       "c5e478d59288c841aa530db6845c4c8d962893a001ce4e11a4963873aa98134a",
		},
		{
			name:       "multiple blocks",
			password:   "passwordPASSWORDpassword",
			salt:       "saltSALTsaltSALTsaltSALTsaltSALTsalt",
			iterations: 4096,
			keyLength:  40,
			want:       "348c89dbcbd32b2f32d814b8116e84cf2b17347ebc1800181c4e2a1fb8dd53e1c635518c7dac47e9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveKey([]byte(tt.password), []byte(tt.salt), tt.iterations, tt.keyLength)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
		})
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	a, err := DeriveKey([]byte("pw"), []byte("salt"), 10, 32)
	require.NoError(t, err)
	b, err := DeriveKey([]byte("pw"), []byte("salt"), 10, 32)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := DeriveKey([]byte("pw"), []byte("salt"), 11, 32)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDeriveKeyMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		password := make([]byte, 1+rng.Intn(80))
		salt := make([]byte, 1+rng.Intn(40))
		rng.Read(password)
		rng.Read(salt)
		iterations := 1 + rng.Intn(50)
		keyLength := 1 + rng.Intn(100)

		got, err := DeriveKey(password, salt, iterations, keyLength)
		require.NoError(t, err)
		want := pbkdf2.Key(password, salt, iterations, keyLength, sha256.New)
		require.Equal(t, want, got, "iterations=%d keyLength=%d", iterations, keyLength)
	}
}

func TestDeriveKeyInvalidParameters(t *testing.T) {
	tests := []struct {
		name       string
		password   []byte
		salt       []byte
		iterations int
		keyLength  int
	}{
		{"empty password", nil, []byte("salt"), 1, 32},
		{"empty salt", []byte("pwd"), nil, 1, 32},
		{"zero iterations", []byte("pwd"), []byte("salt"), 0, 32},
		{"negative iterations", []byte("pwd"), []byte("salt"), -5, 32},
		{"zero key length", []byte("pwd"), []byte("salt"), 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveKey(tt.password, tt.salt, tt.iterations, tt.keyLength)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}
