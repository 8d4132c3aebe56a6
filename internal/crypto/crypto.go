package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
)

const (
	SaltSize     = 16     // Salt size in bytes
	KeySize      = 32     // ChaCha20-Poly1305 key size
	NonceSize    = 12     // ChaCha20-Poly1305 nonce size
	TagSize      = 16     // Poly1305 authentication tag size
	DefaultIters = 210000 // Default PBKDF2 iterations (OWASP minimum)
)

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom reads n bytes from random. A nil reader means crypto/rand.
func GenerateRandom(random io.Reader, n int) ([]byte, error) {
	if random == nil {
		random = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(random, b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
