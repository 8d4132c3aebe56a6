package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// ErrInvalidParameters is returned by DeriveKey for empty inputs or
// non-positive counts.
var ErrInvalidParameters = errors.New("invalid key derivation parameters")

// DeriveKey derives keyLength bytes from password and salt using
// PBKDF2 with HMAC-SHA-256 (RFC 8018).
func DeriveKey(password, salt []byte, iterations, keyLength int) ([]byte, error) {
	if len(password) == 0 || len(salt) == 0 || iterations <= 0 || keyLength <= 0 {
		return nil, ErrInvalidParameters
	}

	prf := hmac.New(sha256.New, password)
	prfLen := prf.Size()
	blocks := (keyLength + prfLen - 1) / prfLen

	derived := make([]byte, 0, blocks*prfLen)
	var counter [4]byte
	u := make([]byte, 0, prfLen)
	t := make([]byte, prfLen)

	for i := 1; i <= blocks; i++ {
		binary.BigEndian.PutUint32(counter[:], uint32(i))

		prf.Reset()
		prf.Write(salt)
		prf.Write(counter[:])
		u = prf.Sum(u[:0])
		copy(t, u)

		for j := 1; j < iterations; j++ {
			prf.Reset()
			prf.Write(u)
			u = prf.Sum(u[:0])
			for k := range t {
				t[k] ^= u[k]
			}
		}
		derived = append(derived, t...)
	}

	ClearBytes(u)
	ClearBytes(t)
	return derived[:keyLength], nil
}
