// Package crypto provides the cryptographic primitives used by the
// encrypted secret stores.
//
// Key derivation uses PBKDF2-HMAC-SHA256 (DeriveKey) with:
//   - 16-byte random salt stored next to the ciphertext
//   - iteration count stored next to the salt
//
// Sealing uses ChaCha20-Poly1305 with:
//   - 32-byte key derived from the password
//   - 12-byte random nonce per seal, prepended to the ciphertext
//   - 16-byte Poly1305 tag appended by the AEAD
//
// Memory safety:
//   - Use ClearBytes() to zero derived keys and passwords after use
package crypto
