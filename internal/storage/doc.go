// Package storage provides a bbolt-backed encrypted secret backend.
//
// Database structure uses two buckets:
//   - config: KDF parameters (salt, iterations), format version, timestamps (unencrypted)
//   - secrets: key -> sealed record (nonce || ciphertext || tag)
//
// Keys are listed without the password; values need it. Sealing and key
// derivation are the same as the keystore file backend.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
