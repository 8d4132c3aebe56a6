// Package secret defines the capability contract shared by every secret
// backend and the error taxonomy of the encrypted backends.
//
// Backends:
//   - filestore: password-derived, AEAD-sealed JSON keystore file
//   - storage: the same sealing scheme kept in a bbolt database
//   - secretservice: Secret Service through the secret-tool(1) command
//   - keyring: OS-native credential vault
//
// A missing key is never an error: RetrieveSecret reports it through the
// boolean result and DeleteSecret treats it as a no-op.
package secret
