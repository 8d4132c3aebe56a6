// Package keyring provides the OS-native secret backend.
//
// It forwards every call to github.com/zalando/go-keyring and only maps
// results onto the secret.Store contract:
//   - a missing entry is an absent value, never an error
//   - an unavailable vault is ErrUnsupportedPlatform
//   - any other vault failure is an *OperationError
package keyring
