// Package filestore provides the password-protected keystore file backend.
//
// The keystore is a single JSON document:
//
//	{"salt": "<base64>", "iterations": N, "secrets": {"<key>": "<base64 sealed record>"}}
//
// Every operation reads the whole file, derives the key again from the
// password and the stored salt and iteration count, and (for mutations)
// replaces the whole file atomically through a temporary file and rename.
// Derived keys never outlive the call that derived them.
//
// There is no locking. Concurrent writers, in-process or not, can lose
// each other's updates; atomic replace only guarantees that readers never
// observe a partially written file.
//
// When path is a symbolic link, the rename replaces the link with a regular
// file; the link target is left untouched.
package filestore
