package keyring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/illarion/secretstore/internal/secret"
)

func TestRoundTrip(t *testing.T) {
	gokeyring.MockInit()
	store := New("test-service")
	assert.True(t, store.Supported())

	for key, value := range map[string][]byte{
		"text":   []byte("super-secret"),
		"binary": {0x00, 0xff, 0x0a},
		"empty":  {},
	} {
		require.NoError(t, store.StoreSecret(key, value))
		got, ok, err := store.RetrieveSecret(key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, value, got)
	}

	require.NoError(t, store.DeleteSecret("text"))
	_, ok, err := store.RetrieveSecret("text")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMissingKey(t *testing.T) {
	gokeyring.MockInit()
	store := New("")

	got, ok, err := store.RetrieveSecret("missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, store.DeleteSecret("missing"))
}

func TestServicesAreIsolated(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, New("a").StoreSecret("key", []byte("value")))

	_, ok, err := New("b").RetrieveSecret("key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestForeignValueIsIntegrityFailure(t *testing.T) {
	gokeyring.MockInit()
	require.NoError(t, gokeyring.Set(DefaultService, "key", "not base64!"))

	_, _, err := New("").RetrieveSecret("key")
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "get", opErr.Op)
	assert.ErrorIs(t, err, secret.ErrIntegrity)
}

func TestUnsupportedPlatform(t *testing.T) {
	gokeyring.MockInitWithError(gokeyring.ErrUnsupportedPlatform)
	store := New("test-service")
	assert.False(t, store.Supported())

	assert.ErrorIs(t, store.StoreSecret("k", []byte("v")), ErrUnsupportedPlatform)
	_, _, err := store.RetrieveSecret("k")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.ErrorIs(t, store.DeleteSecret("k"), ErrUnsupportedPlatform)
}

func TestOperationFailure(t *testing.T) {
	vaultErr := errors.New("vault locked")
	gokeyring.MockInitWithError(vaultErr)
	store := New("test-service")

	err := store.StoreSecret("k", []byte("v"))
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "set", opErr.Op)
	assert.ErrorIs(t, err, vaultErr)
	assert.NotErrorIs(t, err, ErrUnsupportedPlatform)
}
