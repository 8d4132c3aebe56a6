package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := DeriveKey([]byte("test123"), []byte("0123456789abcdef"), 1, KeySize)
	require.NoError(t, err)
	return key
}

func TestSealOpen(t *testing.T) {
	key := testKey(t)

	for _, plaintext := range [][]byte{
		[]byte("super-secret"),
		{},
		{0x00, 0xff, 0xfe, 0x80, 0x0a},
	} {
		sealed, err := Seal(key, plaintext, nil)
		require.NoError(t, err)
		assert.Len(t, sealed, NonceSize+len(plaintext)+TagSize)

		opened, err := Open(key, sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	key := testKey(t)
	a, err := Seal(key, []byte("same"), nil)
	require.NoError(t, err)
	b, err := Seal(key, []byte("same"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a[:NonceSize], b[:NonceSize])
}

func TestSealDeterministicRandom(t *testing.T) {
	key := testKey(t)
	nonce := bytes.Repeat([]byte{7}, NonceSize)

	a, err := Seal(key, []byte("value"), bytes.NewReader(nonce))
	require.NoError(t, err)
	b, err := Seal(key, []byte("value"), bytes.NewReader(nonce))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, nonce, a[:NonceSize])
}

func TestSealShortRandom(t *testing.T) {
	_, err := Seal(testKey(t), []byte("value"), bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}

func TestOpenDetectsTampering(t *testing.T) {
	key := testKey(t)
	sealed, err := Seal(key, []byte("value"), nil)
	require.NoError(t, err)

	for i := range sealed {
		corrupted := append([]byte(nil), sealed...)
		corrupted[i] ^= 0x01
		_, err := Open(key, corrupted)
		require.ErrorIs(t, err, ErrAuthFailed, "bit flip at byte %d", i)
	}
}

func TestOpenWrongKey(t *testing.T) {
	sealed, err := Seal(testKey(t), []byte("value"), nil)
	require.NoError(t, err)

	other, err := DeriveKey([]byte("other"), []byte("0123456789abcdef"), 1, KeySize)
	require.NoError(t, err)
	_, err = Open(other, sealed)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestOpenShortRecord(t *testing.T) {
	_, err := Open(testKey(t), make([]byte, NonceSize+TagSize-1))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestClearBytes(t *testing.T) {
	b := []byte("secret")
	ClearBytes(b)
	assert.Equal(t, make([]byte, 6), b)
}
