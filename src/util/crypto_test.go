package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCipher_RoundTrip(t *testing.T) {
	cipher, err := NewTokenCipher("test-secret")
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("access-sandbox-12345")
	require.NoError(t, err)
	assert.NotEqual(t, "access-sandbox-12345", encrypted)

	decrypted, err := cipher.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "access-sandbox-12345", decrypted)
}

func TestTokenCipher_Format(t *testing.T) {
	cipher, err := NewTokenCipher("test-secret")
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("token")
	require.NoError(t, err)

	parts := strings.Split(encrypted, ":")
	require.Len(t, parts, 3, "expected iv:tag:ciphertext")
	assert.Len(t, parts[0], cipherNonceLen*2)
	assert.Len(t, parts[1], 32, "16-byte GCM tag in hex")
}

func TestTokenCipher_UniqueNonces(t *testing.T) {
	cipher, err := NewTokenCipher("test-secret")
	require.NoError(t, err)

	first, err := cipher.Encrypt("token")
	require.NoError(t, err)
	second, err := cipher.Encrypt("token")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenCipher_TamperDetection(t *testing.T) {
	cipher, err := NewTokenCipher("test-secret")
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("token")
	require.NoError(t, err)

	parts := strings.Split(encrypted, ":")
	tampered := parts[0] + ":" + parts[1] + ":" + "deadbeef"
	_, err = cipher.Decrypt(tampered)
	assert.Error(t, err)
}

func TestTokenCipher_LongSecretUsedDirectly(t *testing.T) {
	cipher, err := NewTokenCipher(strings.Repeat("k", 40))
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("token")
	require.NoError(t, err)
	decrypted, err := cipher.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "token", decrypted)
}

func TestTokenCipher_WrongKeyFails(t *testing.T) {
	first, err := NewTokenCipher("secret-one")
	require.NoError(t, err)
	second, err := NewTokenCipher("secret-two")
	require.NoError(t, err)

	encrypted, err := first.Encrypt("token")
	require.NoError(t, err)

	_, err = second.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestTokenCipher_InvalidFormat(t *testing.T) {
	cipher, err := NewTokenCipher("test-secret")
	require.NoError(t, err)

	_, err = cipher.Decrypt("not-an-encrypted-value")
	assert.Error(t, err)
}

func TestNewTokenCipher_EmptySecret(t *testing.T) {
	_, err := NewTokenCipher("")
	assert.Error(t, err)
}
