package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	cipherKeyLen   = 32
	cipherNonceLen = 16
)

// TokenCipher encrypts access tokens before they hit the database.
// Output format is iv:tag:ciphertext, all hex, so rows written by
// earlier deployments decrypt unchanged.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher derives a 32-byte AES key from the configured secret
// via scrypt. Secrets that are already 32+ characters are used directly.
func NewTokenCipher(secret string) (*TokenCipher, error) {
	if secret == "" {
		return nil, errors.New("encryption key is required")
	}

	var key []byte
	if len(secret) >= cipherKeyLen {
		key = []byte(secret[:cipherKeyLen])
	} else {
		var err error
		key, err = scrypt.Key([]byte(secret), []byte("salt"), 16384, 8, 1, cipherKeyLen)
		if err != nil {
			return nil, fmt.Errorf("derive key: %w", err)
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, cipherNonceLen)
	if err != nil {
		return nil, err
	}

	return &TokenCipher{aead: aead}, nil
}

func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, cipherNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	tagStart := len(sealed) - c.aead.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	return fmt.Sprintf("%s:%s:%s",
		hex.EncodeToString(nonce),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	), nil
}

func (c *TokenCipher) Decrypt(encrypted string) (string, error) {
	parts := strings.Split(encrypted, ":")
	if len(parts) != 3 {
		return "", errors.New("invalid encrypted data format")
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode tag: %w", err)
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", errors.New("failed to decrypt data")
	}

	return string(plaintext), nil
}
