package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

var encryptionKey []byte

// ErrContextMismatch is returned when a ciphertext is opened under a
// different binding context than it was sealed with. Callers must treat
// this as fatal for the credential, never fall back to plaintext.
var ErrContextMismatch = errors.New("crypto: context mismatch or corrupted ciphertext")

// SetEncryptionKey sets the global encryption key, padded/truncated to 32
// bytes (AES-256). An empty key disables encryption at rest.
func SetEncryptionKey(key string) error {
	if key == "" {
		encryptionKey = nil
		return nil
	}
	finalKey := make([]byte, 32)
	copy(finalKey, []byte(key))
	encryptionKey = finalKey
	return nil
}

// Enabled reports whether an encryption key is configured.
func Enabled() bool {
	return len(encryptionKey) > 0
}

// EncryptBound seals plainText with AES-GCM, binding it to contextTag
// (additional authenticated data, e.g. "tenant_id:provider"). Returns a
// base64 string.
func EncryptBound(plainText, contextTag string) (string, error) {
	if len(encryptionKey) == 0 {
		return plainText, nil // encryption not configured, stored as is
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plainText), []byte(contextTag))
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptBound opens a base64 ciphertext sealed by EncryptBound under the
// same contextTag. A tag mismatch fails closed with ErrContextMismatch.
func DecryptBound(cipherText, contextTag string) (string, error) {
	if len(encryptionKey) == 0 {
		return cipherText, nil // no key, values are stored in plain text
	}

	data, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", ErrContextMismatch
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", ErrContextMismatch
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(contextTag))
	if err != nil {
		return "", ErrContextMismatch
	}

	return string(plaintext), nil
}
