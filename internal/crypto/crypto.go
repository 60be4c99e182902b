// Package crypto encrypts short credential strings under a machine-local key.
//
// The key is 32 random bytes stored base64-encoded in a per-user file with
// owner-only permissions. Ciphertexts are base64(nonce + AES-256-GCM output),
// so every encrypted value is self-contained and safe to store as text.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// KeySize - 256-bit key for AES-256-GCM
	KeySize = 32

	// NonceSize - GCM nonce length prefixed to every ciphertext
	NonceSize = 12
)

var (
	// ErrKeyMalformed indicates the key file did not decode to KeySize bytes.
	ErrKeyMalformed = errors.New("invalid key length")

	// ErrDecryptFailed indicates ciphertext could not be decoded or authenticated.
	ErrDecryptFailed = errors.New("decryption failed")
)

// Codec provides AEAD encryption of short strings under a machine-local key.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec loads (or creates) the key file at keyPath and builds the cipher.
func NewCodec(keyPath string) (*Codec, error) {
	key, err := LoadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}
	return NewCodecWithKey(key)
}

// NewCodecWithKey builds a codec from raw key material.
func NewCodecWithKey(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, ErrKeyMalformed
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// LoadOrCreateKey returns the key stored at keyPath, generating and persisting
// a fresh one on first use. The file holds the base64 encoding of the raw key
// and is written with 0600 permissions.
func LoadOrCreateKey(keyPath string) ([]byte, error) {
	data, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		decoded, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode encryption key: %w", err)
		}
		if len(decoded) != KeySize {
			return nil, ErrKeyMalformed
		}
		return decoded, nil

	case os.IsNotExist(err):
		key := make([]byte, KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create key directory: %w", err)
		}
		encoded := base64.StdEncoding.EncodeToString(key)
		if err := os.WriteFile(keyPath, []byte(encoded), 0600); err != nil {
			return nil, fmt.Errorf("failed to save encryption key: %w", err)
		}
		return key, nil

	default:
		return nil, fmt.Errorf("failed to read encryption key: %w", err)
	}
}

// Encrypt encrypts plaintext and returns base64(nonce + ciphertext + tag).
// Every call draws a fresh random nonce, so identical plaintexts produce
// distinct ciphertexts.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any failure (bad base64, truncated input, failed
// authentication) surfaces ErrDecryptFailed.
func (c *Codec) Decrypt(encrypted string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: malformed base64", ErrDecryptFailed)
	}
	if len(combined) < NonceSize {
		return "", fmt.Errorf("%w: encrypted data too short", ErrDecryptFailed)
	}

	nonce, ciphertext := combined[:NonceSize], combined[NonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}

// Hash returns the base64-encoded SHA-256 of s. Non-reversible.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}
