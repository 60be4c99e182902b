// Package backup implements the password-protected migration container.
//
// A backup file is MAGIC + 16-byte salt + 12-byte nonce + AES-256-GCM
// ciphertext of the JSON-encoded Snapshot. The key is derived from the
// password with an iterated-SHA-256 scheme that is fixed forever: existing
// backup files must stay readable, so the derivation below must not change
// (see deriveKey).
package backup

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tauri-drive/engine/internal/constants"
)

const nonceSize = 12

var magic = []byte(constants.BackupMagic)

var (
	// ErrFormatInvalid indicates the file is not a recognized backup container.
	ErrFormatInvalid = errors.New("invalid backup file: wrong format or version")

	// ErrAuthFailed indicates the password is wrong or the file is corrupted.
	// The message is user-visible and fixed.
	ErrAuthFailed = errors.New("incorrect password or corrupted file")
)

// Snapshot is the exportable application state carried inside a backup.
// Credential values are stored in the clear here; the envelope itself is
// password-protected.
type Snapshot struct {
	Version       int             `json:"version"`
	AppVersion    string          `json:"app_version"`
	CreatedAt     string          `json:"created_at"`
	Credentials   *Credentials    `json:"credentials"`
	SyncFolders   []SyncFolder    `json:"sync_folders"`
	Settings      []Setting       `json:"settings"`
	UploadHistory []UploadHistory `json:"upload_history"`
}

// Credentials is the plaintext credential bundle for one bucket.
type Credentials struct {
	BucketName      string `json:"bucket_name"`
	AccountID       string `json:"account_id"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Endpoint        string `json:"endpoint"`
}

// SyncFolder is one local-to-remote folder mapping.
type SyncFolder struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	SyncMode   string `json:"sync_mode"`
	Enabled    bool   `json:"enabled"`
}

// Setting is one key/value application setting.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UploadHistory is one completed upload, kept for reference only.
// Import reports these but never restores them (paths differ across machines).
type UploadHistory struct {
	FilePath    string  `json:"file_path"`
	RemotePath  string  `json:"remote_path"`
	TotalSize   int64   `json:"total_size"`
	Status      string  `json:"status"`
	CompletedAt *string `json:"completed_at"`
}

// deriveKey stretches password into a 32-byte AES key.
//
// The scheme is fixed for interoperability with existing backup files:
// data = password || salt, then 100,000 rounds of data = SHA256(data) || salt,
// and the key is SHA256 of the final buffer. Not PBKDF2 - do not replace it.
func deriveKey(password string, salt []byte) []byte {
	data := make([]byte, 0, len(password)+len(salt))
	data = append(data, password...)
	data = append(data, salt...)

	for i := 0; i < constants.BackupKDFRounds; i++ {
		sum := sha256.Sum256(data)
		data = data[:0]
		data = append(data, sum[:]...)
		data = append(data, salt...)
	}

	key := sha256.Sum256(data)
	return key[:]
}

// Encrypt serializes snapshot and seals it under password.
func Encrypt(snapshot *Snapshot, password string) ([]byte, error) {
	plaintext, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize backup data: %w", err)
	}

	salt := make([]byte, constants.BackupSaltSize)
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := newAEAD(password, salt)
	if err != nil {
		return nil, err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(magic)+len(salt)+len(nonce)+len(ciphertext))
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// Decrypt opens a backup file produced by Encrypt.
// Wrong or truncated containers fail with ErrFormatInvalid; a wrong password
// or corrupted ciphertext fails with ErrAuthFailed.
func Decrypt(encrypted []byte, password string) (*Snapshot, error) {
	if len(encrypted) < len(magic)+constants.BackupSaltSize+nonceSize {
		return nil, fmt.Errorf("%w: file too short", ErrFormatInvalid)
	}
	if !bytes.Equal(encrypted[:len(magic)], magic) {
		return nil, ErrFormatInvalid
	}

	offset := len(magic)
	salt := encrypted[offset : offset+constants.BackupSaltSize]
	nonce := encrypted[offset+constants.BackupSaltSize : offset+constants.BackupSaltSize+nonceSize]
	ciphertext := encrypted[offset+constants.BackupSaltSize+nonceSize:]

	aead, err := newAEAD(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	var snapshot Snapshot
	if err := json.Unmarshal(plaintext, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse backup data: %w", err)
	}
	return &snapshot, nil
}

func newAEAD(password string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}
