package constants

import (
	"time"
)

// Upload thresholds
const (
	// MultipartThreshold - files larger than this use multipart upload (100 MiB)
	// Files at or below the threshold go through a single PutObject
	MultipartThreshold = 100 * 1024 * 1024

	// MinPartSize - S3 protocol minimum part size (5 MiB, except last part)
	// Requested chunk sizes below this are clamped up
	MinPartSize = 5 * 1024 * 1024

	// DefaultPartSize - default chunk size for multipart uploads (10 MiB)
	// Used when no explicit chunk size is requested
	DefaultPartSize = 10 * 1024 * 1024

	// InteractivePartSize - chunk size for progress-reporting uploads (5 MiB)
	// Smaller chunks mean more frequent progress callbacks
	InteractivePartSize = 5 * 1024 * 1024

	// DownloadChunkSize - buffer size for streaming downloads (1 MiB)
	// Each buffered read advances the download progress callback
	DownloadChunkSize = 1 * 1024 * 1024
)

// Upload concurrency
const (
	// MaxConcurrentParts - maximum parts in flight per multipart upload (8)
	// Bounds in-flight memory to MaxConcurrentParts * chunk size
	MaxConcurrentParts = 8

	// PauseCheckInterval - sleep interval while an upload is paused (100ms)
	// Workers re-check the paused and cancelled flags at each tick
	PauseCheckInterval = 100 * time.Millisecond

	// DefaultMaxConcurrent - default concurrent file uploads during a sync pass
	DefaultMaxConcurrent = 4

	// MinMaxConcurrent - minimum concurrent file uploads (sequential mode)
	MinMaxConcurrent = 1

	// MaxMaxConcurrent - maximum concurrent file uploads allowed
	MaxMaxConcurrent = 8
)

// Object-store client timeouts
const (
	// OperationTimeout - overall timeout for one S3 operation (300s)
	// Applied as a context deadline around each SDK call
	OperationTimeout = 300 * time.Second

	// AttemptTimeout - timeout for a single network attempt (120s)
	AttemptTimeout = 120 * time.Second

	// ConnectTimeout - timeout for establishing a TCP connection (30s)
	ConnectTimeout = 30 * time.Second

	// ReadTimeout - timeout waiting for response headers (60s)
	ReadTimeout = 60 * time.Second

	// HTTPIdleConnTimeout - how long to keep idle connections open (90s)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPDialKeepAlive - keep-alive period for the dialer (30s)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for the TLS handshake (10s)
	HTTPTLSHandshakeTimeout = 10 * time.Second

	// HTTPExpectContinueTimeout - wait for a 100 Continue before sending the body (1s)
	HTTPExpectContinueTimeout = 1 * time.Second
)

// Event system
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	// Publishing never blocks; events beyond the buffer are dropped and counted
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - upper bound for requested channel buffer sizes
	EventBusMaxBuffer = 10000

	// EventUploadProgress - channel name for upload progress events
	EventUploadProgress = "upload-progress"

	// EventDownloadProgress - channel name for download progress events
	EventDownloadProgress = "download-progress"
)

// Persisted state layout
const (
	// AppDirName - per-user application data directory name
	AppDirName = "tauri-drive"

	// DatabaseFileName - SQLite database file under the app directory
	DatabaseFileName = "app.db"

	// KeyFileName - machine-local credential-encryption key file
	// Contents are the base64 encoding of 32 random bytes
	KeyFileName = ".tauri-drive-key"
)

// Backup container
const (
	// BackupMagic - 15-byte magic prefix of encrypted backup files
	BackupMagic = "TAURIDRIVE_BKP1"

	// BackupSaltSize - salt length in the backup envelope (16 bytes)
	BackupSaltSize = 16

	// BackupKDFRounds - SHA-256 iterations for the backup key derivation
	BackupKDFRounds = 100_000

	// BackupMinPassword - minimum password length enforced on export
	BackupMinPassword = 6

	// BackupHistoryLimit - completed uploads included in a backup (newest first)
	BackupHistoryLimit = 1000
)

// Disk space safety margin
const (
	// DiskSpaceBufferPercent - additional space to require beyond file size (15%)
	// Accounts for filesystem overhead and temporary growth during writes
	DiskSpaceBufferPercent = 0.15
)

// Desktop notifications
const (
	// SettingNotifications - settings key toggling desktop notifications
	SettingNotifications = "notifications"

	// NotifyMinTransferDuration - single-file transfers shorter than this
	// do not notify; the user is still watching the terminal
	NotifyMinTransferDuration = 30 * time.Second
)
