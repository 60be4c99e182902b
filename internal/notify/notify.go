// Package notify sends desktop notifications when long-running transfers
// finish. It uses github.com/gen2brain/beeep for cross-platform delivery.
package notify

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/tauri-drive/engine/internal/logging"
	itstrings "github.com/tauri-drive/engine/internal/util/strings"
)

const appTitle = "Tauri Drive"

// Notifier handles desktop notifications. Delivery failures are logged and
// otherwise ignored; a missing notification daemon must never fail a
// transfer.
type Notifier struct {
	logger  *logging.Logger
	enabled bool
	mu      sync.RWMutex
}

// NewNotifier creates a notifier. Enabled follows the user's
// "notifications" setting; the default is on.
func NewNotifier(enabled bool, logger *logging.Logger) *Notifier {
	return &Notifier{
		logger:  logger,
		enabled: enabled,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// SyncComplete announces a finished folder sync.
func (n *Notifier) SyncComplete(fileCount int, totalBytes int64) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("Synced %d %s (%s).",
		fileCount, itstrings.Pluralize("file", int64(fileCount)), itstrings.FormatBytes(totalBytes))
	if err := n.send(appTitle, message); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send sync complete notification")
	}
}

// SyncFailed announces a folder sync that finished with errors. It uses the
// alert variant where the platform distinguishes one.
func (n *Notifier) SyncFailed(failedCount, totalCount int) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("%d of %d uploads failed. Run 'drive-engine sync' to try again.", failedCount, totalCount)
	if err := beeep.Alert(appTitle, message, ""); err != nil {
		if err := n.send(appTitle, message); err != nil {
			n.logger.Warn().Err(err).Msg("Failed to send sync failed notification")
		}
	}
}

// UploadComplete announces a finished single-file upload.
func (n *Notifier) UploadComplete(fileName, remoteKey string) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("\"%s\" uploaded to %s", truncate(fileName, 40), truncate(remoteKey, 60))
	if err := n.send("Upload Complete", message); err != nil {
		n.logger.Warn().Err(err).Str("file", fileName).Msg("Failed to send upload complete notification")
	}
}

// DownloadComplete announces a finished download.
func (n *Notifier) DownloadComplete(fileName, localPath string) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("\"%s\" saved to:\n%s", truncate(fileName, 40), shortenPath(localPath))
	if err := n.send("Download Complete", message); err != nil {
		n.logger.Warn().Err(err).Str("file", fileName).Msg("Failed to send download complete notification")
	}
}

// send is the internal method that actually sends the notification.
func (n *Notifier) send(title, message string) error {
	// beeep.Notify is cross-platform:
	// - Windows: Uses toast notifications
	// - macOS: Uses NSUserNotificationCenter
	// - Linux: Uses D-Bus notifications
	return beeep.Notify(title, message, "")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// shortenPath abbreviates a long path for display in notifications.
func shortenPath(path string) string {
	const maxLen = 60

	if len(path) <= maxLen {
		return path
	}

	// Try to show drive/root + ... + last 2 path components
	_, file := filepath.Split(path)
	parentDir := filepath.Base(filepath.Dir(path))

	short := filepath.Join("...", parentDir, file)

	vol := filepath.VolumeName(path)
	if vol != "" && len(vol)+len(short)+1 <= maxLen {
		short = vol + string(filepath.Separator) + short
	}

	if len(short) > maxLen {
		return "..." + path[len(path)-(maxLen-3):]
	}

	return short
}
