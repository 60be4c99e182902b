package app

import (
	"context"

	"github.com/tauri-drive/engine/internal/store"
)

// SyncFolders returns the folder mappings for the current bucket.
func (a *App) SyncFolders(ctx context.Context) ([]store.SyncFolder, error) {
	return a.store.SyncFolders(ctx)
}

// AddSyncFolder records a new local-to-remote mapping and returns its id.
func (a *App) AddSyncFolder(ctx context.Context, localPath, remotePath string) (int64, error) {
	return a.store.AddSyncFolder(ctx, localPath, remotePath)
}

// RemoveSyncFolder deletes a mapping.
func (a *App) RemoveSyncFolder(ctx context.Context, id int64) error {
	return a.store.RemoveSyncFolder(ctx, id)
}

// ToggleSyncFolder enables or disables a mapping.
func (a *App) ToggleSyncFolder(ctx context.Context, id int64, enabled bool) error {
	return a.store.ToggleSyncFolder(ctx, id, enabled)
}

// TouchSyncFolder stamps a mapping's last_sync after a sync pass.
func (a *App) TouchSyncFolder(ctx context.Context, id int64) error {
	return a.store.TouchSyncFolder(ctx, id)
}

// GetSetting reads one setting; the bool is false when the key is unset.
func (a *App) GetSetting(ctx context.Context, key string) (string, bool, error) {
	return a.store.GetSetting(ctx, key)
}

// SetSetting upserts one setting.
func (a *App) SetSetting(ctx context.Context, key, value string) error {
	return a.store.SetSetting(ctx, key, value)
}

// Settings returns every stored key/value pair.
func (a *App) Settings(ctx context.Context) ([]store.Setting, error) {
	return a.store.Settings(ctx)
}
