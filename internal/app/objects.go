package app

import (
	"context"

	"github.com/tauri-drive/engine/internal/r2"
)

// ListObjects lists the bucket under prefix; an empty prefix lists
// everything.
func (a *App) ListObjects(ctx context.Context, prefix string) ([]r2.Object, error) {
	client, err := a.connectedClient()
	if err != nil {
		return nil, err
	}
	return client.ListObjects(ctx, prefix)
}

// DeleteFile removes one object.
func (a *App) DeleteFile(ctx context.Context, key string) error {
	client, err := a.connectedClient()
	if err != nil {
		return err
	}
	return client.DeleteObject(ctx, key)
}

// RenameFile moves an object to a new key (copy, then delete).
func (a *App) RenameFile(ctx context.Context, oldKey, newKey string) error {
	client, err := a.connectedClient()
	if err != nil {
		return err
	}
	return client.RenameObject(ctx, oldKey, newKey)
}

// CreateFolder writes a zero-byte marker object so the folder shows up in
// listings. The returned message carries the final key including its
// trailing slash.
func (a *App) CreateFolder(ctx context.Context, path string) (string, error) {
	client, err := a.connectedClient()
	if err != nil {
		return "", err
	}
	key, err := client.CreateFolder(ctx, path)
	if err != nil {
		return "", err
	}
	return "Folder created: " + key, nil
}
