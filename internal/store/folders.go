package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoBucket is returned by operations that need a current bucket when no
// credentials have been saved.
var ErrNoBucket = errors.New("no bucket configured")

// SyncFolder is one local-to-remote folder mapping, scoped to the bucket it
// was added under. Field names in JSON match what the front-end expects.
type SyncFolder struct {
	ID         int64   `json:"id"`
	LocalPath  string  `json:"local_path"`
	RemotePath string  `json:"remote_path"`
	Enabled    bool    `json:"enabled"`
	LastSync   *string `json:"last_sync"`
}

// SyncFolders returns the folder mappings for the current bucket, or an
// empty slice when no bucket is configured.
func (s *Store) SyncFolders(ctx context.Context) ([]SyncFolder, error) {
	bucketID, ok, err := s.CurrentBucketID(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []SyncFolder{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, local_path, remote_path, enabled, last_sync
		 FROM sync_folders WHERE bucket_id = ? ORDER BY id`,
		bucketID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync folders: %w", err)
	}
	defer rows.Close()

	folders := []SyncFolder{}
	for rows.Next() {
		var f SyncFolder
		if err := rows.Scan(&f.ID, &f.LocalPath, &f.RemotePath, &f.Enabled, &f.LastSync); err != nil {
			return nil, fmt.Errorf("failed to scan sync folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// AddSyncFolder records a new mapping under the current bucket and returns
// its id. Sync mode is fixed to upload_only and new folders start enabled.
func (s *Store) AddSyncFolder(ctx context.Context, localPath, remotePath string) (int64, error) {
	bucketID, ok, err := s.CurrentBucketID(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNoBucket
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_folders (bucket_id, local_path, remote_path, sync_mode, enabled, created_at)
		 VALUES (?, ?, ?, 'upload_only', 1, datetime('now'))`,
		bucketID, localPath, remotePath,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add sync folder: %w", err)
	}
	return res.LastInsertId()
}

// RemoveSyncFolder deletes the mapping with the given id.
func (s *Store) RemoveSyncFolder(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sync_folders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove sync folder: %w", err)
	}
	return nil
}

// ToggleSyncFolder enables or disables the mapping with the given id.
func (s *Store) ToggleSyncFolder(ctx context.Context, id int64, enabled bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE sync_folders SET enabled = ? WHERE id = ?`, enabled, id); err != nil {
		return fmt.Errorf("failed to toggle sync folder: %w", err)
	}
	return nil
}

// TouchSyncFolder stamps the mapping's last_sync with the current time.
func (s *Store) TouchSyncFolder(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE sync_folders SET last_sync = datetime('now') WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to update sync folder: %w", err)
	}
	return nil
}
