package store

import (
	"context"
	"fmt"
)

// UploadHistoryEntry is one completed upload as captured in backups.
type UploadHistoryEntry struct {
	FilePath    string
	RemotePath  string
	TotalSize   int64
	Status      string
	CompletedAt *string
}

// CompletedUploads returns up to limit completed uploads, most recent first.
func (s *Store) CompletedUploads(ctx context.Context, limit int) ([]UploadHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path, remote_path, total_size, status, completed_at
		 FROM uploads
		 WHERE status = 'completed'
		 ORDER BY completed_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load upload history: %w", err)
	}
	defer rows.Close()

	entries := []UploadHistoryEntry{}
	for rows.Next() {
		var e UploadHistoryEntry
		if err := rows.Scan(&e.FilePath, &e.RemotePath, &e.TotalSize, &e.Status, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
