package upload

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Manager reads and writes upload rows. It shares the store's connection
// pool but owns the uploads and upload_chunks tables.
type Manager struct {
	db *sql.DB
}

// NewManager wraps the shared database pool.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Create inserts a new upload row in state pending and returns its id.
func (m *Manager) Create(ctx context.Context, bucketID int64, filePath, remotePath string, totalSize, chunkSize int64) (string, error) {
	id := uuid.NewString()

	_, err := m.db.ExecContext(ctx,
		`INSERT INTO uploads (id, bucket_id, file_path, remote_path, total_size, chunk_size, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'pending', datetime('now'))`,
		id, bucketID, filePath, remotePath, totalSize, chunkSize,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}
	return id, nil
}

// UpdateStatus transitions the upload and optionally records the uploaded
// byte count or an error message. completed_at is stamped only when the new
// status is completed or failed. A row already in a terminal state is left
// untouched: the first terminal transition wins, so a cancel command and a
// late driver failure cannot overwrite each other.
func (m *Manager) UpdateStatus(ctx context.Context, id string, status Status, uploadedSize *int64, errorMessage *string) error {
	query := "UPDATE uploads SET status = ?"
	args := []any{string(status)}

	if uploadedSize != nil {
		query += ", uploaded_size = ?"
		args = append(args, *uploadedSize)
	}
	if errorMessage != nil {
		query += ", error_message = ?"
		args = append(args, *errorMessage)
	}
	if status == StatusCompleted || status == StatusFailed {
		query += ", completed_at = datetime('now')"
	}
	query += " WHERE id = ? AND status NOT IN (?, ?, ?)"
	args = append(args, id,
		string(StatusCompleted), string(StatusFailed), string(StatusCancelled))

	if _, err := m.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update upload status: %w", err)
	}
	return nil
}

// SetMultipartID records the object-store session id for a multipart upload.
func (m *Manager) SetMultipartID(ctx context.Context, id, multipartID string) error {
	if _, err := m.db.ExecContext(ctx,
		`UPDATE uploads SET multipart_upload_id = ? WHERE id = ?`, multipartID, id); err != nil {
		return fmt.Errorf("failed to set multipart upload id: %w", err)
	}
	return nil
}

// SaveChunk upserts the chunk row keyed by (upload_id, part_number).
func (m *Manager) SaveChunk(ctx context.Context, uploadID string, partNumber int32, size int64, etag *string, status Status) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO upload_chunks (upload_id, part_number, size, etag, status, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(upload_id, part_number) DO UPDATE SET
		     etag = excluded.etag,
		     status = excluded.status,
		     uploaded_at = excluded.uploaded_at`,
		uploadID, partNumber, size, etag, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to save chunk: %w", err)
	}
	return nil
}

// Get returns the progress snapshot for one upload, or nil when the id is
// unknown.
func (m *Manager) Get(ctx context.Context, id string) (*Progress, error) {
	row := m.db.QueryRowContext(ctx,
		`SELECT id, file_path, remote_path, total_size, uploaded_size, status, error_message
		 FROM uploads WHERE id = ?`, id)

	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load upload: %w", err)
	}
	return p, nil
}

// Active returns uploads still in flight (pending, uploading or paused),
// most recently started first.
func (m *Manager) Active(ctx context.Context) ([]Progress, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, file_path, remote_path, total_size, uploaded_size, status, error_message
		 FROM uploads
		 WHERE status IN ('pending', 'uploading', 'paused')
		 ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load active uploads: %w", err)
	}
	defer rows.Close()

	uploads := []Progress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, *p)
	}
	return uploads, rows.Err()
}

// CompletedChunks returns (part number, etag) for every completed chunk of
// the upload, ordered by part number.
func (m *Manager) CompletedChunks(ctx context.Context, uploadID string) ([]ChunkInfo, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT part_number, etag FROM upload_chunks
		 WHERE upload_id = ? AND status = 'completed'
		 ORDER BY part_number`, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	defer rows.Close()

	chunks := []ChunkInfo{}
	for rows.Next() {
		var c ChunkInfo
		if err := rows.Scan(&c.PartNumber, &c.ETag); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanProgress maps one uploads row to a Progress snapshot. file_name is
// derived from file_path on every read rather than stored; speed and eta
// are live driver values and stay zero here.
func scanProgress(row rowScanner) (*Progress, error) {
	var p Progress
	var status string
	var errMsg sql.NullString
	if err := row.Scan(&p.ID, &p.FilePath, &p.RemotePath, &p.TotalSize, &p.UploadedSize, &status, &errMsg); err != nil {
		return nil, err
	}

	p.FileName = FileNameFromPath(p.FilePath)
	p.Status = normalizeStatus(Status(status))
	if p.TotalSize > 0 {
		p.Progress = float64(p.UploadedSize) / float64(p.TotalSize) * 100.0
	}
	if errMsg.Valid {
		p.ErrorMessage = &errMsg.String
	}
	return &p, nil
}
