package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/events"
	"github.com/tauri-drive/engine/internal/r2"
	"github.com/tauri-drive/engine/internal/upload"
)

// UploadFileWithProgress uploads a local file to remoteKey, tracking it as
// an upload row and emitting progress on the upload-progress channel. Files
// over the multipart threshold go through the multipart driver with small
// interactive chunks; everything else is a single put. Every upload emits at
// least an initial uploading event and a terminal completed event.
func (a *App) UploadFileWithProgress(ctx context.Context, localPath, remoteKey string) (string, error) {
	client, err := a.connectedClient()
	if err != nil {
		return "", err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", localPath, err)
	}
	fileSize := info.Size()

	bucketID, ok, err := a.store.CurrentBucketID(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		// Session was connected without saving; rows still carry a
		// scope value.
		bucketID = 1
	}

	uploadID, err := a.uploads.Create(ctx, bucketID, localPath, remoteKey, fileSize, constants.DefaultPartSize)
	if err != nil {
		return "", err
	}
	if err := a.uploads.UpdateStatus(ctx, uploadID, upload.StatusUploading, nil, nil); err != nil {
		return "", err
	}

	fileName := upload.FileNameFromPath(localPath)
	emit := func(uploaded int64, pct, speed float64, eta int64, status upload.Status) {
		a.bus.PublishUploadProgress(upload.Progress{
			ID:           uploadID,
			FileName:     fileName,
			FilePath:     localPath,
			RemotePath:   remoteKey,
			TotalSize:    fileSize,
			UploadedSize: uploaded,
			Progress:     pct,
			Speed:        speed,
			ETA:          eta,
			Status:       status,
		})
	}

	emit(0, 0, 0, 0, upload.StatusUploading)

	onProgress := func(p r2.TransferProgress) {
		emit(p.TransferredBytes, percent(p.TransferredBytes, fileSize), p.Speed, p.ETASeconds, upload.StatusUploading)
	}

	if fileSize > constants.MultipartThreshold {
		a.log.Info().Str("upload_id", uploadID).Str("file", fileName).Int64("bytes", fileSize).Msg("starting multipart upload")
		err = a.runMultipart(ctx, client, uploadID, localPath, remoteKey, fileSize, onProgress)
	} else {
		_, err = client.PutFile(ctx, remoteKey, localPath, onProgress)
	}
	if err != nil {
		a.failUpload(uploadID, err)
		return "", err
	}

	if err := a.uploads.UpdateStatus(ctx, uploadID, upload.StatusCompleted, &fileSize, nil); err != nil {
		return "", err
	}
	emit(fileSize, 100.0, 0, 0, upload.StatusCompleted)
	a.log.Info().Str("upload_id", uploadID).Str("remote", remoteKey).Int64("bytes", fileSize).Msg("upload completed")
	return uploadID, nil
}

// runMultipart drives one multipart session for a tracked upload. The
// driver is registered under the upload id for the duration so pause,
// resume and cancel commands reach it.
func (a *App) runMultipart(ctx context.Context, client *r2.Client, uploadID, localPath, remoteKey string, fileSize int64, onProgress r2.ProgressFunc) error {
	m, err := client.NewMultipartUpload(ctx, remoteKey, constants.InteractivePartSize)
	if err != nil {
		return err
	}
	if err := a.uploads.SetMultipartID(ctx, uploadID, m.UploadID()); err != nil {
		a.log.Warn().Err(err).Str("upload_id", uploadID).Msg("failed to record multipart session id")
	}

	a.registerDriver(uploadID, m)
	defer a.unregisterDriver(uploadID)

	parts, err := m.UploadFile(ctx, localPath, onProgress)
	if err != nil {
		return err
	}
	if err := m.Complete(ctx, parts); err != nil {
		_ = m.Abort(context.Background())
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	// Record the completed chunks; the rows are reference data, so a
	// write failure does not fail the upload.
	for _, part := range parts {
		size := fileSize - int64(part.PartNumber-1)*constants.InteractivePartSize
		if size > constants.InteractivePartSize {
			size = constants.InteractivePartSize
		}
		etag := part.ETag
		if err := a.uploads.SaveChunk(ctx, uploadID, part.PartNumber, size, &etag, upload.StatusCompleted); err != nil {
			a.log.Warn().Err(err).Str("upload_id", uploadID).Int32("part", part.PartNumber).Msg("failed to record chunk")
		}
	}
	return nil
}

// failUpload moves the row to failed with the cause as its message. A
// cancelled driver is not a failure: CancelUpload already moved the row.
// The write runs on a fresh context because the upload's own context may be
// the thing that failed.
func (a *App) failUpload(uploadID string, cause error) {
	if errors.Is(cause, r2.ErrUploadCancelled) {
		return
	}
	msg := cause.Error()
	if err := a.uploads.UpdateStatus(context.Background(), uploadID, upload.StatusFailed, nil, &msg); err != nil {
		a.log.Error().Err(err).Str("upload_id", uploadID).Msg("failed to record upload failure")
	}
}

// UploadFile is the quiet upload path: no tracking row, no events. It
// returns the object's etag, or a fixed message for multipart uploads,
// which have no single etag worth returning.
func (a *App) UploadFile(ctx context.Context, localPath, remoteKey string) (string, error) {
	client, err := a.connectedClient()
	if err != nil {
		return "", err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	if info.Size() > constants.MultipartThreshold {
		m, err := client.NewMultipartUpload(ctx, remoteKey, constants.DefaultPartSize)
		if err != nil {
			return "", err
		}
		parts, err := m.UploadFile(ctx, localPath, nil)
		if err != nil {
			return "", err
		}
		if err := m.Complete(ctx, parts); err != nil {
			_ = m.Abort(context.Background())
			return "", fmt.Errorf("failed to complete multipart upload: %w", err)
		}
		return "Uploaded with multipart", nil
	}

	return client.PutFile(ctx, remoteKey, localPath, nil)
}

// PauseUpload moves the row to paused and raises the driver's pause flag,
// then echoes the row snapshot so the front-end sees the transition.
func (a *App) PauseUpload(ctx context.Context, uploadID string) error {
	if err := a.uploads.UpdateStatus(ctx, uploadID, upload.StatusPaused, nil, nil); err != nil {
		return err
	}
	if m, ok := a.driver(uploadID); ok {
		m.Pause()
	}
	a.publishSnapshot(ctx, uploadID)
	return nil
}

// ResumeUpload is the inverse of PauseUpload.
func (a *App) ResumeUpload(ctx context.Context, uploadID string) error {
	if err := a.uploads.UpdateStatus(ctx, uploadID, upload.StatusUploading, nil, nil); err != nil {
		return err
	}
	if m, ok := a.driver(uploadID); ok {
		m.Resume()
	}
	a.publishSnapshot(ctx, uploadID)
	return nil
}

// CancelUpload moves the row to cancelled and raises the driver's cancel
// flag. The driver aborts its session and unwinds on its own.
func (a *App) CancelUpload(ctx context.Context, uploadID string) error {
	if err := a.uploads.UpdateStatus(ctx, uploadID, upload.StatusCancelled, nil, nil); err != nil {
		return err
	}
	if m, ok := a.driver(uploadID); ok {
		m.Cancel()
	}
	return nil
}

// RetryUpload starts a fresh upload with the paths recorded on an earlier
// row and returns the new upload id.
func (a *App) RetryUpload(ctx context.Context, uploadID string) (string, error) {
	p, err := a.uploads.Get(ctx, uploadID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", ErrUploadNotFound
	}
	return a.UploadFileWithProgress(ctx, p.FilePath, p.RemotePath)
}

// ActiveUploads returns the uploads still in flight.
func (a *App) ActiveUploads(ctx context.Context) ([]upload.Progress, error) {
	return a.uploads.Active(ctx)
}

func (a *App) publishSnapshot(ctx context.Context, uploadID string) {
	p, err := a.uploads.Get(ctx, uploadID)
	if err != nil || p == nil {
		return
	}
	a.bus.PublishUploadProgress(*p)
}

// DownloadFileWithProgress streams an object to disk, emitting progress on
// the download-progress channel: one initial downloading event, one per
// chunk written, and one terminal completed event.
func (a *App) DownloadFileWithProgress(ctx context.Context, remoteKey, localPath string) (string, error) {
	client, err := a.connectedClient()
	if err != nil {
		return "", err
	}

	downloadID := uuid.NewString()
	fileName := lastSegment(remoteKey)

	emit := func(total, downloaded int64, pct, speed float64, eta int64, status string) {
		a.bus.PublishDownloadProgress(events.DownloadProgress{
			ID:             downloadID,
			FileName:       fileName,
			RemotePath:     remoteKey,
			LocalPath:      localPath,
			TotalSize:      total,
			DownloadedSize: downloaded,
			Progress:       pct,
			Speed:          speed,
			ETA:            eta,
			Status:         status,
		})
	}

	emit(0, 0, 0, 0, 0, "downloading")

	err = client.GetToFile(ctx, remoteKey, localPath, func(p r2.TransferProgress) {
		emit(p.TotalBytes, p.TransferredBytes, percent(p.TransferredBytes, p.TotalBytes), p.Speed, p.ETASeconds, "downloading")
	})
	if err != nil {
		return "", err
	}

	// The terminal event zeroes the byte counts; consumers key off the
	// status and the 100% figure.
	emit(0, 0, 100.0, 0, 0, "completed")
	a.log.Info().Str("download_id", downloadID).Str("remote", remoteKey).Msg("download completed")
	return downloadID, nil
}

// DownloadFile is the quiet download path: no events.
func (a *App) DownloadFile(ctx context.Context, remoteKey, localPath string) error {
	client, err := a.connectedClient()
	if err != nil {
		return err
	}
	return client.GetToFile(ctx, remoteKey, localPath, nil)
}

func percent(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100.0
}

// lastSegment returns the text after the final slash, which is how the
// front-end labels object keys.
func lastSegment(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
