package r2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/upload"
	"github.com/tauri-drive/engine/internal/util/buffers"
)

// ErrUploadCancelled is returned when an upload stops because its cancelled
// flag was set. Cancellation is cooperative: workers observe the flag at
// defined checkpoints and the session is aborted afterwards.
var ErrUploadCancelled = errors.New("upload cancelled")

// MultipartUpload drives one multipart session for one object.
//
// The zero value is not usable; create sessions with Client.NewMultipartUpload.
// Pause, Resume, and Cancel may be called from any goroutine while UploadFile
// runs.
type MultipartUpload struct {
	api       S3API
	bucket    string
	key       string
	uploadID  string
	chunkSize int64

	cancelled atomic.Bool
	paused    atomic.Bool
}

// NewMultipartUpload opens a multipart session for key. The chunk size is
// clamped to the 5 MiB protocol floor; zero selects the 10 MiB default.
func (c *Client) NewMultipartUpload(ctx context.Context, key string, chunkSize int64) (*MultipartUpload, error) {
	if chunkSize <= 0 {
		chunkSize = constants.DefaultPartSize
	}
	if chunkSize < constants.MinPartSize {
		chunkSize = constants.MinPartSize
	}

	opCtx, cancel := opContext(ctx)
	defer cancel()

	resp, err := c.api.CreateMultipartUpload(opCtx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("create multipart upload: %w", err)
	}

	uploadID := aws.ToString(resp.UploadId)
	if uploadID == "" {
		return nil, errors.New("no upload id returned")
	}

	return &MultipartUpload{
		api:       c.api,
		bucket:    c.bucket,
		key:       key,
		uploadID:  uploadID,
		chunkSize: chunkSize,
	}, nil
}

// UploadID returns the store-assigned multipart session id.
func (m *MultipartUpload) UploadID() string {
	return m.uploadID
}

// Cancel requests cooperative cancellation.
func (m *MultipartUpload) Cancel() {
	m.cancelled.Store(true)
}

// IsCancelled reports whether cancellation has been requested.
func (m *MultipartUpload) IsCancelled() bool {
	return m.cancelled.Load()
}

// Pause idles the upload. Workers finish the part they are sending and
// then wait; no further network traffic happens until Resume.
func (m *MultipartUpload) Pause() {
	m.paused.Store(true)
}

// Resume clears the paused flag.
func (m *MultipartUpload) Resume() {
	m.paused.Store(false)
}

// IsPaused reports whether the upload is paused.
func (m *MultipartUpload) IsPaused() bool {
	return m.paused.Load()
}

// UploadFile sends filePath's content as this session's parts and returns
// the completed (part number, etag) pairs. Call Complete with them to
// finish the session.
//
// Parts are read sequentially and dispatched in ascending part number to up
// to 8 concurrent workers; the semaphore is acquired before the part is
// read, so in-flight memory stays bounded by 8 chunk buffers. Completion
// order is arbitrary. Progress callbacks fire once per finished part, one
// at a time.
//
// Any part error, worker panic, or short part count aborts the session
// best-effort and fails the upload.
func (m *MultipartUpload) UploadFile(ctx context.Context, filePath string, onProgress ProgressFunc) ([]upload.ChunkInfo, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	totalSize := info.Size()
	numParts := int((totalSize + m.chunkSize - 1) / m.chunkSize)

	start := time.Now()

	var (
		uploaded  atomic.Int64
		partsMu   sync.Mutex
		completed = make([]upload.ChunkInfo, 0, numParts)
		cbMu      sync.Mutex
		failMu    sync.Mutex
		firstErr  error
	)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	// fail records the first error and stops dispatch and in-flight waits.
	fail := func(err error) {
		failMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		failMu.Unlock()
		cancelRun()
	}

	sem := make(chan struct{}, constants.MaxConcurrentParts)
	var wg sync.WaitGroup

	offset := int64(0)
dispatch:
	for partNumber := int32(1); offset < totalSize; partNumber++ {
		if m.cancelled.Load() {
			fail(ErrUploadCancelled)
			break
		}
		if err := m.waitWhilePaused(runCtx); err != nil {
			fail(err)
			break
		}

		select {
		case sem <- struct{}{}:
		case <-runCtx.Done():
			break dispatch
		}

		partLen := m.chunkSize
		if remaining := totalSize - offset; remaining < partLen {
			partLen = remaining
		}

		bufPtr := buffers.GetPartBuffer()
		var data []byte
		if partLen <= int64(len(*bufPtr)) {
			data = (*bufPtr)[:partLen]
		} else {
			// Oversized chunk; skip the pool for this upload.
			buffers.PutPartBuffer(bufPtr)
			bufPtr = nil
			data = make([]byte, partLen)
		}

		n, readErr := file.ReadAt(data, offset)
		if readErr != nil && !(readErr == io.EOF && n == len(data)) {
			buffers.PutPartBuffer(bufPtr)
			<-sem
			fail(fmt.Errorf("read part %d: %w", partNumber, readErr))
			break
		}

		wg.Add(1)
		go func(partNumber int32, data []byte, bufPtr *[]byte) {
			defer wg.Done()
			defer func() {
				buffers.PutPartBuffer(bufPtr)
				<-sem
			}()
			defer func() {
				if r := recover(); r != nil {
					fail(fmt.Errorf("part %d panicked: %v", partNumber, r))
				}
			}()

			if m.cancelled.Load() {
				fail(ErrUploadCancelled)
				return
			}
			if err := m.waitWhilePaused(runCtx); err != nil {
				fail(err)
				return
			}
			if runCtx.Err() != nil {
				return
			}

			attemptCtx, cancel := context.WithTimeout(runCtx, constants.AttemptTimeout)
			defer cancel()

			resp, err := m.api.UploadPart(attemptCtx, &s3.UploadPartInput{
				Bucket:        aws.String(m.bucket),
				Key:           aws.String(m.key),
				UploadId:      aws.String(m.uploadID),
				PartNumber:    aws.Int32(partNumber),
				Body:          bytes.NewReader(data),
				ContentLength: aws.Int64(int64(len(data))),
			})
			if err != nil {
				fail(fmt.Errorf("upload part %d: %w", partNumber, err))
				return
			}
			etag := aws.ToString(resp.ETag)
			if etag == "" {
				fail(fmt.Errorf("no etag returned for part %d", partNumber))
				return
			}

			uploaded.Add(int64(len(data)))

			partsMu.Lock()
			completed = append(completed, upload.ChunkInfo{PartNumber: partNumber, ETag: etag})
			partsMu.Unlock()

			if onProgress != nil {
				cbMu.Lock()
				// Read the counter under the callback lock so a later
				// observation never reports a smaller total.
				total := uploaded.Load()
				elapsed := time.Since(start).Seconds()
				speed := 0.0
				if elapsed > 0 {
					speed = float64(total) / elapsed
				}
				var eta int64
				if speed > 0 {
					eta = int64(float64(totalSize-total) / speed)
				}
				onProgress(TransferProgress{
					TransferredBytes: total,
					TotalBytes:       totalSize,
					Speed:            speed,
					ETASeconds:       eta,
				})
				cbMu.Unlock()
			}
		}(partNumber, data, bufPtr)

		offset += partLen
	}

	wg.Wait()

	failMu.Lock()
	err = firstErr
	failMu.Unlock()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		m.abortBestEffort()
		return nil, err
	}

	if len(completed) != numParts {
		m.abortBestEffort()
		return nil, fmt.Errorf("expected %d parts but only %d completed", numParts, len(completed))
	}

	return completed, nil
}

// Complete submits the part list and closes the session. The store rejects
// unsorted part lists, so the pairs are sorted by part number first.
func (m *MultipartUpload) Complete(ctx context.Context, parts []upload.ChunkInfo) error {
	sorted := make([]upload.ChunkInfo, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PartNumber < sorted[j].PartNumber
	})

	completedParts := make([]types.CompletedPart, len(sorted))
	for i, p := range sorted {
		completedParts[i] = types.CompletedPart{
			PartNumber: aws.Int32(p.PartNumber),
			ETag:       aws.String(p.ETag),
		}
	}

	opCtx, cancel := opContext(ctx)
	defer cancel()

	_, err := m.api.CompleteMultipartUpload(opCtx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(m.bucket),
		Key:      aws.String(m.key),
		UploadId: aws.String(m.uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completedParts,
		},
	})
	if err != nil {
		return fmt.Errorf("complete multipart upload: %w", err)
	}
	return nil
}

// Abort discards the session and any uploaded parts.
func (m *MultipartUpload) Abort(ctx context.Context) error {
	opCtx, cancel := opContext(ctx)
	defer cancel()

	_, err := m.api.AbortMultipartUpload(opCtx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(m.bucket),
		Key:      aws.String(m.key),
		UploadId: aws.String(m.uploadID),
	})
	if err != nil {
		return fmt.Errorf("abort multipart upload: %w", err)
	}
	return nil
}

// abortBestEffort aborts on a fresh context so cleanup still runs when the
// operation's own context is already dead.
func (m *MultipartUpload) abortBestEffort() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.OperationTimeout)
	defer cancel()
	_ = m.Abort(ctx)
}

// waitWhilePaused sleeps in 100 ms ticks while the paused flag is set.
// It returns early with an error if the upload is cancelled or ctx ends.
func (m *MultipartUpload) waitWhilePaused(ctx context.Context) error {
	for m.paused.Load() {
		if m.cancelled.Load() {
			return ErrUploadCancelled
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		time.Sleep(constants.PauseCheckInterval)
	}
	return nil
}
