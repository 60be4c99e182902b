package r2

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/diskspace"
	"github.com/tauri-drive/engine/internal/util/buffers"
)

// Object describes one stored object, shaped for the front-end.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
	IsDirectory  bool      `json:"is_directory"`
}

// TransferProgress is one progress sample from an upload or download.
type TransferProgress struct {
	TransferredBytes int64
	TotalBytes       int64
	Speed            float64 // bytes per second
	ETASeconds       int64
}

// ProgressFunc receives progress samples. Callbacks are invoked from the
// goroutine doing the transfer; multipart uploads serialise them.
type ProgressFunc func(TransferProgress)

// ListObjects returns the bucket's objects under prefix. An empty prefix
// lists the whole bucket.
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]Object, error) {
	opCtx, cancel := opContext(ctx)
	defer cancel()

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	resp, err := c.api.ListObjectsV2(opCtx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	objects := make([]Object, 0, len(resp.Contents))
	for _, obj := range resp.Contents {
		objects = append(objects, Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
			IsDirectory:  false,
		})
	}

	return objects, nil
}

// PutFile uploads a local file as a single object and returns its etag.
//
// There is no byte-level progress on a single PUT, so the callback gets a
// synthetic halfway sample once the file is handed to the transport and a
// final one when the store acknowledges it.
func (c *Client) PutFile(ctx context.Context, key, localPath string, onProgress ProgressFunc) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", localPath, err)
	}
	totalSize := info.Size()

	if onProgress != nil {
		onProgress(TransferProgress{TransferredBytes: totalSize / 2, TotalBytes: totalSize})
	}

	opCtx, cancel := opContext(ctx)
	defer cancel()

	resp, err := c.api.PutObject(opCtx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(totalSize),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	if onProgress != nil {
		onProgress(TransferProgress{TransferredBytes: totalSize, TotalBytes: totalSize})
	}

	return aws.ToString(resp.ETag), nil
}

// PutBytes uploads an in-memory payload as one object and returns its etag.
func (c *Client) PutBytes(ctx context.Context, key string, data []byte) (string, error) {
	opCtx, cancel := opContext(ctx)
	defer cancel()

	resp, err := c.api.PutObject(opCtx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return aws.ToString(resp.ETag), nil
}

// GetToFile streams an object to localPath, creating parent directories as
// needed. Before writing it checks that the destination filesystem has the
// object's size plus headroom available.
//
// The call deliberately runs on the caller's context rather than the
// per-operation deadline: a large body can legitimately stream for longer
// than any single-operation budget. Stalls are handled by the transport.
func (c *Client) GetToFile(ctx context.Context, key, localPath string, onProgress ProgressFunc) error {
	resp, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get object %s: %w", key, err)
	}
	defer resp.Body.Close()

	totalSize := aws.ToInt64(resp.ContentLength)
	if totalSize > 0 {
		if err := diskspace.CheckAvailableSpace(localPath, totalSize, 1+constants.DiskSpaceBufferPercent); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(localPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	defer out.Close()

	bufPtr := buffers.GetCopyBuffer()
	defer buffers.PutCopyBuffer(bufPtr)
	buf := *bufPtr

	start := time.Now()
	var downloaded int64

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("write %s: %w", localPath, writeErr)
			}
			downloaded += int64(n)

			if onProgress != nil {
				elapsed := time.Since(start).Seconds()
				speed := 0.0
				if elapsed > 0 {
					speed = float64(downloaded) / elapsed
				}
				var eta int64
				if speed > 0 && totalSize > downloaded {
					eta = int64(float64(totalSize-downloaded) / speed)
				}
				onProgress(TransferProgress{
					TransferredBytes: downloaded,
					TotalBytes:       totalSize,
					Speed:            speed,
					ETASeconds:       eta,
				})
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read object %s: %w", key, readErr)
		}
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", localPath, err)
	}

	return nil
}

// DeleteObject removes one object.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	opCtx, cancel := opContext(ctx)
	defer cancel()

	_, err := c.api.DeleteObject(opCtx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// CopyObject copies srcKey to dstKey within the bucket.
func (c *Client) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	opCtx, cancel := opContext(ctx)
	defer cancel()

	_, err := c.api.CopyObject(opCtx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		CopySource: aws.String(c.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("copy object %s to %s: %w", srcKey, dstKey, err)
	}
	return nil
}

// RenameObject moves an object to a new key. The store has no native
// rename, so this is a copy followed by a delete of the original.
func (c *Client) RenameObject(ctx context.Context, oldKey, newKey string) error {
	if err := c.CopyObject(ctx, oldKey, newKey); err != nil {
		return err
	}
	return c.DeleteObject(ctx, oldKey)
}

// CreateFolder writes the zero-byte marker object that object-store UIs
// treat as a folder: the key with a trailing slash.
func (c *Client) CreateFolder(ctx context.Context, path string) (string, error) {
	key := strings.TrimSuffix(path, "/") + "/"
	if _, err := c.PutBytes(ctx, key, nil); err != nil {
		return "", err
	}
	return key, nil
}
