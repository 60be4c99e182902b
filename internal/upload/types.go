// Package upload tracks the lifecycle of file uploads in the database: one
// row per upload, one row per multipart chunk. The multipart driver and the
// command surface both record state through the Manager here; neither
// touches the tables directly.
package upload

import (
	"path"
	"strings"
)

// Status is the lifecycle state of an upload. Completed, failed and
// cancelled are terminal.
type Status string

// Upload lifecycle states.
const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// normalizeStatus maps unknown database values to pending so a damaged row
// never panics the caller.
func normalizeStatus(s Status) Status {
	switch s {
	case StatusPending, StatusUploading, StatusPaused, StatusCompleted, StatusFailed, StatusCancelled:
		return s
	default:
		return StatusPending
	}
}

// Progress is the upload state snapshot handed to the front-end. Field
// names are camelCase on the wire.
type Progress struct {
	ID           string  `json:"id"`
	FileName     string  `json:"fileName"`
	FilePath     string  `json:"filePath"`
	RemotePath   string  `json:"remotePath"`
	TotalSize    int64   `json:"totalSize"`
	UploadedSize int64   `json:"uploadedSize"`
	Progress     float64 `json:"progress"`
	Speed        float64 `json:"speed"`
	ETA          int64   `json:"eta"`
	Status       Status  `json:"status"`
	ErrorMessage *string `json:"errorMessage"`
}

// ChunkInfo identifies one completed multipart chunk.
type ChunkInfo struct {
	PartNumber int32
	ETag       string
}

// FileNameFromPath extracts the final path segment. Backslashes are
// normalized first so paths recorded by Windows clients resolve on any
// platform.
func FileNameFromPath(filePath string) string {
	normalized := strings.ReplaceAll(filePath, "\\", "/")
	name := path.Base(normalized)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
