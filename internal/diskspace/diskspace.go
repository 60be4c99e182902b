// Package diskspace checks free space before downloads are written to disk.
//
// Each platform file contributes availableSpace; everything else is shared.
package diskspace

import (
	"errors"
	"fmt"
	"path/filepath"
)

// InsufficientSpaceError indicates that there is not enough disk space available.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	requiredMB := float64(e.RequiredBytes) / (1024 * 1024)
	availableMB := float64(e.AvailableBytes) / (1024 * 1024)
	return fmt.Sprintf("insufficient disk space for %s: need %.2f MB, have %.2f MB available",
		e.Path, requiredMB, availableMB)
}

// CheckAvailableSpace checks whether the filesystem holding targetPath has
// room for requiredBytes plus the safety margin (e.g. 1.15 for 15% headroom).
// The target itself may not exist yet; its parent directory is probed.
//
// If the filesystem cannot be probed (network mounts, virtual filesystems)
// the check passes and the write is left to fail on its own.
func CheckAvailableSpace(targetPath string, requiredBytes int64, safetyMargin float64) error {
	available := availableSpace(filepath.Dir(targetPath))
	if available == 0 {
		return nil
	}

	requiredWithMargin := int64(float64(requiredBytes) * safetyMargin)
	if available < requiredWithMargin {
		return &InsufficientSpaceError{
			Path:           targetPath,
			RequiredBytes:  requiredWithMargin,
			AvailableBytes: available,
		}
	}

	return nil
}

// GetAvailableSpace returns the available space in bytes for the filesystem
// containing the given path. Returns 0 if unable to determine.
func GetAvailableSpace(path string) int64 {
	return availableSpace(filepath.Dir(path))
}

// IsInsufficientSpaceError reports whether err is an InsufficientSpaceError.
func IsInsufficientSpaceError(err error) bool {
	var ise *InsufficientSpaceError
	return errors.As(err, &ise)
}
