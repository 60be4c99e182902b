//go:build windows

package diskspace

import "golang.org/x/sys/windows"

// availableSpace returns the bytes available to the current user on the
// volume containing dir, or 0 if the volume cannot be probed.
func availableSpace(dir string) int64 {
	dirPtr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	err = windows.GetDiskFreeSpaceEx(dirPtr, &freeBytesAvailable, &totalBytes, &totalFreeBytes)
	if err != nil {
		return 0
	}

	return int64(freeBytesAvailable)
}
