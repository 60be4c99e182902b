// Package buffers provides reusable byte buffers for transfer hot paths.
//
// Multipart uploads read one part per in-flight worker, so without pooling
// every part costs a multi-megabyte allocation and the GC churns through
// hundreds of megabytes on a single large file.
package buffers

import (
	"sync"
	"sync/atomic"

	"github.com/tauri-drive/engine/internal/constants"
)

var (
	partAllocations atomic.Int64
	copyAllocations atomic.Int64
)

var (
	// partPool holds buffers sized for the default multipart part. Uploads
	// with smaller parts slice the buffer down; larger parts fall back to a
	// direct allocation.
	partPool = &sync.Pool{
		New: func() any {
			partAllocations.Add(1)
			buf := make([]byte, constants.DefaultPartSize)
			return &buf
		},
	}

	// copyPool holds the 1 MiB buffers used to stream downloads to disk.
	copyPool = &sync.Pool{
		New: func() any {
			copyAllocations.Add(1)
			buf := make([]byte, constants.DownloadChunkSize)
			return &buf
		},
	}
)

// GetPartBuffer retrieves a DefaultPartSize buffer from the pool.
// Return it with PutPartBuffer when the part has been sent.
//
// Usage:
//
//	buf := buffers.GetPartBuffer()
//	defer buffers.PutPartBuffer(buf)
//	n, err := file.ReadAt((*buf)[:partLen], offset)
func GetPartBuffer() *[]byte {
	return partPool.Get().(*[]byte)
}

// PutPartBuffer returns a part buffer to the pool. Buffers that were
// resized or allocated outside the pool are dropped.
func PutPartBuffer(buf *[]byte) {
	if buf != nil && len(*buf) == constants.DefaultPartSize {
		partPool.Put(buf)
	}
}

// GetCopyBuffer retrieves a download copy buffer from the pool.
func GetCopyBuffer() *[]byte {
	return copyPool.Get().(*[]byte)
}

// PutCopyBuffer returns a copy buffer to the pool.
func PutCopyBuffer(buf *[]byte) {
	if buf != nil && len(*buf) == constants.DownloadChunkSize {
		copyPool.Put(buf)
	}
}

// Stats reports how many buffers each pool has had to allocate. Steady
// numbers under load mean the pools are absorbing the traffic.
type Stats struct {
	PartBufferSize  int
	CopyBufferSize  int
	PartAllocations int64
	CopyAllocations int64
}

// GetStats returns current pool counters.
func GetStats() Stats {
	return Stats{
		PartBufferSize:  constants.DefaultPartSize,
		CopyBufferSize:  constants.DownloadChunkSize,
		PartAllocations: partAllocations.Load(),
		CopyAllocations: copyAllocations.Load(),
	}
}
