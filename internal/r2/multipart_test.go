package r2

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/upload"
)

// newTestSession opens a session against the fake and shrinks the chunk
// size below the protocol floor so tests work with kilobyte files.
func newTestSession(t *testing.T, fake *fakeS3, key string, chunkSize int64) *MultipartUpload {
	t.Helper()

	client := NewClientFromAPI(fake, "test-bucket")
	m, err := client.NewMultipartUpload(context.Background(), key, 0)
	if err != nil {
		t.Fatalf("NewMultipartUpload: %v", err)
	}
	m.chunkSize = chunkSize
	return m
}

func writeTempFile(t *testing.T, size int) (string, []byte) {
	t.Helper()

	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "source.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path, data
}

func TestNewMultipartUploadClampsChunkSize(t *testing.T) {
	fake := newFakeS3()
	client := NewClientFromAPI(fake, "test-bucket")

	tests := []struct {
		requested int64
		want      int64
	}{
		{0, constants.DefaultPartSize},
		{-1, constants.DefaultPartSize},
		{1024, constants.MinPartSize},
		{constants.MinPartSize, constants.MinPartSize},
		{64 * 1024 * 1024, 64 * 1024 * 1024},
	}

	for _, tt := range tests {
		m, err := client.NewMultipartUpload(context.Background(), "k", tt.requested)
		if err != nil {
			t.Fatalf("NewMultipartUpload(%d): %v", tt.requested, err)
		}
		if m.chunkSize != tt.want {
			t.Errorf("chunk size for request %d = %d, want %d", tt.requested, m.chunkSize, tt.want)
		}
	}
}

func TestNewMultipartUploadNoID(t *testing.T) {
	fake := newFakeS3()
	fake.createErr = errors.New("access denied")
	client := NewClientFromAPI(fake, "test-bucket")

	if _, err := client.NewMultipartUpload(context.Background(), "k", 0); err == nil {
		t.Fatal("expected error when session creation fails")
	}
}

func TestUploadFileSinglePart(t *testing.T) {
	fake := newFakeS3()
	path, data := writeTempFile(t, 600)
	m := newTestSession(t, fake, "docs/small.bin", 1024)

	var samples []TransferProgress
	parts, err := m.UploadFile(context.Background(), path, func(p TransferProgress) {
		samples = append(samples, p)
	})
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	if parts[0].PartNumber != 1 {
		t.Errorf("part number = %d, want 1", parts[0].PartNumber)
	}

	session := fake.session(m.UploadID())
	if !bytes.Equal(session.parts[1], data) {
		t.Error("uploaded part does not match source data")
	}

	if len(samples) != 1 {
		t.Fatalf("got %d progress samples, want 1", len(samples))
	}
	if samples[0].TransferredBytes != 600 || samples[0].TotalBytes != 600 {
		t.Errorf("progress = %d/%d, want 600/600", samples[0].TransferredBytes, samples[0].TotalBytes)
	}
}

func TestUploadFileManyParts(t *testing.T) {
	fake := newFakeS3()
	path, data := writeTempFile(t, 10*1024+77) // 11 parts at 1 KiB
	m := newTestSession(t, fake, "docs/big.bin", 1024)

	var mu sync.Mutex
	var samples []TransferProgress
	parts, err := m.UploadFile(context.Background(), path, func(p TransferProgress) {
		mu.Lock()
		samples = append(samples, p)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	if len(parts) != 11 {
		t.Fatalf("got %d parts, want 11", len(parts))
	}

	seen := make(map[int32]bool)
	for _, p := range parts {
		if p.ETag == "" {
			t.Errorf("part %d has empty etag", p.PartNumber)
		}
		seen[p.PartNumber] = true
	}
	for i := int32(1); i <= 11; i++ {
		if !seen[i] {
			t.Errorf("part %d missing from result", i)
		}
	}

	// Reassemble in part order and compare against the source.
	session := fake.session(m.UploadID())
	var assembled []byte
	for i := int32(1); i <= 11; i++ {
		assembled = append(assembled, session.parts[i]...)
	}
	if !bytes.Equal(assembled, data) {
		t.Error("reassembled parts do not match source data")
	}

	if len(samples) != 11 {
		t.Errorf("got %d progress samples, want 11", len(samples))
	}
	var prev int64
	for _, s := range samples {
		if s.TransferredBytes < prev {
			t.Errorf("progress went backwards: %d after %d", s.TransferredBytes, prev)
		}
		prev = s.TransferredBytes
		if s.TransferredBytes > s.TotalBytes {
			t.Errorf("transferred %d exceeds total %d", s.TransferredBytes, s.TotalBytes)
		}
		if s.TotalBytes != int64(len(data)) {
			t.Errorf("sample total = %d, want %d", s.TotalBytes, len(data))
		}
	}
	if prev != int64(len(data)) {
		t.Errorf("final transferred = %d, want %d", prev, len(data))
	}
}

func TestUploadFilePartSizes(t *testing.T) {
	fake := newFakeS3()
	path, _ := writeTempFile(t, 2*1024+100) // parts of 1024, 1024, 100
	m := newTestSession(t, fake, "docs/odd.bin", 1024)

	if _, err := m.UploadFile(context.Background(), path, nil); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	session := fake.session(m.UploadID())
	wantSizes := map[int32]int{1: 1024, 2: 1024, 3: 100}
	for num, want := range wantSizes {
		if got := len(session.parts[num]); got != want {
			t.Errorf("part %d size = %d, want %d", num, got, want)
		}
	}
}

func TestUploadFileConcurrencyCapped(t *testing.T) {
	fake := newFakeS3()
	fake.partDelay = 5 * time.Millisecond
	path, _ := writeTempFile(t, 40*1024) // 40 parts
	m := newTestSession(t, fake, "docs/wide.bin", 1024)

	if _, err := m.UploadFile(context.Background(), path, nil); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	if fake.maxInFlight > constants.MaxConcurrentParts {
		t.Errorf("max in-flight parts = %d, want <= %d", fake.maxInFlight, constants.MaxConcurrentParts)
	}
	if fake.maxInFlight < 2 {
		t.Errorf("max in-flight parts = %d, expected concurrent uploads", fake.maxInFlight)
	}
}

func TestUploadFilePartErrorAborts(t *testing.T) {
	fake := newFakeS3()
	fake.partErr = func(partNumber int32) error {
		if partNumber == 4 {
			return errors.New("connection reset")
		}
		return nil
	}
	path, _ := writeTempFile(t, 8*1024)
	m := newTestSession(t, fake, "docs/fail.bin", 1024)

	_, err := m.UploadFile(context.Background(), path, nil)
	if err == nil {
		t.Fatal("expected error when a part fails")
	}
	if !strings.Contains(err.Error(), "upload part 4") {
		t.Errorf("error %q should name the failed part", err)
	}

	if fake.abortCalls != 1 {
		t.Errorf("abort calls = %d, want 1", fake.abortCalls)
	}
	if session := fake.session(m.UploadID()); !session.aborted {
		t.Error("session should be aborted after part failure")
	}
}

func TestUploadFilePanicRecovered(t *testing.T) {
	fake := newFakeS3()
	fake.partPanic = func(partNumber int32) bool {
		return partNumber == 2
	}
	path, _ := writeTempFile(t, 4*1024)
	m := newTestSession(t, fake, "docs/panic.bin", 1024)

	_, err := m.UploadFile(context.Background(), path, nil)
	if err == nil {
		t.Fatal("expected error when a worker panics")
	}
	if !strings.Contains(err.Error(), "panicked") {
		t.Errorf("error %q should mention the panic", err)
	}
	if session := fake.session(m.UploadID()); !session.aborted {
		t.Error("session should be aborted after panic")
	}
}

func TestUploadFileCancelledBeforeStart(t *testing.T) {
	fake := newFakeS3()
	path, _ := writeTempFile(t, 4*1024)
	m := newTestSession(t, fake, "docs/cancel.bin", 1024)

	m.Cancel()

	_, err := m.UploadFile(context.Background(), path, nil)
	if !errors.Is(err, ErrUploadCancelled) {
		t.Fatalf("err = %v, want ErrUploadCancelled", err)
	}
	if fake.partCalls != 0 {
		t.Errorf("part calls = %d, want 0 after pre-start cancel", fake.partCalls)
	}
	if session := fake.session(m.UploadID()); !session.aborted {
		t.Error("session should be aborted on cancel")
	}
}

func TestUploadFileCancelMidUpload(t *testing.T) {
	fake := newFakeS3()
	path, _ := writeTempFile(t, 20*1024)
	m := newTestSession(t, fake, "docs/midcancel.bin", 1024)

	var once sync.Once
	fake.partHook = func(partNumber int32) {
		once.Do(m.Cancel)
	}

	_, err := m.UploadFile(context.Background(), path, nil)
	if !errors.Is(err, ErrUploadCancelled) {
		t.Fatalf("err = %v, want ErrUploadCancelled", err)
	}
	if session := fake.session(m.UploadID()); !session.aborted {
		t.Error("session should be aborted on mid-upload cancel")
	}
}

func TestUploadFilePauseBlocksTraffic(t *testing.T) {
	fake := newFakeS3()
	path, data := writeTempFile(t, 4*1024)
	m := newTestSession(t, fake, "docs/paused.bin", 1024)

	m.Pause()

	done := make(chan error, 1)
	go func() {
		parts, err := m.UploadFile(context.Background(), path, nil)
		if err == nil {
			err = m.Complete(context.Background(), parts)
		}
		done <- err
	}()

	// While paused, nothing may reach the store.
	time.Sleep(5 * constants.PauseCheckInterval)
	fake.mu.Lock()
	calls := fake.partCalls
	fake.mu.Unlock()
	if calls != 0 {
		t.Errorf("part calls while paused = %d, want 0", calls)
	}

	m.Resume()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("upload after resume: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("upload did not finish after resume")
	}

	if got, ok := fake.object("docs/paused.bin"); !ok || !bytes.Equal(got, data) {
		t.Error("completed object does not match source data")
	}
}

func TestCompleteSortsParts(t *testing.T) {
	fake := newFakeS3()
	path, data := writeTempFile(t, 3*1024)
	m := newTestSession(t, fake, "docs/sorted.bin", 1024)

	parts, err := m.UploadFile(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	// Hand Complete a deliberately shuffled list; the fake rejects any
	// non-ascending order, so success proves the sort.
	shuffled := []upload.ChunkInfo{parts[2], parts[0], parts[1]}
	if err := m.Complete(context.Background(), shuffled); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	session := fake.session(m.UploadID())
	wantOrder := []int32{1, 2, 3}
	if len(session.completeOrder) != len(wantOrder) {
		t.Fatalf("complete order %v, want %v", session.completeOrder, wantOrder)
	}
	for i, num := range wantOrder {
		if session.completeOrder[i] != num {
			t.Errorf("complete order %v, want %v", session.completeOrder, wantOrder)
			break
		}
	}

	if got, ok := fake.object("docs/sorted.bin"); !ok || !bytes.Equal(got, data) {
		t.Error("completed object does not match source data")
	}
}

func TestCompleteDoesNotMutateInput(t *testing.T) {
	fake := newFakeS3()
	path, _ := writeTempFile(t, 3*1024)
	m := newTestSession(t, fake, "docs/immutable.bin", 1024)

	parts, err := m.UploadFile(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	shuffled := []upload.ChunkInfo{parts[2], parts[0], parts[1]}
	first := shuffled[0].PartNumber
	if err := m.Complete(context.Background(), shuffled); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if shuffled[0].PartNumber != first {
		t.Error("Complete reordered the caller's slice")
	}
}

func TestAbort(t *testing.T) {
	fake := newFakeS3()
	m := newTestSession(t, fake, "docs/aborted.bin", 1024)

	if err := m.Abort(context.Background()); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if session := fake.session(m.UploadID()); !session.aborted {
		t.Error("session not marked aborted")
	}
}

func TestUploadFileMissingSource(t *testing.T) {
	fake := newFakeS3()
	m := newTestSession(t, fake, "docs/missing.bin", 1024)

	_, err := m.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope.bin"), nil)
	if err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestPauseResumeFlags(t *testing.T) {
	fake := newFakeS3()
	m := newTestSession(t, fake, "docs/flags.bin", 1024)

	if m.IsPaused() || m.IsCancelled() {
		t.Error("fresh session should be neither paused nor cancelled")
	}
	m.Pause()
	if !m.IsPaused() {
		t.Error("IsPaused should be true after Pause")
	}
	m.Resume()
	if m.IsPaused() {
		t.Error("IsPaused should be false after Resume")
	}
	m.Cancel()
	if !m.IsCancelled() {
		t.Error("IsCancelled should be true after Cancel")
	}
}
