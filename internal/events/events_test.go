package events

import (
	"testing"
	"time"

	"github.com/tauri-drive/engine/internal/upload"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventUploadProgress)

	bus.PublishUploadProgress(upload.Progress{
		ID:           "upload-1",
		FileName:     "file.txt",
		TotalSize:    1000,
		UploadedSize: 500,
		Progress:     50.0,
		Status:       upload.StatusUploading,
	})

	select {
	case received := <-ch:
		ev, ok := received.(*UploadProgressEvent)
		if !ok {
			t.Fatal("Expected UploadProgressEvent")
		}
		if ev.Progress.ID != "upload-1" {
			t.Errorf("Expected id 'upload-1', got '%s'", ev.Progress.ID)
		}
		if ev.Progress.Progress != 50.0 {
			t.Errorf("Expected progress 50.0, got %f", ev.Progress.Progress)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventLog)
	ch2 := bus.Subscribe(EventLog)

	bus.PublishLog(InfoLevel, "Test log", nil)

	received1 := false
	received2 := false

	select {
	case <-ch1:
		received1 = true
	case <-time.After(100 * time.Millisecond):
	}

	select {
	case <-ch2:
		received2 = true
	case <-time.After(100 * time.Millisecond):
	}

	if !received1 || !received2 {
		t.Error("Not all subscribers received the event")
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	uploadCh := bus.Subscribe(EventUploadProgress)
	downloadCh := bus.Subscribe(EventDownloadProgress)

	bus.PublishUploadProgress(upload.Progress{ID: "u1"})

	select {
	case <-uploadCh:
		// Expected
	case <-time.After(100 * time.Millisecond):
		t.Error("Upload subscriber didn't receive event")
	}

	// Download subscriber must not see upload events
	select {
	case <-downloadCh:
		t.Error("Download subscriber received wrong event type")
	case <-time.After(50 * time.Millisecond):
		// Expected - timeout means no event
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	allCh := bus.SubscribeAll()

	bus.PublishUploadProgress(upload.Progress{ID: "u1"})
	bus.PublishDownloadProgress(DownloadProgress{ID: "d1", Status: "downloading"})

	count := 0
	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
			count++
		case <-time.After(100 * time.Millisecond):
		}
	}

	if count != 2 {
		t.Errorf("Expected to receive 2 events, got %d", count)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2) // Small buffer
	defer bus.Close()

	ch := bus.Subscribe(EventUploadProgress)

	// Publish well past capacity; Publish must not block
	for i := 0; i < 10; i++ {
		bus.PublishUploadProgress(upload.Progress{ID: "u1"})
	}

	if dropped := bus.GetDroppedEventCount(); dropped != 8 {
		t.Errorf("Expected 8 dropped events, got %d", dropped)
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(10 * time.Millisecond):
			if count != 2 {
				t.Errorf("Expected 2 buffered events, got %d", count)
			}
			return
		}
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventUploadProgress)
	bus.Unsubscribe(EventUploadProgress, ch)

	bus.PublishUploadProgress(upload.Progress{ID: "u1"})

	select {
	case <-ch:
		t.Error("Unsubscribed channel received an event")
	case <-time.After(50 * time.Millisecond):
		// Expected
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventUploadProgress)

	bus.Close()

	_, ok := <-ch
	if ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing after close should not panic
	bus.PublishUploadProgress(upload.Progress{ID: "u1"})
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level %d: expected %s, got %s", tt.level, tt.expected, got)
		}
	}
}

func TestDownloadProgressPayload(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventDownloadProgress)

	bus.PublishDownloadProgress(DownloadProgress{
		ID:             "d1",
		FileName:       "video.mp4",
		RemotePath:     "media/video.mp4",
		LocalPath:      "/tmp/video.mp4",
		TotalSize:      2000,
		DownloadedSize: 1000,
		Progress:       50.0,
		Status:         "downloading",
	})

	select {
	case received := <-ch:
		ev, ok := received.(*DownloadProgressEvent)
		if !ok {
			t.Fatal("Expected DownloadProgressEvent")
		}
		if ev.Progress.FileName != "video.mp4" {
			t.Errorf("FileName = %q", ev.Progress.FileName)
		}
		if ev.Progress.DownloadedSize != 1000 {
			t.Errorf("DownloadedSize = %d", ev.Progress.DownloadedSize)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}
