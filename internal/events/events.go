// Package events carries progress and log notifications from the engine to
// whichever front-end is attached: the CLI's progress bars, a desktop shell
// listening on named channels, or tests.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/upload"
)

// EventType names a front-end event channel.
type EventType string

const (
	// EventUploadProgress carries upload.Progress snapshots. Payload keys
	// are camelCase on the wire.
	EventUploadProgress EventType = constants.EventUploadProgress

	// EventDownloadProgress carries DownloadProgress snapshots. Payload
	// keys are snake_case; the front-end binds the two channels with
	// different field names.
	EventDownloadProgress EventType = constants.EventDownloadProgress

	// EventLog mirrors log lines to an attached shell.
	EventLog EventType = "log"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// UploadProgressEvent wraps one upload progress snapshot.
type UploadProgressEvent struct {
	BaseEvent
	Progress upload.Progress
}

// DownloadProgress is the payload shape for download-progress events. The
// wire format keeps the original snake_case keys, unlike upload progress.
type DownloadProgress struct {
	ID             string  `json:"id"`
	FileName       string  `json:"file_name"`
	RemotePath     string  `json:"remote_path"`
	LocalPath      string  `json:"local_path"`
	TotalSize      int64   `json:"total_size"`
	DownloadedSize int64   `json:"downloaded_size"`
	Progress       float64 `json:"progress"`
	Speed          float64 `json:"speed"`
	ETA            int64   `json:"eta"`
	Status         string  `json:"status"`
	ErrorMessage   *string `json:"error_message"`
}

// DownloadProgressEvent wraps one download progress snapshot.
type DownloadProgressEvent struct {
	BaseEvent
	Progress DownloadProgress
}

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Error   error
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers. It never blocks: when a
// subscriber's buffer is full the event is dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishUploadProgress is a convenience method for publishing one upload
// progress snapshot.
func (eb *EventBus) PublishUploadProgress(p upload.Progress) {
	eb.Publish(&UploadProgressEvent{
		BaseEvent: BaseEvent{
			EventType: EventUploadProgress,
			Time:      time.Now(),
		},
		Progress: p,
	})
}

// PublishDownloadProgress is a convenience method for publishing one
// download progress snapshot.
func (eb *EventBus) PublishDownloadProgress(p DownloadProgress) {
	eb.Publish(&DownloadProgressEvent{
		BaseEvent: BaseEvent{
			EventType: EventDownloadProgress,
			Time:      time.Now(),
		},
		Progress: p,
	})
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{
			EventType: EventLog,
			Time:      time.Now(),
		},
		Level:   level,
		Message: message,
		Error:   err,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
// This prevents memory leaks from abandoned subscriptions
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
// Use this when cleaning up a subscriber that subscribed to multiple event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
// Useful for monitoring and detecting if buffer sizes need adjustment
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

// ResetDroppedEventCount resets the dropped event counter to zero
// Useful for periodic monitoring windows
func (eb *EventBus) ResetDroppedEventCount() int64 {
	return eb.droppedEvents.Swap(0)
}
