// Package events provides the typed publish/subscribe bus used by the client
// core. Every state transition (session, navigation, listing, upload) is
// published here so that any frontend can observe it.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/orbit-drive/orbit/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog      EventType = "log"
	EventAdvisory EventType = "advisory" // user-visible notice (e.g. live connection unavailable)

	// Session events
	EventSessionChanged EventType = "session_changed"
	EventLoadingChanged EventType = "loading_changed"

	// Navigation and listing events
	EventFolderChanged   EventType = "folder_changed"
	EventFileListChanged EventType = "file_list_changed"
	EventSearchChanged   EventType = "search_changed"

	// Upload events
	EventUploadQueued    EventType = "upload_queued"
	EventUploadStarted   EventType = "upload_started"
	EventUploadProgress  EventType = "upload_progress"
	EventUploadCompleted EventType = "upload_completed"
	EventUploadFailed    EventType = "upload_failed"
	EventUploadCancelled EventType = "upload_cancelled"

	// Settings events
	EventConfigChanged EventType = "config_changed"
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

// NewBase returns a BaseEvent stamped with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Stage   string
	Error   error
}

// AdvisoryEvent carries a message the user should see but that is not a failure.
type AdvisoryEvent struct {
	BaseEvent
	Message string
	Cause   error
}

// SessionChangedEvent is published on every session state transition.
type SessionChangedEvent struct {
	BaseEvent
	OldState string
	NewState string
	Mode     string // "demo" or "live"; empty when signed out
	Email    string
}

// LoadingChangedEvent is published when the loading observable flips.
type LoadingChangedEvent struct {
	BaseEvent
	Loading bool
	Reason  string // "login", "navigate"
}

// FolderChangedEvent is published after a descend or ascend.
type FolderChangedEvent struct {
	BaseEvent
	FolderID string
	Name     string
	Depth    int
}

// SearchChangedEvent is published when the search term changes.
type SearchChangedEvent struct {
	BaseEvent
	Term string
}

// UploadEvent represents upload pipeline events
type UploadEvent struct {
	BaseEvent
	UploadID string
	Name     string
	Size     uint64
	Progress float64 // 0.0 to 1.0
	Error    error
}

// ConfigChangedEvent is published after the connection record is saved.
type ConfigChangedEvent struct {
	BaseEvent
	ClientID string
	HasKey   bool
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

// Publish sends an event to all subscribers without blocking.
// A subscriber whose buffer is full misses the event; the drop is counted.
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
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

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, stage string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: NewBase(EventLog),
		Level:     level,
		Message:   message,
		Stage:     stage,
		Error:     err,
	})
}

// PublishAdvisory is a convenience method for publishing advisory events
func (eb *EventBus) PublishAdvisory(message string, cause error) {
	eb.Publish(&AdvisoryEvent{
		BaseEvent: NewBase(EventAdvisory),
		Message:   message,
		Cause:     cause,
	})
}

// PublishLoading is a convenience method for publishing loading events
func (eb *EventBus) PublishLoading(loading bool, reason string) {
	eb.Publish(&LoadingChangedEvent{
		BaseEvent: NewBase(EventLoadingChanged),
		Loading:   loading,
		Reason:    reason,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
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
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
