package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the pipeline stage an event belongs to
type EventType string

const (
	EventRemap    EventType = "remap"
	EventShot     EventType = "shot"
	EventMedia    EventType = "media"
	EventDatabase EventType = "database"
	EventMapping  EventType = "mapping"
	EventValidate EventType = "validate"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	EventDebug   EventLevel = "debug"
	EventInfo    EventLevel = "info"
	EventWarning EventLevel = "warning"
	EventFailure EventLevel = "error"
)

var levelPriority = map[EventLevel]int{
	EventDebug:   0,
	EventInfo:    1,
	EventWarning: 2,
	EventFailure: 3,
}

// Event is a single line of the JSONL run log
type Event struct {
	Timestamp    time.Time         `json:"ts"`
	Level        EventLevel        `json:"level"`
	Event        EventType         `json:"event"`
	ShotName     string            `json:"shot_name,omitempty"`
	ShotID       int64             `json:"shot_id,omitempty"`
	SrcPath      string            `json:"src_path,omitempty"`
	DestPath     string            `json:"dest_path,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	BytesWritten int64             `json:"bytes_written,omitempty"`
	Error        string            `json:"error,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates an event log file in outputDir, named with the
// run timestamp. minLevel filters what gets written.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("events-%s.jsonl", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // logger not initialized
	}
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

// LogShotCommitted logs a successfully committed shot
func (l *EventLogger) LogShotCommitted(name string, id int64, takeCount int) error {
	return l.Log(&Event{
		Level:    EventInfo,
		Event:    EventShot,
		ShotName: name,
		ShotID:   id,
		Extra: map[string]string{
			"take_count": fmt.Sprintf("%d", takeCount),
		},
	})
}

// LogShotFailed logs a shot whose migration failed
func (l *EventLogger) LogShotFailed(name string, id int64, err error) error {
	return l.Log(&Event{
		Level:    EventFailure,
		Event:    EventShot,
		ShotName: name,
		ShotID:   id,
		Error:    err.Error(),
	})
}

// LogMediaCopy logs one relocated file
func (l *EventLogger) LogMediaCopy(srcPath, destPath string, bytes int64, satisfied bool) error {
	reason := ""
	if satisfied {
		reason = "already in place"
	}
	return l.Log(&Event{
		Level:        EventInfo,
		Event:        EventMedia,
		SrcPath:      srcPath,
		DestPath:     destPath,
		BytesWritten: bytes,
		Reason:       reason,
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
