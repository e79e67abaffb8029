// Package report accumulates migration and validation findings by
// severity and renders them as the run log, the JSONL event stream, and
// the markdown validation report. Severity is the whole contract: a run
// succeeds iff the collector holds zero errors.
package report

import (
	"fmt"
	"sync"
	"time"

	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// Level is the severity of a collected entry
type Level string

const (
	LevelError   Level = "ERROR"
	LevelWarning Level = "WARNING"
	LevelInfo    Level = "INFO"
)

// Entry is one collected finding
type Entry struct {
	Timestamp time.Time
	Level     Level
	Category  string // pipeline stage or check group
	Path      string // file or database object concerned, if any
	Message   string
}

// Collector accumulates entries and mirrors them to the console logger
// and the JSONL event log
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	events  *EventLogger
}

// NewCollector returns a collector mirroring into the given event log.
// events may be the nil NullLogger.
func NewCollector(events *EventLogger) *Collector {
	return &Collector{events: events}
}

// Errorf records an error entry
func (c *Collector) Errorf(category, path, format string, args ...interface{}) {
	c.add(LevelError, category, path, fmt.Sprintf(format, args...))
}

// Warnf records a warning entry
func (c *Collector) Warnf(category, path, format string, args ...interface{}) {
	c.add(LevelWarning, category, path, fmt.Sprintf(format, args...))
}

// Infof records an informational entry
func (c *Collector) Infof(category, path, format string, args ...interface{}) {
	c.add(LevelInfo, category, path, fmt.Sprintf(format, args...))
}

func (c *Collector) add(level Level, category, path, message string) {
	entry := Entry{
		Timestamp: time.Now(),
		Level:     level,
		Category:  category,
		Path:      path,
		Message:   message,
	}

	c.mu.Lock()
	c.entries = append(c.entries, entry)
	c.mu.Unlock()

	line := message
	if path != "" {
		line = fmt.Sprintf("%s: %s", path, message)
	}
	switch level {
	case LevelError:
		util.ErrorLog("[%s] %s", category, line)
	case LevelWarning:
		util.WarnLog("[%s] %s", category, line)
	default:
		util.DebugLog("[%s] %s", category, line)
	}

	c.events.Log(&Event{
		Level:   eventLevel(level),
		Event:   EventType(category),
		SrcPath: path,
		Reason:  message,
	})
}

func eventLevel(level Level) EventLevel {
	switch level {
	case LevelError:
		return EventFailure
	case LevelWarning:
		return EventWarning
	default:
		return EventInfo
	}
}

// Entries returns a copy of all collected entries in order
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByLevel returns collected entries of one severity
func (c *Collector) ByLevel(level Level) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Entry
	for _, e := range c.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// ErrorCount returns the number of error entries
func (c *Collector) ErrorCount() int { return c.count(LevelError) }

// WarningCount returns the number of warning entries
func (c *Collector) WarningCount() int { return c.count(LevelWarning) }

func (c *Collector) count(level Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Passed reports whether the run holds zero errors. Warnings never fail
// a run.
func (c *Collector) Passed() bool {
	return c.ErrorCount() == 0
}
