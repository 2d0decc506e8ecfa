// Package history keeps an append-only JSON-lines record of probe events
// that operators read when triaging a device.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const TypeInfoError = "INFOERROR"

type Logger struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

type Event struct {
	Timestamp string            `json:"timestamp"`
	Type      string            `json:"type"`
	Event     string            `json:"event"`
	Message   string            `json:"message,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func New(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// RaiseInfoError records a named class of failure, e.g. "DIR CREATE".
func (l *Logger) RaiseInfoError(kind string) error {
	return l.Log(Event{Type: TypeInfoError, Event: kind})
}

func (l *Logger) Log(ev Event) error {
	if l == nil || l.path == "" {
		return nil
	}
	ev.Timestamp = l.now().UTC().Format(time.RFC3339Nano)
	blob, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(blob, '\n')); err != nil {
		return err
	}
	return nil
}
