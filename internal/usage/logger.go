// Package usage appends one JSONL record per user action, in the spirit
// of an audit trail. Appends are serialized with a mutex so concurrent
// exchanges within the process never interleave partial lines.
package usage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is a single usage log record.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Backend   string    `json:"backend,omitempty"`
	Assistant string    `json:"assistant,omitempty"`
	Model     string    `json:"model,omitempty"`
}

// Logger writes entries to an append-only JSONL file.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a logger writing to path.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Log appends one entry. A zero Timestamp is filled with the current
// time.
func (l *Logger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// Read returns every entry in the log, oldest first. Malformed lines
// are skipped.
func (l *Logger) Read() ([]Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
