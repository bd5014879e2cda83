// Package trace records training and evaluation trace entries, mirroring the
// trainer's trace stream: one entry per epoch (or per batch at batch trace
// level) carrying the metrics measured at that point.
package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Scope identifies the granularity of a trace entry.
const (
	ScopeEpoch = "epoch"
	ScopeBatch = "batch"
)

// Entry is a single trace record.
type Entry struct {
	JobID   string             `json:"job_id"`
	JobType string             `json:"job"`
	Event   string             `json:"event"`
	Scope   string             `json:"scope"`
	Epoch   int                `json:"epoch"`
	Batch   int                `json:"batch,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Time    time.Time          `json:"time"`
}

// Writer appends trace entries to a JSONL file. It is safe for concurrent
// use. A nil Writer is safe to use; all methods are no-ops on nil receiver.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// NewWriter opens dir/trace.jsonl for append. Returns nil if the file cannot
// be opened; all methods are nil-safe.
func NewWriter(dir string) *Writer {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	path := filepath.Join(dir, "trace.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return &Writer{file: f}
}

// Write appends an entry as a single JSONL line. A zero Time is stamped with
// the current time. Safe to call on nil receiver.
func (w *Writer) Write(e Entry) error {
	if w == nil || w.file == nil {
		return nil
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.file.Write(data)
	return err
}

// Close closes the underlying file. Safe to call on nil receiver.
func (w *Writer) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
