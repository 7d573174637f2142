package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"FlowSentry/internal/config"
	"FlowSentry/internal/metrics"
	"FlowSentry/internal/model"
)

// TextWriter appends detection events as JSON lines to a single file. It is
// the zero-infrastructure alternative to the ClickHouse writer.
type TextWriter struct {
	path     string
	interval time.Duration

	mu   sync.Mutex
	file *os.File
}

// NewTextWriter opens (or creates) the output file in append mode.
func NewTextWriter(cfg config.TextWriterConfig, interval time.Duration) (model.Writer, error) {
	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open detection log file '%s': %w", cfg.Path, err)
	}
	return &TextWriter{path: cfg.Path, interval: interval, file: file}, nil
}

// GetInterval returns the configured flush interval for this writer.
func (w *TextWriter) GetInterval() time.Duration {
	return w.interval
}

// Write appends each event as one JSON line.
func (w *TextWriter) Write(events []model.DetectionEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, event := range events {
		line, err := json.Marshal(event)
		if err != nil {
			metrics.EventsWrittenTotal.WithLabelValues("text", "error").Inc()
			return fmt.Errorf("failed to marshal detection event: %w", err)
		}
		if _, err := w.file.Write(append(line, '\n')); err != nil {
			metrics.EventsWrittenTotal.WithLabelValues("text", "error").Inc()
			return fmt.Errorf("failed to write detection event to '%s': %w", w.path, err)
		}
		metrics.EventsWrittenTotal.WithLabelValues("text", "ok").Inc()
	}
	return nil
}
