// Package snapshot persists the training corpus behind the active model so
// an operator can retrain after a restart. The fitted model itself is never
// written; only the raw flows it was trained on.
package snapshot

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"FlowSentry/internal/model"
)

const corpusFileName = "corpus.dat"

// SummaryData holds the metadata for a corpus snapshot.
type SummaryData struct {
	Samples   int    `json:"samples"`
	Timestamp string `json:"timestamp"`
}

// Writer handles writing training corpus snapshots to disk.
type Writer struct {
	rootPath string
}

// NewWriter creates a snapshot writer rooted at the given directory.
func NewWriter(rootPath string) *Writer {
	return &Writer{rootPath: rootPath}
}

// WriteCorpus writes the flows to a timestamped directory: the corpus as a
// gob file plus a small JSON summary. An empty corpus writes nothing.
func (w *Writer) WriteCorpus(flows []model.FlowRecord) error {
	if len(flows) == 0 {
		return nil
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	snapshotDir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	corpusPath := filepath.Join(snapshotDir, corpusFileName)
	file, err := os.Create(corpusPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", corpusPath, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(flows); err != nil {
		return fmt.Errorf("failed to encode corpus to gob: %w", err)
	}

	summary := SummaryData{
		Samples:   len(flows),
		Timestamp: timestamp,
	}
	summaryBytes, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot summary: %w", err)
	}

	summaryPath := filepath.Join(snapshotDir, "summary.json")
	if err := os.WriteFile(summaryPath, summaryBytes, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot summary: %w", err)
	}

	return nil
}

// ReadCorpus loads a previously written corpus snapshot.
func ReadCorpus(snapshotDir string) ([]model.FlowRecord, error) {
	file, err := os.Open(filepath.Join(snapshotDir, corpusFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus snapshot: %w", err)
	}
	defer file.Close()

	var flows []model.FlowRecord
	if err := gob.NewDecoder(file).Decode(&flows); err != nil {
		return nil, fmt.Errorf("failed to decode corpus snapshot: %w", err)
	}
	return flows, nil
}
