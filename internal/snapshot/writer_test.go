package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"FlowSentry/internal/model"
)

func TestWriteAndReadCorpus(t *testing.T) {
	// 1. Create sample training flows
	flows := []model.FlowRecord{
		{SourceIP: "192.168.1.10", DestIP: "10.0.0.5", Protocol: "TCP", Port: 443, Bytes: 1500, Timestamp: "2026-08-30T14:00:00Z"},
		{SourceIP: "192.168.1.11", DestIP: "10.0.0.5", Protocol: "UDP", Port: 53, Bytes: 120, Timestamp: "2026-08-30T14:01:00Z"},
	}

	tmpDir := t.TempDir()

	// 2. Write the corpus snapshot
	writer := NewWriter(tmpDir)
	if err := writer.WriteCorpus(flows); err != nil {
		t.Fatalf("WriteCorpus failed: %v", err)
	}

	// 3. Find the timestamped directory
	dirs, err := os.ReadDir(tmpDir)
	if err != nil || len(dirs) != 1 || !dirs[0].IsDir() {
		t.Fatalf("Expected one timestamped directory, found %d", len(dirs))
	}
	snapshotDir := filepath.Join(tmpDir, dirs[0].Name())

	// 4. Verify summary content
	summaryBytes, err := os.ReadFile(filepath.Join(snapshotDir, "summary.json"))
	if err != nil {
		t.Fatalf("Failed to read summary.json: %v", err)
	}
	var summary SummaryData
	if err := json.Unmarshal(summaryBytes, &summary); err != nil {
		t.Fatalf("Failed to unmarshal summary.json: %v", err)
	}
	if summary.Samples != 2 {
		t.Errorf("Expected 2 samples in summary, got %d", summary.Samples)
	}

	// 5. Read the corpus back and compare
	restored, err := ReadCorpus(snapshotDir)
	if err != nil {
		t.Fatalf("ReadCorpus failed: %v", err)
	}
	if len(restored) != len(flows) {
		t.Fatalf("Expected %d flows, got %d", len(flows), len(restored))
	}
	for i := range flows {
		if restored[i] != flows[i] {
			t.Errorf("Flow %d does not round-trip: %+v vs %+v", i, flows[i], restored[i])
		}
	}
}

func TestWriteCorpusSkipsEmpty(t *testing.T) {
	tmpDir := t.TempDir()

	writer := NewWriter(tmpDir)
	if err := writer.WriteCorpus(nil); err != nil {
		t.Fatalf("WriteCorpus with empty corpus should be a no-op, got: %v", err)
	}

	dirs, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read temp dir: %v", err)
	}
	if len(dirs) != 0 {
		t.Errorf("Empty corpus should write nothing, found %d entries", len(dirs))
	}
}

func TestReadCorpusMissingDirectory(t *testing.T) {
	if _, err := ReadCorpus(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing snapshot directory")
	}
}
