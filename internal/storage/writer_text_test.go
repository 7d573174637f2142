package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
)

func TestTextWriterAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detections.jsonl")

	writer, err := NewTextWriter(config.TextWriterConfig{Path: path}, 10*time.Second)
	if err != nil {
		t.Fatalf("NewTextWriter failed: %v", err)
	}
	if writer.GetInterval() != 10*time.Second {
		t.Errorf("Expected 10s interval, got %v", writer.GetInterval())
	}

	events := []model.DetectionEvent{
		{ID: "one", Source: model.SourceRules, Result: model.DetectionResult{Score: 60, IsAnomaly: true}},
		{ID: "two", Source: model.SourceModel, Result: model.DetectionResult{Score: 12}},
	}
	if err := writer.Write(events[:1]); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := writer.Write(events[1:]); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer file.Close()

	var restored []model.DetectionEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var event model.DetectionEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("Line is not valid JSON: %v", err)
		}
		restored = append(restored, event)
	}

	if len(restored) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(restored))
	}
	if restored[0].ID != "one" || restored[1].ID != "two" {
		t.Errorf("Events out of order: %s, %s", restored[0].ID, restored[1].ID)
	}
	if restored[0].Result.Score != 60 || !restored[0].Result.IsAnomaly {
		t.Errorf("First event did not round-trip: %+v", restored[0])
	}
}
