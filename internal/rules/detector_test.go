package rules

import (
	"strings"
	"testing"

	"FlowSentry/internal/model"
)

// daytime is a timestamp inside business hours so tests only trip the
// checks they mean to.
const daytime = "2026-08-30T12:00:00Z"

func TestDetectSuspiciousPort(t *testing.T) {
	for _, port := range []int{22, 23, 3389, 1433, 3306, 5432} {
		result := Detect(model.FlowRecord{Port: port, Timestamp: daytime})
		if result.Score != 30 {
			t.Errorf("Port %d: expected score 30, got %f", port, result.Score)
		}
		if !strings.Contains(result.Reason, "suspicious port") {
			t.Errorf("Port %d: reason %q missing port fragment", port, result.Reason)
		}
	}
}

func TestDetectHighVolume(t *testing.T) {
	result := Detect(model.FlowRecord{Port: 443, Bytes: 200 * 1024 * 1024, Timestamp: daytime})
	if result.Score != 20 {
		t.Errorf("Expected score 20 for 200MiB, got %f", result.Score)
	}
	if !strings.Contains(result.Reason, "high data transfer volume") {
		t.Errorf("Reason %q missing volume fragment", result.Reason)
	}

	// Exactly at the boundary is not over it.
	result = Detect(model.FlowRecord{Port: 443, Bytes: 100 * 1024 * 1024, Timestamp: daytime})
	if result.Score != 0 {
		t.Errorf("Expected score 0 at exactly 100MiB, got %f", result.Score)
	}
}

func TestDetectOffHours(t *testing.T) {
	for _, ts := range []string{"2026-08-30T05:59:00Z", "2026-08-30T21:00:00Z"} {
		result := Detect(model.FlowRecord{Port: 443, Timestamp: ts})
		if result.Score != 10 {
			t.Errorf("Timestamp %s: expected score 10, got %f", ts, result.Score)
		}
	}
	for _, ts := range []string{"2026-08-30T06:00:00Z", "2026-08-30T20:59:00Z"} {
		result := Detect(model.FlowRecord{Port: 443, Timestamp: ts})
		if result.Score != 0 {
			t.Errorf("Timestamp %s: expected score 0, got %f", ts, result.Score)
		}
	}
}

func TestDetectMissingTimestampAssumesMidday(t *testing.T) {
	// No timestamp must not count as off-hours traffic.
	result := Detect(model.FlowRecord{Port: 443})
	if result.Score != 0 {
		t.Errorf("Expected score 0 for missing timestamp, got %f", result.Score)
	}
}

func TestDetectThresholdBoundary(t *testing.T) {
	// Port + volume = 50, which is not strictly above the threshold.
	atThreshold := Detect(model.FlowRecord{Port: 22, Bytes: 200 * 1024 * 1024, Timestamp: daytime})
	if atThreshold.Score != 50 {
		t.Fatalf("Expected score 50, got %f", atThreshold.Score)
	}
	if atThreshold.IsAnomaly {
		t.Error("Score of exactly 50 must not be flagged as an anomaly")
	}

	// Adding the off-hours check crosses it.
	over := Detect(model.FlowRecord{Port: 22, Bytes: 200 * 1024 * 1024, Timestamp: "2026-08-30T03:00:00Z"})
	if over.Score != 60 {
		t.Fatalf("Expected score 60, got %f", over.Score)
	}
	if !over.IsAnomaly {
		t.Error("Score of 60 must be flagged as an anomaly")
	}
}

func TestDetectNormalTraffic(t *testing.T) {
	result := Detect(model.FlowRecord{
		SourceIP: "192.168.1.10", DestIP: "10.0.0.5",
		Protocol: "TCP", Port: 443, Bytes: 1500, Timestamp: daytime,
	})
	if result.Score != 0 || result.IsAnomaly {
		t.Errorf("Expected clean verdict, got score=%f anomaly=%v", result.Score, result.IsAnomaly)
	}
	if result.Reason != "rule-based detection: normal traffic" {
		t.Errorf("Unexpected reason: %q", result.Reason)
	}
}

func TestDetectIdempotent(t *testing.T) {
	flow := model.FlowRecord{Port: 22, Bytes: 200 * 1024 * 1024, Timestamp: "2026-08-30T03:00:00Z"}
	first := Detect(flow)
	for i := 0; i < 5; i++ {
		if got := Detect(flow); got != first {
			t.Fatalf("Detect not idempotent: %+v vs %+v", first, got)
		}
	}
}
