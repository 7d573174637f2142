package feature

import (
	"testing"

	"FlowSentry/internal/model"
)

func TestExtractVectorLayout(t *testing.T) {
	flow := model.FlowRecord{
		SourceIP:  "192.168.1.10",
		DestIP:    "10.0.0.5",
		Protocol:  "TCP",
		Port:      443,
		Bytes:     1500,
		Timestamp: "2026-08-30T14:22:05Z",
	}

	v := Extract(flow)

	if len(v) != model.FeatureCount {
		t.Fatalf("Expected %d features, got %d", model.FeatureCount, len(v))
	}
	if v[0] != Fingerprint("192.168.1.10") {
		t.Errorf("Source fingerprint mismatch: got %f", v[0])
	}
	if v[1] != Fingerprint("10.0.0.5") {
		t.Errorf("Dest fingerprint mismatch: got %f", v[1])
	}
	if v[2] != 443 {
		t.Errorf("Expected port 443, got %f", v[2])
	}
	if v[3] != 1 {
		t.Errorf("Expected protocol code 1 for TCP, got %f", v[3])
	}
	if v[4] != 1500 {
		t.Errorf("Expected 1500 bytes, got %f", v[4])
	}
	if v[5] != 14 {
		t.Errorf("Expected hour 14, got %f", v[5])
	}
}

func TestExtractDefaults(t *testing.T) {
	// A completely empty record must still produce a valid vector.
	v := Extract(model.FlowRecord{})

	if v[0] != Fingerprint("0.0.0.0") {
		t.Errorf("Empty source should fingerprint as 0.0.0.0, got %f", v[0])
	}
	if v[1] != Fingerprint("0.0.0.0") {
		t.Errorf("Empty dest should fingerprint as 0.0.0.0, got %f", v[1])
	}
	if v[2] != 0 || v[3] != 0 || v[4] != 0 {
		t.Errorf("Expected zero port/protocol/bytes, got %f/%f/%f", v[2], v[3], v[4])
	}
	if v[5] != 0 {
		t.Errorf("Missing timestamp should default to hour 0, got %f", v[5])
	}
}

func TestExtractUnparsableTimestamp(t *testing.T) {
	v := Extract(model.FlowRecord{Timestamp: "not-a-time"})
	if v[5] != 0 {
		t.Errorf("Unparsable timestamp should default to hour 0, got %f", v[5])
	}
}

func TestExtractProtocolCodes(t *testing.T) {
	cases := map[string]float64{
		"TCP":  1,
		"UDP":  2,
		"ICMP": 3,
		"XYZ":  0,
		"tcp":  0, // case-sensitive by design of the enumeration
		"":     0,
	}
	for proto, want := range cases {
		v := Extract(model.FlowRecord{Protocol: proto})
		if v[3] != want {
			t.Errorf("Protocol %q: expected code %f, got %f", proto, want, v[3])
		}
	}
}

func TestFingerprintDeterministicAndBounded(t *testing.T) {
	addrs := []string{"192.168.1.1", "10.0.0.1", "::1", "fe80::1", "example.internal", ""}
	for _, addr := range addrs {
		first := Fingerprint(addr)
		for i := 0; i < 10; i++ {
			if got := Fingerprint(addr); got != first {
				t.Fatalf("Fingerprint(%q) not deterministic: %f vs %f", addr, first, got)
			}
		}
		if first < 0 || first >= 10000 {
			t.Errorf("Fingerprint(%q) = %f out of [0, 10000)", addr, first)
		}
	}
}

func TestExtractAllPreservesOrder(t *testing.T) {
	flows := []model.FlowRecord{
		{SourceIP: "10.0.0.1", Port: 80},
		{SourceIP: "10.0.0.2", Port: 443},
		{SourceIP: "10.0.0.3", Port: 22},
	}

	vectors := ExtractAll(flows)
	if len(vectors) != len(flows) {
		t.Fatalf("Expected %d vectors, got %d", len(flows), len(vectors))
	}
	for i, flow := range flows {
		if vectors[i] != Extract(flow) {
			t.Errorf("Vector %d does not match its flow", i)
		}
	}
}
