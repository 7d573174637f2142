// Package feature converts raw flow records into the fixed numeric vectors
// the outlier ensemble operates on.
package feature

import (
	"hash/fnv"

	"FlowSentry/internal/model"
)

const (
	// nullAddress stands in for a missing source or destination address.
	nullAddress = "0.0.0.0"

	// fingerprintRange bounds address fingerprints to [0, 10000).
	fingerprintRange = 10000
)

// protocolCodes is the fixed protocol enumeration. Anything not listed,
// including a missing protocol, encodes as 0.
var protocolCodes = map[string]float64{
	"TCP":  1,
	"UDP":  2,
	"ICMP": 3,
}

// Extract derives the feature vector for a flow. It is total: missing
// fields fall back to defaults and no input can make it fail.
//
// Vector layout: [source_fingerprint, dest_fingerprint, port,
// protocol_code, bytes, hour_of_day].
func Extract(flow model.FlowRecord) model.FeatureVector {
	hour, ok := model.HourOf(flow.Timestamp)
	if !ok {
		hour = 0
	}

	return model.FeatureVector{
		Fingerprint(flow.SourceIP),
		Fingerprint(flow.DestIP),
		float64(flow.Port),
		protocolCodes[flow.Protocol],
		float64(flow.Bytes),
		float64(hour),
	}
}

// ExtractAll derives feature vectors for a set of flows, preserving order.
func ExtractAll(flows []model.FlowRecord) []model.FeatureVector {
	vectors := make([]model.FeatureVector, len(flows))
	for i, flow := range flows {
		vectors[i] = Extract(flow)
	}
	return vectors
}

// Fingerprint reduces an address string to a stable value in [0, 10000).
// FNV-1a is deterministic across runs and processes, so feature vectors and
// the models trained from them stay reproducible after a restart.
func Fingerprint(addr string) float64 {
	if addr == "" {
		addr = nullAddress
	}
	h := fnv.New32a()
	h.Write([]byte(addr))
	return float64(h.Sum32() % fingerprintRange)
}
