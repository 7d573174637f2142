package model

import (
	"encoding/json"
	"time"
)

// FlowRecord describes a single observed network connection. Every field is
// optional on the wire: consumers fall back to documented defaults, and the
// feature extractor and the rule-based detector intentionally use different
// timestamp defaults.
type FlowRecord struct {
	SourceIP  string `json:"source_ip,omitempty"`
	DestIP    string `json:"dest_ip,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	Port      int    `json:"port,omitempty"`
	Bytes     int64  `json:"bytes,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// timestampLayouts covers RFC3339 and the zone-less ISO-8601 variants
// producers commonly emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// HourOf parses an ISO-8601 timestamp and returns its hour of day.
// The second return value is false when the timestamp is empty or cannot
// be parsed; the caller decides the default in that case.
func HourOf(timestamp string) (int, bool) {
	if timestamp == "" {
		return 0, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// trainWrapper is the alternative request shape for operations that accept
// multiple flows: {"flows": [...]}.
type trainWrapper struct {
	Flows *[]FlowRecord `json:"flows"`
}

// DecodeFlows decodes a request body holding either a bare JSON array of
// flow records or a wrapper object with the array under a "flows" key.
// Anything else is a ValidationError.
func DecodeFlows(data []byte) ([]FlowRecord, error) {
	var flows []FlowRecord
	if err := json.Unmarshal(data, &flows); err == nil {
		return flows, nil
	}

	var wrapper trainWrapper
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Flows != nil {
		return *wrapper.Flows, nil
	}

	return nil, NewValidationError("expected a list of flows or an object with a 'flows' list")
}
