// Package rules implements the deterministic fallback heuristic used before
// any model has been trained.
package rules

import (
	"fmt"
	"strings"

	"FlowSentry/internal/model"
)

const (
	highVolumeBytes = 100 * 1024 * 1024

	// defaultHour is assumed when a flow carries no usable timestamp.
	// It deliberately differs from the feature extractor's default of 0:
	// an absent timestamp should not look like off-hours traffic here.
	defaultHour = 12

	anomalyThreshold = 50
)

// suspiciousPorts are services commonly probed or abused: SSH, Telnet,
// RDP, SQL Server, MySQL, PostgreSQL.
var suspiciousPorts = map[int]bool{
	22:   true,
	23:   true,
	3389: true,
	1433: true,
	3306: true,
	5432: true,
}

// Detect scores a flow with additive, independent checks. It is pure and
// always succeeds; the maximum reachable score is 60.
func Detect(flow model.FlowRecord) model.DetectionResult {
	score := 0.0
	var reasons []string

	if suspiciousPorts[flow.Port] {
		score += 30
		reasons = append(reasons, fmt.Sprintf("suspicious port %d", flow.Port))
	}

	if flow.Bytes > highVolumeBytes {
		score += 20
		reasons = append(reasons, "high data transfer volume")
	}

	hour, ok := model.HourOf(flow.Timestamp)
	if !ok {
		hour = defaultHour
	}
	if hour < 6 || hour > 20 {
		score += 10
		reasons = append(reasons, "traffic outside business hours")
	}

	reason := "rule-based detection: "
	if len(reasons) > 0 {
		reason += strings.Join(reasons, ", ")
	} else {
		reason += "normal traffic"
	}

	return model.DetectionResult{
		Score:     score,
		IsAnomaly: score > anomalyThreshold,
		Reason:    reason,
	}
}
