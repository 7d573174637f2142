package model

import "time"

// Writer defines a generic interface for persisting batches of scored
// detection events.
type Writer interface {
	// Write persists a batch of events. Implementations receive events in
	// scoring order and must not retain the slice.
	Write(events []DetectionEvent) error

	// GetInterval returns the configured flush interval for this writer.
	GetInterval() time.Duration
}
