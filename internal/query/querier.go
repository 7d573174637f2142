// Package query reads persisted detection events back out of storage for
// the API's anomaly history surface.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
	"FlowSentry/internal/storage"
)

// Querier defines the interface for querying stored detection events.
type Querier interface {
	// RecentAnomalies returns the most recent anomalous events, newest
	// first, up to limit.
	RecentAnomalies(ctx context.Context, limit int) ([]model.DetectionEvent, error)

	// Totals returns the all-time count of scored and anomalous events.
	Totals(ctx context.Context) (total, anomalies uint64, err error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := storage.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func (q *clickhouseQuerier) RecentAnomalies(ctx context.Context, limit int) ([]model.DetectionEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := q.conn.Query(ctx, `
		SELECT ID, ObservedAt, SourceIP, DestIP, Protocol, Port, Bytes, Score, Reason, Source
		FROM detections
		WHERE IsAnomaly = 1
		ORDER BY ObservedAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer rows.Close()

	var events []model.DetectionEvent
	for rows.Next() {
		var (
			event      model.DetectionEvent
			observedAt time.Time
			port       int32
		)
		if err := rows.Scan(
			&event.ID,
			&observedAt,
			&event.Flow.SourceIP,
			&event.Flow.DestIP,
			&event.Flow.Protocol,
			&port,
			&event.Flow.Bytes,
			&event.Result.Score,
			&event.Result.Reason,
			&event.Source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly row: %w", err)
		}
		event.ObservedAt = observedAt
		event.Flow.Port = int(port)
		event.Flow.Timestamp = observedAt.Format(time.RFC3339)
		event.Result.IsAnomaly = true
		events = append(events, event)
	}

	return events, nil
}

func (q *clickhouseQuerier) Totals(ctx context.Context) (uint64, uint64, error) {
	row := q.conn.QueryRow(ctx, `
		SELECT COUNT(*), countIf(IsAnomaly = 1)
		FROM detections
	`)

	var total, anomalies uint64
	if err := row.Scan(&total, &anomalies); err != nil {
		return 0, 0, fmt.Errorf("failed to scan detection totals: %w", err)
	}
	return total, anomalies, nil
}
