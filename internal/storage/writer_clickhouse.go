// Package storage persists scored detection events.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"FlowSentry/internal/config"
	"FlowSentry/internal/metrics"
	"FlowSentry/internal/model"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS detections (
    ID         String,
    ObservedAt DateTime,
    SourceIP   String,
    DestIP     String,
    Protocol   String,
    Port       Int32,
    Bytes      Int64,
    Score      Float64,
    IsAnomaly  UInt8,
    Reason     String,
    Source     String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(ObservedAt)
ORDER BY (ObservedAt, ID);
`

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn     driver.Conn
	interval time.Duration
	logger   *zap.Logger
}

// NewClickHouseWriter connects to ClickHouse, ensures the detections table
// exists and returns a writer flushing on the given interval.
func NewClickHouseWriter(cfg config.ClickHouseConfig, interval time.Duration, logger *zap.Logger) (model.Writer, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create detections table: %w", err)
	}
	logger.Info("connected to ClickHouse, detections table ready")

	return &ClickHouseWriter{conn: conn, interval: interval, logger: logger}, nil
}

// GetInterval returns the configured flush interval for this writer.
func (w *ClickHouseWriter) GetInterval() time.Duration {
	return w.interval
}

// Connect opens a ClickHouse connection and verifies it with a ping.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write inserts a batch of detection events into the detections table.
func (w *ClickHouseWriter) Write(events []model.DetectionEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO detections")
	if err != nil {
		metrics.EventsWrittenTotal.WithLabelValues("clickhouse", "error").Add(float64(len(events)))
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, event := range events {
		err = batch.Append(
			event.ID,
			event.ObservedAt,
			event.Flow.SourceIP,
			event.Flow.DestIP,
			event.Flow.Protocol,
			int32(event.Flow.Port),
			event.Flow.Bytes,
			event.Result.Score,
			boolToUInt8(event.Result.IsAnomaly),
			event.Result.Reason,
			event.Source,
		)
		if err != nil {
			metrics.EventsWrittenTotal.WithLabelValues("clickhouse", "error").Add(float64(len(events)))
			return fmt.Errorf("failed to append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		metrics.EventsWrittenTotal.WithLabelValues("clickhouse", "error").Add(float64(len(events)))
		return fmt.Errorf("failed to send batch: %w", err)
	}

	metrics.EventsWrittenTotal.WithLabelValues("clickhouse", "ok").Add(float64(len(events)))
	w.logger.Debug("wrote detection events to ClickHouse", zap.Int("count", len(events)))
	return nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
