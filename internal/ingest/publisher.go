// Package ingest moves flow records between the probe and the scoring
// engine over NATS. Payloads are the same JSON encoding the HTTP boundary
// uses, so one codec serves both transports.
package ingest

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
)

// Publisher publishes flow records to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewPublisher connects to NATS and returns a publisher for the configured
// flow subject.
func NewPublisher(cfg config.IngestConfig, logger *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to NATS server", zap.String("url", cfg.NATSURL))
	return &Publisher{nc: nc, subject: cfg.FlowSubject, logger: logger}, nil
}

// Publish serializes a flow record to JSON and publishes it.
func (p *Publisher) Publish(flow model.FlowRecord) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.logger.Info("NATS connection drained and closed")
	}
}
