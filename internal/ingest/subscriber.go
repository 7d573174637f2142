package ingest

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
)

// FlowHandler is a function that processes a received flow record.
type FlowHandler func(flow model.FlowRecord)

// Subscriber subscribes to the flow subject and hands decoded records to a
// handler.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	logger  *zap.Logger
}

// NewSubscriber connects to NATS and returns a subscriber for the
// configured flow subject.
func NewSubscriber(cfg config.IngestConfig, logger *zap.Logger) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to NATS server", zap.String("url", cfg.NATSURL))
	return &Subscriber{nc: nc, subject: cfg.FlowSubject, logger: logger}, nil
}

// Start subscribes and begins processing messages with the provided
// handler. Messages that fail to decode are logged and skipped.
func (s *Subscriber) Start(handler FlowHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		var flow model.FlowRecord
		if err := json.Unmarshal(msg.Data, &flow); err != nil {
			s.logger.Warn("dropping undecodable flow message", zap.Error(err))
			return
		}
		handler(flow)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	s.logger.Info("subscribed, waiting for flows", zap.String("subject", s.subject))
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		s.logger.Info("NATS connection closed")
	}
}

// AlertPublisher publishes anomalous detection events to the alert subject
// for downstream consumers (dashboards, enforcement hooks).
type AlertPublisher struct {
	nc      *nats.Conn
	subject string
}

// NewAlertPublisher connects to NATS and returns a publisher for the
// configured alert subject.
func NewAlertPublisher(cfg config.IngestConfig) (*AlertPublisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	return &AlertPublisher{nc: nc, subject: cfg.AlertSubject}, nil
}

// Publish serializes a detection event to JSON and publishes it.
func (p *AlertPublisher) Publish(event model.DetectionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *AlertPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
}
