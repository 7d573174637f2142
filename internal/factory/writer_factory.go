// Package factory constructs detection event writers from configuration.
package factory

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
	"FlowSentry/internal/storage"
)

const defaultFlushInterval = 10 * time.Second

// Writers builds the enabled detection writers declared in the pipeline
// configuration. An unknown writer type is a configuration error.
func Writers(cfg *config.Config, logger *zap.Logger) ([]model.Writer, error) {
	var writers []model.Writer

	for _, def := range cfg.Pipeline.Writers {
		if !def.Enabled {
			continue
		}

		interval := defaultFlushInterval
		if def.Interval != "" {
			parsed, err := time.ParseDuration(def.Interval)
			if err != nil {
				return nil, fmt.Errorf("invalid interval for %s writer: %w", def.Type, err)
			}
			interval = parsed
		}

		switch def.Type {
		case "clickhouse":
			w, err := storage.NewClickHouseWriter(def.ClickHouse, interval, logger)
			if err != nil {
				return nil, fmt.Errorf("error creating clickhouse writer: %w", err)
			}
			writers = append(writers, w)
		case "text":
			w, err := storage.NewTextWriter(def.Text, interval)
			if err != nil {
				return nil, fmt.Errorf("error creating text writer: %w", err)
			}
			writers = append(writers, w)
		default:
			return nil, fmt.Errorf("unknown writer type: '%s'", def.Type)
		}
		logger.Info("created detection writer",
			zap.String("type", def.Type),
			zap.Duration("interval", interval))
	}

	return writers, nil
}
