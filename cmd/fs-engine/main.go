package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"FlowSentry/internal/alerter"
	"FlowSentry/internal/config"
	"FlowSentry/internal/detector"
	"FlowSentry/internal/factory"
	"FlowSentry/internal/ingest"
	"FlowSentry/internal/logging"
	"FlowSentry/internal/model"
	"FlowSentry/internal/notification"
	"FlowSentry/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("starting fs-engine")

	svc := detector.NewService(cfg.Detector, logger)

	writers, err := factory.Writers(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create writers", zap.Error(err))
	}

	// Anomalous events go to the NATS alert subject and, when enabled, to
	// the interval-aggregated email summary.
	alertPub, err := ingest.NewAlertPublisher(cfg.Ingest)
	if err != nil {
		logger.Fatal("failed to create alert publisher", zap.Error(err))
	}
	defer alertPub.Close()

	var alertr *alerter.Alerter
	if cfg.Alerter.Enabled {
		if cfg.SMTP.Host == "" {
			logger.Warn("alerter is enabled but no SMTP notifier is configured, summaries will not be sent")
		} else {
			notifier := notification.NewEmailNotifier(cfg.SMTP)
			alertr, err = alerter.NewAlerter(&cfg.Alerter, notifier, logger)
			if err != nil {
				logger.Fatal("failed to create alerter", zap.Error(err))
			}
			go alertr.Start()
		}
	}

	onAlert := func(event model.DetectionEvent) {
		if err := alertPub.Publish(event); err != nil {
			logger.Error("failed to publish alert", zap.Error(err))
		}
		if alertr != nil {
			alertr.Observe(event)
		}
	}

	pipe := pipeline.New(cfg.Pipeline, svc, writers, onAlert, logger)
	pipe.Start()

	sub, err := ingest.NewSubscriber(cfg.Ingest, logger)
	if err != nil {
		logger.Fatal("failed to create subscriber", zap.Error(err))
	}

	input := pipe.Input()
	if err := sub.Start(func(flow model.FlowRecord) {
		input <- flow
	}); err != nil {
		logger.Fatal("subscriber failed to start", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping")
	sub.Close()
	pipe.Stop()
	if alertr != nil {
		alertr.Stop()
	}
	logger.Info("shutdown complete")
}
