package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"FlowSentry/internal/config"
	"FlowSentry/internal/detector"
	"FlowSentry/internal/logging"
	"FlowSentry/internal/query"
	"FlowSentry/internal/snapshot"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	svc := detector.NewService(cfg.Detector, logger)

	// The anomaly history surface needs a ClickHouse backend; reuse the
	// first enabled clickhouse writer definition when one exists.
	var querier query.Querier
	for _, writerDef := range cfg.Pipeline.Writers {
		if writerDef.Enabled && writerDef.Type == "clickhouse" {
			q, err := query.NewClickHouseQuerier(writerDef.ClickHouse)
			if err != nil {
				logger.Fatal("failed to create querier", zap.Error(err))
			}
			querier = q
			break
		}
	}

	var snapshots *snapshot.Writer
	if cfg.Snapshot.Enabled {
		snapshots = snapshot.NewWriter(cfg.Snapshot.RootPath)
	}

	apiHandler := &APIHandler{
		svc:       svc,
		querier:   querier,
		snapshots: snapshots,
		logger:    logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", apiHandler.healthHandler).Methods("GET")
	r.HandleFunc("/train", apiHandler.trainHandler).Methods("POST")
	r.HandleFunc("/detect", apiHandler.detectHandler).Methods("POST")
	r.HandleFunc("/predict", apiHandler.predictHandler).Methods("POST")
	r.HandleFunc("/batch_predict", apiHandler.batchPredictHandler).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if querier != nil {
		r.HandleFunc("/anomalies", apiHandler.anomaliesHandler).Methods("GET")
	}

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		logger.Info("API server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not listen", zap.String("addr", server.Addr), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("API server exited")
}
