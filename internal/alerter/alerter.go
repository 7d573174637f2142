// Package alerter aggregates anomalous detection events and sends
// consolidated notifications on a fixed interval.
package alerter

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"FlowSentry/internal/config"
	"FlowSentry/internal/model"
)

// Alerter collects anomalous events above a score floor and periodically
// sends one summary notification covering all of them.
type Alerter struct {
	notifier      model.Notifier
	minScore      float64
	checkInterval time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	pending []model.DetectionEvent

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewAlerter creates a new Alerter instance.
func NewAlerter(cfg *config.AlerterConfig, notifier model.Notifier, logger *zap.Logger) (*Alerter, error) {
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid check_interval for alerter: %w", err)
	}

	return &Alerter{
		notifier:      notifier,
		minScore:      cfg.MinScore,
		checkInterval: interval,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}, nil
}

// Observe records an anomalous event for the next summary. Events below
// the configured score floor are ignored. Safe for concurrent use.
func (a *Alerter) Observe(event model.DetectionEvent) {
	if event.Result.Score < a.minScore {
		return
	}
	a.mu.Lock()
	a.pending = append(a.pending, event)
	a.mu.Unlock()
}

// Start begins the periodic summary loop.
func (a *Alerter) Start() {
	a.logger.Info("alerter started", zap.Duration("interval", a.checkInterval))

	a.wg.Add(1)
	defer a.wg.Done()

	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.sendSummary()
		case <-a.stopChan:
			return
		}
	}
}

// Stop flushes one final summary and stops the loop.
func (a *Alerter) Stop() {
	a.logger.Info("stopping alerter")
	close(a.stopChan)
	a.wg.Wait()
	a.sendSummary()
}

// sendSummary drains the pending events and sends one consolidated
// notification if any were collected.
func (a *Alerter) sendSummary() {
	a.mu.Lock()
	events := a.pending
	a.pending = nil
	a.mu.Unlock()

	if len(events) == 0 {
		return
	}

	a.logger.Info("sending anomaly summary", zap.Int("events", len(events)))

	var sections []string
	for _, event := range events {
		sections = append(sections, fmt.Sprintf(
			"<p><b>%s</b> %s &rarr; %s (%s, port %d, %d bytes)<br>score %.1f: %s</p>",
			event.ObservedAt.Format(time.RFC3339),
			event.Flow.SourceIP, event.Flow.DestIP,
			event.Flow.Protocol, event.Flow.Port, event.Flow.Bytes,
			event.Result.Score, event.Result.Reason,
		))
	}

	body := "<h1>FlowSentry Anomaly Summary</h1>" +
		"<p>The following anomalous flows were detected during the last check:</p><hr>" +
		strings.Join(sections, "<hr>")

	subject := fmt.Sprintf("FlowSentry Anomaly Summary (%d flows)", len(events))
	if err := a.notifier.Send(subject, body); err != nil {
		a.logger.Error("failed to send anomaly summary", zap.Error(err))
	}
}
