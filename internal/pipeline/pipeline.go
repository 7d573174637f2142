// Package pipeline runs the streaming scoring path: flows come in on a
// channel, a worker pool scores them through the detection service's
// fallback path, and the resulting events fan out to writers and the alert
// sink.
package pipeline

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FlowSentry/internal/config"
	"FlowSentry/internal/detector"
	"FlowSentry/internal/model"
)

// AlertFunc receives every anomalous detection event. It must not block;
// slow consumers should buffer internally.
type AlertFunc func(event model.DetectionEvent)

// Pipeline orchestrates the scoring workers and one flush loop per writer.
type Pipeline struct {
	svc     *detector.Service
	writers []model.Writer
	onAlert AlertFunc
	logger  *zap.Logger

	flowChannel chan model.FlowRecord
	numWorkers  int
	workerWg    sync.WaitGroup

	writerChans []chan model.DetectionEvent
	flusherWg   sync.WaitGroup
}

// New creates a pipeline wired to the given detection service and writers.
// onAlert may be nil.
func New(cfg config.PipelineConfig, svc *detector.Service, writers []model.Writer, onAlert AlertFunc, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		svc:         svc,
		writers:     writers,
		onAlert:     onAlert,
		logger:      logger,
		flowChannel: make(chan model.FlowRecord, cfg.SizeOfFlowChannel),
		numWorkers:  cfg.NumWorkers,
	}
	p.writerChans = make([]chan model.DetectionEvent, len(writers))
	for i := range writers {
		p.writerChans[i] = make(chan model.DetectionEvent, cfg.SizeOfFlowChannel)
	}
	return p
}

// Input returns the channel to which flows should be sent for scoring.
func (p *Pipeline) Input() chan<- model.FlowRecord {
	return p.flowChannel
}

// Start launches the scoring workers and the per-writer flush loops.
func (p *Pipeline) Start() {
	for i, writer := range p.writers {
		p.flusherWg.Add(1)
		go p.runFlusher(writer, p.writerChans[i])
	}

	p.workerWg.Add(p.numWorkers)
	for i := 0; i < p.numWorkers; i++ {
		go p.worker()
	}
	p.logger.Info("pipeline started",
		zap.Int("workers", p.numWorkers),
		zap.Int("writers", len(p.writers)))
}

// Stop drains buffered flows, flushes every writer one last time and
// returns once all goroutines have exited.
func (p *Pipeline) Stop() {
	p.logger.Info("pipeline stopping")

	// 1. Stop accepting new flows and let workers drain the buffer.
	close(p.flowChannel)
	p.workerWg.Wait()

	// 2. Signal flushers; each drains its channel and writes a final batch.
	for _, ch := range p.writerChans {
		close(ch)
	}
	p.flusherWg.Wait()

	p.logger.Info("pipeline stopped")
}

func (p *Pipeline) worker() {
	defer p.workerWg.Done()
	for flow := range p.flowChannel {
		result, err := p.svc.Detect(flow)
		if err != nil {
			p.logger.Error("failed to score flow", zap.Error(err))
			continue
		}

		event := model.DetectionEvent{
			ID:         uuid.NewString(),
			Flow:       flow,
			Result:     result,
			Source:     sourceOf(result),
			ObservedAt: time.Now().UTC(),
		}

		for _, ch := range p.writerChans {
			select {
			case ch <- event:
			default:
				p.logger.Warn("writer buffer full, dropping detection event",
					zap.String("id", event.ID))
			}
		}

		if result.IsAnomaly && p.onAlert != nil {
			p.onAlert(event)
		}
	}
}

// runFlusher accumulates events for one writer and writes them out on the
// writer's interval, plus once more on shutdown.
func (p *Pipeline) runFlusher(writer model.Writer, events <-chan model.DetectionEvent) {
	defer p.flusherWg.Done()

	interval := writer.GetInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []model.DetectionEvent
	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := writer.Write(pending); err != nil {
			p.logger.Error("failed to write detection events",
				zap.Int("count", len(pending)), zap.Error(err))
		}
		pending = pending[:0]
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				flush()
				return
			}
			pending = append(pending, event)
		case <-ticker.C:
			flush()
		}
	}
}

// sourceOf recovers the scoring path from the result's reason prefix. The
// fallback path is the only producer of rule-based reasons.
func sourceOf(result model.DetectionResult) string {
	if strings.HasPrefix(result.Reason, "rule-based") {
		return model.SourceRules
	}
	return model.SourceModel
}
