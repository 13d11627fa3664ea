package inference

import (
	"context"
	"sync"
	"time"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine fans batches of segments out over the configured provider and
// keeps the throughput counters behind the performance endpoint.
type Engine struct {
	app      *config.AppConfig
	provider Provider
	logger   *logrus.Entry

	startedAt time.Time

	mu                sync.Mutex
	batchesProcessed  int64
	segmentsProcessed int64
	segmentsFailed    int64
	totalBatchTime    time.Duration
}

// PerformanceReport is the snapshot served by the performance endpoint.
type PerformanceReport struct {
	Provider           string  `json:"provider"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
	BatchesProcessed   int64   `json:"batches_processed"`
	SegmentsProcessed  int64   `json:"segments_processed"`
	SegmentsFailed     int64   `json:"segments_failed"`
	BatchesPerMinute   float64 `json:"batches_per_minute"`
	AvgBatchLatencyMs  float64 `json:"avg_batch_latency_ms"`
	GPUMemoryThreshold float64 `json:"gpu_memory_threshold"`
}

func NewEngine(app *config.AppConfig, provider Provider, logger *logrus.Logger) *Engine {
	return &Engine{
		app:       app,
		provider:  provider,
		logger:    logger.WithField("service", "inference-engine"),
		startedAt: time.Now(),
	}
}

func (e *Engine) Provider() Provider {
	return e.provider
}

// Warmup runs one tiny transcription so the first real batch doesn't pay
// connection setup costs.
func (e *Engine) Warmup(ctx context.Context) {
	_, err := e.provider.Transcribe(ctx, &Request{
		TaskId:    "warmup",
		SegmentId: "warmup",
	})
	if err != nil {
		// Providers that reject empty audio are fine, the connection work
		// already happened.
		e.logger.WithError(err).Debugln("warmup request finished with error")
	}
}

// ProcessBatch transcribes every request concurrently and returns the
// results in request order. Failed segments produce a Result with
// Success false rather than aborting the batch.
func (e *Engine) ProcessBatch(ctx context.Context, requests []*Request) []*Result {
	started := time.Now()
	results := make([]*Result, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.app.Streaming.BatchSize)

	for i, req := range requests {
		g.Go(func() error {
			res, err := e.provider.Transcribe(gctx, req)
			if err != nil {
				results[i] = &Result{
					Success: false,
					Error:   err.Error(),
				}
				// keep going, the batch result carries per segment errors
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(started)
	var failed int64
	for _, res := range results {
		if res == nil || !res.Success {
			failed++
		}
	}

	e.mu.Lock()
	e.batchesProcessed++
	e.segmentsProcessed += int64(len(requests))
	e.segmentsFailed += failed
	e.totalBatchTime += elapsed
	e.mu.Unlock()

	if e.app.Monitoring.LogBatchPerformance {
		e.logger.WithFields(logrus.Fields{
			"segments": len(requests),
			"failed":   failed,
			"latency":  elapsed.String(),
		}).Infoln("batch processed")
	}

	return results
}

// Report returns the current throughput snapshot.
func (e *Engine) Report() *PerformanceReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	uptime := time.Since(e.startedAt).Seconds()
	report := &PerformanceReport{
		Provider:           e.provider.Name(),
		UptimeSeconds:      uptime,
		BatchesProcessed:   e.batchesProcessed,
		SegmentsProcessed:  e.segmentsProcessed,
		SegmentsFailed:     e.segmentsFailed,
		GPUMemoryThreshold: e.app.Streaming.GPUMemoryThreshold,
	}
	if uptime > 0 {
		report.BatchesPerMinute = float64(e.batchesProcessed) / (uptime / 60)
	}
	if e.batchesProcessed > 0 {
		report.AvgBatchLatencyMs = float64(e.totalBatchTime.Milliseconds()) / float64(e.batchesProcessed)
	}
	return report
}
