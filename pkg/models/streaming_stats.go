package models

import (
	"context"
	"time"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/inference"
)

type StreamingStatusRes struct {
	Running       bool    `json:"running"`
	Workers       int     `json:"workers"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	FirstQueued   int     `json:"first_queued"`
	NormalQueued  int     `json:"normal_queued"`
}

type StreamingStatsRes struct {
	Running           bool       `json:"running"`
	Queue             queueStats `json:"queue"`
	BatchesSubmitted  int64      `json:"batches_submitted"`
	ResultsHeld       int        `json:"results_held"`
	ResultsDispatched int64      `json:"results_dispatched"`
}

func (m *StreamingModel) GetStatus() *StreamingStatusRes {
	first, normal := m.queue.Sizes()
	running, startedAt := m.runState()
	res := &StreamingStatusRes{
		Running:      running,
		FirstQueued:  first,
		NormalQueued: normal,
	}
	if running {
		res.Workers = m.app.Streaming.MaxConcurrentBatches
		res.UptimeSeconds = time.Since(startedAt).Seconds()
	}
	return res
}

func (m *StreamingModel) GetStats() *StreamingStatsRes {
	held, dispatched := m.dispatcher.Counts()
	return &StreamingStatsRes{
		Running:           m.IsRunning(),
		Queue:             m.queue.Stats(),
		BatchesSubmitted:  m.batchCounter.Load(),
		ResultsHeld:       held,
		ResultsDispatched: dispatched,
	}
}

type PerformanceRes struct {
	Engine       *inference.PerformanceReport `json:"engine"`
	Scheduler    map[string]string            `json:"scheduler,omitempty"`
	TrackedTasks int64                        `json:"tracked_tasks"`
}

// GetPerformance combines the engine throughput report with the
// scheduler counters mirrored into redis by statsLoop.
func (m *StreamingModel) GetPerformance() *PerformanceRes {
	mirror, err := m.rs.GetStreamingStats()
	if err != nil {
		m.logger.WithError(err).Warnln("failed to read mirrored streaming stats")
		mirror = nil
	}

	var tracked int64
	if count, err := m.rs.CountTasks(); err == nil {
		tracked = count
	}

	return buildPerformanceRes(m.engine.Report(), mirror, tracked)
}

func buildPerformanceRes(report *inference.PerformanceReport, mirror map[string]string, tracked int64) *PerformanceRes {
	res := &PerformanceRes{
		Engine:       report,
		TrackedTasks: tracked,
	}
	if len(mirror) > 0 {
		res.Scheduler = mirror
	}
	return res
}

func (m *StreamingModel) GetFirstSegmentResult(taskId string) *DispatchedResult {
	return m.dispatcher.GetFirstSegmentResult(taskId)
}

func (m *StreamingModel) GetSegmentResult(segmentId string) *DispatchedResult {
	return m.dispatcher.GetSegmentResult(segmentId)
}

func (m *StreamingModel) GetTaskResults(taskId string) []*DispatchedResult {
	return m.dispatcher.GetTaskResults(taskId)
}

// CleanupResults drops dispatched results older than the given age.
// Zero falls back to the default retention.
func (m *StreamingModel) CleanupResults(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = config.DispatchedResultRetention
	}
	return m.dispatcher.Cleanup(maxAge)
}

// statsLoop mirrors scheduler counters into redis so the performance
// endpoint and external dashboards see them without process access.
func (m *StreamingModel) statsLoop(ctx context.Context) {
	defer m.wg.Done()

	interval := time.Duration(m.app.Monitoring.MetricsIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := m.GetStats()
			err := m.rs.UpdateStreamingStats(map[string]interface{}{
				"running":            stats.Running,
				"first_queued":       stats.Queue.FirstQueued,
				"normal_queued":      stats.Queue.NormalQueued,
				"total_enqueued":     stats.Queue.TotalEnqueued,
				"total_dequeued":     stats.Queue.TotalDequeued,
				"rejected":           stats.Queue.Rejected,
				"batches_submitted":  stats.BatchesSubmitted,
				"results_dispatched": stats.ResultsDispatched,
			})
			if err != nil {
				m.logger.WithError(err).Warnln("failed to mirror streaming stats")
			}
		}
	}
}
