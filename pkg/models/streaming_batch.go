package models

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/inference"
)

// pollLoop paces the queue and submits composed batches to the worker
// pool until the scheduler stops.
func (m *StreamingModel) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	interval := time.Duration(m.app.Streaming.QueueCheckIntervalMs) * time.Millisecond
	maxWait := time.Duration(m.app.Streaming.BatchTimeoutMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batch := m.queue.PopBatch(m.app.Streaming.BatchSize, maxWait)
			if len(batch) == 0 {
				continue
			}

			batchId := fmt.Sprintf("batch_%d_%d", time.Now().UnixMilli(), m.batchCounter.Add(1))
			m.pool.Submit(func() {
				m.processBatch(ctx, batchId, batch)
			})
		}
	}
}

func (m *StreamingModel) processBatch(ctx context.Context, batchId string, batch []*queuedSegment) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	requests := make([]*inference.Request, 0, len(batch))

	for _, seg := range batch {
		if err := m.rs.UpdateSegmentStatus(seg.SegmentId, config.SegmentStatusProcessing); err != nil {
			m.logger.WithError(err).Warnln("failed to mark segment processing:", seg.SegmentId)
		}

		data, err := os.ReadFile(seg.FilePath)
		if err != nil {
			m.dispatcher.Dispatch(seg, &inference.Result{
				Success: false,
				Error:   fmt.Sprintf("failed to read segment audio: %s", err),
			})
			continue
		}

		requests = append(requests, &inference.Request{
			TaskId:     seg.TaskId,
			SegmentId:  seg.SegmentId,
			AudioData:  data,
			SampleRate: seg.SampleRate,
		})
	}

	if len(requests) == 0 {
		return
	}

	results := m.engine.ProcessBatch(ctx, requests)
	for i, res := range results {
		seg := m.findQueued(batch, requests[i].SegmentId)
		if seg == nil {
			continue
		}
		m.dispatcher.Dispatch(seg, res)
	}

	if m.app.Monitoring.LogBatchPerformance {
		m.logger.Infoln("batch", batchId, "of", len(requests), "segments finished in", time.Since(started).Round(time.Millisecond))
	}
	m.checkTaskCompletion(batch)
}

func (m *StreamingModel) findQueued(batch []*queuedSegment, segmentId string) *queuedSegment {
	for _, seg := range batch {
		if seg.SegmentId == segmentId {
			return seg
		}
	}
	return nil
}

// checkTaskCompletion finalizes every task whose segments all reached a
// terminal state within this batch.
func (m *StreamingModel) checkTaskCompletion(batch []*queuedSegment) {
	seen := make(map[string]bool)
	for _, seg := range batch {
		if seen[seg.TaskId] {
			continue
		}
		seen[seg.TaskId] = true

		task, err := m.rs.GetTask(seg.TaskId)
		if err != nil || task == nil {
			continue
		}
		if task.TotalSegments > 0 && task.CompletedSegments+task.FailedSegments >= task.TotalSegments &&
			task.Status == config.TaskStatusProcessing {
			if err := m.taskModel.FinalizeTask(seg.TaskId); err != nil {
				m.logger.WithError(err).Errorln("failed to finalize task", seg.TaskId)
			}
		}
	}
}
