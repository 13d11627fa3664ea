package models

import (
	"sync"
	"time"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/inference"
	natsservice "github.com/sensestream/sensestream-server/pkg/services/nats"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

type DispatchedResult struct {
	SegmentId      string    `json:"segment_id"`
	TaskId         string    `json:"task_id"`
	SegmentIndex   int64     `json:"segment_index"`
	Success        bool      `json:"success"`
	Text           string    `json:"text,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	Error          string    `json:"error,omitempty"`
	ProcessingTime float64   `json:"processing_time"`
	DispatchedAt   time.Time `json:"dispatched_at"`
}

// resultDispatcher fans completed segment results out to redis, nats
// and the in-memory stores backing the early-result endpoints.
type resultDispatcher struct {
	app         *config.AppConfig
	rs          *redisservice.RedisService
	natsService *natsservice.NatsService
	logger      *logrus.Entry

	mu           sync.Mutex
	results      map[string]*DispatchedResult
	firstResults map[string]*DispatchedResult
	dispatched   int64
}

func newResultDispatcher(app *config.AppConfig, rs *redisservice.RedisService) *resultDispatcher {
	return &resultDispatcher{
		app:          app,
		rs:           rs,
		natsService:  natsservice.New(app),
		logger:       app.Logger.WithField("model", "dispatcher"),
		results:      make(map[string]*DispatchedResult),
		firstResults: make(map[string]*DispatchedResult),
	}
}

func (d *resultDispatcher) Dispatch(seg *queuedSegment, res *inference.Result) {
	dispatched := &DispatchedResult{
		SegmentId:      seg.SegmentId,
		TaskId:         seg.TaskId,
		SegmentIndex:   seg.SegmentIndex,
		Success:        res.Success,
		Text:           res.Text,
		Confidence:     res.Confidence,
		Error:          res.Error,
		ProcessingTime: res.ProcessingTime,
		DispatchedAt:   time.Now(),
	}

	d.updateSegmentState(seg, res)
	d.store(dispatched)
	d.publish(dispatched)
}

func (d *resultDispatcher) updateSegmentState(seg *queuedSegment, res *inference.Result) {
	fields := map[string]interface{}{
		"processing_time": res.ProcessingTime,
	}
	if res.Success {
		fields["status"] = config.SegmentStatusCompleted
		fields["text"] = res.Text
		fields["confidence"] = res.Confidence
	} else {
		fields["status"] = config.SegmentStatusFailed
		fields["error"] = res.Error
	}

	if err := d.rs.SetSegmentResult(seg.SegmentId, fields); err != nil {
		d.logger.WithError(err).Errorln("failed to store segment result:", seg.SegmentId)
	}

	var err error
	if res.Success {
		_, err = d.rs.IncrTaskCompletedSegments(seg.TaskId)
	} else {
		_, err = d.rs.IncrTaskFailedSegments(seg.TaskId)
	}
	if err != nil {
		d.logger.WithError(err).Errorln("failed to update task counters:", seg.TaskId)
	}
}

func (d *resultDispatcher) store(res *DispatchedResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.results[res.SegmentId] = res
	if res.SegmentIndex == 0 {
		d.firstResults[res.TaskId] = res
	}
	d.dispatched++
}

func (d *resultDispatcher) publish(res *DispatchedResult) {
	err := d.natsService.PublishSegmentCompleted(&natsservice.SegmentCompletedEvent{
		TaskId:         res.TaskId,
		SegmentId:      res.SegmentId,
		SegmentIndex:   res.SegmentIndex,
		Success:        res.Success,
		Text:           res.Text,
		Confidence:     res.Confidence,
		Error:          res.Error,
		ProcessingTime: res.ProcessingTime,
	})
	if err != nil {
		d.logger.WithError(err).Warnln("segment completed event not published:", res.SegmentId)
	}
}

func (d *resultDispatcher) GetSegmentResult(segmentId string) *DispatchedResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results[segmentId]
}

func (d *resultDispatcher) GetFirstSegmentResult(taskId string) *DispatchedResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.firstResults[taskId]
}

func (d *resultDispatcher) GetTaskResults(taskId string) []*DispatchedResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*DispatchedResult
	for _, res := range d.results {
		if res.TaskId == taskId {
			out = append(out, res)
		}
	}
	return out
}

// Cleanup drops dispatched results older than maxAge and returns how
// many were removed.
func (d *resultDispatcher) Cleanup(maxAge time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, res := range d.results {
		if res.DispatchedAt.Before(cutoff) {
			delete(d.results, id)
			removed++
		}
	}
	for id, res := range d.firstResults {
		if res.DispatchedAt.Before(cutoff) {
			delete(d.firstResults, id)
		}
	}
	return removed
}

func (d *resultDispatcher) Counts() (results int, dispatched int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.results), d.dispatched
}
