package models

import (
	"errors"
	"sync"
	"time"

	"github.com/sensestream/sensestream-server/pkg/config"
)

type queuedSegment struct {
	SegmentId    string
	TaskId       string
	SegmentIndex int64
	FilePath     string
	SampleRate   int
	Priority     int
	EnqueuedAt   time.Time
}

// segmentQueue is the dual-priority in-memory queue feeding the batch
// workers. First segments of every task jump the line so callers get an
// early partial result.
type segmentQueue struct {
	mu      sync.Mutex
	first   []*queuedSegment
	normal  []*queuedSegment
	maxSize int

	enqueued  int64
	rejected  int64
	totalWait time.Duration
	dequeued  int64
}

func newSegmentQueue(maxSize int) *segmentQueue {
	return &segmentQueue{
		maxSize: maxSize,
	}
}

func (q *segmentQueue) Add(seg *queuedSegment, firstPriority int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.first)+len(q.normal) >= q.maxSize {
		q.rejected++
		return errors.New(config.QueueIsFull)
	}

	seg.EnqueuedAt = time.Now()
	if seg.Priority >= firstPriority {
		q.first = append(q.first, seg)
	} else {
		q.normal = append(q.normal, seg)
	}
	q.enqueued++
	return nil
}

// PopBatch composes the next batch. It returns nil until either a full
// batch is available or the oldest queued segment has waited longer
// than maxWait.
func (q *segmentQueue) PopBatch(batchSize int, maxWait time.Duration) []*queuedSegment {
	q.mu.Lock()
	defer q.mu.Unlock()

	total := len(q.first) + len(q.normal)
	if total == 0 {
		return nil
	}
	if total < batchSize && time.Since(q.oldestLocked()) < maxWait {
		return nil
	}

	batch := make([]*queuedSegment, 0, batchSize)
	for len(batch) < batchSize && len(q.first) > 0 {
		batch = append(batch, q.first[0])
		q.first = q.first[1:]
	}
	for len(batch) < batchSize && len(q.normal) > 0 {
		batch = append(batch, q.normal[0])
		q.normal = q.normal[1:]
	}

	now := time.Now()
	for _, seg := range batch {
		q.totalWait += now.Sub(seg.EnqueuedAt)
	}
	q.dequeued += int64(len(batch))
	return batch
}

func (q *segmentQueue) oldestLocked() time.Time {
	oldest := time.Now()
	if len(q.first) > 0 && q.first[0].EnqueuedAt.Before(oldest) {
		oldest = q.first[0].EnqueuedAt
	}
	if len(q.normal) > 0 && q.normal[0].EnqueuedAt.Before(oldest) {
		oldest = q.normal[0].EnqueuedAt
	}
	return oldest
}

func (q *segmentQueue) Sizes() (first, normal int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.first), len(q.normal)
}

type queueStats struct {
	FirstQueued   int     `json:"first_queued"`
	NormalQueued  int     `json:"normal_queued"`
	TotalEnqueued int64   `json:"total_enqueued"`
	TotalDequeued int64   `json:"total_dequeued"`
	Rejected      int64   `json:"rejected"`
	AvgWaitMs     float64 `json:"avg_wait_ms"`
}

func (q *segmentQueue) Stats() queueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := queueStats{
		FirstQueued:   len(q.first),
		NormalQueued:  len(q.normal),
		TotalEnqueued: q.enqueued,
		TotalDequeued: q.dequeued,
		Rejected:      q.rejected,
	}
	if q.dequeued > 0 {
		s.AvgWaitMs = float64(q.totalWait.Milliseconds()) / float64(q.dequeued)
	}
	return s
}

func (q *segmentQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.first = nil
	q.normal = nil
}
