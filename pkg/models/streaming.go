package models

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/inference"
	dbservice "github.com/sensestream/sensestream-server/pkg/services/db"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

// StreamingModel owns the batch scheduler: the priority queue, the
// worker pool and the result dispatcher.
type StreamingModel struct {
	app        *config.AppConfig
	rs         *redisservice.RedisService
	engine     *inference.Engine
	taskModel  *TaskModel
	queue      *segmentQueue
	dispatcher *resultDispatcher
	logger     *logrus.Entry

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	cancel    context.CancelFunc
	pool      *workerpool.WorkerPool
	wg        sync.WaitGroup

	batchCounter atomic.Int64
}

func NewStreamingModel(app *config.AppConfig, ds *dbservice.DatabaseService, rs *redisservice.RedisService, engine *inference.Engine) *StreamingModel {
	if app == nil {
		app = config.GetConfig()
	}
	if rs == nil {
		rs = redisservice.New(app.RDS, app.Logger)
	}

	return &StreamingModel{
		app:        app,
		rs:         rs,
		engine:     engine,
		taskModel:  NewTaskModel(app, ds, rs),
		queue:      newSegmentQueue(app.Streaming.MaxQueueSize),
		dispatcher: newResultDispatcher(app, rs),
		logger:     app.Logger.WithField("model", "streaming"),
	}
}

// Warmup gives the inference provider a chance to establish sessions
// before the first real batch.
func (m *StreamingModel) Warmup(ctx context.Context) {
	m.engine.Warmup(ctx)
}

// Start brings up the poll loop and the batch worker pool. Calling it
// while running is a no-op.
func (m *StreamingModel) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.pool = workerpool.New(m.app.Streaming.MaxConcurrentBatches)
	m.startedAt = time.Now()
	m.running = true

	m.wg.Add(1)
	go m.pollLoop(ctx)

	if m.app.Streaming.EnablePerformanceMonitoring {
		m.wg.Add(1)
		go m.statsLoop(ctx)
	}

	m.logger.Infoln("streaming pipeline started with", m.app.Streaming.MaxConcurrentBatches, "batch workers")
	return nil
}

// Stop drains in-flight batches and shuts the loops down. Idempotent.
func (m *StreamingModel) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	cancel := m.cancel
	pool := m.pool
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	pool.StopWait()
	m.queue.Clear()

	if m.app.Streaming.EnablePerformanceMonitoring {
		if err := m.rs.DeleteStreamingStats(); err != nil {
			m.logger.WithError(err).Warnln("failed to clear streaming stats")
		}
	}

	m.logger.Infoln("streaming pipeline stopped")
	return nil
}

func (m *StreamingModel) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// runState snapshots the running flag and start time together, both are
// written under the same lock by Start.
func (m *StreamingModel) runState() (bool, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running, m.startedAt
}

// ProviderName reports which inference backend is behind the engine.
func (m *StreamingModel) ProviderName() string {
	return m.engine.Provider().Name()
}

// SubmitTask enqueues every segment of a ready task. The first segment
// gets the higher priority so its result comes back early.
func (m *StreamingModel) SubmitTask(taskId string) (int, error) {
	if !m.IsRunning() {
		return 0, errors.New(config.StreamingNotRunning)
	}

	task, err := m.rs.GetTask(taskId)
	if err != nil {
		return 0, err
	}
	if task == nil {
		return 0, errors.New(config.RequestedTaskNotExist)
	}
	if task.Status != config.TaskStatusReady {
		return 0, errors.New(config.TaskNotReady)
	}

	segments, err := m.rs.GetTaskSegments(taskId)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, seg := range segments {
		priority := m.app.Streaming.NormalSegmentPriority
		if seg.SegmentIndex == 0 {
			priority = m.app.Streaming.FirstSegmentPriority
		}

		err := m.queue.Add(&queuedSegment{
			SegmentId:    seg.SegmentId,
			TaskId:       seg.TaskId,
			SegmentIndex: seg.SegmentIndex,
			FilePath:     seg.FilePath,
			SampleRate:   m.app.AudioPreprocessing.TargetSampleRate,
			Priority:     priority,
		}, m.app.Streaming.FirstSegmentPriority)
		if err != nil {
			// queue full, stop here and report what got in
			if queued > 0 {
				_ = m.rs.UpdateTaskStatus(taskId, config.TaskStatusProcessing)
			}
			return queued, err
		}

		if err := m.rs.UpdateSegmentStatus(seg.SegmentId, config.SegmentStatusQueued); err != nil {
			m.logger.WithError(err).Warnln("failed to mark segment queued:", seg.SegmentId)
		}
		queued++
	}

	if err := m.rs.UpdateTaskStatus(taskId, config.TaskStatusProcessing); err != nil {
		return queued, err
	}
	return queued, nil
}
