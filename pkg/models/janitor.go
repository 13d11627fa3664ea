package models

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sensestream/sensestream-server/pkg/config"
	dbservice "github.com/sensestream/sensestream-server/pkg/services/db"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

// JanitorModel performs background cleanup: expired task retention,
// stale processing reconciliation and dispatched result pruning.
type JanitorModel struct {
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	app       *config.AppConfig
	ds        *dbservice.DatabaseService
	rs        *redisservice.RedisService
	streaming *StreamingModel
	logger    *logrus.Entry

	// leader election for janitor
	leaderLockVal string
	leaderLockTTL time.Duration
	leaderRenewal time.Duration
}

func NewJanitorModel(mainCtx context.Context, app *config.AppConfig, ds *dbservice.DatabaseService, rs *redisservice.RedisService, streaming *StreamingModel, logger *logrus.Logger) *JanitorModel {
	ctx, cancel := context.WithCancel(mainCtx)

	return &JanitorModel{
		ctx:       ctx,
		cancel:    cancel,
		app:       app,
		ds:        ds,
		rs:        rs,
		streaming: streaming,
		logger:    logger.WithField("model", "janitor"),

		leaderLockTTL: 1 * time.Minute,
		leaderRenewal: 30 * time.Second,
	}
}

// StartJanitor runs the election loop. Only the instance holding the
// leader lock executes the cleanup tasks.
func (m *JanitorModel) StartJanitor() {
	m.logger.Infoln("Janitor starting, attempting to acquire leader lock...")

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Infoln("Janitor shutdown completed")
			return
		default:
			acquired, lockVal, err := m.rs.AcquireJanitorLeaderLock(m.ctx, m.leaderLockTTL)
			if err != nil {
				if !errors.Is(err, redis.Nil) {
					m.logger.WithError(err).Errorln("Failed to check for janitor leader lock")
				}
				time.Sleep(m.leaderRenewal)
				continue
			}

			if acquired {
				m.logger.WithField("lockVal", lockVal).Infoln("Acquired janitor leader lock. Starting tasks.")
				m.mu.Lock()
				m.leaderLockVal = lockVal
				m.mu.Unlock()
				m.runJanitorTasks()
				m.logger.Warnln("Stopped being the janitor leader.")
			} else {
				time.Sleep(m.leaderRenewal)
			}
		}
	}
}

func (m *JanitorModel) Stop() {
	m.cancel()

	m.mu.RLock()
	lockVal := m.leaderLockVal
	m.mu.RUnlock()
	if lockVal != "" {
		if err := m.rs.ReleaseJanitorLeaderLock(context.Background(), lockVal); err != nil {
			m.logger.WithError(err).Warnln("failed to release janitor leader lock")
		}
	}
}

func (m *JanitorModel) runJanitorTasks() {
	renewalTicker := time.NewTicker(m.leaderRenewal)
	defer renewalTicker.Stop()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	nextRetentionCheck := time.Now().Add(time.Minute)
	nextStaleCheck := time.Now().Add(5 * time.Minute)
	nextResultCheck := time.Now().Add(10 * time.Minute)

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			if now.After(nextRetentionCheck) {
				m.cleanupExpiredTasks()
				nextRetentionCheck = time.Now().Add(time.Hour)
			}
			if now.After(nextStaleCheck) {
				m.reconcileStaleTasks()
				nextStaleCheck = time.Now().Add(5 * time.Minute)
			}
			if now.After(nextResultCheck) {
				removed := m.streaming.CleanupResults(config.DispatchedResultRetention)
				if removed > 0 {
					m.logger.Infoln("pruned", removed, "dispatched results")
				}
				nextResultCheck = time.Now().Add(10 * time.Minute)
			}
		case <-renewalTicker.C:
			m.mu.RLock()
			currentLockVal := m.leaderLockVal
			m.mu.RUnlock()

			renewed, err := m.rs.RenewJanitorLeadershipLock(m.ctx, currentLockVal, m.leaderLockTTL)
			if err != nil {
				m.logger.WithError(err).Errorln("Failed to renew janitor leader lock")
			}
			if !renewed {
				return
			}
		}
	}
}

// cleanupExpiredTasks removes tasks older than the retention window,
// along with their segment state and working directories.
func (m *JanitorModel) cleanupExpiredTasks() {
	cutoff := time.Now().Add(-config.TaskRetention)
	taskIds, err := m.rs.GetTaskIdsOlderThan(cutoff)
	if err != nil {
		m.logger.WithError(err).Errorln("failed to list expired tasks")
		return
	}

	for _, taskId := range taskIds {
		if err := m.rs.DeleteSegments(taskId); err != nil {
			m.logger.WithError(err).Errorln("failed to delete segments of task", taskId)
			continue
		}
		if err := m.rs.DeleteTask(taskId); err != nil {
			m.logger.WithError(err).Errorln("failed to delete task", taskId)
			continue
		}

		taskDir := filepath.Join(m.app.Audio.TempDir, taskId)
		if err := os.RemoveAll(taskDir); err != nil {
			m.logger.WithError(err).Warnln("failed to remove task directory", taskDir)
		}
		m.logger.Infoln("cleaned up expired task", taskId)
	}
}

// reconcileStaleTasks fails tasks stuck in processing past the
// configured timeout, usually after a crashed worker.
func (m *JanitorModel) reconcileStaleTasks() {
	taskIds, err := m.rs.GetAllTaskIds()
	if err != nil {
		m.logger.WithError(err).Errorln("failed to list tasks")
		return
	}

	timeout := time.Duration(m.app.Processing.TimeoutSeconds) * time.Second
	for _, taskId := range taskIds {
		task, err := m.rs.GetTask(taskId)
		if err != nil || task == nil {
			continue
		}
		if task.Status != config.TaskStatusProcessing && task.Status != config.TaskStatusSlicing {
			continue
		}

		updatedAt := time.Unix(task.UpdatedAt, 0)
		if time.Since(updatedAt) > timeout {
			m.logger.Warnln("task", taskId, "stuck in", task.Status, "since", updatedAt, ", marking failed")
			if err := m.rs.MarkTaskFailed(taskId, "processing timed out"); err != nil {
				m.logger.WithError(err).Errorln("failed to mark stale task failed:", taskId)
			}
		}
	}
}
