package redisservice

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sensestream/sensestream-server/pkg/config"
)

const (
	taskKey         = Prefix + "task:%s"
	taskSegmentsKey = Prefix + "task:%s:segments"
	tasksIndexKey   = Prefix + "tasks"
)

// TaskInfo is the runtime state of one transcription task.
type TaskInfo struct {
	TaskId            string  `redis:"task_id"`
	FileName          string  `redis:"file_name"`
	FilePath          string  `redis:"file_path"`
	FileSize          int64   `redis:"file_size"`
	Duration          float64 `redis:"duration"`
	Status            string  `redis:"status"`
	TotalSegments     int64   `redis:"total_segments"`
	CompletedSegments int64   `redis:"completed_segments"`
	FailedSegments    int64   `redis:"failed_segments"`
	Result            string  `redis:"result"`
	Error             string  `redis:"error"`
	CreatedAt         int64   `redis:"created_at"`
	UpdatedAt         int64   `redis:"updated_at"`
}

// CreateTask stores a new task hash and registers it in the task index.
func (s *RedisService) CreateTask(info *TaskInfo) error {
	now := time.Now().Unix()
	info.CreatedAt = now
	info.UpdatedAt = now

	key := fmt.Sprintf(taskKey, info.TaskId)
	pp := s.rc.Pipeline()
	pp.HSet(s.ctx, key, info)
	pp.ZAdd(s.ctx, tasksIndexKey, redis.Z{
		Score:  float64(now),
		Member: info.TaskId,
	})
	_, err := pp.Exec(s.ctx)
	return err
}

// GetTask returns the task state or nil when the task does not exist.
func (s *RedisService) GetTask(taskId string) (*TaskInfo, error) {
	key := fmt.Sprintf(taskKey, taskId)
	result, err := s.rc.HGetAll(s.ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	info := new(TaskInfo)
	if err := s.rc.HGetAll(s.ctx, key).Scan(info); err != nil {
		return nil, err
	}
	return info, nil
}

// UpdateTaskStatus moves a task through its lifecycle.
func (s *RedisService) UpdateTaskStatus(taskId, status string) error {
	key := fmt.Sprintf(taskKey, taskId)
	return s.rc.HSet(s.ctx, key, "status", status, "updated_at", time.Now().Unix()).Err()
}

// UpdateTaskFields sets arbitrary task hash fields.
func (s *RedisService) UpdateTaskFields(taskId string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().Unix()
	key := fmt.Sprintf(taskKey, taskId)
	return s.rc.HSet(s.ctx, key, fields).Err()
}

// MarkTaskFailed records the first failure reason of a task.
func (s *RedisService) MarkTaskFailed(taskId, reason string) error {
	return s.UpdateTaskFields(taskId, map[string]interface{}{
		"status": config.TaskStatusFailed,
		"error":  reason,
	})
}

// IncrTaskCompletedSegments bumps the completed counter and returns the
// new value so callers can run the completion check.
func (s *RedisService) IncrTaskCompletedSegments(taskId string) (int64, error) {
	key := fmt.Sprintf(taskKey, taskId)
	return s.rc.HIncrBy(s.ctx, key, "completed_segments", 1).Result()
}

// IncrTaskFailedSegments bumps the failed counter.
func (s *RedisService) IncrTaskFailedSegments(taskId string) (int64, error) {
	key := fmt.Sprintf(taskKey, taskId)
	return s.rc.HIncrBy(s.ctx, key, "failed_segments", 1).Result()
}

// GetTaskIdsOlderThan lists tasks created before the cutoff, used by the
// janitor for retention cleanup.
func (s *RedisService) GetTaskIdsOlderThan(cutoff time.Time) ([]string, error) {
	return s.rc.ZRangeByScore(s.ctx, tasksIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", cutoff.Unix()),
	}).Result()
}

// GetAllTaskIds lists every known task id.
func (s *RedisService) GetAllTaskIds() ([]string, error) {
	return s.rc.ZRange(s.ctx, tasksIndexKey, 0, -1).Result()
}

// CountTasks returns the size of the task index.
func (s *RedisService) CountTasks() (int64, error) {
	return s.rc.ZCard(s.ctx, tasksIndexKey).Result()
}

// DeleteTask removes the task hash, its segment index and the index entry.
func (s *RedisService) DeleteTask(taskId string) error {
	pp := s.rc.Pipeline()
	pp.Del(s.ctx, fmt.Sprintf(taskKey, taskId))
	pp.Del(s.ctx, fmt.Sprintf(taskSegmentsKey, taskId))
	pp.ZRem(s.ctx, tasksIndexKey, taskId)
	_, err := pp.Exec(s.ctx)
	return err
}
