package models

import (
	"errors"

	"github.com/sensestream/sensestream-server/pkg/config"
)

type TaskStatusRes struct {
	TaskId            string  `json:"task_id"`
	FileName          string  `json:"file_name"`
	Status            string  `json:"status"`
	Duration          float64 `json:"duration"`
	TotalSegments     int64   `json:"total_segments"`
	CompletedSegments int64   `json:"completed_segments"`
	FailedSegments    int64   `json:"failed_segments"`
	Progress          float64 `json:"progress"`
	Error             string  `json:"error,omitempty"`
	CreatedAt         int64   `json:"created_at"`
	UpdatedAt         int64   `json:"updated_at"`
}

type SegmentRes struct {
	SegmentId    string  `json:"segment_id"`
	SegmentIndex int64   `json:"segment_index"`
	StartTime    float64 `json:"start_time"`
	EndTime      float64 `json:"end_time"`
	Status       string  `json:"status"`
	Text         string  `json:"text,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type TaskResultRes struct {
	TaskId   string       `json:"task_id"`
	Status   string       `json:"status"`
	Text     string       `json:"text"`
	Duration float64      `json:"duration"`
	Segments []SegmentRes `json:"segments"`
}

func (m *TaskModel) GetTaskStatus(taskId string) (*TaskStatusRes, error) {
	task, err := m.rs.GetTask(taskId)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.New(config.RequestedTaskNotExist)
	}

	res := &TaskStatusRes{
		TaskId:            task.TaskId,
		FileName:          task.FileName,
		Status:            task.Status,
		Duration:          task.Duration,
		TotalSegments:     task.TotalSegments,
		CompletedSegments: task.CompletedSegments,
		FailedSegments:    task.FailedSegments,
		Error:             task.Error,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}
	if task.TotalSegments > 0 {
		res.Progress = float64(task.CompletedSegments+task.FailedSegments) / float64(task.TotalSegments)
	}
	return res, nil
}

func (m *TaskModel) GetTaskResult(taskId string) (*TaskResultRes, error) {
	task, err := m.rs.GetTask(taskId)
	if err != nil {
		return nil, err
	}
	if task == nil {
		// the runtime state may already be pruned, fall back to the archive
		return m.archivedTaskResult(taskId)
	}
	if task.Status != config.TaskStatusCompleted {
		return nil, errors.New(config.TaskNotCompleted)
	}

	segments, err := m.GetTaskSegments(taskId)
	if err != nil {
		return nil, err
	}

	return &TaskResultRes{
		TaskId:   task.TaskId,
		Status:   task.Status,
		Text:     task.Result,
		Duration: task.Duration,
		Segments: segments,
	}, nil
}

type ReadyTaskRes struct {
	TaskId        string  `json:"task_id"`
	FileName      string  `json:"file_name"`
	Duration      float64 `json:"duration"`
	TotalSegments int64   `json:"total_segments"`
}

// GetReadyTasks lists tasks that finished slicing and are waiting to be
// submitted for streaming transcription.
func (m *TaskModel) GetReadyTasks() ([]ReadyTaskRes, error) {
	ids, err := m.rs.GetAllTaskIds()
	if err != nil {
		return nil, err
	}

	ready := make([]ReadyTaskRes, 0)
	for _, id := range ids {
		task, err := m.rs.GetTask(id)
		if err != nil || task == nil {
			continue
		}
		if task.Status != config.TaskStatusReady {
			continue
		}
		ready = append(ready, ReadyTaskRes{
			TaskId:        task.TaskId,
			FileName:      task.FileName,
			Duration:      task.Duration,
			TotalSegments: task.TotalSegments,
		})
	}
	return ready, nil
}

func (m *TaskModel) GetTaskSegments(taskId string) ([]SegmentRes, error) {
	task, err := m.rs.GetTask(taskId)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.New(config.RequestedTaskNotExist)
	}

	infos, err := m.rs.GetTaskSegments(taskId)
	if err != nil {
		return nil, err
	}

	segments := make([]SegmentRes, 0, len(infos))
	for _, info := range infos {
		segments = append(segments, SegmentRes{
			SegmentId:    info.SegmentId,
			SegmentIndex: info.SegmentIndex,
			StartTime:    info.StartTime,
			EndTime:      info.EndTime,
			Status:       info.Status,
			Text:         info.Text,
			Confidence:   info.Confidence,
			Error:        info.Error,
		})
	}
	return segments, nil
}
