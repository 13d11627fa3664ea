package models

import (
	"errors"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/dbmodels"
)

type FetchTasksReq struct {
	From    uint64  `json:"from"`
	Limit   uint64  `json:"limit"`
	OrderBy *string `json:"order_by"`
}

type DeleteTaskReq struct {
	TaskId string `json:"task_id"`
}

type TaskHistoryRes struct {
	TaskId            string  `json:"task_id"`
	FileName          string  `json:"file_name"`
	FileSize          int64   `json:"file_size"`
	Duration          float64 `json:"duration"`
	Status            string  `json:"status"`
	TotalSegments     int64   `json:"total_segments"`
	CompletedSegments int64   `json:"completed_segments"`
	FailedSegments    int64   `json:"failed_segments"`
	Error             string  `json:"error,omitempty"`
	CreationTime      int64   `json:"creation_time"`
}

// FetchTaskHistory lists archived tasks from the database. Unlike the
// redis runtime state, these rows survive the janitor's retention
// cleanup.
func (m *TaskModel) FetchTaskHistory(req *FetchTasksReq) ([]TaskHistoryRes, int64, error) {
	tasks, total, err := m.ds.GetTranscriptionTasks(req.From, req.Limit, req.OrderBy)
	if err != nil {
		return nil, 0, err
	}

	res := make([]TaskHistoryRes, 0, len(tasks))
	for i := range tasks {
		res = append(res, taskHistoryFromArchive(&tasks[i]))
	}
	return res, total, nil
}

// DeleteTaskHistory removes an archived task and its segments from the
// database.
func (m *TaskModel) DeleteTaskHistory(taskId string) error {
	info, err := m.ds.GetTranscriptionTask(taskId)
	if err != nil {
		return err
	}
	if info == nil {
		return errors.New(config.RequestedTaskNotExist)
	}

	if _, err := m.ds.DeleteTranscriptionSegments(taskId); err != nil {
		return err
	}
	_, err = m.ds.DeleteTranscriptionTask(taskId)
	return err
}

// archivedTaskResult rebuilds a task result from the database archive,
// used once the janitor has pruned the redis runtime state.
func (m *TaskModel) archivedTaskResult(taskId string) (*TaskResultRes, error) {
	info, err := m.ds.GetTranscriptionTask(taskId)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.New(config.RequestedTaskNotExist)
	}
	if info.Status != config.TaskStatusCompleted {
		return nil, errors.New(config.TaskNotCompleted)
	}

	rows, err := m.ds.GetTranscriptionSegments(taskId)
	if err != nil {
		return nil, err
	}

	segments := make([]SegmentRes, 0, len(rows))
	for _, row := range rows {
		segments = append(segments, SegmentRes{
			SegmentId:    row.SegmentID,
			SegmentIndex: row.SegmentIndex,
			StartTime:    row.StartTime,
			EndTime:      row.EndTime,
			Status:       row.Status,
			Text:         row.Text.String,
			Confidence:   row.Confidence,
		})
	}

	return &TaskResultRes{
		TaskId:   info.TaskID,
		Status:   info.Status,
		Text:     info.Result.String,
		Duration: info.Duration,
		Segments: segments,
	}, nil
}

func taskHistoryFromArchive(t *dbmodels.TranscriptionTask) TaskHistoryRes {
	return TaskHistoryRes{
		TaskId:            t.TaskID,
		FileName:          t.FileName,
		FileSize:          t.FileSize,
		Duration:          t.Duration,
		Status:            t.Status,
		TotalSegments:     t.TotalSegments,
		CompletedSegments: t.CompletedSegments,
		FailedSegments:    t.FailedSegments,
		Error:             t.Error.String,
		CreationTime:      t.CreationTime,
	}
}
