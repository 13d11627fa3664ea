package models

import (
	"database/sql"
	"strings"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/dbmodels"
	natsservice "github.com/sensestream/sensestream-server/pkg/services/nats"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
)

// FinalizeTask is called once every segment of a task reached a terminal
// state. It joins the segment texts in order, stores the result and
// archives the task to the database.
func (m *TaskModel) FinalizeTask(taskId string) error {
	task, err := m.rs.GetTask(taskId)
	if err != nil || task == nil {
		return err
	}

	segments, err := m.rs.GetTaskSegments(taskId)
	if err != nil {
		return err
	}

	text := joinSegmentTexts(segments)
	status := config.TaskStatusCompleted
	errMsg := ""
	fields := map[string]interface{}{
		"result": text,
	}
	if task.FailedSegments > 0 {
		status = config.TaskStatusFailed
		errMsg = firstSegmentError(segments)
		fields["error"] = errMsg
	}
	fields["status"] = status

	err = m.rs.UpdateTaskFields(taskId, fields)
	if err != nil {
		return err
	}

	if err := m.archiveTask(task, segments, status, text, errMsg); err != nil {
		m.logger.WithError(err).Errorln("failed to archive task", taskId)
	}

	err = m.natsService.PublishTaskCompleted(&natsservice.TaskCompletedEvent{
		TaskId:            taskId,
		Status:            status,
		TotalSegments:     task.TotalSegments,
		CompletedSegments: task.CompletedSegments,
		FailedSegments:    task.FailedSegments,
	})
	if err != nil {
		m.logger.WithError(err).Warnln("task completed event not published for", taskId)
	}

	m.logger.Infoln("task", taskId, "finished with status", status)
	return nil
}

// joinSegmentTexts concatenates completed segment texts in segment
// order. Failed or empty segments contribute nothing.
func joinSegmentTexts(segments []*redisservice.SegmentInfo) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Status != config.SegmentStatusCompleted {
			continue
		}
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// firstSegmentError picks the error of the failed segment with the
// lowest index.
func firstSegmentError(segments []*redisservice.SegmentInfo) string {
	for _, seg := range segments {
		if seg.Status == config.SegmentStatusFailed && seg.Error != "" {
			return seg.Error
		}
	}
	return "one or more segments failed"
}

func (m *TaskModel) archiveTask(task *redisservice.TaskInfo, segments []*redisservice.SegmentInfo, status, text, errMsg string) error {
	info, rows := buildTaskArchive(task, segments, status, text, errMsg)
	if _, err := m.ds.InsertTranscriptionTask(info); err != nil {
		return err
	}
	_, err := m.ds.InsertTranscriptionSegments(rows)
	return err
}

// buildTaskArchive maps the redis runtime state of a finished task onto
// the database rows. errMsg is the already-computed failure reason, the
// task hash snapshot predates it.
func buildTaskArchive(task *redisservice.TaskInfo, segments []*redisservice.SegmentInfo, status, text, errMsg string) (*dbmodels.TranscriptionTask, []dbmodels.TranscriptionSegment) {
	info := &dbmodels.TranscriptionTask{
		TaskID:            task.TaskId,
		FileName:          task.FileName,
		FileSize:          task.FileSize,
		Duration:          task.Duration,
		Status:            status,
		TotalSegments:     task.TotalSegments,
		CompletedSegments: task.CompletedSegments,
		FailedSegments:    task.FailedSegments,
		Result: sql.NullString{
			String: text,
			Valid:  text != "",
		},
		Error: sql.NullString{
			String: errMsg,
			Valid:  errMsg != "",
		},
	}

	rows := make([]dbmodels.TranscriptionSegment, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, dbmodels.TranscriptionSegment{
			SegmentID:    seg.SegmentId,
			TaskID:       seg.TaskId,
			SegmentIndex: seg.SegmentIndex,
			StartTime:    seg.StartTime,
			EndTime:      seg.EndTime,
			Status:       seg.Status,
			Text: sql.NullString{
				String: seg.Text,
				Valid:  seg.Text != "",
			},
			Confidence:     seg.Confidence,
			ProcessingTime: seg.ProcessingTime,
		})
	}
	return info, rows
}
