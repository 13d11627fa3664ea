package natsservice

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type SegmentCompletedEvent struct {
	TaskId         string  `json:"task_id"`
	SegmentId      string  `json:"segment_id"`
	SegmentIndex   int64   `json:"segment_index"`
	Success        bool    `json:"success"`
	Text           string  `json:"text,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	Error          string  `json:"error,omitempty"`
	ProcessingTime float64 `json:"processing_time"`
	PublishedAt    int64   `json:"published_at"`
}

type TaskCompletedEvent struct {
	TaskId            string `json:"task_id"`
	Status            string `json:"status"`
	TotalSegments     int64  `json:"total_segments"`
	CompletedSegments int64  `json:"completed_segments"`
	FailedSegments    int64  `json:"failed_segments"`
	PublishedAt       int64  `json:"published_at"`
}

func (s *NatsService) PublishSegmentCompleted(ev *SegmentCompletedEvent) error {
	if !s.Enabled() {
		return nil
	}
	ev.PublishedAt = time.Now().Unix()

	sub := fmt.Sprintf("%s.segment.completed", s.app.NatsInfo.SubjectPrefix)
	return s.publish(sub, ev)
}

func (s *NatsService) PublishTaskCompleted(ev *TaskCompletedEvent) error {
	if !s.Enabled() {
		return nil
	}
	ev.PublishedAt = time.Now().Unix()

	sub := fmt.Sprintf("%s.task.completed", s.app.NatsInfo.SubjectPrefix)
	return s.publish(sub, ev)
}

func (s *NatsService) publish(subject string, payload interface{}) error {
	message, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := s.nc.Publish(subject, message); err != nil {
		s.logger.WithError(err).Errorln("failed to publish to", subject)
		return err
	}
	return nil
}
