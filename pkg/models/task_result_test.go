package models

import (
	"testing"

	"github.com/sensestream/sensestream-server/pkg/config"
	redisservice "github.com/sensestream/sensestream-server/pkg/services/redis"
)

func TestJoinSegmentTexts(t *testing.T) {
	segments := []*redisservice.SegmentInfo{
		{SegmentIndex: 0, Status: config.SegmentStatusCompleted, Text: "hello"},
		{SegmentIndex: 1, Status: config.SegmentStatusFailed, Error: "boom"},
		{SegmentIndex: 2, Status: config.SegmentStatusCompleted, Text: "  world  "},
		{SegmentIndex: 3, Status: config.SegmentStatusCompleted, Text: ""},
	}

	got := joinSegmentTexts(segments)
	if got != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", got)
	}
}

func TestBuildTaskArchiveKeepsFailureReason(t *testing.T) {
	// the task hash was loaded before the failure reason was written,
	// so its Error field is still empty
	task := &redisservice.TaskInfo{
		TaskId:         "task-1",
		FailedSegments: 1,
		TotalSegments:  2,
	}
	segments := []*redisservice.SegmentInfo{
		{SegmentId: "task-1_segment_0", TaskId: "task-1", Status: config.SegmentStatusCompleted, Text: "hello"},
		{SegmentId: "task-1_segment_1", TaskId: "task-1", Status: config.SegmentStatusFailed, Error: "backend unavailable"},
	}

	info, rows := buildTaskArchive(task, segments, config.TaskStatusFailed, "hello", "backend unavailable")
	if !info.Error.Valid || info.Error.String != "backend unavailable" {
		t.Errorf("archived row should carry the failure reason, got %+v", info.Error)
	}
	if info.Status != config.TaskStatusFailed {
		t.Errorf("expected failed status, got %s", info.Status)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 segment rows, got %d", len(rows))
	}
	if rows[1].Status != config.SegmentStatusFailed {
		t.Errorf("unexpected segment row status: %s", rows[1].Status)
	}
}

func TestBuildTaskArchiveCompletedTask(t *testing.T) {
	task := &redisservice.TaskInfo{TaskId: "task-2", TotalSegments: 1}
	segments := []*redisservice.SegmentInfo{
		{SegmentId: "task-2_segment_0", TaskId: "task-2", Status: config.SegmentStatusCompleted, Text: "hello"},
	}

	info, _ := buildTaskArchive(task, segments, config.TaskStatusCompleted, "hello", "")
	if info.Error.Valid {
		t.Errorf("completed task should archive a NULL error, got %q", info.Error.String)
	}
	if !info.Result.Valid || info.Result.String != "hello" {
		t.Errorf("unexpected archived result: %+v", info.Result)
	}
}

func TestFirstSegmentError(t *testing.T) {
	segments := []*redisservice.SegmentInfo{
		{SegmentIndex: 0, Status: config.SegmentStatusCompleted},
		{SegmentIndex: 1, Status: config.SegmentStatusFailed, Error: "first failure"},
		{SegmentIndex: 2, Status: config.SegmentStatusFailed, Error: "second failure"},
	}

	if got := firstSegmentError(segments); got != "first failure" {
		t.Errorf("expected first failure, got %q", got)
	}

	none := []*redisservice.SegmentInfo{
		{SegmentIndex: 0, Status: config.SegmentStatusCompleted},
	}
	if got := firstSegmentError(none); got == "" {
		t.Error("expected a fallback message")
	}
}
