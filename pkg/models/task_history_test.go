package models

import (
	"database/sql"
	"testing"

	"github.com/sensestream/sensestream-server/pkg/config"
	"github.com/sensestream/sensestream-server/pkg/dbmodels"
)

func TestTaskHistoryFromArchive(t *testing.T) {
	row := &dbmodels.TranscriptionTask{
		TaskID:            "task123",
		FileName:          "meeting.wav",
		FileSize:          2048,
		Duration:          42.5,
		Status:            config.TaskStatusFailed,
		TotalSegments:     4,
		CompletedSegments: 3,
		FailedSegments:    1,
		Error:             sql.NullString{String: "backend unavailable", Valid: true},
		CreationTime:      1700000000,
	}

	res := taskHistoryFromArchive(row)
	if res.TaskId != "task123" || res.FileName != "meeting.wav" {
		t.Errorf("identity fields not carried over: %+v", res)
	}
	if res.Status != config.TaskStatusFailed {
		t.Errorf("expected failed status, got %s", res.Status)
	}
	if res.TotalSegments != 4 || res.CompletedSegments != 3 || res.FailedSegments != 1 {
		t.Errorf("segment counters not carried over: %+v", res)
	}
	if res.Error != "backend unavailable" {
		t.Errorf("expected archived error message, got %q", res.Error)
	}
	if res.CreationTime != 1700000000 {
		t.Errorf("expected creation time carried over, got %d", res.CreationTime)
	}
}

func TestTaskHistoryFromArchiveOmitsNullError(t *testing.T) {
	row := &dbmodels.TranscriptionTask{
		TaskID: "task456",
		Status: config.TaskStatusCompleted,
	}
	if res := taskHistoryFromArchive(row); res.Error != "" {
		t.Errorf("a NULL error column should map to an empty string, got %q", res.Error)
	}
}
