package dbmodels

import (
	"database/sql"
	"time"

	"github.com/sensestream/sensestream-server/pkg/config"
)

type TranscriptionTask struct {
	ID                uint64         `gorm:"column:id;type:int(11);primarykey;autoIncrement"`
	TaskID            string         `gorm:"column:task_id;type:varchar(64);not null;uniqueIndex:idx_task_id"`
	FileName          string         `gorm:"column:file_name;type:varchar(255);not null"`
	FileSize          int64          `gorm:"column:file_size;type:bigint;not null;default:0"`
	Duration          float64        `gorm:"column:duration;type:double;not null;default:0"`
	Status            string         `gorm:"column:status;type:varchar(32);not null;index:idx_status"`
	TotalSegments     int64          `gorm:"column:total_segments;type:int(11);not null;default:0"`
	CompletedSegments int64          `gorm:"column:completed_segments;type:int(11);not null;default:0"`
	FailedSegments    int64          `gorm:"column:failed_segments;type:int(11);not null;default:0"`
	Result            sql.NullString `gorm:"column:result;type:longtext"`
	Error             sql.NullString `gorm:"column:error;type:text"`
	CreationTime      int64          `gorm:"column:creation_time;type:int(10);not null;autoCreateTime"`
	Created           time.Time      `gorm:"column:created;type:datetime;not null;default:current_timestamp()"`
	Modified          time.Time      `gorm:"column:modified;type:datetime;not null;default:'0000-00-00 00:00:00';autoUpdateTime"`
}

func (t *TranscriptionTask) TableName() string {
	return config.FormatDBTable("transcription_tasks")
}
