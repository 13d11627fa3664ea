package dbmodels

import (
	"database/sql"
	"time"

	"github.com/sensestream/sensestream-server/pkg/config"
)

type TranscriptionSegment struct {
	ID             uint64         `gorm:"column:id;type:int(11);primarykey;autoIncrement"`
	SegmentID      string         `gorm:"column:segment_id;type:varchar(64);not null;uniqueIndex:idx_segment_id"`
	TaskID         string         `gorm:"column:task_id;type:varchar(64);not null;index:idx_task_id"`
	SegmentIndex   int64          `gorm:"column:segment_index;type:int(11);not null;default:0"`
	StartTime      float64        `gorm:"column:start_time;type:double;not null;default:0"`
	EndTime        float64        `gorm:"column:end_time;type:double;not null;default:0"`
	Status         string         `gorm:"column:status;type:varchar(32);not null"`
	Text           sql.NullString `gorm:"column:text;type:text"`
	Confidence     float64        `gorm:"column:confidence;type:double;not null;default:0"`
	ProcessingTime float64        `gorm:"column:processing_time;type:double;not null;default:0"`
	CreationTime   int64          `gorm:"column:creation_time;type:int(10);not null;autoCreateTime"`
	Created        time.Time      `gorm:"column:created;type:datetime;not null;default:current_timestamp()"`
	Modified       time.Time      `gorm:"column:modified;type:datetime;not null;default:'0000-00-00 00:00:00';autoUpdateTime"`

	TaskInfo TranscriptionTask `gorm:"foreignKey:task_id;references:task_id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (t *TranscriptionSegment) TableName() string {
	return config.FormatDBTable("transcription_segments")
}
