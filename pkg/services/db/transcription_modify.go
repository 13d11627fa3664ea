package dbservice

import (
	"errors"

	"github.com/sensestream/sensestream-server/pkg/dbmodels"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *DatabaseService) InsertTranscriptionTask(info *dbmodels.TranscriptionTask) (int64, error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}},
		UpdateAll: true,
	}).Create(info)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (s *DatabaseService) InsertTranscriptionSegments(segments []dbmodels.TranscriptionSegment) (int64, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "segment_id"}},
		UpdateAll: true,
	}).Create(&segments)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (s *DatabaseService) DeleteTranscriptionTask(taskId string) (int64, error) {
	cond := &dbmodels.TranscriptionTask{
		TaskID: taskId,
	}

	result := s.db.Where(cond).Delete(&dbmodels.TranscriptionTask{})
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return 0, nil
	case result.Error != nil:
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (s *DatabaseService) DeleteTranscriptionSegments(taskId string) (int64, error) {
	cond := &dbmodels.TranscriptionSegment{
		TaskID: taskId,
	}

	result := s.db.Where(cond).Delete(&dbmodels.TranscriptionSegment{})
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return 0, nil
	case result.Error != nil:
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
