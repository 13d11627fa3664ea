package dbservice

import (
	"errors"

	"github.com/sensestream/sensestream-server/pkg/dbmodels"
	"gorm.io/gorm"
)

func (s *DatabaseService) GetTranscriptionTask(taskId string) (*dbmodels.TranscriptionTask, error) {
	info := new(dbmodels.TranscriptionTask)
	cond := &dbmodels.TranscriptionTask{
		TaskID: taskId,
	}

	result := s.db.Where(cond).Take(info)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return info, nil
}

func (s *DatabaseService) GetTranscriptionTasks(offset, limit uint64, direction *string) ([]dbmodels.TranscriptionTask, int64, error) {
	var tasks []dbmodels.TranscriptionTask
	var total int64

	d := s.db.Model(&dbmodels.TranscriptionTask{})
	if err := d.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit == 0 {
		limit = 20
	}

	orderBy := "DESC"
	if direction != nil && *direction == "ASC" {
		orderBy = "ASC"
	}

	result := d.Offset(int(offset)).Limit(int(limit)).Order("id " + orderBy).Find(&tasks)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, 0, result.Error
	}

	return tasks, total, nil
}

func (s *DatabaseService) GetTranscriptionSegments(taskId string) ([]dbmodels.TranscriptionSegment, error) {
	var segments []dbmodels.TranscriptionSegment
	cond := &dbmodels.TranscriptionSegment{
		TaskID: taskId,
	}

	result := s.db.Where(cond).Order("segment_index ASC").Find(&segments)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	return segments, nil
}
