package redisservice

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const segmentKey = Prefix + "segment:%s"

// SegmentInfo is the runtime state of one audio segment.
type SegmentInfo struct {
	SegmentId      string  `redis:"segment_id"`
	TaskId         string  `redis:"task_id"`
	SegmentIndex   int64   `redis:"segment_index"`
	StartTime      float64 `redis:"start_time"`
	EndTime        float64 `redis:"end_time"`
	ActualEndTime  float64 `redis:"actual_end_time"`
	FilePath       string  `redis:"file_path"`
	Status         string  `redis:"status"`
	Text           string  `redis:"text"`
	Confidence     float64 `redis:"confidence"`
	Error          string  `redis:"error"`
	QualityScore   float64 `redis:"quality_score"`
	HasSpeech      bool    `redis:"has_speech"`
	ProcessingTime float64 `redis:"processing_time"`
	CreatedAt      int64   `redis:"created_at"`
	UpdatedAt      int64   `redis:"updated_at"`
}

// CreateSegments stores all segment hashes of a task in one pipeline and
// indexes them by segment order.
func (s *RedisService) CreateSegments(taskId string, segments []*SegmentInfo) error {
	now := time.Now().Unix()
	indexKey := fmt.Sprintf(taskSegmentsKey, taskId)

	pp := s.rc.Pipeline()
	for _, seg := range segments {
		seg.CreatedAt = now
		seg.UpdatedAt = now
		pp.HSet(s.ctx, fmt.Sprintf(segmentKey, seg.SegmentId), seg)
		pp.ZAdd(s.ctx, indexKey, redis.Z{
			Score:  float64(seg.SegmentIndex),
			Member: seg.SegmentId,
		})
	}
	_, err := pp.Exec(s.ctx)
	return err
}

// GetSegment returns the segment state or nil when it does not exist.
func (s *RedisService) GetSegment(segmentId string) (*SegmentInfo, error) {
	key := fmt.Sprintf(segmentKey, segmentId)
	result, err := s.rc.HGetAll(s.ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	info := new(SegmentInfo)
	if err := s.rc.HGetAll(s.ctx, key).Scan(info); err != nil {
		return nil, err
	}
	return info, nil
}

// GetTaskSegmentIds lists a task's segment ids in segment order.
func (s *RedisService) GetTaskSegmentIds(taskId string) ([]string, error) {
	return s.rc.ZRange(s.ctx, fmt.Sprintf(taskSegmentsKey, taskId), 0, -1).Result()
}

// GetTaskSegments loads the full segment states of a task in order.
func (s *RedisService) GetTaskSegments(taskId string) ([]*SegmentInfo, error) {
	ids, err := s.GetTaskSegmentIds(taskId)
	if err != nil {
		return nil, err
	}

	segments := make([]*SegmentInfo, 0, len(ids))
	for _, id := range ids {
		seg, err := s.GetSegment(id)
		if err != nil {
			return nil, err
		}
		if seg != nil {
			segments = append(segments, seg)
		}
	}
	return segments, nil
}

// UpdateSegmentStatus moves a segment through its lifecycle.
func (s *RedisService) UpdateSegmentStatus(segmentId, status string) error {
	key := fmt.Sprintf(segmentKey, segmentId)
	return s.rc.HSet(s.ctx, key, "status", status, "updated_at", time.Now().Unix()).Err()
}

// SetSegmentResult stores the transcription outcome of a segment.
func (s *RedisService) SetSegmentResult(segmentId string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().Unix()
	key := fmt.Sprintf(segmentKey, segmentId)
	return s.rc.HSet(s.ctx, key, fields).Err()
}

// DeleteSegments removes all segment hashes of a task.
func (s *RedisService) DeleteSegments(taskId string) error {
	ids, err := s.GetTaskSegmentIds(taskId)
	if err != nil {
		return err
	}

	pp := s.rc.Pipeline()
	for _, id := range ids {
		pp.Del(s.ctx, fmt.Sprintf(segmentKey, id))
	}
	pp.Del(s.ctx, fmt.Sprintf(taskSegmentsKey, taskId))
	_, err = pp.Exec(s.ctx)
	return err
}
