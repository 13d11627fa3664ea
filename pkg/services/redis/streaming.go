package redisservice

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

const streamingStatsKey = Prefix + "streaming:stats"

// UpdateStreamingStats mirrors the in-memory scheduler counters so
// external dashboards can read them without hitting the API.
func (s *RedisService) UpdateStreamingStats(fields map[string]interface{}) error {
	return s.rc.HSet(s.ctx, streamingStatsKey, fields).Err()
}

// GetStreamingStats returns the mirrored counters.
func (s *RedisService) GetStreamingStats() (map[string]string, error) {
	result, err := s.rc.HGetAll(s.ctx, streamingStatsKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return result, nil
}

// DeleteStreamingStats clears the mirror, used when the scheduler stops.
func (s *RedisService) DeleteStreamingStats() error {
	return s.rc.Del(s.ctx, streamingStatsKey).Err()
}
