package redisservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const janitorLeaderLockKey = Prefix + "janitor:leader"

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end
`)

// AcquireJanitorLeaderLock tries to become the janitor leader. On
// success it returns the lock value needed for renewal and release.
func (s *RedisService) AcquireJanitorLeaderLock(ctx context.Context, ttl time.Duration) (bool, string, error) {
	lockVal := uuid.NewString()
	acquired, err := s.rc.SetNX(ctx, janitorLeaderLockKey, lockVal, ttl).Result()
	if err != nil {
		return false, "", err
	}
	if !acquired {
		return false, "", nil
	}
	return true, lockVal, nil
}

// RenewJanitorLeadershipLock extends the leader lock only while this
// instance still owns it.
func (s *RedisService) RenewJanitorLeadershipLock(ctx context.Context, lockVal string, ttl time.Duration) (bool, error) {
	res, err := renewScript.Run(ctx, s.rc, []string{janitorLeaderLockKey}, lockVal, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// ReleaseJanitorLeaderLock deletes the lock only if this instance owns it.
func (s *RedisService) ReleaseJanitorLeaderLock(ctx context.Context, lockVal string) error {
	return unlockScript.Run(ctx, s.rc, []string{janitorLeaderLockKey}, lockVal).Err()
}
