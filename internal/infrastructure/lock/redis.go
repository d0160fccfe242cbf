package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultRedisLockTTL = 5 * time.Minute

// releaseScript deletes the key only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisJobLocker serialises Advance calls across processes that share a
// Redis but not necessarily a database session. The TTL must exceed the
// slowest slice.
type RedisJobLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *logrus.Entry
}

func NewRedisJobLocker(client redis.UniversalClient, prefix string, ttl time.Duration, logger *logrus.Entry) *RedisJobLocker {
	if ttl <= 0 {
		ttl = defaultRedisLockTTL
	}
	if prefix == "" {
		prefix = "outreach-import"
	}
	return &RedisJobLocker{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (l *RedisJobLocker) TryLock(ctx context.Context, jobID string) (func(), bool, error) {
	key := l.key(jobID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis set nx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	return sync.OnceFunc(func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.WithError(err).WithField("job_id", jobID).Warn("lock: failed to release redis lock")
		}
	}), true, nil
}

func (l *RedisJobLocker) key(jobID string) string {
	return l.prefix + ":lock:" + jobID
}
