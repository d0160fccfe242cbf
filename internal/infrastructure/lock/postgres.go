package lock

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// PostgresJobLocker holds a session advisory lock on a dedicated pooled
// connection for the lifetime of one Advance call.
type PostgresJobLocker struct {
	pool   *pgxpool.Pool
	logger *logrus.Entry
}

func NewPostgresJobLocker(pool *pgxpool.Pool, logger *logrus.Entry) *PostgresJobLocker {
	return &PostgresJobLocker{pool: pool, logger: logger}
}

func (l *PostgresJobLocker) TryLock(ctx context.Context, jobID string) (func(), bool, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock connection: %w", err)
	}

	key := advisoryLockKey(jobID)
	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1::bigint)`, key).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}

	return sync.OnceFunc(func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var released bool
		if err := conn.QueryRow(unlockCtx, `SELECT pg_advisory_unlock($1::bigint)`, key).Scan(&released); err != nil {
			l.logger.WithError(err).WithField("job_id", jobID).Warn("lock: failed to release advisory lock")
			// Closing the session drops any lock it still holds.
			_ = conn.Conn().Close(unlockCtx)
		}
		conn.Release()
	}), true, nil
}

func advisoryLockKey(jobID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("outreach-import:" + jobID))
	return int64(h.Sum64())
}
