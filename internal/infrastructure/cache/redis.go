package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Throttle is a fixed-window gate: the first caller in each window gets true.
type Throttle struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

func NewThrottle(rdb *redis.Client, prefix string, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, prefix: prefix, window: window}
}

func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	return t.rdb.SetNX(ctx, t.prefix+key, time.Now().UTC().Unix(), t.window).Result()
}

// Release drops the window early, used when the guarded action failed.
func (t *Throttle) Release(ctx context.Context, key string) error {
	return t.rdb.Del(ctx, t.prefix+key).Err()
}
