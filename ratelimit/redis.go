package ratelimit

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed fixed_window.lua
var fixedWindowScript string

// counterTimeout bounds every counter round trip. A timeout is surfaced
// as an error so the limiter fails open instead of stalling requests.
const counterTimeout = 2 * time.Second

// RedisCounterStore implements CounterStore on a shared Redis instance.
// The increment-and-set-expiry step runs as a server-side script, so it
// is atomic across all server processes.
type RedisCounterStore struct {
	client *redis.Client
	script *redis.Script
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{
		client: client,
		script: redis.NewScript(fixedWindowScript),
	}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, counterTimeout)
	defer cancel()

	windowSecs := int64(window / time.Second)
	if windowSecs < 1 {
		windowSecs = 1
	}

	result, err := s.script.Run(ctx, s.client, []string{key}, windowSecs).Result()
	if err != nil {
		return 0, 0, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, errors.New("ratelimit: unexpected script reply")
	}
	count, _ := values[0].(int64)
	ttlSecs, _ := values[1].(int64)
	if ttlSecs < 0 {
		ttlSecs = 0
	}

	return count, time.Duration(ttlSecs) * time.Second, nil
}
