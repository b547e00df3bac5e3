package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the atomic counter primitive the limiter is built on.
//
// Incr must increment the counter at key and, if the increment created
// the counter, set its expiry to window — as a single indivisible
// operation. A read-then-write implementation is incorrect: it permits
// over-admission under concurrent load. The post-increment count and
// the counter's remaining lifetime are returned.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}
