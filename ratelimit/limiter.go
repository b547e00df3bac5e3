// Package ratelimit implements distributed per-identity request
// throttling with a fixed-window counter shared by every server
// process. The limiter protects write-heavy endpoints against abuse; it
// fails open when its counter store is degraded, because blocking
// legitimate traffic on an infrastructure error is worse than briefly
// admitting extra requests.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Action identifies a throttled action kind. Distinct actions never
// share a counter namespace, even for the same identity.
type Action string

const (
	ActionPostCreate    Action = "post_create"
	ActionPostUpdate    Action = "post_update"
	ActionVote          Action = "vote"
	ActionCommentCreate Action = "comment_create"
	ActionCommentUpdate Action = "comment_update"
	ActionMediaUpload   Action = "media_upload"
	ActionLogin         Action = "login"
	ActionProfileUpdate Action = "profile_update"
)

// Quota bounds one action kind: at most MaxAttempts within one Window.
type Quota struct {
	MaxAttempts int64
	Window      time.Duration
}

// Config maps each action kind to its quota. It is immutable after
// construction so limits can be tuned per environment and tested with
// tiny windows.
type Config map[Action]Quota

// DefaultConfig returns the production quotas.
func DefaultConfig() Config {
	return Config{
		ActionPostCreate:    {MaxAttempts: 5, Window: 15 * time.Minute},
		ActionPostUpdate:    {MaxAttempts: 10, Window: 15 * time.Minute},
		ActionVote:          {MaxAttempts: 30, Window: time.Minute},
		ActionCommentCreate: {MaxAttempts: 20, Window: 5 * time.Minute},
		ActionCommentUpdate: {MaxAttempts: 15, Window: 5 * time.Minute},
		ActionMediaUpload:   {MaxAttempts: 10, Window: time.Hour},
		ActionLogin:         {MaxAttempts: 5, Window: 15 * time.Minute},
		ActionProfileUpdate: {MaxAttempts: 5, Window: 10 * time.Minute},
	}
}

// Result is the outcome of one limiter check. RetryAfter is non-zero
// only on denial and tells the caller when the window expires.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter evaluates (identity, action) pairs against the shared
// counters.
type Limiter struct {
	counters CounterStore
	cfg      Config
}

func NewLimiter(counters CounterStore, cfg Config) *Limiter {
	return &Limiter{counters: counters, cfg: cfg}
}

// Check runs the fixed-window algorithm: increment the shared counter
// for (action, identity), starting a new window if the counter did not
// exist, and deny once the count exceeds the quota. The window is
// aligned to the first attempt, not to wall-clock buckets.
//
// Any counter-store error fails open: the condition is logged and the
// attempt is admitted.
func (l *Limiter) Check(ctx context.Context, identity string, action Action) Result {
	quota, ok := l.cfg[action]
	if !ok {
		log.Warn().Str("action", string(action)).Msg("no rate limit quota configured, allowing")
		return Result{Allowed: true}
	}

	key := counterKey(action, identity)
	count, ttl, err := l.counters.Incr(ctx, key, quota.Window)
	if err != nil {
		log.Warn().Err(err).
			Str("action", string(action)).
			Str("identity", identity).
			Msg("rate limit counter store unavailable, failing open")
		return Result{Allowed: true}
	}

	if count > quota.MaxAttempts {
		return Result{Allowed: false, RetryAfter: ttl}
	}
	return Result{Allowed: true}
}

func counterKey(action Action, identity string) string {
	return "ratelimit:" + string(action) + ":" + identity
}
