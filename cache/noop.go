package cache

import "context"

// Noop is a Cache that stores nothing. Useful for running the
// repositories store-only, and for validating that nothing depends on
// the cache for correctness.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string, out any) (bool, error) { return false, nil }

func (Noop) Set(ctx context.Context, key string, val any) error { return nil }

func (Noop) SetMany(ctx context.Context, entries map[string]any) error { return nil }

func (Noop) Del(ctx context.Context, keys ...string) error { return nil }
