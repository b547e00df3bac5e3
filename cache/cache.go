// Package cache abstracts the shared key-value cache used by the content
// repositories. The cache is a disposable projection of the document
// store: values placed here are never more authoritative than the store,
// and every caller must tolerate the cache being empty or unreachable.
package cache

import "context"

// Cache is the minimal surface the repositories need. Get reports
// whether the key was present; infrastructure errors are returned so
// callers can decide to fall through to the authoritative store.
type Cache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, val any) error
	SetMany(ctx context.Context, entries map[string]any) error
	Del(ctx context.Context, keys ...string) error
}

// Key builders, kept in one place so key shapes never drift apart.

func PostKey(id string) string { return "posts:" + id }

func CommentKey(id string) string { return "comments:" + id }
