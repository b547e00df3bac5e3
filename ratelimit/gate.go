package ratelimit

import (
	"context"
	"strings"
	"time"
)

// Verdict is the tri-state outcome of an admission check.
type Verdict int

const (
	// VerdictAllow admits the action.
	VerdictAllow Verdict = iota
	// VerdictDeny throttles the action; RetryAfter carries the hint.
	VerdictDeny
	// VerdictReject refuses the action without consulting the limiter,
	// e.g. when the required identity is missing.
	VerdictReject
)

// Decision is what the Gate hands back to request-handling code.
type Decision struct {
	Verdict    Verdict
	RetryAfter time.Duration
	Reason     string
}

// Gate is the admission check that runs ahead of content-mutating
// operations. It owns the identity-required policy; the throttling
// itself is delegated to the Limiter.
type Gate struct {
	limiter *Limiter
}

func NewGate(limiter *Limiter) *Gate {
	return &Gate{limiter: limiter}
}

// Admit decides whether identity may perform action right now. Every
// action except login requires an identity; login falls back to a
// shared key so fully anonymous attempts are still throttled together.
func (g *Gate) Admit(ctx context.Context, identity string, action Action) Decision {
	if identity == "" {
		if action != ActionLogin {
			return Decision{Verdict: VerdictReject, Reason: "identity required"}
		}
		identity = anonymousKey
	}

	res := g.limiter.Check(ctx, identity, action)
	if !res.Allowed {
		return Decision{Verdict: VerdictDeny, RetryAfter: res.RetryAfter}
	}
	return Decision{Verdict: VerdictAllow}
}

// anonymousKey is the shared fallback counter for login attempts where
// no proxy identity resolves at all. Precision is traded away so that
// such traffic is still bounded.
const anonymousKey = "unknown"

// LoginIdentity resolves the throttling key for pre-authentication
// login attempts: the authenticated principal when present, else the
// network origin address, else the first hop of a proxy-forwarded
// origin header, else the shared fallback key.
func LoginIdentity(principal, remoteAddr, forwardedFor string) string {
	if principal != "" {
		return principal
	}
	if remoteAddr != "" {
		return remoteAddr
	}
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return anonymousKey
}
