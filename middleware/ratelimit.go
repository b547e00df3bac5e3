package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forum/ratelimit"
)

// RateLimit admits or throttles a request through the gate before the
// handler runs. Identity comes from the auth middleware; a denial is
// surfaced as 429 with a Retry-After hint.
func RateLimit(gate *ratelimit.Gate, action ratelimit.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		decide(c, gate, c.GetString("userId"), action)
	}
}

// LoginRateLimit throttles pre-authentication login attempts. With no
// principal available yet, the identity falls back through the client
// address and the forwarded-origin header so anonymous attempts still
// share a stable-enough counter.
func LoginRateLimit(gate *ratelimit.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := ratelimit.LoginIdentity(
			c.GetString("userId"),
			c.ClientIP(),
			c.GetHeader("X-Forwarded-For"),
		)
		decide(c, gate, identity, ratelimit.ActionLogin)
	}
}

func decide(c *gin.Context, gate *ratelimit.Gate, identity string, action ratelimit.Action) {
	decision := gate.Admit(c.Request.Context(), identity, action)
	switch decision.Verdict {
	case ratelimit.VerdictReject:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		c.Abort()
	case ratelimit.VerdictDeny:
		retryAfter := int64(decision.RetryAfter.Seconds())
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      "Too many requests. Please try again later.",
			"retryAfter": retryAfter,
		})
		c.Abort()
	default:
		c.Next()
	}
}
