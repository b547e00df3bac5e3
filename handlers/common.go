package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"forum/config"
	"forum/repo"
	"forum/storage"
)

// Shared handler state, wired once from main.
var (
	cfg      config.Config
	posts    *repo.PostRepository
	comments *repo.CommentRepository
	users    storage.Documents
	pushSubs storage.Documents
)

// Init wires the handler package to its collaborators.
func Init(c config.Config, p *repo.PostRepository, cm *repo.CommentRepository, u, ps storage.Documents) {
	cfg = c
	posts = p
	comments = cm
	users = u
	pushSubs = ps
}

// opContext bounds one store-facing operation.
func opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

// pageParams reads page/limit query parameters with defaults.
func pageParams(c *gin.Context) (int64, int64) {
	page := atoiDefault(c.Query("page"), 1)
	limit := atoiDefault(c.Query("limit"), 10)
	return page, limit
}

func atoiDefault(s string, def int64) int64 {
	if s == "" {
		return def
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return def
}
