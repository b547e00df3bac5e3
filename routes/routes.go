package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"forum/config"
	"forum/handlers"
	"forum/middleware"
	"forum/ratelimit"
)

// SetupRouter builds the full route table. Every content-mutating route
// passes through the rate-limit gate for its action kind before the
// handler runs.
func SetupRouter(cfg config.Config, gate *ratelimit.Gate) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	// Public routes
	router.POST("/api/signup", middleware.LoginRateLimit(gate), handlers.Signup)
	router.POST("/api/login", middleware.LoginRateLimit(gate), handlers.Login)
	router.GET("/api/vapid-public-key", handlers.GetVapidPublicKey)
	router.GET("/api/posts", handlers.ListPosts)
	router.GET("/api/posts/search", handlers.SearchPosts)
	router.GET("/api/posts/:postId", handlers.GetPost)
	router.GET("/api/posts/:postId/comments", handlers.ListComments)
	router.GET("/api/comments/:commentId", handlers.GetComment)
	router.GET("/api/comments/:commentId/replies", handlers.ListReplies)
	router.GET("/api/users/:userId/posts", handlers.GetUserPosts)

	// Protected routes
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))

	protected.GET("/me", handlers.GetMe)
	protected.PUT("/me", middleware.RateLimit(gate, ratelimit.ActionProfileUpdate), handlers.UpdateMe)
	protected.GET("/me/posts", handlers.GetMyPosts)
	protected.GET("/me/comments", handlers.GetMyComments)

	protected.POST("/posts", middleware.RateLimit(gate, ratelimit.ActionPostCreate), handlers.CreatePost)
	protected.PUT("/posts/:postId", middleware.RateLimit(gate, ratelimit.ActionPostUpdate), handlers.UpdatePost)
	protected.POST("/posts/:postId/vote", middleware.RateLimit(gate, ratelimit.ActionVote), handlers.VotePost)
	protected.DELETE("/posts/:postId", handlers.DeletePost)

	protected.POST("/comments", middleware.RateLimit(gate, ratelimit.ActionCommentCreate), handlers.CreateComment)
	protected.PUT("/comments/:commentId", middleware.RateLimit(gate, ratelimit.ActionCommentUpdate), handlers.UpdateComment)
	protected.POST("/comments/:commentId/vote", middleware.RateLimit(gate, ratelimit.ActionVote), handlers.VoteComment)
	protected.DELETE("/comments/:commentId", handlers.DeleteComment)

	protected.POST("/media/credentials", middleware.RateLimit(gate, ratelimit.ActionMediaUpload), handlers.GetUploadCredentials)
	protected.POST("/subscribe", handlers.SubscribePush)

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret), middleware.AdminOnly())

	admin.PATCH("/posts/:postId/pin", handlers.TogglePin)
	admin.PATCH("/posts/:postId/lock", handlers.ToggleLock)
	admin.DELETE("/posts/:postId", handlers.DeleteAnyPost)
	admin.DELETE("/comments/:commentId", handlers.HardDeleteComment)
	admin.PUT("/users/:userId/toggleban", handlers.ToggleBanUser)
	admin.GET("/dashboard/stats", handlers.DashboardStats)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
