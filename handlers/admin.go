package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"forum/models"
	"forum/storage"
)

// TogglePin flips a post's pinned flag atomically.
func TogglePin(c *gin.Context) {
	toggleAdminFlag(c, "pin")
}

// ToggleLock flips a post's locked flag atomically. Locked posts refuse
// new comments.
func ToggleLock(c *gin.Context) {
	toggleAdminFlag(c, "lock")
}

func toggleAdminFlag(c *gin.Context, which string) {
	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("postId")
	var ok bool
	var err error
	if which == "pin" {
		ok, err = posts.TogglePin(ctx, id)
	} else {
		ok, err = posts.ToggleLock(ctx, id)
	}
	if err != nil {
		log.Error().Err(err).Str("postId", id).Str("flag", which).Msg("flag toggle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle " + which})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post " + which + " toggled"})
}

// DeleteAnyPost removes any post regardless of author, cascading to its
// comments.
func DeleteAnyPost(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("postId")
	removed, err := comments.DeleteByPost(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("postId", id).Msg("cascade comment delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	ok, err := posts.Delete(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("postId", id).Msg("post delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Post deleted",
		"commentsRemoved": removed,
	})
}

// HardDeleteComment permanently removes a comment and detaches it from
// its post, so no dangling comment id survives.
func HardDeleteComment(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("commentId")
	comment, err := comments.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if _, err := posts.DetachComment(ctx, comment.PostID, id); err != nil {
		log.Error().Err(err).Str("commentId", id).Msg("comment detach failed")
	}

	if _, err := comments.HardDelete(ctx, id); err != nil {
		log.Error().Err(err).Str("commentId", id).Msg("hard delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment removed"})
}

// ToggleBanUser flips a user's banned flag atomically, same pipeline
// trick as the post flags.
func ToggleBanUser(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("userId")
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"isBanned":  bson.M{"$not": "$isBanned"},
			"updatedAt": time.Now().Unix(),
		}}},
	}

	var user models.User
	err := users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, &user)
	if errors.Is(err, storage.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("userId", id).Msg("ban toggle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle ban"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Ban toggled",
		"userId":   user.UserID,
		"isBanned": user.IsBanned,
	})
}

// DashboardStats reports entity counts for the admin dashboard.
func DashboardStats(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	postCount, err := posts.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	commentCount, err := comments.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	userCount, err := users.Count(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":    postCount,
		"comments": commentCount,
		"users":    userCount,
	})
}
