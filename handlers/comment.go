package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"forum/models"
)

type CreateCommentRequest struct {
	PostID          string `json:"postId" binding:"required"`
	Content         string `json:"content" binding:"required"`
	ParentCommentID string `json:"parentCommentId"`
}

func CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	post, err := posts.FindByID(ctx, req.PostID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.IsLocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "Post is locked"})
		return
	}

	comment := &models.Comment{
		PostID:  req.PostID,
		UserID:  c.GetString("userId"),
		Content: req.Content,
	}

	if req.ParentCommentID != "" {
		parent, err := comments.FindByID(ctx, req.ParentCommentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch parent comment"})
			return
		}
		if parent == nil || parent.PostID != req.PostID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent comment"})
			return
		}
		comment.ParentCommentID = &req.ParentCommentID
	}

	created, err := comments.Create(ctx, comment)
	if err != nil {
		log.Error().Err(err).Msg("create comment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	if _, err := posts.AttachComment(ctx, req.PostID, created.CommentID); err != nil {
		log.Error().Err(err).Str("postId", req.PostID).Msg("comment attach failed")
	}

	if post.UserID != created.UserID {
		go notifyUser(post.UserID, "New comment on your post", post.Title)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": created,
	})
}

func GetComment(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	comment, err := comments.FindByID(ctx, c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

func ListComments(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := pageParams(c)
	items, pagination, err := comments.ListByPost(ctx, c.Param("postId"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": items, "pagination": pagination})
}

func ListReplies(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := pageParams(c)
	items, pagination, err := comments.ListReplies(ctx, c.Param("commentId"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch replies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"replies": items, "pagination": pagination})
}

func GetMyComments(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := pageParams(c)
	items, pagination, err := comments.ListByUser(ctx, c.GetString("userId"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": items, "pagination": pagination})
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func UpdateComment(c *gin.Context) {
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("commentId")
	comment, err := comments.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		return
	}
	if comment == nil || comment.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if comment.UserID != c.GetString("userId") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the comment author"})
		return
	}

	updated, err := comments.Update(ctx, id, req.Content)
	if err != nil {
		log.Error().Err(err).Str("commentId", id).Msg("update comment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No changes applied", "comment": comment})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully", "comment": updated})
}

func VoteComment(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("commentId")
	var ok bool
	var err error
	if req.Direction == "up" {
		ok, err = comments.Upvote(ctx, id)
	} else {
		ok, err = comments.Downvote(ctx, id)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded"})
}

// DeleteComment soft-deletes the author's own comment: the body becomes
// a tombstone but replies stay attached.
func DeleteComment(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("commentId")
	comment, err := comments.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		return
	}
	if comment == nil || comment.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if comment.UserID != c.GetString("userId") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the comment author"})
		return
	}

	if _, err := comments.SoftDelete(ctx, id); err != nil {
		log.Error().Err(err).Str("commentId", id).Msg("soft delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
