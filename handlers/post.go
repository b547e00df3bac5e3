package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"forum/models"
)

type CreatePostRequest struct {
	Title   string   `json:"title" binding:"required,max=300"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

func CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	post, err := posts.Create(ctx, &models.Post{
		UserID:  c.GetString("userId"),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		log.Error().Err(err).Msg("create post failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

func GetPost(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("postId")
	post, err := posts.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// Best effort; a lost view increment is not worth failing the read.
	if _, err := posts.IncrementViewCount(ctx, id); err != nil {
		log.Debug().Err(err).Str("postId", id).Msg("view count increment failed")
	}

	c.JSON(http.StatusOK, post)
}

func ListPosts(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := pageParams(c)
	order := -1
	if c.Query("order") == "asc" {
		order = 1
	}

	items, pagination, err := posts.List(ctx, page, limit, c.Query("sortBy"), order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items, "pagination": pagination})
}

func SearchPosts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query"})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := pageParams(c)
	items, pagination, err := posts.Search(ctx, query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items, "pagination": pagination})
}

func GetUserPosts(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := pageParams(c)
	items, pagination, err := posts.ListByUser(ctx, c.Param("userId"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items, "pagination": pagination})
}

func GetMyPosts(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := pageParams(c)
	items, pagination, err := posts.ListByUser(ctx, c.GetString("userId"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": items, "pagination": pagination})
}

type UpdatePostRequest struct {
	Title   string   `json:"title" binding:"omitempty,max=300"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func UpdatePost(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("postId")
	post, err := posts.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.UserID != c.GetString("userId") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the post author"})
		return
	}

	patch := bson.M{}
	if req.Title != "" {
		patch["title"] = req.Title
	}
	if req.Content != "" {
		patch["content"] = req.Content
	}
	if req.Tags != nil {
		patch["tags"] = req.Tags
	}
	if len(patch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	updated, err := posts.Update(ctx, id, patch)
	if err != nil {
		log.Error().Err(err).Str("postId", id).Msg("update post failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No changes applied", "post": post})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "post": updated})
}

type VoteRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

func VotePost(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("postId")
	var ok bool
	var err error
	if req.Direction == "up" {
		ok, err = posts.Upvote(ctx, id)
	} else {
		ok, err = posts.Downvote(ctx, id)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded"})
}

// DeletePost removes the author's own post and cascades to all of its
// comments.
func DeletePost(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	id := c.Param("postId")
	post, err := posts.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.UserID != c.GetString("userId") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the post author"})
		return
	}

	removed, err := comments.DeleteByPost(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("postId", id).Msg("cascade comment delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	if _, err := posts.Delete(ctx, id); err != nil {
		log.Error().Err(err).Str("postId", id).Msg("post delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Post deleted successfully",
		"commentsRemoved": removed,
	})
}
