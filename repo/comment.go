package repo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"forum/cache"
	"forum/models"
	"forum/storage"
)

// CommentRepository provides cache-aside access to the comments
// collection. Same consistency contract as PostRepository: store first,
// invalidate after, repopulate only on the read path.
type CommentRepository struct {
	docs  storage.Documents
	cache cache.Cache
}

func NewCommentRepository(docs storage.Documents, c cache.Cache) *CommentRepository {
	return &CommentRepository{docs: docs, cache: c}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment.CommentID == "" {
		comment.CommentID = primitive.NewObjectID().Hex()
	}
	now := time.Now().Unix()
	if comment.CreatedAt == 0 {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now

	if err := r.docs.InsertOne(ctx, comment); err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cache.CommentKey(comment.CommentID), comment); err != nil {
		log.Warn().Err(err).Str("commentId", comment.CommentID).Msg("comment cache set failed")
	}
	return comment, nil
}

// FindByID returns the comment, or (nil, nil) when it does not exist.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var cached models.Comment
	hit, err := r.cache.Get(ctx, cache.CommentKey(id), &cached)
	if err != nil {
		log.Debug().Err(err).Str("commentId", id).Msg("comment cache read failed, falling through")
	} else if hit {
		return &cached, nil
	}

	var comment models.Comment
	err = r.docs.FindOne(ctx, bson.M{"_id": id}, &comment)
	if errors.Is(err, storage.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cache.CommentKey(id), &comment); err != nil {
		log.Debug().Err(err).Str("commentId", id).Msg("comment cache set failed")
	}
	return &comment, nil
}

// ListByPost returns a page of a post's top-level comments, newest
// first. Soft-deleted comments are excluded from top-level listings.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string, page, limit int64) ([]models.Comment, Pagination, error) {
	filter := bson.M{"postId": postID, "parentCommentId": nil, "isDeleted": false}
	return r.list(ctx, filter, bson.D{{Key: "createdAt", Value: -1}}, page, limit)
}

// ListReplies returns a page of replies to one comment, oldest first so
// threads read top to bottom.
func (r *CommentRepository) ListReplies(ctx context.Context, parentCommentID string, page, limit int64) ([]models.Comment, Pagination, error) {
	filter := bson.M{"parentCommentId": parentCommentID, "isDeleted": false}
	return r.list(ctx, filter, bson.D{{Key: "createdAt", Value: 1}}, page, limit)
}

// ListByUser returns a page of one author's comments, newest first.
func (r *CommentRepository) ListByUser(ctx context.Context, userID string, page, limit int64) ([]models.Comment, Pagination, error) {
	filter := bson.M{"userId": userID, "isDeleted": false}
	return r.list(ctx, filter, bson.D{{Key: "createdAt", Value: -1}}, page, limit)
}

func (r *CommentRepository) list(ctx context.Context, filter bson.M, sort bson.D, page, limit int64) ([]models.Comment, Pagination, error) {
	page, limit, skip := normalizePage(page, limit)

	var comments []models.Comment
	opts := storage.FindOptions{Sort: sort, Skip: skip, Limit: limit}
	if err := r.docs.FindAll(ctx, filter, opts, &comments); err != nil {
		return nil, Pagination{}, err
	}

	total, err := r.docs.Count(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	if len(comments) > 0 {
		entries := make(map[string]any, len(comments))
		for i := range comments {
			entries[cache.CommentKey(comments[i].CommentID)] = comments[i]
		}
		if err := r.cache.SetMany(ctx, entries); err != nil {
			log.Debug().Err(err).Int("count", len(comments)).Msg("comment cache batch set failed")
		}
	}

	return comments, newPagination(page, limit, total), nil
}

// Update replaces the comment body and marks it edited. Returns
// (nil, nil) when nothing matched or nothing changed.
func (r *CommentRepository) Update(ctx context.Context, id, content string) (*models.Comment, error) {
	update := bson.M{"$set": bson.M{
		"content":   content,
		"updatedAt": time.Now().Unix(),
		"isEdited":  true,
	}}

	modified, err := r.docs.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, err
	}
	if modified == 0 {
		return nil, nil
	}

	r.invalidate(ctx, id)
	return r.FindByID(ctx, id)
}

func (r *CommentRepository) Upvote(ctx context.Context, id string) (bool, error) {
	return r.incr(ctx, id, "upvotes", 1)
}

func (r *CommentRepository) Downvote(ctx context.Context, id string) (bool, error) {
	return r.incr(ctx, id, "downvotes", 1)
}

func (r *CommentRepository) incr(ctx context.Context, id, field string, delta int64) (bool, error) {
	modified, err := r.docs.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return false, err
	}
	if modified == 0 {
		return false, nil
	}
	r.invalidate(ctx, id)
	return true, nil
}

// SoftDelete tombstones the comment: the body is erased but the id and
// tree position survive so replies stay attached.
func (r *CommentRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	update := bson.M{"$set": bson.M{
		"isDeleted": true,
		"content":   models.Tombstone,
		"updatedAt": time.Now().Unix(),
	}}

	modified, err := r.docs.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return false, err
	}
	if modified == 0 {
		return false, nil
	}
	r.invalidate(ctx, id)
	return true, nil
}

// HardDelete permanently removes the comment. The caller is responsible
// for detaching the id from the parent post.
func (r *CommentRepository) HardDelete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.docs.DeleteOne(ctx, bson.M{"_id": id})
	r.invalidate(ctx, id)
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// DeleteByPost removes every comment under a post. The ids are
// enumerated first because the bulk delete cannot report which cache
// keys existed; each entry is then invalidated individually.
func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	var comments []models.Comment
	if err := r.docs.FindAll(ctx, bson.M{"postId": postID}, storage.FindOptions{}, &comments); err != nil {
		return 0, err
	}

	deleted, err := r.docs.DeleteMany(ctx, bson.M{"postId": postID})
	if err != nil {
		return 0, err
	}

	for i := range comments {
		r.invalidate(ctx, comments[i].CommentID)
	}
	return deleted, nil
}

// CountByPost reports the number of live comments on a post.
func (r *CommentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	return r.docs.Count(ctx, bson.M{"postId": postID, "isDeleted": false})
}

// CountReplies reports the number of live replies to a comment.
func (r *CommentRepository) CountReplies(ctx context.Context, parentCommentID string) (int64, error) {
	return r.docs.Count(ctx, bson.M{"parentCommentId": parentCommentID, "isDeleted": false})
}

// Count reports the total number of comments, for dashboard stats.
func (r *CommentRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.Count(ctx, bson.M{})
}

func (r *CommentRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Del(ctx, cache.CommentKey(id)); err != nil {
		log.Warn().Err(err).Str("commentId", id).Msg("comment cache invalidation failed, bounded staleness until eviction")
	}
}
