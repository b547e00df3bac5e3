package repo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"forum/cache"
	"forum/models"
	"forum/storage"
)

// PostRepository provides cache-aside access to the posts collection.
type PostRepository struct {
	docs  storage.Documents
	cache cache.Cache
}

func NewPostRepository(docs storage.Documents, c cache.Cache) *PostRepository {
	return &PostRepository{docs: docs, cache: c}
}

// Create persists a new post and write-through populates the cache. On
// create no stale value can exist, so caching the fresh entity is safe.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.PostID == "" {
		post.PostID = primitive.NewObjectID().Hex()
	}
	now := time.Now().Unix()
	if post.CreatedAt == 0 {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.CommentIDs == nil {
		post.CommentIDs = []string{}
	}

	if err := r.docs.InsertOne(ctx, post); err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cache.PostKey(post.PostID), post); err != nil {
		log.Warn().Err(err).Str("postId", post.PostID).Msg("post cache set failed")
	}
	return post, nil
}

// FindByID returns the post, or (nil, nil) when it does not exist.
// Absence is never cached, so a later creation is visible immediately.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var cached models.Post
	hit, err := r.cache.Get(ctx, cache.PostKey(id), &cached)
	if err != nil {
		log.Debug().Err(err).Str("postId", id).Msg("post cache read failed, falling through")
	} else if hit {
		return &cached, nil
	}

	var post models.Post
	err = r.docs.FindOne(ctx, bson.M{"_id": id}, &post)
	if errors.Is(err, storage.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cache.PostKey(id), &post); err != nil {
		log.Debug().Err(err).Str("postId", id).Msg("post cache set failed")
	}
	return &post, nil
}

// List returns a page of all posts. sortBy defaults to createdAt and
// order to descending.
func (r *PostRepository) List(ctx context.Context, page, limit int64, sortBy string, order int) ([]models.Post, Pagination, error) {
	if sortBy == "" {
		sortBy = "createdAt"
	}
	if order != 1 {
		order = -1
	}
	return r.list(ctx, bson.M{}, bson.D{{Key: sortBy, Value: order}}, page, limit)
}

// ListByUser returns a page of one author's posts, newest first.
func (r *PostRepository) ListByUser(ctx context.Context, userID string, page, limit int64) ([]models.Post, Pagination, error) {
	return r.list(ctx, bson.M{"userId": userID},
		bson.D{{Key: "createdAt", Value: -1}}, page, limit)
}

// Search matches the query against titles and tags, case-insensitively.
func (r *PostRepository) Search(ctx context.Context, query string, page, limit int64) ([]models.Post, Pagination, error) {
	filter := bson.M{"$or": []bson.M{
		{"title": bson.M{"$regex": query, "$options": "i"}},
		{"tags": bson.M{"$regex": query, "$options": "i"}},
	}}
	return r.list(ctx, filter, bson.D{{Key: "createdAt", Value: -1}}, page, limit)
}

// list runs a filtered page query and batch-populates the per-item
// cache so subsequent FindByID calls for the returned posts hit.
func (r *PostRepository) list(ctx context.Context, filter bson.M, sort bson.D, page, limit int64) ([]models.Post, Pagination, error) {
	page, limit, skip := normalizePage(page, limit)

	var posts []models.Post
	opts := storage.FindOptions{Sort: sort, Skip: skip, Limit: limit}
	if err := r.docs.FindAll(ctx, filter, opts, &posts); err != nil {
		return nil, Pagination{}, err
	}

	total, err := r.docs.Count(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	if len(posts) > 0 {
		entries := make(map[string]any, len(posts))
		for i := range posts {
			entries[cache.PostKey(posts[i].PostID)] = posts[i]
		}
		if err := r.cache.SetMany(ctx, entries); err != nil {
			log.Debug().Err(err).Int("count", len(posts)).Msg("post cache batch set failed")
		}
	}

	return posts, newPagination(page, limit, total), nil
}

// Update applies the patch, invalidates the cached entry and returns
// the re-fetched post. Returns (nil, nil) when nothing matched or no
// field actually changed.
func (r *PostRepository) Update(ctx context.Context, id string, patch bson.M) (*models.Post, error) {
	patch["updatedAt"] = time.Now().Unix()

	modified, err := r.docs.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": patch})
	if err != nil {
		return nil, err
	}
	if modified == 0 {
		return nil, nil
	}

	r.invalidate(ctx, id)
	return r.FindByID(ctx, id)
}

func (r *PostRepository) Upvote(ctx context.Context, id string) (bool, error) {
	return r.incr(ctx, id, "upvotes", 1)
}

func (r *PostRepository) Downvote(ctx context.Context, id string) (bool, error) {
	return r.incr(ctx, id, "downvotes", 1)
}

func (r *PostRepository) IncrementViewCount(ctx context.Context, id string) (bool, error) {
	return r.incr(ctx, id, "viewCount", 1)
}

// incr is the atomic counter mutation. The store applies the increment;
// the cached entry is invalidated, not rewritten.
func (r *PostRepository) incr(ctx context.Context, id, field string, delta int64) (bool, error) {
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

func (r *PostRepository) TogglePin(ctx context.Context, id string) (bool, error) {
	return r.toggle(ctx, id, "isPinned")
}

func (r *PostRepository) ToggleLock(ctx context.Context, id string) (bool, error) {
	return r.toggle(ctx, id, "isLocked")
}

// toggle flips a boolean field in a single atomic store operation. The
// negation is computed server-side via an aggregation pipeline update,
// so concurrent toggles can never read the same prior value and
// collapse into one flip.
func (r *PostRepository) toggle(ctx context.Context, id, field string) (bool, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			field:       bson.M{"$not": "$" + field},
			"updatedAt": time.Now().Unix(),
		}}},
	}

	var post models.Post
	err := r.docs.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, &post)
	if errors.Is(err, storage.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	r.invalidate(ctx, id)
	return true, nil
}

// AttachComment records a comment id on the post. $addToSet keeps
// commentIds duplicate-free.
func (r *PostRepository) AttachComment(ctx context.Context, postID, commentID string) (bool, error) {
	modified, err := r.docs.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"commentIds": commentID}})
	if err != nil {
		return false, err
	}
	if modified == 0 {
		return false, nil
	}
	r.invalidate(ctx, postID)
	return true, nil
}

func (r *PostRepository) DetachComment(ctx context.Context, postID, commentID string) (bool, error) {
	modified, err := r.docs.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"commentIds": commentID}})
	if err != nil {
		return false, err
	}
	if modified == 0 {
		return false, nil
	}
	r.invalidate(ctx, postID)
	return true, nil
}

// Delete removes the post. The cache entry is invalidated even when the
// store reports no match, which self-heals a ghost cache entry.
func (r *PostRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.docs.DeleteOne(ctx, bson.M{"_id": id})
	r.invalidate(ctx, id)
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// Count reports the total number of posts, for dashboard stats.
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.Count(ctx, bson.M{})
}

func (r *PostRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Del(ctx, cache.PostKey(id)); err != nil {
		log.Warn().Err(err).Str("postId", id).Msg("post cache invalidation failed, bounded staleness until eviction")
	}
}
