package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"forum/cache"
	"forum/models"
)

func newComment(id, postID, userID, content string) *models.Comment {
	return &models.Comment{CommentID: id, PostID: postID, UserID: userID, Content: content}
}

func newReply(id, postID, parentID, content string) *models.Comment {
	c := newComment(id, postID, "u1", content)
	c.ParentCommentID = &parentID
	return c
}

func TestCommentSoftDeleteTombstone(t *testing.T) {
	ctx := context.Background()
	fd, fc := newFakeDocs(), newFakeCache()
	r := NewCommentRepository(fd, fc)

	_, err := r.Create(ctx, newComment("c1", "p1", "u1", "hot take"))
	require.NoError(t, err)

	ok, err := r.SoftDelete(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)

	// The comment keeps its id and tree position; only the body is gone.
	got, err := r.FindByID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.IsDeleted)
	require.Equal(t, models.Tombstone, got.Content)
	require.Equal(t, "p1", got.PostID)

	comments, _, err := r.ListByPost(ctx, "p1", 1, 10)
	require.NoError(t, err)
	require.Empty(t, comments, "soft-deleted comments are excluded from listings")
}

func TestCommentSoftDeleteKeepsRepliesAttached(t *testing.T) {
	ctx := context.Background()
	fd := newFakeDocs()
	r := NewCommentRepository(fd, newFakeCache())

	_, err := r.Create(ctx, newComment("c1", "p1", "u1", "parent"))
	require.NoError(t, err)
	_, err = r.Create(ctx, newReply("c2", "p1", "c1", "child"))
	require.NoError(t, err)

	ok, err := r.SoftDelete(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)

	replies, _, err := r.ListReplies(ctx, "c1", 1, 10)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.Equal(t, "child", replies[0].Content)
}

func TestCommentUpdateMarksEdited(t *testing.T) {
	ctx := context.Background()
	fd, fc := newFakeDocs(), newFakeCache()
	r := NewCommentRepository(fd, fc)

	_, err := r.Create(ctx, newComment("c1", "p1", "u1", "draft"))
	require.NoError(t, err)

	updated, err := r.Update(ctx, "c1", "final")
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "final", updated.Content)
	require.True(t, updated.IsEdited)

	got, err := r.FindByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "final", got.Content, "no read may observe the pre-update body")
}

func TestCommentListByPostTopLevelOnly(t *testing.T) {
	ctx := context.Background()
	fd := newFakeDocs()
	r := NewCommentRepository(fd, newFakeCache())

	for _, c := range []*models.Comment{
		{CommentID: "c1", PostID: "p1", UserID: "u1", Content: "first", CreatedAt: 100},
		{CommentID: "c2", PostID: "p1", UserID: "u2", Content: "second", CreatedAt: 200},
	} {
		_, err := r.Create(ctx, c)
		require.NoError(t, err)
	}
	_, err := r.Create(ctx, newReply("c3", "p1", "c1", "a reply"))
	require.NoError(t, err)
	_, err = r.Create(ctx, newComment("c4", "p2", "u1", "other thread"))
	require.NoError(t, err)

	comments, pg, err := r.ListByPost(ctx, "p1", 1, 10)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "second", comments[0].Content, "top-level comments list newest first")
	require.Equal(t, int64(2), pg.Total)
}

func TestCommentListRepliesOldestFirst(t *testing.T) {
	ctx := context.Background()
	fd := newFakeDocs()
	r := NewCommentRepository(fd, newFakeCache())

	_, err := r.Create(ctx, newComment("c1", "p1", "u1", "parent"))
	require.NoError(t, err)

	first := newReply("c2", "p1", "c1", "earlier")
	first.CreatedAt = 100
	second := newReply("c3", "p1", "c1", "later")
	second.CreatedAt = 200
	for _, c := range []*models.Comment{second, first} {
		_, err := r.Create(ctx, c)
		require.NoError(t, err)
	}

	replies, _, err := r.ListReplies(ctx, "c1", 1, 10)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	require.Equal(t, "earlier", replies[0].Content, "threads read top to bottom")
	require.Equal(t, "later", replies[1].Content)
}

func TestCommentListBatchPopulatesCache(t *testing.T) {
	ctx := context.Background()
	fd, fc := newFakeDocs(), newFakeCache()
	r := NewCommentRepository(fd, fc)

	for i, id := range []string{"c1", "c2", "c3"} {
		c := newComment(id, "p1", "u1", "body")
		c.CreatedAt = int64(i + 1)
		require.NoError(t, fd.InsertOne(ctx, c))
	}

	comments, _, err := r.ListByPost(ctx, "p1", 1, 10)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	for _, id := range []string{"c1", "c2", "c3"} {
		got, err := r.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got)
	}
	require.Equal(t, 0, fd.findOneCalls, "listed comments must be served from cache afterwards")
}

func TestCommentVoteCounters(t *testing.T) {
	ctx := context.Background()
	fd, fc := newFakeDocs(), newFakeCache()
	r := NewCommentRepository(fd, fc)

	_, err := r.Create(ctx, newComment("c1", "p1", "u1", "vote on me"))
	require.NoError(t, err)

	ok, err := r.Upvote(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, fc.has(cache.CommentKey("c1")))

	ok, err = r.Downvote(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := r.FindByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Upvotes)
	require.Equal(t, int64(1), got.Downvotes)

	ok, err = r.Upvote(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCommentDeleteByPostCascades(t *testing.T) {
	ctx := context.Background()
	fd, fc := newFakeDocs(), newFakeCache()
	r := NewCommentRepository(fd, fc)

	_, err := r.Create(ctx, newComment("c1", "p1", "u1", "top"))
	require.NoError(t, err)
	_, err = r.Create(ctx, newReply("c2", "p1", "c1", "reply one"))
	require.NoError(t, err)
	_, err = r.Create(ctx, newReply("c3", "p1", "c1", "reply two"))
	require.NoError(t, err)
	_, err = r.Create(ctx, newComment("c4", "p2", "u1", "unrelated"))
	require.NoError(t, err)

	deleted, err := r.DeleteByPost(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(3), deleted)

	// Store and cache are both clean for the cascade, the other thread
	// is untouched.
	for _, id := range []string{"c1", "c2", "c3"} {
		got, err := r.FindByID(ctx, id)
		require.NoError(t, err)
		require.Nil(t, got)
		require.False(t, fc.has(cache.CommentKey(id)))
	}
	got, err := r.FindByID(ctx, "c4")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCommentHardDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()
	fd, fc := newFakeDocs(), newFakeCache()
	r := NewCommentRepository(fd, fc)

	_, err := r.Create(ctx, newComment("c1", "p1", "u1", "gone for good"))
	require.NoError(t, err)

	ok, err := r.HardDelete(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, fc.has(cache.CommentKey("c1")))

	got, err := r.FindByID(ctx, "c1")
	require.NoError(t, err)
	require.Nil(t, got)

	ok, err = r.HardDelete(ctx, "c1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCommentCounts(t *testing.T) {
	ctx := context.Background()
	fd := newFakeDocs()
	r := NewCommentRepository(fd, newFakeCache())

	_, err := r.Create(ctx, newComment("c1", "p1", "u1", "top"))
	require.NoError(t, err)
	_, err = r.Create(ctx, newReply("c2", "p1", "c1", "reply"))
	require.NoError(t, err)
	_, err = r.Create(ctx, newComment("c3", "p1", "u2", "soon deleted"))
	require.NoError(t, err)

	_, err = r.SoftDelete(ctx, "c3")
	require.NoError(t, err)

	n, err := r.CountByPost(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(2), n, "tombstoned comments do not count")

	n, err = r.CountReplies(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = r.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), n, "the raw total includes tombstones")
}
