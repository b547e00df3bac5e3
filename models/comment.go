package models

// Tombstone replaces the body of a soft-deleted comment. The comment
// keeps its id and tree position so reply threads stay navigable.
const Tombstone = "[deleted]"

// Comment belongs to a post and optionally nests under another comment.
type Comment struct {
	CommentID       string  `bson:"_id" json:"commentId"`
	PostID          string  `bson:"postId" json:"postId"`
	UserID          string  `bson:"userId" json:"userId"`
	Content         string  `bson:"content" json:"content"`
	ParentCommentID *string `bson:"parentCommentId" json:"parentCommentId"`
	Upvotes         int64   `bson:"upvotes" json:"upvotes"`
	Downvotes       int64   `bson:"downvotes" json:"downvotes"`
	CreatedAt       int64   `bson:"createdAt" json:"createdAt"`
	UpdatedAt       int64   `bson:"updatedAt" json:"updatedAt"`
	IsEdited        bool    `bson:"isEdited" json:"isEdited"`
	IsDeleted       bool    `bson:"isDeleted" json:"isDeleted"`
}
