package models

// Post is a top-level forum thread. CommentIDs has set semantics and
// only ever references comments that still exist in the store.
type Post struct {
	PostID     string   `bson:"_id" json:"postId"`
	UserID     string   `bson:"userId" json:"userId"`
	Title      string   `bson:"title" json:"title"`
	Content    string   `bson:"content" json:"content"`
	Tags       []string `bson:"tags" json:"tags"`
	Upvotes    int64    `bson:"upvotes" json:"upvotes"`
	Downvotes  int64    `bson:"downvotes" json:"downvotes"`
	CommentIDs []string `bson:"commentIds" json:"commentIds"`
	CreatedAt  int64    `bson:"createdAt" json:"createdAt"`
	UpdatedAt  int64    `bson:"updatedAt" json:"updatedAt"`
	IsPinned   bool     `bson:"isPinned" json:"isPinned"`
	IsLocked   bool     `bson:"isLocked" json:"isLocked"`
	ViewCount  int64    `bson:"viewCount" json:"viewCount"`
}
