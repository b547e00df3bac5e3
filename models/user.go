package models

type User struct {
	UserID       string  `bson:"_id" json:"userId"`
	Email        string  `bson:"email" json:"email"`
	Username     string  `bson:"username" json:"username"`
	PasswordHash *string `bson:"passwordHash,omitempty" json:"-"`
	Bio          string  `bson:"bio" json:"bio"`
	Avatar       string  `bson:"avatar" json:"avatar"`
	IsAdmin      bool    `bson:"isAdmin" json:"isAdmin"`
	IsBanned     bool    `bson:"isBanned" json:"isBanned"`
	CreatedAt    int64   `bson:"createdAt" json:"createdAt"`
	UpdatedAt    int64   `bson:"updatedAt" json:"updatedAt"`
}
