package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBioLength bounds the free-text bio field.
const MaxBioLength = 300

// User represents an account in the catalog. Following and Followers are
// mirrored sets: if A appears in B's followers, B appears in A's following.
// Storage does not enforce that symmetry; the social service maintains it.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	HashedPassword string               `bson:"hashed_password" json:"-"`
	IsVerified     bool                 `bson:"is_verified" json:"is_verified"`
	Bio            string               `bson:"bio" json:"bio"`
	Playlist       []primitive.ObjectID `bson:"playlist" json:"playlist"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the user shape exposed to other accounts (search results,
// follower listings).
type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Bio      string             `json:"bio"`
}

// Public strips everything another account has no business seeing.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Bio:      u.Bio,
	}
}

// UserSummary is the shape returned next to a freshly issued session token.
type UserSummary struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
