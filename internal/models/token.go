package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token is a single-use, time-bounded capability bound to one user. The same
// document shape backs both email verification tokens and password reset
// tokens; they live in separate collections.
//
// A token is only ever Active (now before ExpiresAt) or gone: successful use
// and expiry detection both delete the document, so a token string can never
// be replayed.
type Token struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Token     string             `bson:"token" json:"token"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Expired reports whether the token's validity window has passed.
func (t *Token) Expired() bool {
	return !time.Now().Before(t.ExpiresAt)
}
