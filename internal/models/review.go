package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating       = 0
	MaxRating       = 10
	MaxReviewLength = 1000
)

// Review holds one rating and text per (user, game) pair.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	GameID    primitive.ObjectID `bson:"game" json:"game"`
	Rating    float64            `bson:"rating" json:"rating"`
	Body      string             `bson:"body" json:"body"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
