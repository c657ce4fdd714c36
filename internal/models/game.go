package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EarliestReleaseYear is the first year a video game was released to the
// public.
const EarliestReleaseYear = 1948

// Game is a catalog entry users can review and add to their playlist.
type Game struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	ReleaseYear   int                `bson:"release_year,omitempty" json:"release_year,omitempty"`
	CoverURL      string             `bson:"cover_url,omitempty" json:"cover_url,omitempty"`
	MainDeveloper string             `bson:"main_developer,omitempty" json:"main_developer,omitempty"`
	Publisher     string             `bson:"publisher,omitempty" json:"publisher,omitempty"`
	Genres        []string           `bson:"genres,omitempty" json:"genres,omitempty"`
	Platforms     []string           `bson:"platforms,omitempty" json:"platforms,omitempty"`
}
