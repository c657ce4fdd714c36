package services

import (
	"context"
	"time"

	"github.com/askarov/gamerater/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The store interfaces cover exactly what the services consume from the
// repository layer. The mongo-backed repositories in internal/repository
// satisfy them; tests substitute in-memory fakes.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) (bool, error)

	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error)
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error)
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error)
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error)
	RemoveUserFromAllGraphs(ctx context.Context, userID primitive.ObjectID) error

	AddToPlaylist(ctx context.Context, userID, gameID primitive.ObjectID) (bool, error)
	RemoveFromPlaylist(ctx context.Context, userID, gameID primitive.ObjectID) (bool, error)

	SearchUsers(ctx context.Context, username string) ([]models.User, error)
}

type TokenStore interface {
	CreateToken(ctx context.Context, token *models.Token) (*models.Token, error)
	GetByToken(ctx context.Context, token string) (*models.Token, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	ReplaceForUser(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) (*models.Token, error)
	DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error
}

type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	GetReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, rating float64, body string) error
	DeleteReview(ctx context.Context, id primitive.ObjectID) (bool, error)
	DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error
	GetReviewsByGame(ctx context.Context, gameID primitive.ObjectID) ([]models.Review, error)
	GetReviewsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error)
}

type GameStore interface {
	CreateGame(ctx context.Context, game *models.Game) (*models.Game, error)
	GetGameByID(ctx context.Context, id primitive.ObjectID) (*models.Game, error)
	SearchGames(ctx context.Context, title string) ([]models.Game, error)
}
