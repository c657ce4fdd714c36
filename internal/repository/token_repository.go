package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/askarov/gamerater/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenRepository is the ledger for single-use tokens. One instance serves the
// email verification collection, another the password reset collection; the
// lifecycle rules are identical.
type TokenRepository struct {
	collection *mongo.Collection
}

// NewTokenRepository creates a token repository over the named collection.
func NewTokenRepository(db *mongo.Database, collection string) *TokenRepository {
	return &TokenRepository{
		collection: db.Collection(collection),
	}
}

// CreateToken inserts a new token document.
func (r *TokenRepository) CreateToken(ctx context.Context, token *models.Token) (*models.Token, error) {
	token.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert token")
		return nil, fmt.Errorf("failed to insert token: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	token.ID = insertedID

	return token, nil
}

// GetByToken looks a token up by its exact string.
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*models.Token, error) {
	var doc models.Token
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return &doc, nil
}

// DeleteByID removes a token document, consuming or expiring it.
func (r *TokenRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// ReplaceForUser upserts the single token a user may hold in this collection:
// a new request supersedes any outstanding token rather than accumulating.
func (r *TokenRepository) ReplaceForUser(ctx context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) (*models.Token, error) {
	doc := &models.Token{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	opts := options.FindOneAndReplace().SetUpsert(true).SetReturnDocument(options.After)
	err := r.collection.FindOneAndReplace(ctx, bson.M{"user": userID}, doc, opts).Decode(doc)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID.Hex(),
			"error":  err,
		}).Error("Failed to upsert token")
		return nil, fmt.Errorf("failed to upsert token: %w", err)
	}

	return doc, nil
}

// DeleteAllForUser removes every token belonging to a user. Part of the
// account deletion cascade; deleting zero documents is not an error.
func (r *TokenRepository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return fmt.Errorf("failed to delete tokens for user: %w", err)
	}
	return nil
}
