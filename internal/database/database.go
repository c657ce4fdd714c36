package database

import (
	"context"
	"fmt"
	"time"

	"github.com/askarov/gamerater/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes the MongoDB connection and verifies it with a ping.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %v", err)
	}

	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the unique indexes the application relies on:
// identity uniqueness, token lookup, one reset token per user and one review
// per (user, game) pair. Duplicate-key failures at write time are the backstop
// for racy pre-checks.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("failed to create user indexes: %v", err)
	}

	tokenIndex := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection("email_tokens").Indexes().CreateMany(ctx, tokenIndex); err != nil {
		return fmt.Errorf("failed to create email token indexes: %v", err)
	}

	resetIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection("reset_tokens").Indexes().CreateMany(ctx, resetIndexes); err != nil {
		return fmt.Errorf("failed to create reset token indexes: %v", err)
	}

	reviewIndex := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "game", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection("reviews").Indexes().CreateMany(ctx, reviewIndex); err != nil {
		return fmt.Errorf("failed to create review indexes: %v", err)
	}

	gameIndex := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection("games").Indexes().CreateMany(ctx, gameIndex); err != nil {
		return fmt.Errorf("failed to create game indexes: %v", err)
	}

	return nil
}
