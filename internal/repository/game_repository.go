package repository

import (
	"context"
	"fmt"

	"github.com/askarov/gamerater/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GameRepository handles database operations for the game catalog.
type GameRepository struct {
	collection *mongo.Collection
}

func NewGameRepository(db *mongo.Database) *GameRepository {
	return &GameRepository{
		collection: db.Collection("games"),
	}
}

func (r *GameRepository) CreateGame(ctx context.Context, game *models.Game) (*models.Game, error) {
	result, err := r.collection.InsertOne(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	game.ID = insertedID

	return game, nil
}

func (r *GameRepository) GetGameByID(ctx context.Context, id primitive.ObjectID) (*models.Game, error) {
	var game models.Game
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
	if err != nil {
		return nil, fmt.Errorf("failed to find game: %w", err)
	}
	return &game, nil
}

// SearchGames finds games whose title matches the query, case-insensitive,
// sorted alphabetically. An empty query returns the whole catalog.
func (r *GameRepository) SearchGames(ctx context.Context, title string) ([]models.Game, error) {
	filter := bson.M{}
	if title != "" {
		filter["title"] = bson.M{"$regex": title, "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	defer cursor.Close(ctx)

	var games []models.Game
	for cursor.Next(ctx) {
		var game models.Game
		if err := cursor.Decode(&game); err != nil {
			return nil, fmt.Errorf("failed to decode game: %w", err)
		}
		games = append(games, game)
	}

	return games, nil
}
