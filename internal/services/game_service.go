package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/askarov/gamerater/internal/apperrors"
	"github.com/askarov/gamerater/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GameService handles the thin catalog operations.
type GameService struct {
	games GameStore
}

func NewGameService(games GameStore) *GameService {
	return &GameService{games: games}
}

func (s *GameService) CreateGame(ctx context.Context, game *models.Game) (*models.Game, error) {
	game.Title = strings.TrimSpace(game.Title)
	if game.Title == "" {
		return nil, apperrors.Validation("Title is required")
	}
	if strings.TrimSpace(game.Description) == "" {
		return nil, apperrors.Validation("Description is required")
	}
	if game.ReleaseYear != 0 && game.ReleaseYear < models.EarliestReleaseYear {
		return nil, apperrors.Validation("Release year must be 1948 or later")
	}

	created, err := s.games.CreateGame(ctx, game)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Validation("A game with this title already exists")
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return created, nil
}

func (s *GameService) GetGame(ctx context.Context, id string) (*models.Game, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid game ID")
	}

	game, err := s.games.GetGameByID(ctx, objID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

func (s *GameService) SearchGames(ctx context.Context, title string) ([]models.Game, error) {
	games, err := s.games.SearchGames(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	return games, nil
}
