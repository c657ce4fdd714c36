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

// ReviewService handles business logic for game reviews: one review per
// (user, game) pair, mutable only by its owner.
type ReviewService struct {
	reviews ReviewStore
	games   GameStore
}

func NewReviewService(reviews ReviewStore, games GameStore) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		games:   games,
	}
}

func validateReviewInput(rating float64, body string) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return apperrors.Validation("Rating must be between 0 and 10")
	}
	if strings.TrimSpace(body) == "" {
		return apperrors.Validation("Review body is required")
	}
	if len(body) > models.MaxReviewLength {
		return apperrors.Validation("Review body must be at most 1000 characters")
	}
	return nil
}

// CreateReview posts the caller's review for a game.
func (s *ReviewService) CreateReview(ctx context.Context, userID, gameID primitive.ObjectID, rating float64, body string) (*models.Review, error) {
	if err := validateReviewInput(rating, body); err != nil {
		return nil, err
	}

	if _, err := s.games.GetGameByID(ctx, gameID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up game: %w", err)
	}

	review, err := s.reviews.CreateReview(ctx, &models.Review{
		UserID: userID,
		GameID: gameID,
		Rating: rating,
		Body:   body,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// UpdateReview edits an existing review; only the owner may do so.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, actorID primitive.ObjectID, rating float64, body string) (*models.Review, error) {
	if err := validateReviewInput(rating, body); err != nil {
		return nil, err
	}

	review, err := s.getOwnedReview(ctx, reviewID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.reviews.UpdateReview(ctx, review.ID, rating, body); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	review.Rating = rating
	review.Body = body
	return review, nil
}

// DeleteReview removes a review; only the owner may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, actorID primitive.ObjectID) error {
	review, err := s.getOwnedReview(ctx, reviewID, actorID)
	if err != nil {
		return err
	}

	deleted, err := s.reviews.DeleteReview(ctx, review.ID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *ReviewService) getOwnedReview(ctx context.Context, reviewID, actorID primitive.ObjectID) (*models.Review, error) {
	review, err := s.reviews.GetReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up review: %w", err)
	}
	if review.UserID != actorID {
		return nil, apperrors.ErrForbidden
	}
	return review, nil
}

// GetReviewsByGame lists all reviews for a game.
func (s *ReviewService) GetReviewsByGame(ctx context.Context, gameID primitive.ObjectID) ([]models.Review, error) {
	if _, err := s.games.GetGameByID(ctx, gameID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up game: %w", err)
	}
	return s.reviews.GetReviewsByGame(ctx, gameID)
}

// GetReviewsByUser lists all reviews written by a user.
func (s *ReviewService) GetReviewsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	return s.reviews.GetReviewsByUser(ctx, userID)
}
