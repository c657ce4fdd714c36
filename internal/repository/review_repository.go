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
)

// ReviewRepository handles database operations for game reviews.
type ReviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection("reviews"),
	}
}

// CreateReview inserts a review. The unique (user, game) index rejects a
// second review for the same pair; callers detect that with
// mongo.IsDuplicateKeyError.
func (r *ReviewRepository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert review")
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	review.ID = insertedID

	return review, nil
}

// GetReviewByID retrieves a single review.
func (r *ReviewRepository) GetReviewByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

// UpdateReview sets the rating and body of an existing review.
func (r *ReviewRepository) UpdateReview(ctx context.Context, id primitive.ObjectID, rating float64, body string) error {
	update := bson.M{"$set": bson.M{
		"rating":     rating,
		"body":       body,
		"updated_at": time.Now(),
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

// DeleteReview removes a review and reports whether it existed.
func (r *ReviewRepository) DeleteReview(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete review: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteAllForUser removes every review owned by a user. Part of the account
// deletion cascade.
func (r *ReviewRepository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return fmt.Errorf("failed to delete reviews for user: %w", err)
	}
	return nil
}

// GetReviewsByGame lists all reviews for a game.
func (r *ReviewRepository) GetReviewsByGame(ctx context.Context, gameID primitive.ObjectID) ([]models.Review, error) {
	return r.find(ctx, bson.M{"game": gameID})
}

// GetReviewsByUser lists all reviews written by a user.
func (r *ReviewRepository) GetReviewsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]models.Review, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, fmt.Errorf("failed to decode review: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}
