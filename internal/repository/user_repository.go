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

// UserRepository handles database operations related to users: credentials,
// profile fields, the follow graph and the playlist.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user. A duplicate-key error from the unique
// username/email indexes is returned unwrapped enough for the caller to
// detect it with mongo.IsDuplicateKeyError.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Playlist == nil {
		user.Playlist = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

// FindByUsernameOrEmail returns a user matching either field. Used as the
// registration pre-check; the unique indexes remain the authority.
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
	}}

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username or email: %w", err)
	}
	return &user, nil
}

// UpdateFields sets the given fields on a user document.
func (r *UserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser deletes a user document and reports whether it existed.
func (r *UserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to delete user")
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	logrus.WithField("userID", id.Hex()).Info("User deleted")
	return result.DeletedCount > 0, nil
}

// AddFollowing appends targetID to the user's following set. $addToSet makes
// the write idempotent; the returned flag is false when the entry was already
// present (or the user document is gone).
func (r *UserRepository) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"following": targetID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to add following: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// AddFollower appends followerID to the user's followers set.
func (r *UserRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"followers": followerID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to add follower: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// RemoveFollowing pulls targetID from the user's following set.
func (r *UserRepository) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"following": targetID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove following: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// RemoveFollower pulls followerID from the user's followers set.
func (r *UserRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"followers": followerID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove follower: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// RemoveUserFromAllGraphs blindly pulls the id out of every following and
// followers set that contains it. Both updates are idempotent and safe to
// retry, so a partially applied cascade converges on re-run.
func (r *UserRepository) RemoveUserFromAllGraphs(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := r.collection.UpdateMany(
		ctx,
		bson.M{"followers": userID},
		bson.M{"$pull": bson.M{"followers": userID}},
	); err != nil {
		return fmt.Errorf("failed to remove user from followers sets: %w", err)
	}

	if _, err := r.collection.UpdateMany(
		ctx,
		bson.M{"following": userID},
		bson.M{"$pull": bson.M{"following": userID}},
	); err != nil {
		return fmt.Errorf("failed to remove user from following sets: %w", err)
	}

	return nil
}

// AddToPlaylist appends a game to the user's playlist. Returns false when the
// game was already present.
func (r *UserRepository) AddToPlaylist(ctx context.Context, userID, gameID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"playlist": gameID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to add game to playlist: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// RemoveFromPlaylist pulls a game from the user's playlist. Returns false when
// the game was not present.
func (r *UserRepository) RemoveFromPlaylist(ctx context.Context, userID, gameID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"playlist": gameID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove game from playlist: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// SearchUsers finds users whose username matches the query, case-insensitive.
func (r *UserRepository) SearchUsers(ctx context.Context, username string) ([]models.User, error) {
	filter := bson.M{}
	if username != "" {
		filter["username"] = bson.M{"$regex": username, "$options": "i"}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, user)
	}

	return users, nil
}
