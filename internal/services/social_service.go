package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/askarov/gamerater/internal/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SocialService maintains the follow graph, the playlist and the account
// deletion cascade.
//
// The follow edge lives in two documents (actor.following and
// target.followers) and no multi-document transaction wraps the pair of
// writes. Each write is individually idempotent ($addToSet / $pull), so a
// retry after a partial failure converges, but a crash between the two writes
// leaves an asymmetric edge until a repair pass runs.
type SocialService struct {
	users       UserStore
	games       GameStore
	reviews     ReviewStore
	emailTokens TokenStore
	resetTokens TokenStore
}

// NewSocialService creates a new SocialService.
func NewSocialService(users UserStore, games GameStore, reviews ReviewStore, emailTokens, resetTokens TokenStore) *SocialService {
	return &SocialService{
		users:       users,
		games:       games,
		reviews:     reviews,
		emailTokens: emailTokens,
		resetTokens: resetTokens,
	}
}

// Follow adds the actor->target edge to both documents.
func (s *SocialService) Follow(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	if actorID == targetID {
		return apperrors.ErrSelfFollow
	}

	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to look up target user: %w", err)
	}

	added, err := s.users.AddFollowing(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("failed to update following set: %w", err)
	}
	if !added {
		return apperrors.ErrAlreadyFollowing
	}

	if _, err := s.users.AddFollower(ctx, targetID, actorID); err != nil {
		// The first write landed, the mirror did not. Reported as a server
		// error; a retry of the mirror write converges.
		return fmt.Errorf("follow edge partially applied: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"actorID":  actorID.Hex(),
		"targetID": targetID.Hex(),
	}).Info("Follow edge created")
	return nil
}

// Unfollow removes the actor->target edge from both documents.
func (s *SocialService) Unfollow(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	if actorID == targetID {
		return apperrors.ErrSelfFollow
	}

	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to look up target user: %w", err)
	}

	removed, err := s.users.RemoveFollowing(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("failed to update following set: %w", err)
	}
	if !removed {
		return apperrors.ErrNotFollowing
	}

	if _, err := s.users.RemoveFollower(ctx, targetID, actorID); err != nil {
		return fmt.Errorf("unfollow edge partially applied: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"actorID":  actorID.Hex(),
		"targetID": targetID.Hex(),
	}).Info("Follow edge removed")
	return nil
}

// DeleteAccount removes a user and every reference to them: graph edges in
// other accounts, their reviews, their outstanding tokens and finally the
// user document itself. The fan-out is not atomic; every step is idempotent
// so an operator can rerun the cascade after a partial failure, but steps
// already completed are never rolled back.
func (s *SocialService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.users.RemoveUserFromAllGraphs(ctx, userID); err != nil {
		return fmt.Errorf("account deletion: graph cleanup failed: %w", err)
	}

	if err := s.reviews.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("account deletion: review cleanup failed: %w", err)
	}

	if err := s.emailTokens.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("account deletion: verification token cleanup failed: %w", err)
	}
	if err := s.resetTokens.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("account deletion: reset token cleanup failed: %w", err)
	}

	deleted, err := s.users.DeleteUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("account deletion: failed to delete user record: %w", err)
	}
	if !deleted {
		return apperrors.ErrNotFound
	}

	logrus.WithField("userID", userID.Hex()).Info("Account deleted")
	return nil
}

// AddGameToPlaylist puts a game on the caller's want-to-play list.
func (s *SocialService) AddGameToPlaylist(ctx context.Context, userID, gameID primitive.ObjectID) error {
	if _, err := s.games.GetGameByID(ctx, gameID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to look up game: %w", err)
	}

	added, err := s.users.AddToPlaylist(ctx, userID, gameID)
	if err != nil {
		return fmt.Errorf("failed to add game to playlist: %w", err)
	}
	if !added {
		return apperrors.ErrAlreadyInList
	}
	return nil
}

// RemoveGameFromPlaylist takes a game off the caller's want-to-play list.
func (s *SocialService) RemoveGameFromPlaylist(ctx context.Context, userID, gameID primitive.ObjectID) error {
	if _, err := s.games.GetGameByID(ctx, gameID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to look up game: %w", err)
	}

	removed, err := s.users.RemoveFromPlaylist(ctx, userID, gameID)
	if err != nil {
		return fmt.Errorf("failed to remove game from playlist: %w", err)
	}
	if !removed {
		return apperrors.ErrNotInList
	}
	return nil
}
