package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/askarov/gamerater/internal/apperrors"
	"github.com/askarov/gamerater/internal/models"
	"github.com/askarov/gamerater/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates identity and profile operations: registration,
// login, email verification, password reset and profile edits.
type UserService struct {
	users       UserStore
	emailTokens TokenStore
	resetTokens TokenStore
	mail        email.Sender
	frontendURL string
}

// NewUserService creates a new instance of UserService.
func NewUserService(users UserStore, emailTokens, resetTokens TokenStore, mail email.Sender, frontendURL string) *UserService {
	return &UserService{
		users:       users,
		emailTokens: emailTokens,
		resetTokens: resetTokens,
		mail:        mail,
		frontendURL: frontendURL,
	}
}

// RegisterUser creates an unverified account, stores a one-hour verification
// token and dispatches the verification mail. The pre-check and the unique
// indexes both map to the same duplicate error, so the racy check-then-create
// window is covered.
func (s *UserService) RegisterUser(ctx context.Context, username, emailAddr, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	emailAddr = normalizeEmail(emailAddr)

	if username == "" {
		return nil, apperrors.Validation("Username is required")
	}
	if !emailRegex.MatchString(emailAddr) {
		return nil, apperrors.Validation("Invalid email format")
	}
	if len(password) < 6 {
		return nil, apperrors.Validation("Password must be at least 6 characters")
	}

	_, err := s.users.FindByUsernameOrEmail(ctx, username, emailAddr)
	if err == nil {
		logrus.WithField("username", username).Warn("Registration with existing username or email")
		return nil, apperrors.ErrDuplicateIdentity
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to check existing identity: %w", err)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       username,
		Email:          emailAddr,
		HashedPassword: string(hashedPwd),
		IsVerified:     false,
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	tokenString, err := newTokenString()
	if err != nil {
		return nil, err
	}
	_, err = s.emailTokens.CreateToken(ctx, &models.Token{
		UserID:    created.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(tokenLifetime),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store verification token: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/verify/%s", s.frontendURL, tokenString)
	body := fmt.Sprintf("Hi %s,\n\nVerify your email by opening the link below. The link expires in 1 hour.\n%s", created.Username, verifyURL)
	s.dispatchMail(created.Email, "Verify your email", body)

	logrus.WithField("userID", created.ID.Hex()).Info("User registered")
	return created, nil
}

// AuthenticateUser checks the credentials and the verification gate. Unknown
// email and wrong password return the identical error so the response never
// reveals which check failed.
func (s *UserService) AuthenticateUser(ctx context.Context, emailAddr, password string) (*models.User, error) {
	emailAddr = normalizeEmail(emailAddr)

	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("userID", user.ID.Hex()).Warn("Login with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	return user, nil
}

// VerifyEmail consumes a verification token: the verified flag is set and the
// token deleted, so a replay of the same string fails as not found.
func (s *UserService) VerifyEmail(ctx context.Context, tokenString string) error {
	token, err := s.lookupToken(ctx, s.emailTokens, tokenString)
	if err != nil {
		return err
	}

	if err := s.users.UpdateFields(ctx, token.UserID, bson.M{"is_verified": true}); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	if err := s.emailTokens.DeleteByID(ctx, token.ID); err != nil {
		return fmt.Errorf("failed to consume verification token: %w", err)
	}

	logrus.WithField("userID", token.UserID.Hex()).Info("Email verified")
	return nil
}

// RequestPasswordReset upserts the single outstanding reset token for the
// account and mails the link. The caller always gets the same answer whether
// or not the email exists.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)

	user, err := s.users.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// No account: same outward behavior, nothing to do.
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	tokenString, err := newTokenString()
	if err != nil {
		return err
	}
	_, err = s.resetTokens.ReplaceForUser(ctx, user.ID, tokenString, time.Now().Add(tokenLifetime))
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, tokenString)
	body := fmt.Sprintf("Reset your password by opening the link below. The link expires in 1 hour.\n%s", resetURL)
	s.dispatchMail(user.Email, "Password Reset", body)

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset requested")
	return nil
}

// ResetPassword consumes a reset token and stores the re-derived credential
// secret.
func (s *UserService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	if len(newPassword) < 6 {
		return apperrors.Validation("Password must be at least 6 characters")
	}

	token, err := s.lookupToken(ctx, s.resetTokens, tokenString)
	if err != nil {
		return err
	}

	if _, err := s.users.GetUserByID(ctx, token.UserID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Owner is gone; the token is dead weight.
			_ = s.resetTokens.DeleteByID(ctx, token.ID)
			return apperrors.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to look up token owner: %w", err)
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdateFields(ctx, token.UserID, bson.M{"hashed_password": string(hashedPwd)}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.resetTokens.DeleteByID(ctx, token.ID); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	logrus.WithField("userID", token.UserID.Hex()).Info("Password reset")
	return nil
}

// lookupToken fetches a token by exact string and enforces expiry. An expired
// token is deleted on sight so the string can never resolve again.
func (s *UserService) lookupToken(ctx context.Context, store TokenStore, tokenString string) (*models.Token, error) {
	token, err := store.GetByToken(ctx, tokenString)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if token.Expired() {
		if err := store.DeleteByID(ctx, token.ID); err != nil {
			logrus.WithError(err).Warn("Failed to delete expired token")
		}
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	return token, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID")
	}

	user, err := s.users.GetUserByID(ctx, objID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's username and/or bio. A nil field is left
// untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, username, bio *string) (*models.User, error) {
	fields := bson.M{}

	if username != nil {
		name := strings.TrimSpace(*username)
		if name == "" {
			return nil, apperrors.Validation("Username is required")
		}

		existing, err := s.users.GetUserByUsername(ctx, name)
		if err == nil && existing.ID != id {
			return nil, apperrors.ErrDuplicateIdentity
		}
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		fields["username"] = name
	}

	if bio != nil {
		if len(*bio) > models.MaxBioLength {
			return nil, apperrors.Validation("Bio must be at most 300 characters")
		}
		fields["bio"] = *bio
	}

	if len(fields) == 0 {
		return nil, apperrors.Validation("Nothing to update")
	}

	if err := s.users.UpdateFields(ctx, id, fields); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload profile: %w", err)
	}
	return user, nil
}

// SearchUsers finds accounts by username and returns only public fields.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.PublicUser, error) {
	users, err := s.users.SearchUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}

// dispatchMail sends in the background; delivery failure is logged and never
// surfaces to the caller.
func (s *UserService) dispatchMail(to, subject, body string) {
	go func() {
		if err := s.mail.Send(to, subject, body); err != nil {
			logrus.WithError(err).WithField("to", to).Error("Failed to send email")
		}
	}()
}

func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
