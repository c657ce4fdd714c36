package services

import (
	"context"
	"testing"
	"time"

	"github.com/askarov/gamerater/internal/apperrors"
	"github.com/askarov/gamerater/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userServiceFixture struct {
	users       *fakeUserStore
	emailTokens *fakeTokenStore
	resetTokens *fakeTokenStore
	mail        *fakeSender
	service     *UserService
}

func newUserServiceFixture() *userServiceFixture {
	f := &userServiceFixture{
		users:       newFakeUserStore(),
		emailTokens: newFakeTokenStore(),
		resetTokens: newFakeTokenStore(),
		mail:        &fakeSender{},
	}
	f.service = NewUserService(f.users, f.emailTokens, f.resetTokens, f.mail, "http://localhost:5173")
	return f
}

func (f *userServiceFixture) register(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	user, err := f.service.RegisterUser(context.Background(), username, email, password)
	require.NoError(t, err)
	return user
}

func (f *userServiceFixture) verify(t *testing.T, userID primitive.ObjectID) {
	t.Helper()
	tokens := f.emailTokens.tokensForUser(userID)
	require.NotEmpty(t, tokens)
	require.NoError(t, f.service.VerifyEmail(context.Background(), tokens[0].Token))
}

func TestRegisterUser(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	user := f.register(t, "alice", "Alice@X.com", "pw123456")

	assert.False(t, user.ID.IsZero())
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@x.com", user.Email, "email should be case-normalized")
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "pw123456", user.HashedPassword, "password must not be stored in plaintext")

	tokens := f.emailTokens.tokensForUser(user.ID)
	require.Len(t, tokens, 1)
	assert.Len(t, tokens[0].Token, 64)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tokens[0].ExpiresAt, time.Minute)

	// Mail is fire-and-forget, give the goroutine a moment.
	require.Eventually(t, func() bool { return f.mail.count() == 1 }, time.Second, 10*time.Millisecond)

	// Registration is not a login: the verification gate still applies.
	_, err := f.service.AuthenticateUser(ctx, "alice@x.com", "pw123456")
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)
}

func TestRegisterUser_Validation(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@x.com", "pw123456"},
		{"invalid email", "alice", "not-an-email", "pw123456"},
		{"short password", "alice", "a@x.com", "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RegisterUser(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, 400, apperrors.StatusOf(err))
		})
	}
}

func TestRegisterUser_DuplicateIdentity(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	f.register(t, "alice", "alice@x.com", "pw123456")

	_, err := f.service.RegisterUser(ctx, "alice", "other@x.com", "pw123456")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)

	_, err = f.service.RegisterUser(ctx, "other", "alice@x.com", "pw123456")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)
}

func TestAuthenticateUser_RegisterThenLogin(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	registered := f.register(t, "alice", "alice@x.com", "pw123456")
	f.verify(t, registered.ID)

	user, err := f.service.AuthenticateUser(ctx, "ALICE@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestAuthenticateUser_IndistinguishableFailures(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	user := f.register(t, "alice", "alice@x.com", "pw123456")
	f.verify(t, user.ID)

	_, wrongPassword := f.service.AuthenticateUser(ctx, "alice@x.com", "wrong-pw")
	_, unknownEmail := f.service.AuthenticateUser(ctx, "nobody@x.com", "pw123456")

	// Wrong password and unknown email must be the exact same error shape.
	assert.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, apperrors.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, apperrors.StatusOf(wrongPassword), apperrors.StatusOf(unknownEmail))
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	user := f.register(t, "alice", "alice@x.com", "pw123456")
	tokens := f.emailTokens.tokensForUser(user.ID)
	require.Len(t, tokens, 1)

	require.NoError(t, f.service.VerifyEmail(ctx, tokens[0].Token))

	stored, err := f.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)

	// The token was consumed; a replay must fail.
	err = f.service.VerifyEmail(ctx, tokens[0].Token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func TestVerifyEmail_ExpiredTokenIsDeleted(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	user := f.register(t, "alice", "alice@x.com", "pw123456")

	_, err := f.emailTokens.CreateToken(ctx, &models.Token{
		UserID:    user.ID,
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	err = f.service.VerifyEmail(ctx, "stale-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	// Expiry detection deletes the document; the string never resolves again.
	_, err = f.emailTokens.GetByToken(ctx, "stale-token")
	assert.Error(t, err)

	err = f.service.VerifyEmail(ctx, "stale-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	f := newUserServiceFixture()

	err := f.service.VerifyEmail(context.Background(), "never-issued")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	f := newUserServiceFixture()

	err := f.service.RequestPasswordReset(context.Background(), "nobody@x.com")
	assert.NoError(t, err)
	assert.Equal(t, 0, f.mail.count())
}

func TestRequestPasswordReset_SecondRequestSupersedesFirst(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	user := f.register(t, "alice", "alice@x.com", "pw123456")
	f.verify(t, user.ID)

	require.NoError(t, f.service.RequestPasswordReset(ctx, "alice@x.com"))
	first := f.resetTokens.tokensForUser(user.ID)
	require.Len(t, first, 1)

	require.NoError(t, f.service.RequestPasswordReset(ctx, "alice@x.com"))
	second := f.resetTokens.tokensForUser(user.ID)
	require.Len(t, second, 1, "a user holds at most one outstanding reset token")
	assert.NotEqual(t, first[0].Token, second[0].Token)

	// The superseded token no longer resolves.
	err := f.service.ResetPassword(ctx, first[0].Token, "newpw12345")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	// The current one works.
	require.NoError(t, f.service.ResetPassword(ctx, second[0].Token, "newpw12345"))
}

func TestResetPassword_ChangesCredentials(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	user := f.register(t, "alice", "alice@x.com", "pw123456")
	f.verify(t, user.ID)

	require.NoError(t, f.service.RequestPasswordReset(ctx, "alice@x.com"))
	tokens := f.resetTokens.tokensForUser(user.ID)
	require.Len(t, tokens, 1)

	require.NoError(t, f.service.ResetPassword(ctx, tokens[0].Token, "newpw12345"))

	_, err := f.service.AuthenticateUser(ctx, "alice@x.com", "pw123456")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.service.AuthenticateUser(ctx, "alice@x.com", "newpw12345")
	assert.NoError(t, err)

	// Single use: the token is gone.
	err = f.service.ResetPassword(ctx, tokens[0].Token, "anotherpw1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
}

func TestUpdateProfile(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	alice := f.register(t, "alice", "alice@x.com", "pw123456")
	f.register(t, "bob", "bob@x.com", "pw123456")

	bio := "I rate games."
	updated, err := f.service.UpdateProfile(ctx, alice.ID, nil, &bio)
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)

	name := "alice2"
	updated, err = f.service.UpdateProfile(ctx, alice.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)

	taken := "bob"
	_, err = f.service.UpdateProfile(ctx, alice.ID, &taken, nil)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)

	tooLong := make([]byte, models.MaxBioLength+1)
	for i := range tooLong {
		tooLong[i] = 'a'
	}
	longBio := string(tooLong)
	_, err = f.service.UpdateProfile(ctx, alice.ID, nil, &longBio)
	assert.Equal(t, 400, apperrors.StatusOf(err))
}

func TestSearchUsers_PublicFieldsOnly(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	f.register(t, "alice", "alice@x.com", "pw123456")
	f.register(t, "alina", "alina@x.com", "pw123456")
	f.register(t, "bob", "bob@x.com", "pw123456")

	results, err := f.service.SearchUsers(ctx, "ali")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
