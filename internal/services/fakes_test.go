package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/askarov/gamerater/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory stand-ins for the mongo repositories. They reproduce the pieces
// of driver behavior the services rely on: wrapped mongo.ErrNoDocuments for
// missing documents, duplicate-key server errors for unique index violations,
// and $addToSet/$pull set semantics.

func errNotFound() error {
	return fmt.Errorf("document not found: %w", mongo.ErrNoDocuments)
}

func errDuplicateKey() error {
	return mongo.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	cp.Playlist = append([]primitive.ObjectID(nil), u.Playlist...)
	cp.Following = append([]primitive.ObjectID(nil), u.Following...)
	cp.Followers = append([]primitive.ObjectID(nil), u.Followers...)
	return &cp
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, errDuplicateKey()
		}
	}

	user.ID = primitive.NewObjectID()
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

	f.users[user.ID] = cloneUser(user)
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, errNotFound()
	}
	return cloneUser(u), nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, errNotFound()
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, errNotFound()
}

func (f *fakeUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, errNotFound()
}

func (f *fakeUserStore) UpdateFields(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil // UpdateOne on a missing document matches nothing
	}

	for key, value := range fields {
		switch key {
		case "is_verified":
			u.IsVerified = value.(bool)
		case "hashed_password":
			u.HashedPassword = value.(string)
		case "username":
			for _, other := range f.users {
				if other.ID != id && other.Username == value.(string) {
					return errDuplicateKey()
				}
			}
			u.Username = value.(string)
		case "bio":
			u.Bio = value.(string)
		}
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

func (f *fakeUserStore) AddFollowing(_ context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok || containsID(u.Following, targetID) {
		return false, nil
	}
	u.Following = append(u.Following, targetID)
	return true, nil
}

func (f *fakeUserStore) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok || containsID(u.Followers, followerID) {
		return false, nil
	}
	u.Followers = append(u.Followers, followerID)
	return true, nil
}

func (f *fakeUserStore) RemoveFollowing(_ context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok || !containsID(u.Following, targetID) {
		return false, nil
	}
	u.Following = removeID(u.Following, targetID)
	return true, nil
}

func (f *fakeUserStore) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok || !containsID(u.Followers, followerID) {
		return false, nil
	}
	u.Followers = removeID(u.Followers, followerID)
	return true, nil
}

func (f *fakeUserStore) RemoveUserFromAllGraphs(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		u.Followers = removeID(u.Followers, userID)
		u.Following = removeID(u.Following, userID)
	}
	return nil
}

func (f *fakeUserStore) AddToPlaylist(_ context.Context, userID, gameID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok || containsID(u.Playlist, gameID) {
		return false, nil
	}
	u.Playlist = append(u.Playlist, gameID)
	return true, nil
}

func (f *fakeUserStore) RemoveFromPlaylist(_ context.Context, userID, gameID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok || !containsID(u.Playlist, gameID) {
		return false, nil
	}
	u.Playlist = removeID(u.Playlist, gameID)
	return true, nil
}

func (f *fakeUserStore) SearchUsers(_ context.Context, username string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.User
	for _, u := range f.users {
		if username == "" || strings.Contains(strings.ToLower(u.Username), strings.ToLower(username)) {
			out = append(out, *cloneUser(u))
		}
	}
	return out, nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[primitive.ObjectID]*models.Token
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[primitive.ObjectID]*models.Token)}
}

func (f *fakeTokenStore) CreateToken(_ context.Context, token *models.Token) (*models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tokens {
		if t.Token == token.Token {
			return nil, errDuplicateKey()
		}
	}

	token.ID = primitive.NewObjectID()
	token.CreatedAt = time.Now()
	cp := *token
	f.tokens[token.ID] = &cp
	return token, nil
}

func (f *fakeTokenStore) GetByToken(_ context.Context, tokenString string) (*models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tokens {
		if t.Token == tokenString {
			cp := *t
			return &cp, nil
		}
	}
	return nil, errNotFound()
}

func (f *fakeTokenStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.tokens, id)
	return nil
}

func (f *fakeTokenStore) ReplaceForUser(_ context.Context, userID primitive.ObjectID, tokenString string, expiresAt time.Time) (*models.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, id)
		}
	}

	token := &models.Token{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Token:     tokenString,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	f.tokens[token.ID] = token
	cp := *token
	return &cp, nil
}

func (f *fakeTokenStore) DeleteAllForUser(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, id)
		}
	}
	return nil
}

// tokensForUser is a test helper for inspecting the ledger.
func (f *fakeTokenStore) tokensForUser(userID primitive.ObjectID) []models.Token {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Token
	for _, t := range f.tokens {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out
}

type fakeReviewStore struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]*models.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[primitive.ObjectID]*models.Review)}
}

func (f *fakeReviewStore) CreateReview(_ context.Context, review *models.Review) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reviews {
		if r.UserID == review.UserID && r.GameID == review.GameID {
			return nil, errDuplicateKey()
		}
	}

	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()
	cp := *review
	f.reviews[review.ID] = &cp
	return review, nil
}

func (f *fakeReviewStore) GetReviewByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reviews[id]
	if !ok {
		return nil, errNotFound()
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewStore) UpdateReview(_ context.Context, id primitive.ObjectID, rating float64, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r, ok := f.reviews[id]; ok {
		r.Rating = rating
		r.Body = body
		r.UpdatedAt = time.Now()
	}
	return nil
}

func (f *fakeReviewStore) DeleteReview(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.reviews[id]; !ok {
		return false, nil
	}
	delete(f.reviews, id)
	return true, nil
}

func (f *fakeReviewStore) DeleteAllForUser(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, r := range f.reviews {
		if r.UserID == userID {
			delete(f.reviews, id)
		}
	}
	return nil
}

func (f *fakeReviewStore) GetReviewsByGame(_ context.Context, gameID primitive.ObjectID) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Review
	for _, r := range f.reviews {
		if r.GameID == gameID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) GetReviewsByUser(_ context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeGameStore struct {
	mu    sync.Mutex
	games map[primitive.ObjectID]*models.Game
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{games: make(map[primitive.ObjectID]*models.Game)}
}

func (f *fakeGameStore) CreateGame(_ context.Context, game *models.Game) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, g := range f.games {
		if g.Title == game.Title {
			return nil, errDuplicateKey()
		}
	}

	game.ID = primitive.NewObjectID()
	cp := *game
	f.games[game.ID] = &cp
	return game, nil
}

func (f *fakeGameStore) GetGameByID(_ context.Context, id primitive.ObjectID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	g, ok := f.games[id]
	if !ok {
		return nil, errNotFound()
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGameStore) SearchGames(_ context.Context, title string) ([]models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Game
	for _, g := range f.games {
		if title == "" || strings.Contains(strings.ToLower(g.Title), strings.ToLower(title)) {
			out = append(out, *g)
		}
	}
	return out, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
