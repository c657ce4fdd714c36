package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/askarov/gamerater/internal/apperrors"
	"github.com/askarov/gamerater/internal/services"
	"github.com/askarov/gamerater/pkg/logger"
	"github.com/askarov/gamerater/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles the authenticated profile and social graph endpoints.
type UserHandler struct {
	Users  *services.UserService
	Social *services.SocialService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(users *services.UserService, social *services.SocialService) *UserHandler {
	return &UserHandler{
		Users:  users,
		Social: social,
	}
}

// callerID extracts the authenticated user's id from the request context.
func callerID(r *http.Request) (primitive.ObjectID, error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return primitive.NilObjectID, apperrors.ErrUnauthenticated
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrUnauthenticated
	}
	return id, nil
}

// MeHandler returns the caller's full profile. The credential secret is never
// serialized.
func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, apperrors.ErrUnauthenticated)
		return
	}

	user, err := h.Users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// EditProfileHandler updates the caller's username and/or bio.
func (h *UserHandler) EditProfileHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Users.UpdateProfile(r.Context(), actorID, body.Username, body.Bio)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Log.Infof("User %s updated profile", actorID.Hex())
	respondJSON(w, http.StatusOK, user)
}

// DeleteProfileHandler deletes the caller's account and cascades the cleanup.
func (h *UserHandler) DeleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Social.DeleteAccount(r.Context(), actorID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Account deleted")
}

// FollowHandler makes the caller follow the target user.
func (h *UserHandler) FollowHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["targetId"])
	if err != nil {
		respondError(w, apperrors.Validation("Invalid user ID"))
		return
	}

	if err := h.Social.Follow(r.Context(), actorID, targetID); err != nil {
		respondError(w, err)
		return
	}

	logger.Log.Infof("User %s followed %s", actorID.Hex(), targetID.Hex())
	respondMessage(w, "Followed user")
}

// UnfollowHandler makes the caller unfollow the target user.
func (h *UserHandler) UnfollowHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["targetId"])
	if err != nil {
		respondError(w, apperrors.Validation("Invalid user ID"))
		return
	}

	if err := h.Social.Unfollow(r.Context(), actorID, targetID); err != nil {
		respondError(w, err)
		return
	}

	logger.Log.Infof("User %s unfollowed %s", actorID.Hex(), targetID.Hex())
	respondMessage(w, "Unfollowed user")
}

// WatchHandler adds a game to the caller's want-to-play list.
func (h *UserHandler) WatchHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	gameID, err := primitive.ObjectIDFromHex(mux.Vars(r)["gameId"])
	if err != nil {
		respondError(w, apperrors.Validation("Invalid game ID"))
		return
	}

	if err := h.Social.AddGameToPlaylist(r.Context(), actorID, gameID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Game added to playlist")
}

// UnwatchHandler removes a game from the caller's want-to-play list.
func (h *UserHandler) UnwatchHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	gameID, err := primitive.ObjectIDFromHex(mux.Vars(r)["gameId"])
	if err != nil {
		respondError(w, apperrors.Validation("Invalid game ID"))
		return
	}

	if err := h.Social.RemoveGameFromPlaylist(r.Context(), actorID, gameID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Game removed from playlist")
}

// SearchUsersHandler finds accounts by username.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("username")

	users, err := h.Users.SearchUsers(r.Context(), query)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}
