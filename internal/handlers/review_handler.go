package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/askarov/gamerater/internal/apperrors"
	"github.com/askarov/gamerater/internal/services"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewHandler handles review CRUD endpoints.
type ReviewHandler struct {
	Service *services.ReviewService
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: service}
}

// CreateReviewHandler posts the caller's review for a game.
func (h *ReviewHandler) CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		GameID string  `json:"game_id"`
		Rating float64 `json:"rating"`
		Body   string  `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	gameID, err := primitive.ObjectIDFromHex(body.GameID)
	if err != nil {
		respondError(w, apperrors.Validation("Invalid game ID"))
		return
	}

	review, err := h.Service.CreateReview(r.Context(), actorID, gameID, body.Rating, body.Body)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}

// UpdateReviewHandler edits the caller's review.
func (h *ReviewHandler) UpdateReviewHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	reviewID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, apperrors.Validation("Invalid review ID"))
		return
	}

	var body struct {
		Rating float64 `json:"rating"`
		Body   string  `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	review, err := h.Service.UpdateReview(r.Context(), reviewID, actorID, body.Rating, body.Body)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, review)
}

// DeleteReviewHandler deletes the caller's review.
func (h *ReviewHandler) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	reviewID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, apperrors.Validation("Invalid review ID"))
		return
	}

	if err := h.Service.DeleteReview(r.Context(), reviewID, actorID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Review deleted")
}

// GetGameReviewsHandler lists reviews for a game.
func (h *ReviewHandler) GetGameReviewsHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, apperrors.Validation("Invalid game ID"))
		return
	}

	reviews, err := h.Service.GetReviewsByGame(r.Context(), gameID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, reviews)
}

// GetUserReviewsHandler lists reviews written by a user.
func (h *ReviewHandler) GetUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, apperrors.Validation("Invalid user ID"))
		return
	}

	reviews, err := h.Service.GetReviewsByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, reviews)
}
