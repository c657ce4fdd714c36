package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/askarov/gamerater/internal/apperrors"
	"github.com/askarov/gamerater/internal/models"
	"github.com/askarov/gamerater/internal/services"
	"github.com/gorilla/mux"
)

// GameHandler handles the thin catalog endpoints.
type GameHandler struct {
	Service *services.GameService
}

func NewGameHandler(service *services.GameService) *GameHandler {
	return &GameHandler{Service: service}
}

func (h *GameHandler) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		respondError(w, err)
		return
	}

	var game models.Game
	if err := json.NewDecoder(r.Body).Decode(&game); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateGame(r.Context(), &game)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *GameHandler) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	game, err := h.Service.GetGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

// SearchGamesHandler lists the catalog, optionally filtered by title.
func (h *GameHandler) SearchGamesHandler(w http.ResponseWriter, r *http.Request) {
	games, err := h.Service.SearchGames(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, games)
}
