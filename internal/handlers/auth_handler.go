package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/askarov/gamerater/internal/apperrors"
	"github.com/askarov/gamerater/internal/config"
	"github.com/askarov/gamerater/internal/services"
	jwtutil "github.com/askarov/gamerater/pkg/jwt"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// genericResetMessage is returned for every forgot-password request so the
// endpoint cannot be used to probe which emails are registered.
const genericResetMessage = "If an account exists, a reset link has been sent."

// AuthHandler handles the unauthenticated identity endpoints.
type AuthHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(service *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterHandler creates an account and issues a session token right away;
// login stays gated on email verification.
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.RegisterUser(r.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate session token")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user.Summary(),
	})
}

// LoginHandler authenticates credentials and issues a session token.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), body.Email, body.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate session token")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user.Summary(),
	})
}

// VerifyEmailHandler consumes an email verification token.
func (h *AuthHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	if err := h.Service.VerifyEmail(r.Context(), token); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Email verified successfully!")
}

// ForgotPasswordHandler starts the reset flow. The response is identical
// whether or not the email exists.
func (h *AuthHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := h.Service.RequestPasswordReset(r.Context(), body.Email); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, genericResetMessage)
}

// ResetPasswordHandler consumes a reset token and stores the new password.
func (h *AuthHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := h.Service.ResetPassword(r.Context(), token, body.Password); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Password reset successfully.")
}
