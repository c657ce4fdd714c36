package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	jwtutil "github.com/askarov/gamerater/pkg/jwt"
	"github.com/askarov/gamerater/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware verifies the bearer token on every request of the wrapped
// routes and stores the claims in the request context. Verification is purely
// stateless; there is no server-side session lookup.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				logger.Log.Warn("Missing or malformed Authorization header")
				unauthorized(w)
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			claims, err := jwtutil.ParseToken(tokenString, secret)
			if err != nil {
				logger.Log.WithError(err).Warn("Rejected invalid session token")
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated user's claims, or nil when the
// request did not pass AuthMiddleware.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, ok := ctx.Value(userContextKey).(*jwtutil.Claims)
	if !ok {
		return nil
	}
	return claims
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
