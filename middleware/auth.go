package middleware

import (
	"context"
	"net/http"
	"strings"

	"eventhub-backend/utils"
)

type contextKey string

const (
	UserContextKey      contextKey = "user"
	RequestIDContextKey contextKey = "request_id"
)

// bearerToken extrait le token d'un en-tête "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Auth vérifie le token JWT et place les claims dans le contexte de la requête
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Token d'authentification manquant")
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Format du token invalide")
				return
			}

			claims, err := utils.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "Token invalide ou expiré")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext récupère les informations de l'utilisateur depuis le contexte
func GetUserFromContext(ctx context.Context) *utils.Claims {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetRequestID retourne l'identifiant de la requête posé par Logging
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}
