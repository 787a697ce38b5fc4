package middleware

import (
	"net/http"

	"eventhub-backend/utils"
)

// Guest refuse l'accès aux utilisateurs déjà connectés (inscription, connexion).
// Un token absent, mal formé ou expiré laisse passer la requête.
func Guest(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString, ok := bearerToken(r); ok {
				if _, err := utils.ValidateToken(tokenString, jwtSecret); err == nil {
					utils.RespondError(w, http.StatusForbidden, "Vous êtes déjà connecté")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
