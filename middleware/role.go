package middleware

import (
	"context"
	"log"
	"net/http"

	"eventhub-backend/models"
	"eventhub-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserLookup charge un utilisateur par identifiant
type UserLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequireRole vérifie en base que l'utilisateur connecté possède l'un des rôles.
// Le rôle du token n'est pas pris pour argent comptant: il peut avoir changé depuis l'émission.
func RequireRole(users UserLookup, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				utils.RespondError(w, http.StatusUnauthorized, "Non authentifié")
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "Token invalide")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				log.Printf("❌ Vérification du rôle impossible: %v", err)
				utils.RespondError(w, http.StatusServiceUnavailable, models.ErrServiceUnavailable.Error())
				return
			}
			if user == nil {
				utils.RespondError(w, http.StatusUnauthorized, "Utilisateur non trouvé")
				return
			}

			if !user.HasRole(roles...) {
				log.Printf("⚠️  Accès refusé pour %s (rôle %s)", user.Email, user.Role)
				utils.RespondError(w, http.StatusForbidden, "Accès refusé")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
