package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"eventhub-backend/constants"
	"eventhub-backend/middleware"
	"eventhub-backend/models"
	"eventhub-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Taille maximale d'un corps JSON accepté
const maxBodyBytes = 1 << 20

// RequireMethod vérifie que la méthode HTTP est correcte. Retourne false et écrit l'erreur si non.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		utils.RespondError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return false
	}
	return true
}

// ParseEventID extrait et valide event_id depuis les vars de l'URL.
func ParseEventID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	return ParseObjectIDVar(w, mux.Vars(r), "event_id", constants.ErrInvalidEventID)
}

// ParseObjectIDVar extrait et valide un ObjectID depuis les vars (clé configurable, msg d'erreur configurable).
func ParseObjectIDVar(w http.ResponseWriter, vars map[string]string, key, errMsg string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(vars[key])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, errMsg)
		return primitive.NilObjectID, false
	}
	return id, true
}

// CurrentUserID retourne l'identifiant de l'utilisateur authentifié
func CurrentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrInvalidToken)
		return primitive.NilObjectID, false
	}
	return id, true
}

// DecodeAndValidate lit le corps JSON puis vérifie les tags `validate`
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	if err := utils.ValidateStruct(dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// normalizer est implémenté par les requêtes à nettoyer avant validation
type normalizer interface {
	Normalize()
}

// statusForError associe une erreur métier à son code HTTP
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrRegistrationNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrEventNotAvailable),
		errors.Is(err, models.ErrAlreadyInProcess),
		errors.Is(err, models.ErrEventFull),
		errors.Is(err, models.ErrNotRegistered),
		errors.Is(err, models.ErrNotInPendingList),
		errors.Is(err, models.ErrAlreadyMarked),
		errors.Is(err, models.ErrInvalidRegistrationID),
		errors.Is(err, models.ErrCapacityBelowAttendees):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondWorkflowError traduit une erreur métier en réponse HTTP
func respondWorkflowError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	switch status {
	case http.StatusInternalServerError:
		log.Printf("❌ Erreur inattendue: %v", err)
		utils.RespondError(w, status, constants.ErrServerError)
	case http.StatusServiceUnavailable:
		// le détail technique reste dans les logs
		utils.RespondError(w, status, models.ErrServiceUnavailable.Error())
	default:
		utils.RespondError(w, status, err.Error())
	}
}

// respondRepositoryError répond 503 pour une erreur de lecture en base
func respondRepositoryError(w http.ResponseWriter, what string, err error) {
	log.Printf("❌ Erreur lors de %s: %v", what, err)
	utils.RespondError(w, http.StatusServiceUnavailable, models.ErrServiceUnavailable.Error())
}

// withEffectiveStatus applique le statut calculé à l'instant now sur chaque événement
func withEffectiveStatus(events []models.Event, now time.Time) []models.Event {
	for i := range events {
		events[i].Status = events[i].EffectiveStatus(now)
	}
	return events
}
