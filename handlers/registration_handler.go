package handlers

import (
	"net/http"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/services"
	"eventhub-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegistrationHandler expose le workflow d'inscription et de validation
type RegistrationHandler struct {
	events        EventReader
	users         UserStore
	registrations *services.RegistrationService
}

// NewRegistrationHandler crée une nouvelle instance de RegistrationHandler
func NewRegistrationHandler(events EventReader, users UserStore, registrations *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		events:        events,
		users:         users,
		registrations: registrations,
	}
}

var registerMessages = map[models.RegisterOutcome]string{
	models.OutcomeRegistered: "Inscription confirmée",
	models.OutcomePending:    "Demande envoyée, en attente de validation par l'organisateur",
	models.OutcomeWaitlisted: "Événement complet, vous êtes sur liste d'attente",
}

// Register inscrit l'appelant à un événement
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	eventID, ok := ParseEventID(w, r)
	if !ok {
		return
	}
	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	outcome, event, err := h.registrations.Register(r.Context(), eventID, userID)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	response := map[string]interface{}{
		"success":         true,
		"status":          outcome,
		"message":         registerMessages[outcome],
		"attendees_count": event.AttendeeCount(),
	}
	if reg := event.FindRegistration(userID); reg != nil && reg.RegistrationID != "" {
		response["registration_id"] = reg.RegistrationID
	}
	utils.RespondJSON(w, http.StatusOK, response)
}

// Deregister désinscrit l'appelant, quel que soit son état
func (h *RegistrationHandler) Deregister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	eventID, ok := ParseEventID(w, r)
	if !ok {
		return
	}
	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	result, err := h.registrations.Deregister(r.Context(), eventID, userID)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"message":        "Désinscription effectuée",
		"waitlist_moved": result.Promoted != nil,
	})
}

// GetPending liste les demandes en attente, dans l'ordre d'arrivée (organisateur uniquement)
func (h *RegistrationHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	eventID, ok := ParseEventID(w, r)
	if !ok {
		return
	}
	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	event, err := h.events.FindByID(r.Context(), eventID)
	if err != nil {
		respondRepositoryError(w, "la récupération de l'événement", err)
		return
	}
	if event == nil {
		respondWorkflowError(w, models.ErrEventNotFound)
		return
	}
	if event.OrganizerID != userID {
		respondWorkflowError(w, models.ErrUnauthorized)
		return
	}

	pendingIDs := event.PendingApprovals()
	users, err := h.users.FindByIDs(r.Context(), pendingIDs)
	if err != nil {
		respondRepositoryError(w, "la récupération des demandeurs", err)
		return
	}

	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	pending := make([]models.User, 0, len(pendingIDs))
	for _, id := range pendingIDs {
		if u, found := byID[id]; found {
			pending = append(pending, u)
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"pending": pending,
		"total":   len(pending),
	})
}

// Approve valide la demande d'un utilisateur
func (h *RegistrationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	eventID, organizerID, targetID, ok := h.parseDecision(w, r)
	if !ok {
		return
	}

	outcome, err := h.registrations.Approve(r.Context(), eventID, organizerID, targetID)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	message := "Demande acceptée"
	if outcome == models.OutcomeApprovedWaitlisted {
		message = "Demande acceptée, l'utilisateur est placé sur liste d'attente"
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  outcome,
		"message": message,
	})
}

// Reject refuse la demande d'un utilisateur
func (h *RegistrationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	eventID, organizerID, targetID, ok := h.parseDecision(w, r)
	if !ok {
		return
	}

	if err := h.registrations.Reject(r.Context(), eventID, organizerID, targetID); err != nil {
		respondWorkflowError(w, err)
		return
	}

	utils.RespondSuccess(w, "Demande refusée", nil)
}

func (h *RegistrationHandler) parseDecision(w http.ResponseWriter, r *http.Request) (eventID, organizerID, targetID primitive.ObjectID, ok bool) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if eventID, ok = ParseEventID(w, r); !ok {
		return
	}
	if targetID, ok = ParseObjectIDVar(w, mux.Vars(r), "user_id", constants.ErrInvalidUserID); !ok {
		return
	}
	organizerID, ok = CurrentUserID(w, r)
	return
}
