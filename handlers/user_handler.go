package handlers

import (
	"log"
	"net/http"
	"time"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/utils"
)

// UserHandler gère le profil et les inscriptions de l'utilisateur connecté
type UserHandler struct {
	users  UserStore
	events EventReader
	now    func() time.Time
}

// NewUserHandler crée une nouvelle instance de UserHandler
func NewUserHandler(users UserStore, events EventReader) *UserHandler {
	return &UserHandler{
		users:  users,
		events: events,
		now:    time.Now,
	}
}

// GetProfile retourne le profil de l'appelant
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		respondRepositoryError(w, "la récupération du profil", err)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

// RequestOrganizer enregistre une demande de passage organisateur
func (h *UserHandler) RequestOrganizer(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		respondRepositoryError(w, "la récupération de l'utilisateur", err)
		return
	}
	if user == nil {
		utils.RespondError(w, http.StatusNotFound, constants.ErrUserNotFound)
		return
	}
	if user.HasRole(models.RoleOrganizer, models.RoleAdmin) {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrAlreadyOrganizer)
		return
	}

	requested, err := h.users.RequestOrganizer(r.Context(), userID)
	if err != nil {
		respondRepositoryError(w, "l'enregistrement de la demande", err)
		return
	}
	if !requested {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrAlreadyRequested)
		return
	}

	log.Printf("✓ Demande organisateur de %s", user.Email)
	utils.RespondSuccess(w, "Demande envoyée à l'administrateur", nil)
}

// GetRegistrations retourne les événements où l'appelant est inscrit, en attente ou sur liste d'attente
func (h *UserHandler) GetRegistrations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	events, err := h.events.FindByMember(r.Context(), userID)
	if err != nil {
		respondRepositoryError(w, "la récupération des inscriptions", err)
		return
	}

	now := h.now()
	registrations := make([]models.UserRegistration, 0, len(events))
	for _, e := range withEffectiveStatus(events, now) {
		reg := e.FindRegistration(userID)
		if reg == nil {
			continue
		}
		registrations = append(registrations, models.UserRegistration{
			Event:          e.WithoutCheckInCodes(),
			State:          reg.State,
			RegistrationID: reg.RegistrationID,
			Marked:         reg.Marked,
		})
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"registrations": registrations,
		"total":         len(registrations),
	})
}
