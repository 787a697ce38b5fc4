package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/services"
	"eventhub-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler gère les requêtes admin
type AdminHandler struct {
	users    UserStore
	events   EventReader
	notifier services.Notifier
	now      func() time.Time
}

// NewAdminHandler crée une nouvelle instance de AdminHandler
func NewAdminHandler(users UserStore, events EventReader, notifier services.Notifier) *AdminHandler {
	return &AdminHandler{
		users:    users,
		events:   events,
		notifier: notifier,
		now:      time.Now,
	}
}

// ========== GESTION DES UTILISATEURS ==========

// GetUsers retourne la liste de tous les utilisateurs
func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	h.respondUsers(w, r, "des utilisateurs", func(ctx context.Context) ([]models.User, error) {
		return h.users.FindAll(ctx)
	})
}

// GetPendingOrganizers retourne les demandes organisateur en attente
func (h *AdminHandler) GetPendingOrganizers(w http.ResponseWriter, r *http.Request) {
	h.respondUsers(w, r, "des demandes organisateur", h.users.FindPendingOrganizers)
}

// GetOrganizers retourne les organisateurs
func (h *AdminHandler) GetOrganizers(w http.ResponseWriter, r *http.Request) {
	h.respondUsers(w, r, "des organisateurs", func(ctx context.Context) ([]models.User, error) {
		return h.users.FindByRole(ctx, models.RoleOrganizer)
	})
}

func (h *AdminHandler) respondUsers(w http.ResponseWriter, r *http.Request, what string, load func(context.Context) ([]models.User, error)) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	users, err := load(r.Context())
	if err != nil {
		respondRepositoryError(w, "la récupération "+what, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
		"total":   len(users),
	})
}

// ApproveOrganizer accorde le rôle organisateur à un demandeur
func (h *AdminHandler) ApproveOrganizer(w http.ResponseWriter, r *http.Request) {
	h.resolveOrganizer(w, r, true)
}

// RejectOrganizer refuse une demande organisateur
func (h *AdminHandler) RejectOrganizer(w http.ResponseWriter, r *http.Request) {
	h.resolveOrganizer(w, r, false)
}

func (h *AdminHandler) resolveOrganizer(w http.ResponseWriter, r *http.Request, approve bool) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	userID, ok := ParseObjectIDVar(w, mux.Vars(r), "id", constants.ErrInvalidUserID)
	if !ok {
		return
	}

	// Mise à jour conditionnelle: seule une demande encore en attente est traitée
	resolved, err := h.users.ResolveOrganizerRequest(r.Context(), userID, approve)
	if err != nil {
		respondRepositoryError(w, "le traitement de la demande organisateur", err)
		return
	}
	if !resolved {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrNoPendingRequest)
		return
	}

	title, body, message := "Demande organisateur refusée", "Votre demande pour devenir organisateur n'a pas été retenue", "Demande refusée"
	if approve {
		title, body, message = "🎉 Vous êtes organisateur !", "Vous pouvez maintenant créer vos événements", "Demande approuvée"
	}
	log.Printf("✓ Demande organisateur de %s: %s", userID.Hex(), message)
	h.notify(userID, title, body, approve)

	utils.RespondSuccess(w, message, map[string]string{"user_id": userID.Hex()})
}

func (h *AdminHandler) notify(userID primitive.ObjectID, title, body string, approved bool) {
	if h.notifier == nil {
		return
	}
	data := map[string]string{"action": "organizer_request_rejected"}
	if approved {
		data["action"] = "organizer_request_approved"
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		h.notifier.NotifyUsers(ctx, []primitive.ObjectID{userID}, title, body, data)
	}()
}

// ========== ÉVÉNEMENTS ==========

// GetEvents retourne tous les événements avec leurs fiches de contrôle
func (h *AdminHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	events, err := h.events.FindAll(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondRepositoryError(w, "la récupération des événements", err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  withEffectiveStatus(events, h.now()),
		"total":   len(events),
	})
}

// ========== STATISTIQUES ==========

// AdminStats résume le contenu de la plateforme (statuts stockés)
type AdminStats struct {
	Users           map[models.Role]int64        `json:"users"`
	Events          map[models.EventStatus]int64 `json:"events"`
	PendingRequests int                          `json:"pending_organizer_requests"`
}

// GetStats retourne les statistiques globales
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()
	stats := AdminStats{
		Users:  make(map[models.Role]int64),
		Events: make(map[models.EventStatus]int64),
	}

	for _, role := range []models.Role{models.RoleAttendee, models.RoleOrganizer, models.RoleAdmin} {
		n, err := h.users.CountByRole(ctx, role)
		if err != nil {
			respondRepositoryError(w, "le comptage des utilisateurs", err)
			return
		}
		stats.Users[role] = n
	}

	for _, status := range []models.EventStatus{models.StatusActive, models.StatusCancelled, models.StatusPast} {
		n, err := h.events.CountByStatus(ctx, status)
		if err != nil {
			respondRepositoryError(w, "le comptage des événements", err)
			return
		}
		stats.Events[status] = n
	}

	pending, err := h.users.FindPendingOrganizers(ctx)
	if err != nil {
		respondRepositoryError(w, "le comptage des demandes", err)
		return
	}
	stats.PendingRequests = len(pending)

	utils.RespondJSON(w, http.StatusOK, stats)
}
