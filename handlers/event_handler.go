package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/services"
	"eventhub-backend/utils"
)

// EventHandler gère la consultation et la gestion des événements
type EventHandler struct {
	events        EventReader
	registrations *services.RegistrationService
	cache         services.EventCache
	now           func() time.Time
}

// NewEventHandler crée une nouvelle instance de EventHandler
func NewEventHandler(events EventReader, registrations *services.RegistrationService, cache services.EventCache) *EventHandler {
	if cache == nil {
		cache = services.NoopEventCache{}
	}
	return &EventHandler{
		events:        events,
		registrations: registrations,
		cache:         cache,
		now:           time.Now,
	}
}

// eventListResponse est la réponse de la liste publique
type eventListResponse struct {
	Success bool           `json:"success"`
	Events  []models.Event `json:"events"`
	Total   int            `json:"total"`
}

// GetPublicEvents retourne la liste publique, filtrable par ?status= et ?category=.
// Le filtre de statut porte sur le statut effectif.
func (h *EventHandler) GetPublicEvents(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := models.EventStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusActive, models.StatusCancelled, models.StatusPast:
	default:
		utils.RespondError(w, http.StatusBadRequest, "Statut invalide (active, cancelled ou past)")
		return
	}
	category := r.URL.Query().Get("category")

	// Clé canonique: l'ordre des paramètres ne crée pas de nouvelle entrée
	cacheKey := url.Values{"status": {string(status)}, "category": {category}}.Encode()
	if body, ok := h.cache.Get(r.Context(), cacheKey); ok {
		w.Header().Set(constants.HeaderCache, "HIT")
		utils.RespondRaw(w, http.StatusOK, body)
		return
	}

	events, err := h.events.FindAll(r.Context(), category)
	if err != nil {
		respondRepositoryError(w, "la récupération des événements publics", err)
		return
	}

	now := h.now()
	visible := make([]models.Event, 0, len(events))
	for _, e := range withEffectiveStatus(events, now) {
		if status != "" && e.Status != status {
			continue
		}
		visible = append(visible, e.WithoutCheckInCodes())
	}

	body, err := json.Marshal(eventListResponse{Success: true, Events: visible, Total: len(visible)})
	if err != nil {
		log.Printf("❌ Erreur d'encodage de la liste: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	h.cache.Set(r.Context(), cacheKey, body)
	w.Header().Set(constants.HeaderCache, "MISS")
	utils.RespondRaw(w, http.StatusOK, body)
}

// GetPublicEvent retourne les détails d'un événement
func (h *EventHandler) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	eventID, ok := ParseEventID(w, r)
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

	event.Status = event.EffectiveStatus(h.now())
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"event":   event.WithoutCheckInCodes(),
	})
}

// CreateEvent crée un événement dont l'appelant est l'organisateur
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	var req models.CreateEventRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	if req.Date.IsZero() {
		utils.RespondError(w, http.StatusBadRequest, "La date de l'événement est requise")
		return
	}
	if req.EndDate != nil && !req.EndDate.IsZero() && req.EndDate.Before(req.Date.Time) {
		utils.RespondError(w, http.StatusBadRequest, "La date de fin doit suivre la date de début")
		return
	}

	event := models.NewEventFromRequest(&req, userID)
	if err := h.events.Create(r.Context(), event); err != nil {
		respondRepositoryError(w, "la création de l'événement", err)
		return
	}
	h.cache.Purge(r.Context())

	log.Printf("✓ Événement créé: %s (ID: %s) par %s", event.Title, event.ID.Hex(), userID.Hex())
	utils.RespondCreated(w, "Événement créé avec succès", event)
}

// UpdateEvent modifie un événement de l'appelant
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
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

	var req models.UpdateEventRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	event, err := h.registrations.Update(r.Context(), eventID, userID, &req)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	log.Printf("✓ Événement modifié: %s", eventID.Hex())
	utils.RespondSuccess(w, "Événement modifié avec succès", event)
}

// CancelEvent annule un événement actif de l'appelant
func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
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

	event, err := h.registrations.Cancel(r.Context(), eventID, userID)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	utils.RespondSuccess(w, "Événement annulé", event)
}

// GetMyEvents retourne les événements organisés par l'appelant
func (h *EventHandler) GetMyEvents(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	events, err := h.events.FindByOrganizer(r.Context(), userID)
	if err != nil {
		respondRepositoryError(w, "la récupération des événements de l'organisateur", err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  withEffectiveStatus(events, h.now()),
		"total":   len(events),
	})
}
