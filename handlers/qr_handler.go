package handlers

import (
	"log"
	"net/http"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/services"
	"eventhub-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QRHandler gère la génération et le contrôle des QR codes d'entrée
type QRHandler struct {
	events        EventReader
	registrations *services.RegistrationService
	qr            *services.QRService
}

// NewQRHandler crée une nouvelle instance de QRHandler
func NewQRHandler(events EventReader, registrations *services.RegistrationService, qr *services.QRService) *QRHandler {
	return &QRHandler{
		events:        events,
		registrations: registrations,
		qr:            qr,
	}
}

// QRGenerateRequest demande le QR code de l'appelant pour un événement
type QRGenerateRequest struct {
	EventID string `json:"event_id" validate:"required,len=24,hexadecimal"`
}

// QRVerifyRequest soumet un QR code scanné par l'organisateur
type QRVerifyRequest struct {
	EventID        string `json:"event_id" validate:"required,len=24,hexadecimal"`
	RegistrationID string `json:"registration_id" validate:"required"`
}

// Generate retourne l'identifiant d'inscription de l'appelant et son QR code
func (h *QRHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	var req QRGenerateRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	eventID, _ := primitive.ObjectIDFromHex(req.EventID)

	// Les fiches historiques sont complétées avant lecture
	if _, err := h.registrations.FillRegisteredInfo(r.Context(), eventID); err != nil {
		respondWorkflowError(w, err)
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

	reg := event.FindRegistration(userID)
	if reg == nil || reg.State != models.StateAttendee {
		utils.RespondError(w, http.StatusForbidden, constants.ErrNotAttendee)
		return
	}
	if reg.RegistrationID == "" {
		utils.RespondError(w, http.StatusBadRequest, "QR code disponible une heure avant le début de l'événement")
		return
	}

	dataURL, err := h.qr.DataURL(reg.RegistrationID)
	if err != nil {
		log.Printf("❌ %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"event_id":        event.ID.Hex(),
		"registration_id": reg.RegistrationID,
		"marked":          reg.Marked,
		"qr_code":         dataURL,
	})
}

// Verify valide l'entrée d'un participant (organisateur uniquement, une seule fois)
func (h *QRHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	organizerID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	var req QRVerifyRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	eventID, _ := primitive.ObjectIDFromHex(req.EventID)

	reg, err := h.registrations.Verify(r.Context(), eventID, organizerID, req.RegistrationID)
	if err != nil {
		respondWorkflowError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"message":       "Entrée validée",
		"user_id":       reg.UserID.Hex(),
		"checked_in_at": reg.CheckedInAt,
	})
}
