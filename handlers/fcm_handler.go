package handlers

import (
	"log"
	"net/http"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/utils"
)

// FCMHandler gère les tokens Firebase Cloud Messaging
type FCMHandler struct {
	tokens FCMTokenStore
}

// NewFCMHandler crée une nouvelle instance de FCMHandler
func NewFCMHandler(tokens FCMTokenStore) *FCMHandler {
	return &FCMHandler{tokens: tokens}
}

// Subscribe enregistre un token FCM pour l'appelant
func (h *FCMHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	var req models.FCMSubscribeRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	// Créer ou mettre à jour le token
	token := &models.FCMToken{
		UserID:    userID,
		Token:     req.FCMToken,
		Device:    req.Device,
		UserAgent: req.UserAgent,
	}
	if err := h.tokens.Upsert(r.Context(), token); err != nil {
		log.Printf("Erreur lors de l'enregistrement du token FCM: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Println("Token FCM enregistré")
	utils.RespondSuccess(w, "Abonnement FCM réussi", token)
}

// Unsubscribe supprime un token FCM de l'appelant
func (h *FCMHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		FCMToken string `json:"fcm_token" validate:"required"`
	}
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.tokens.Delete(r.Context(), userID, req.FCMToken); err != nil {
		log.Printf("Erreur lors de la suppression du token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Println("Token FCM supprimé")
	utils.RespondSuccess(w, "Désabonnement réussi", nil)
}
