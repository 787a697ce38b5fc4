package handlers

import (
	"log"
	"net/http"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/utils"
)

// NotificationHandler gère les abonnements Web Push (VAPID)
type NotificationHandler struct {
	subscriptions  PushSubscriptionStore
	vapidPublicKey string
}

// NewNotificationHandler crée une nouvelle instance de NotificationHandler
func NewNotificationHandler(subscriptions PushSubscriptionStore, vapidPublicKey string) *NotificationHandler {
	return &NotificationHandler{
		subscriptions:  subscriptions,
		vapidPublicKey: vapidPublicKey,
	}
}

// GetVAPIDPublicKey retourne la clé publique VAPID
func (h *NotificationHandler) GetVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"publicKey": h.vapidPublicKey,
	})
}

// Subscribe enregistre l'abonnement du navigateur de l'appelant
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	userID, ok := CurrentUserID(w, r)
	if !ok {
		return
	}

	var req models.SubscribeRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	subscription := &models.PushSubscription{
		UserID:   userID,
		Endpoint: req.Subscription.Endpoint,
		Keys:     req.Subscription.Keys,
	}
	if err := h.subscriptions.Upsert(r.Context(), subscription); err != nil {
		log.Printf("Erreur lors de la création de l'abonnement: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ Abonnement Web Push enregistré pour: %s", userID.Hex())
	utils.RespondSuccess(w, "Abonnement créé avec succès", subscription)
}

// Unsubscribe supprime un abonnement par son endpoint
func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Endpoint string `json:"endpoint" validate:"required"`
	}
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.subscriptions.Delete(r.Context(), req.Endpoint); err != nil {
		log.Printf("Erreur lors de la suppression de l'abonnement: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	log.Printf("✓ Abonnement supprimé: %s", req.Endpoint)
	utils.RespondSuccess(w, "Désabonnement réussi", nil)
}
