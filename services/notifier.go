package services

import (
	"context"
	"log"

	"eventhub-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenStore donne accès aux tokens FCM des utilisateurs
type TokenStore interface {
	FindByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.FCMToken, error)
	DeleteTokens(ctx context.Context, tokens []string) error
}

// SubscriptionStore donne accès aux abonnements Web Push des utilisateurs
type SubscriptionStore interface {
	FindByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.PushSubscription, error)
	Delete(ctx context.Context, endpoint string) error
}

// PushNotifier diffuse une notification sur tous les canaux connus d'un utilisateur
type PushNotifier struct {
	fcm           *FCMService
	webPush       *WebPushService
	tokens        TokenStore
	subscriptions SubscriptionStore
}

// NewPushNotifier crée une nouvelle instance de PushNotifier
func NewPushNotifier(fcm *FCMService, webPush *WebPushService, tokens TokenStore, subscriptions SubscriptionStore) *PushNotifier {
	return &PushNotifier{
		fcm:           fcm,
		webPush:       webPush,
		tokens:        tokens,
		subscriptions: subscriptions,
	}
}

// NotifyUsers envoie la notification via FCM puis Web Push. Les erreurs sont
// journalisées, un échec d'envoi n'annule jamais l'opération métier.
func (n *PushNotifier) NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, title, body string, data map[string]string) {
	if len(userIDs) == 0 {
		return
	}

	if n.fcm.Enabled() {
		n.sendFCM(ctx, userIDs, title, body, data)
	}
	if n.webPush.Enabled() {
		n.sendWebPush(ctx, userIDs, title, body, data)
	}
}

func (n *PushNotifier) sendFCM(ctx context.Context, userIDs []primitive.ObjectID, title, body string, data map[string]string) {
	tokens, err := n.tokens.FindByUserIDs(ctx, userIDs)
	if err != nil {
		log.Printf("❌ Récupération des tokens FCM impossible: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	values := make([]string, 0, len(tokens))
	for _, t := range tokens {
		values = append(values, t.Token)
	}

	_, _, failedTokens := n.fcm.SendToAll(ctx, values, title, body, data)
	if len(failedTokens) > 0 {
		if err := n.tokens.DeleteTokens(ctx, failedTokens); err != nil {
			log.Printf("⚠️  Nettoyage des tokens FCM invalides impossible: %v", err)
		} else {
			log.Printf("🗑️  %d token(s) FCM invalide(s) supprimé(s)", len(failedTokens))
		}
	}
}

func (n *PushNotifier) sendWebPush(ctx context.Context, userIDs []primitive.ObjectID, title, body string, data map[string]string) {
	subs, err := n.subscriptions.FindByUserIDs(ctx, userIDs)
	if err != nil {
		log.Printf("❌ Récupération des abonnements Web Push impossible: %v", err)
		return
	}

	sent, expired := n.webPush.Send(ctx, subs, models.NotificationPayload{
		Title: title,
		Body:  body,
		Icon:  "/icon-192x192.png",
		Data:  data,
	})
	for _, endpoint := range expired {
		log.Printf("🗑️  Suppression de l'abonnement invalide: %s", endpoint)
		if err := n.subscriptions.Delete(ctx, endpoint); err != nil {
			log.Printf("⚠️  Suppression de l'abonnement impossible: %v", err)
		}
	}
	if sent > 0 {
		log.Printf("📧 Web Push '%s' envoyé à %d abonnement(s)", title, sent)
	}
}
