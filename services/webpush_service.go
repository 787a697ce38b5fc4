package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"eventhub-backend/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushService envoie les notifications aux abonnements VAPID du navigateur
type WebPushService struct {
	publicKey  string
	privateKey string
	subject    string
}

// NewWebPushService crée une nouvelle instance de WebPushService.
// Sans paire de clés, le service est désactivé.
func NewWebPushService(publicKey, privateKey, subject string) *WebPushService {
	if publicKey == "" || privateKey == "" {
		log.Println("⚠️  Clés VAPID non configurées - Web Push désactivé")
	}
	return &WebPushService{
		publicKey:  publicKey,
		privateKey: privateKey,
		subject:    subject,
	}
}

// Enabled indique si les clés VAPID sont présentes
func (s *WebPushService) Enabled() bool {
	return s != nil && s.publicKey != "" && s.privateKey != ""
}

// PublicKey retourne la clé publique VAPID à exposer au frontend
func (s *WebPushService) PublicKey() string {
	return s.publicKey
}

// Send envoie la notification à chaque abonnement et retourne les endpoints
// expirés (410 Gone) à supprimer.
func (s *WebPushService) Send(ctx context.Context, subscriptions []models.PushSubscription, payload models.NotificationPayload) (sent int, expired []string) {
	if !s.Enabled() || len(subscriptions) == 0 {
		return 0, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("❌ Sérialisation du payload Web Push impossible: %v", err)
		return 0, nil
	}

	for _, sub := range subscriptions {
		gone, err := s.sendOne(ctx, body, sub)
		if gone {
			expired = append(expired, sub.Endpoint)
		}
		if err != nil {
			log.Printf("❌ Échec Web Push vers %s...: %v", truncate(sub.Endpoint, 40), err)
			continue
		}
		sent++
	}

	return sent, expired
}

func (s *WebPushService) sendOne(ctx context.Context, body []byte, sub models.PushSubscription) (gone bool, err error) {
	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             86400,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return true, fmt.Errorf("abonnement expiré (%d)", resp.StatusCode)
	case resp.StatusCode >= 400:
		return false, fmt.Errorf("le service push a retourné %d", resp.StatusCode)
	}
	return false, nil
}
