package services

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCM accepte au plus 500 tokens par envoi multicast
const fcmBatchSize = 500

// FCMService gère l'envoi des notifications via Firebase Cloud Messaging.
// Sans client (credentials absents), les envois sont ignorés.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService crée une nouvelle instance de FCMService
func NewFCMService(ctx context.Context, credentialsFile string) (*FCMService, error) {
	var opt option.ClientOption

	// FIREBASE_CREDENTIALS_JSON prime sur le fichier (déploiement cloud)
	if credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON"); credentialsJSON != "" {
		log.Println("📦 Credentials Firebase lus depuis FIREBASE_CREDENTIALS_JSON")
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	} else {
		log.Printf("📦 Credentials Firebase lus depuis le fichier: %s", credentialsFile)
		opt = option.WithCredentialsFile(credentialsFile)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'initialisation de Firebase: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du client FCM: %w", err)
	}

	log.Println("✓ Firebase Cloud Messaging initialisé")
	return &FCMService{client: client}, nil
}

// NewDisabledFCMService retourne un service qui n'envoie rien
func NewDisabledFCMService() *FCMService {
	log.Println("⚠️  FCM désactivé (credentials Firebase absents)")
	return &FCMService{}
}

// Enabled indique si un client Firebase est configuré
func (s *FCMService) Enabled() bool {
	return s != nil && s.client != nil
}

// sendBatch envoie un data message à un lot de tokens
func (s *FCMService) sendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) (success int, failedTokens []string, err error) {
	// Uniquement des data messages, le service worker construit l'affichage
	payload := make(map[string]string, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["title"] = title
	payload["message"] = body

	message := &messaging.MulticastMessage{
		Data: payload,
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{"Urgency": "high"},
		},
		Tokens: tokens,
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return 0, nil, fmt.Errorf("erreur lors de l'envoi multicast: %w", err)
	}

	failedTokens = make([]string, 0, response.FailureCount)
	for idx, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[idx])
			log.Printf("❌ Échec FCM pour le token %s...: %v", truncate(tokens[idx], 20), resp.Error)
		}
	}

	return response.SuccessCount, failedTokens, nil
}

// SendToAll envoie une notification à tous les tokens fournis, par lots
func (s *FCMService) SendToAll(ctx context.Context, tokens []string, title, body string, data map[string]string) (success int, failed int, failedTokens []string) {
	if !s.Enabled() || len(tokens) == 0 {
		return 0, 0, nil
	}

	failedTokens = make([]string, 0)
	for i := 0; i < len(tokens); i += fcmBatchSize {
		end := min(i+fcmBatchSize, len(tokens))
		batch := tokens[i:end]

		ok, ft, err := s.sendBatch(ctx, batch, title, body, data)
		if err != nil {
			log.Printf("❌ Erreur pour le lot FCM %d: %v", i/fcmBatchSize+1, err)
			failed += len(batch)
			continue
		}

		success += ok
		failed += len(ft)
		failedTokens = append(failedTokens, ft...)
	}

	log.Printf("📊 Envoi FCM: %d succès, %d échecs sur %d", success, failed, len(tokens))
	return success, failed, failedTokens
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
