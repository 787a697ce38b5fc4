package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

// SlackService gère l'envoi des alertes Slack (webhook entrant)
type SlackService struct {
	webhookURL string
	client     *http.Client
}

// SlackMessage représente un message Slack
type SlackMessage struct {
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment représente une pièce jointe Slack
type Attachment struct {
	Color     string  `json:"color,omitempty"`
	Title     string  `json:"title,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
	Timestamp int64   `json:"ts,omitempty"`
	Footer    string  `json:"footer,omitempty"`
}

// Field représente un champ dans une pièce jointe Slack
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// HTTPAlert décrit une requête en erreur à remonter
type HTTPAlert struct {
	Kind      string
	Method    string
	Path      string
	Status    int
	Message   string
	Origin    string
	UserAgent string
	RequestID string
}

// NewSlackService crée une nouvelle instance de SlackService
func NewSlackService(webhookURL string) *SlackService {
	if webhookURL == "" {
		log.Println("⚠️  Slack webhook URL non configuré - alertes Slack désactivées")
	}
	return &SlackService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled indique si un webhook est configuré
func (s *SlackService) Enabled() bool {
	return s != nil && s.webhookURL != ""
}

func (a HTTPAlert) message() SlackMessage {
	color := "danger"
	if a.Status == http.StatusForbidden {
		color = "warning"
	}

	fields := []Field{
		{Title: "Méthode", Value: a.Method, Short: true},
		{Title: "Status Code", Value: strconv.Itoa(a.Status), Short: true},
		{Title: "Chemin", Value: a.Path},
	}
	if a.RequestID != "" {
		fields = append(fields, Field{Title: "Request ID", Value: a.RequestID, Short: true})
	}
	if a.Origin != "" {
		fields = append(fields, Field{Title: "Origin", Value: a.Origin, Short: true})
	}
	if a.UserAgent != "" {
		fields = append(fields, Field{Title: "User-Agent", Value: a.UserAgent})
	}

	return SlackMessage{
		Attachments: []Attachment{{
			Color:     color,
			Title:     fmt.Sprintf("🚨 Erreur serveur: %s", a.Kind),
			Text:      a.Message,
			Timestamp: time.Now().Unix(),
			Footer:    "EventHub - Backend",
			Fields:    fields,
		}},
	}
}

// Send poste l'alerte sur le webhook. Sans webhook, ne fait rien.
func (s *SlackService) Send(ctx context.Context, alert HTTPAlert) error {
	if !s.Enabled() {
		return nil
	}

	jsonData, err := json.Marshal(alert.message())
	if err != nil {
		return fmt.Errorf("erreur lors de la sérialisation du message Slack: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("erreur lors de la création de la requête: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("erreur lors de l'envoi à Slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack a retourné un code d'erreur: %d", resp.StatusCode)
	}

	log.Printf("✓ Alerte Slack envoyée: %s %s", alert.Method, alert.Path)
	return nil
}

// Notify envoie l'alerte en arrière-plan et journalise un éventuel échec
func (s *SlackService) Notify(alert HTTPAlert) {
	if !s.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Send(ctx, alert); err != nil {
			log.Printf("❌ Erreur lors de l'envoi de l'alerte Slack: %v", err)
		}
	}()
}
