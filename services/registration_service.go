package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eventhub-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Nombre de tentatives avant de renvoyer ErrConflict
const DefaultMaxAttempts = 5

// EventStore est la persistance minimale requise par le workflow
type EventStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	SaveIfVersion(ctx context.Context, event *models.Event, expectedVersion int64) (bool, error)
}

// Notifier prévient des utilisateurs d'un changement les concernant
type Notifier interface {
	NotifyUsers(ctx context.Context, userIDs []primitive.ObjectID, title, body string, data map[string]string)
}

// errUnchanged signale une décision sans mutation: rien n'est écrit
var errUnchanged = errors.New("événement inchangé")

// RegistrationService applique les décisions du workflow sur un événement
// stocké, par lecture, décision puis écriture conditionnelle sur la version.
type RegistrationService struct {
	events      EventStore
	notifier    Notifier
	cache       EventCache
	now         func() time.Time
	maxAttempts int
}

// NewRegistrationService crée une nouvelle instance de RegistrationService
func NewRegistrationService(events EventStore, notifier Notifier, cache EventCache) *RegistrationService {
	if cache == nil {
		cache = NoopEventCache{}
	}
	return &RegistrationService{
		events:      events,
		notifier:    notifier,
		cache:       cache,
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
	}
}

// mutate charge l'événement, applique decide et enregistre le résultat si la
// version n'a pas bougé. Une course perdue relance le cycle complet.
func (s *RegistrationService) mutate(ctx context.Context, eventID primitive.ObjectID, decide func(e *models.Event, now time.Time) error) (*models.Event, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		event, err := s.events.FindByID(ctx, eventID)
		if err != nil {
			log.Printf("❌ Lecture de l'événement %s impossible: %v", eventID.Hex(), err)
			return nil, fmt.Errorf("%w: %v", models.ErrServiceUnavailable, err)
		}
		if event == nil {
			return nil, models.ErrEventNotFound
		}

		version := event.Version
		if err := decide(event, s.now()); err != nil {
			if errors.Is(err, errUnchanged) {
				return event, nil
			}
			return nil, err
		}

		saved, err := s.events.SaveIfVersion(ctx, event, version)
		if err != nil {
			log.Printf("❌ Écriture de l'événement %s impossible: %v", eventID.Hex(), err)
			return nil, fmt.Errorf("%w: %v", models.ErrServiceUnavailable, err)
		}
		if saved {
			s.cache.Purge(ctx)
			return event, nil
		}

		log.Printf("⚠️  Conflit de version sur l'événement %s (tentative %d/%d)", eventID.Hex(), attempt, s.maxAttempts)
	}

	return nil, models.ErrConflict
}

// Register inscrit un utilisateur: participant, en attente de validation ou liste d'attente
func (s *RegistrationService) Register(ctx context.Context, eventID, userID primitive.ObjectID) (models.RegisterOutcome, *models.Event, error) {
	var outcome models.RegisterOutcome
	event, err := s.mutate(ctx, eventID, func(e *models.Event, now time.Time) error {
		var err error
		outcome, err = e.Register(userID, now)
		return err
	})
	if err != nil {
		return "", nil, err
	}

	log.Printf("✓ Inscription %s à l'événement %s: %s", userID.Hex(), eventID.Hex(), outcome)
	if outcome == models.OutcomePending {
		s.notify([]primitive.ObjectID{event.OrganizerID}, "📝 Nouvelle demande d'inscription",
			fmt.Sprintf("Une demande attend votre validation pour '%s'", event.Title),
			map[string]string{"action": "registration_pending", "event_id": eventID.Hex()})
	}
	return outcome, event, nil
}

// Deregister désinscrit un utilisateur et promeut la tête de la liste d'attente si besoin
func (s *RegistrationService) Deregister(ctx context.Context, eventID, userID primitive.ObjectID) (models.DeregisterResult, error) {
	var result models.DeregisterResult
	event, err := s.mutate(ctx, eventID, func(e *models.Event, now time.Time) error {
		var err error
		result, err = e.Deregister(userID, now)
		return err
	})
	if err != nil {
		return result, err
	}

	log.Printf("✓ Désinscription %s de l'événement %s", userID.Hex(), eventID.Hex())
	if result.Promoted != nil {
		log.Printf("✓ %s promu depuis la liste d'attente de %s", result.Promoted.Hex(), eventID.Hex())
		s.notify([]primitive.ObjectID{*result.Promoted}, "🎉 Une place s'est libérée !",
			fmt.Sprintf("Vous êtes maintenant inscrit à '%s'", event.Title),
			map[string]string{"action": "waitlist_promoted", "event_id": eventID.Hex()})
	}
	return result, nil
}

// Approve valide une demande en attente
func (s *RegistrationService) Approve(ctx context.Context, eventID, organizerID, userID primitive.ObjectID) (models.ApproveOutcome, error) {
	var outcome models.ApproveOutcome
	event, err := s.mutate(ctx, eventID, func(e *models.Event, now time.Time) error {
		var err error
		outcome, err = e.Approve(organizerID, userID, now)
		return err
	})
	if err != nil {
		return "", err
	}

	body := fmt.Sprintf("Votre inscription à '%s' est confirmée", event.Title)
	if outcome == models.OutcomeApprovedWaitlisted {
		body = fmt.Sprintf("Votre demande pour '%s' est acceptée, vous êtes sur liste d'attente", event.Title)
	}
	s.notify([]primitive.ObjectID{userID}, "✅ Demande acceptée", body,
		map[string]string{"action": "registration_approved", "event_id": eventID.Hex()})
	return outcome, nil
}

// Reject refuse une demande en attente
func (s *RegistrationService) Reject(ctx context.Context, eventID, organizerID, userID primitive.ObjectID) error {
	event, err := s.mutate(ctx, eventID, func(e *models.Event, _ time.Time) error {
		return e.Reject(organizerID, userID)
	})
	if err != nil {
		return err
	}

	s.notify([]primitive.ObjectID{userID}, "Demande refusée",
		fmt.Sprintf("Votre demande d'inscription à '%s' n'a pas été retenue", event.Title),
		map[string]string{"action": "registration_rejected", "event_id": eventID.Hex()})
	return nil
}

// Cancel annule un événement et prévient toutes les personnes inscrites
func (s *RegistrationService) Cancel(ctx context.Context, eventID, organizerID primitive.ObjectID) (*models.Event, error) {
	event, err := s.mutate(ctx, eventID, func(e *models.Event, now time.Time) error {
		return e.Cancel(organizerID, now)
	})
	if err != nil {
		return nil, err
	}

	members := make([]primitive.ObjectID, 0, len(event.Registrations))
	for _, r := range event.Registrations {
		members = append(members, r.UserID)
	}
	log.Printf("✓ Événement %s annulé (%d personne(s) à prévenir)", eventID.Hex(), len(members))
	s.notify(members, "❌ Événement annulé",
		fmt.Sprintf("L'événement '%s' a été annulé", event.Title),
		map[string]string{"action": "event_cancelled", "event_id": eventID.Hex()})
	return event, nil
}

// Update applique une modification partielle par l'organisateur. Un événement
// terminé ou annulé n'est plus modifiable.
func (s *RegistrationService) Update(ctx context.Context, eventID, organizerID primitive.ObjectID, req *models.UpdateEventRequest) (*models.Event, error) {
	var promoted []primitive.ObjectID
	event, err := s.mutate(ctx, eventID, func(e *models.Event, now time.Time) error {
		if e.OrganizerID != organizerID {
			return models.ErrUnauthorized
		}
		if e.EffectiveStatus(now) != models.StatusActive {
			return models.ErrEventNotAvailable
		}
		var err error
		promoted, err = e.ApplyUpdate(req, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(promoted) > 0 {
		log.Printf("✓ %d personne(s) promue(s) depuis la liste d'attente de %s", len(promoted), eventID.Hex())
		s.notify(promoted, "🎉 Une place s'est libérée !",
			fmt.Sprintf("Vous êtes maintenant inscrit à '%s'", event.Title),
			map[string]string{"action": "waitlist_promoted", "event_id": eventID.Hex()})
	}
	return event, nil
}

// Verify valide le QR code d'un participant
func (s *RegistrationService) Verify(ctx context.Context, eventID, organizerID primitive.ObjectID, registrationID string) (*models.Registration, error) {
	var marked models.Registration
	_, err := s.mutate(ctx, eventID, func(e *models.Event, now time.Time) error {
		r, err := e.Verify(organizerID, registrationID, now)
		if err != nil {
			return err
		}
		marked = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✓ QR validé pour %s à l'événement %s", marked.UserID.Hex(), eventID.Hex())
	return &marked, nil
}

// FillRegisteredInfo génère les fiches de contrôle manquantes si l'événement
// commence bientôt et retourne le nombre de fiches créées
func (s *RegistrationService) FillRegisteredInfo(ctx context.Context, eventID primitive.ObjectID) (int, error) {
	filled := 0
	_, err := s.mutate(ctx, eventID, func(e *models.Event, now time.Time) error {
		filled = e.FillRegisteredInfoIfNeeded(now)
		if filled == 0 {
			return errUnchanged
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if filled > 0 {
		log.Printf("✓ %d fiche(s) de contrôle générée(s) pour %s", filled, eventID.Hex())
	}
	return filled, nil
}

// MarkPast persiste le passage à "past" d'un événement actif terminé
func (s *RegistrationService) MarkPast(ctx context.Context, eventID primitive.ObjectID) (bool, error) {
	changed := false
	_, err := s.mutate(ctx, eventID, func(e *models.Event, now time.Time) error {
		changed = len(models.Sweep([]*models.Event{e}, now)) > 0
		if !changed {
			return errUnchanged
		}
		return nil
	})
	return changed, err
}

// notify envoie une notification sans bloquer la requête
func (s *RegistrationService) notify(userIDs []primitive.ObjectID, title, body string, data map[string]string) {
	if s.notifier == nil || len(userIDs) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.notifier.NotifyUsers(ctx, userIDs, title, body, data)
	}()
}
