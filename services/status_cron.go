package services

import (
	"context"
	"log"
	"time"

	"eventhub-backend/models"

	"github.com/robfig/cron/v3"
)

// ActiveEventLister charge les événements dont le statut stocké est actif
type ActiveEventLister interface {
	FindActive(ctx context.Context) ([]models.Event, error)
}

// StatusCron persiste périodiquement les passages à "past" et génère les
// fiches de contrôle des événements qui commencent bientôt.
type StatusCron struct {
	events        ActiveEventLister
	registrations *RegistrationService
	spec          string
	now           func() time.Time
	cron          *cron.Cron
}

// NewStatusCron crée une nouvelle instance
func NewStatusCron(events ActiveEventLister, registrations *RegistrationService, spec string) *StatusCron {
	if spec == "" {
		spec = "@every 1m"
	}
	return &StatusCron{
		events:        events,
		registrations: registrations,
		spec:          spec,
		now:           time.Now,
		cron:          cron.New(),
	}
}

// Start démarre le cron job
func (sc *StatusCron) Start() error {
	if _, err := sc.cron.AddFunc(sc.spec, sc.tick); err != nil {
		return err
	}
	sc.cron.Start()
	log.Printf("✓ Cron statut des événements démarré (%s)", sc.spec)
	return nil
}

// Stop arrête le cron job et attend la fin du passage en cours
func (sc *StatusCron) Stop() {
	<-sc.cron.Stop().Done()
}

func (sc *StatusCron) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()
	sc.Run(ctx)
}

// Run exécute un passage: retourne le nombre d'événements passés et d'événements complétés
func (sc *StatusCron) Run(ctx context.Context) (past int, filled int) {
	events, err := sc.events.FindActive(ctx)
	if err != nil {
		log.Printf("❌ Chargement des événements actifs impossible: %v", err)
		return 0, 0
	}

	now := sc.now()
	candidates := make([]*models.Event, 0, len(events))
	for i := range events {
		candidates = append(candidates, &events[i])
	}

	// Sweep travaille sur des copies locales, la persistance passe par le service
	for _, e := range models.Sweep(candidates, now) {
		changed, err := sc.registrations.MarkPast(ctx, e.ID)
		if err != nil {
			log.Printf("❌ Passage à past de %s impossible: %v", e.ID.Hex(), err)
			continue
		}
		if changed {
			past++
		}
	}

	for _, e := range candidates {
		// Essai sur la copie locale: seule une fiche manquante justifie une écriture
		if e.Status != models.StatusActive || e.FillRegisteredInfoIfNeeded(now) == 0 {
			continue
		}
		n, err := sc.registrations.FillRegisteredInfo(ctx, e.ID)
		if err != nil {
			log.Printf("❌ Génération des fiches de %s impossible: %v", e.ID.Hex(), err)
			continue
		}
		if n > 0 {
			filled++
		}
	}

	if past > 0 || filled > 0 {
		log.Printf("🕐 Cron statut: %d événement(s) terminé(s), %d préparé(s) pour le contrôle", past, filled)
	}
	return past, filled
}
