package database

import (
	"context"
	"fmt"
	"time"

	"eventhub-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository gère les opérations sur les événements
type EventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository crée une nouvelle instance de EventRepository
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		collection: db.Collection(EventsCollection),
	}
}

// Create crée un nouvel événement
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	event.ID = primitive.NewObjectID()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Version = 0
	if event.Status == "" {
		event.Status = models.StatusActive
	}
	if event.Registrations == nil {
		event.Registrations = []models.Registration{}
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("erreur lors de la création de l'événement: %w", err)
	}

	return nil
}

// FindAll retourne les événements, du plus proche au plus lointain.
// Le statut stocké peut être en retard sur le statut effectif, il n'est donc pas filtré ici.
func (r *EventRepository) FindAll(ctx context.Context, category string) ([]models.Event, error) {
	query := bson.M{}
	if category != "" {
		query["category"] = category
	}
	return r.find(ctx, query)
}

// FindByOrganizer retourne les événements d'un organisateur
func (r *EventRepository) FindByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.Event, error) {
	return r.find(ctx, bson.M{"organizer_id": organizerID})
}

// FindByMember retourne les événements où l'utilisateur possède une inscription
func (r *EventRepository) FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	return r.find(ctx, bson.M{"registrations.user_id": userID})
}

// FindActive retourne les événements dont le statut stocké est actif
func (r *EventRepository) FindActive(ctx context.Context) ([]models.Event, error) {
	return r.find(ctx, bson.M{"status": models.StatusActive})
}

func (r *EventRepository) find(ctx context.Context, query bson.M) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des événements: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]models.Event, 0)
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des événements: %w", err)
	}

	return events, nil
}

// FindByID recherche un événement par ID
func (r *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var event models.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de l'événement: %w", err)
	}

	return &event, nil
}

// SaveIfVersion remplace le document seulement si sa version stockée vaut
// expectedVersion, puis incrémente la version. Retourne false si un autre
// écrivain est passé entre la lecture et l'écriture.
func (r *EventRepository) SaveIfVersion(ctx context.Context, event *models.Event, expectedVersion int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event.Version = expectedVersion + 1
	event.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, versionFilter(event.ID, expectedVersion), event)
	if err != nil {
		event.Version = expectedVersion
		return false, fmt.Errorf("erreur lors de la mise à jour de l'événement: %w", err)
	}

	if result.MatchedCount == 0 {
		event.Version = expectedVersion
		return false, nil
	}

	return true, nil
}

// versionFilter cible le document à la version attendue. Un document créé
// hors de Create n'a pas de champ version: il compte comme version 0.
func versionFilter(id primitive.ObjectID, expectedVersion int64) bson.M {
	if expectedVersion == 0 {
		return bson.M{"_id": id, "$or": bson.A{
			bson.M{"version": int64(0)},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}
	return bson.M{"_id": id, "version": expectedVersion}
}

// CountByStatus compte les événements par statut stocké
func (r *EventRepository) CountByStatus(ctx context.Context, status models.EventStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("erreur lors du comptage des événements: %w", err)
	}

	return count, nil
}
