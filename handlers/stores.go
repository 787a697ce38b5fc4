package handlers

import (
	"context"

	"eventhub-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore regroupe les accès aux utilisateurs utilisés par les handlers
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context) ([]models.User, error)
	FindByRole(ctx context.Context, role models.Role) ([]models.User, error)
	FindPendingOrganizers(ctx context.Context) ([]models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	RequestOrganizer(ctx context.Context, id primitive.ObjectID) (bool, error)
	ResolveOrganizerRequest(ctx context.Context, id primitive.ObjectID, approve bool) (bool, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// EventReader regroupe les lectures et la création d'événements
type EventReader interface {
	Create(ctx context.Context, event *models.Event) error
	FindAll(ctx context.Context, category string) ([]models.Event, error)
	FindByOrganizer(ctx context.Context, organizerID primitive.ObjectID) ([]models.Event, error)
	FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	CountByStatus(ctx context.Context, status models.EventStatus) (int64, error)
}

// FCMTokenStore enregistre les tokens FCM
type FCMTokenStore interface {
	Upsert(ctx context.Context, token *models.FCMToken) error
	Delete(ctx context.Context, userID primitive.ObjectID, token string) error
}

// PushSubscriptionStore enregistre les abonnements Web Push
type PushSubscriptionStore interface {
	Upsert(ctx context.Context, subscription *models.PushSubscription) error
	Delete(ctx context.Context, endpoint string) error
}
