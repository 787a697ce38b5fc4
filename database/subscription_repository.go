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

// SubscriptionRepository gère les opérations sur les abonnements Web Push
type SubscriptionRepository struct {
	collection *mongo.Collection
}

// NewSubscriptionRepository crée une nouvelle instance de SubscriptionRepository
func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.Collection(SubscriptionsCollection),
	}
}

// Upsert enregistre un abonnement, en le rattachant à l'utilisateur courant
func (r *SubscriptionRepository) Upsert(ctx context.Context, subscription *models.PushSubscription) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	subscription.Created = time.Now()
	update := bson.M{
		"$set": bson.M{
			"user_id": subscription.UserID,
			"keys":    subscription.Keys,
		},
		"$setOnInsert": bson.M{"created_at": subscription.Created},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"endpoint": subscription.Endpoint}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("erreur lors de la création de l'abonnement: %w", err)
	}

	return nil
}

// FindByUserIDs recherche les abonnements des utilisateurs donnés
func (r *SubscriptionRepository) FindByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	subscriptions := make([]models.PushSubscription, 0)
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des abonnements: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &subscriptions); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des abonnements: %w", err)
	}

	return subscriptions, nil
}

// Delete supprime un abonnement par endpoint
func (r *SubscriptionRepository) Delete(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"endpoint": endpoint})
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression de l'abonnement: %w", err)
	}

	return nil
}
