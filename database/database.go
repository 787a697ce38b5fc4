package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Noms des collections
const (
	UsersCollection         = "users"
	EventsCollection        = "events"
	FCMTokensCollection     = "fcm_tokens"
	SubscriptionsCollection = "subscriptions"
)

// DB est l'instance de connexion à la base de données MongoDB
var DB *mongo.Database
var Client *mongo.Client

// Connect établit la connexion à la base de données MongoDB
func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("erreur lors de la connexion à MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("erreur lors du ping MongoDB: %w", err)
	}

	Client = client
	DB = client.Database(dbName)

	log.Println("✓ Connexion à MongoDB établie")

	if err = createIndexes(ctx); err != nil {
		return fmt.Errorf("erreur lors de la création des index: %w", err)
	}

	return nil
}

// Ping vérifie que la connexion MongoDB est active
func Ping() error {
	if Client == nil {
		return fmt.Errorf("client MongoDB non initialisé")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return Client.Ping(ctx, nil)
}

// Close ferme la connexion à la base de données
func Close() error {
	if Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return Client.Disconnect(ctx)
	}
	return nil
}

// indexModels décrit les index de chaque collection. Les index uniques
// portent sur l'email, le token FCM et l'endpoint Web Push.
func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "organizer_requested", Value: 1}}},
		},
		EventsCollection: {
			{Keys: bson.D{{Key: "organizer_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "registrations.user_id", Value: 1}}},
		},
		FCMTokensCollection: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		SubscriptionsCollection: {
			{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}
}

// createIndexes crée les index nécessaires
func createIndexes(ctx context.Context) error {
	for name, models := range indexModels() {
		if _, err := DB.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("erreur lors de la création des index %s: %w", name, err)
		}
	}

	log.Println("✓ Index MongoDB créés")
	return nil
}
