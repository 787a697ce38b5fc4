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

// UserRepository gère les opérations sur les utilisateurs
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository crée une nouvelle instance de UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(UsersCollection),
	}
}

// Create crée un nouvel utilisateur
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleAttendee
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("cet email est déjà utilisé")
		}
		return fmt.Errorf("erreur lors de la création de l'utilisateur: %w", err)
	}

	return nil
}

// FindByEmail recherche un utilisateur par email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID recherche un utilisateur par ID
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de l'utilisateur: %w", err)
	}

	return &user, nil
}

// EmailExists vérifie si un email existe déjà
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("erreur lors de la vérification de l'email: %w", err)
	}

	return count > 0, nil
}

// FindAll retourne tous les utilisateurs
func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

// FindByRole retourne les utilisateurs d'un rôle
func (r *UserRepository) FindByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return r.find(ctx, bson.M{"role": role})
}

// FindPendingOrganizers retourne les participants ayant demandé le rôle organisateur
func (r *UserRepository) FindPendingOrganizers(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{"role": models.RoleAttendee, "organizer_requested": true})
}

// FindByIDs retourne les utilisateurs correspondant aux identifiants donnés
func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des utilisateurs: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des utilisateurs: %w", err)
	}

	return users, nil
}

// RequestOrganizer pose le drapeau de demande pour un participant qui ne l'a pas déjà fait.
// Retourne false si aucune demande n'a pu être enregistrée.
func (r *UserRepository) RequestOrganizer(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.updateIf(ctx,
		bson.M{"_id": id, "role": models.RoleAttendee, "organizer_requested": bson.M{"$ne": true}},
		bson.M{"organizer_requested": true},
	)
}

// ResolveOrganizerRequest traite une demande en attente: approuvée, le rôle
// devient organisateur; dans les deux cas le drapeau est levé.
// Retourne false si l'utilisateur n'a pas de demande valide.
func (r *UserRepository) ResolveOrganizerRequest(ctx context.Context, id primitive.ObjectID, approve bool) (bool, error) {
	set := bson.M{"organizer_requested": false}
	if approve {
		set["role"] = models.RoleOrganizer
	}
	return r.updateIf(ctx,
		bson.M{"_id": id, "role": models.RoleAttendee, "organizer_requested": true},
		set,
	)
}

func (r *UserRepository) updateIf(ctx context.Context, filter, set bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set["updated_at"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("erreur lors de la mise à jour de l'utilisateur: %w", err)
	}

	return result.MatchedCount > 0, nil
}

// CountByRole compte les utilisateurs d'un rôle
func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("erreur lors du comptage des utilisateurs: %w", err)
	}

	return count, nil
}
