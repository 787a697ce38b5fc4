package handlers

import (
	"errors"
	"log"
	"net/http"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// AuthHandler gère les requêtes d'authentification
type AuthHandler struct {
	users     UserStore
	jwtSecret string
}

// NewAuthHandler crée une nouvelle instance de AuthHandler
func NewAuthHandler(users UserStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// Register crée un compte participant et retourne un token
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.RegisterRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	exists, err := h.users.EmailExists(r.Context(), req.Email)
	if err != nil {
		respondRepositoryError(w, "la vérification de l'email", err)
		return
	}
	if exists {
		utils.RespondError(w, http.StatusConflict, "Cet email est déjà utilisé")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Erreur lors du hachage du mot de passe: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     models.RoleAttendee,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		// Deux inscriptions simultanées: l'index unique tranche
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondError(w, http.StatusConflict, "Cet email est déjà utilisé")
			return
		}
		respondRepositoryError(w, "la création de l'utilisateur", err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
	log.Printf("✓ Nouvel utilisateur inscrit: %s (ID: %s)", user.Email, user.ID.Hex())
}

// Login gère la connexion d'un utilisateur
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.LoginRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		respondRepositoryError(w, "la recherche de l'utilisateur", err)
		return
	}

	// Même message pour un email inconnu et un mauvais mot de passe
	if user == nil || !utils.CheckPassword(user.Password, req.Password) {
		utils.RespondError(w, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
	log.Printf("✓ Utilisateur connecté: %s (ID: %s)", user.Email, user.ID.Hex())
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := utils.GenerateToken(user.ID.Hex(), user.Email, string(user.Role), h.jwtSecret)
	if err != nil {
		log.Printf("Erreur lors de la génération du token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	utils.RespondJSON(w, status, models.AuthResponse{
		Success: true,
		Token:   token,
		User:    *user,
	})
}
