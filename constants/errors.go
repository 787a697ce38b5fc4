package constants

// Messages d'erreur HTTP courants
const (
	ErrMethodNotAllowed = "Méthode non autorisée"
	ErrServerError      = "Erreur serveur"
	ErrInvalidData      = "Données invalides"
	ErrNotAuthenticated = "Non authentifié"
	ErrInvalidToken     = "Token invalide"
	ErrInvalidEventID   = "ID événement invalide"
	ErrInvalidUserID    = "ID utilisateur invalide"
	ErrUserNotFound     = "Utilisateur introuvable"
	ErrInvalidJSONBody  = "Body JSON invalide"
	ErrOrganizerOnly    = "Réservé aux organisateurs"
	ErrAlreadyOrganizer = "Vous êtes déjà organisateur"
	ErrAlreadyRequested = "Demande déjà envoyée"
	ErrNoPendingRequest = "Aucune demande organisateur en attente pour cet utilisateur"
	ErrNotAttendee      = "Vous n'êtes pas participant de cet événement"
)

// En-têtes HTTP
const (
	HeaderContentType     = "Content-Type"
	HeaderApplicationJSON = "application/json"
	HeaderCache           = "X-Cache"
)
