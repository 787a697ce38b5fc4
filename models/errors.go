package models

import "errors"

// Erreurs métier du workflow d'inscription
var (
	ErrEventNotFound          = errors.New("événement non trouvé")
	ErrEventNotAvailable      = errors.New("événement non disponible")
	ErrAlreadyInProcess       = errors.New("vous êtes déjà inscrit, en attente ou sur liste d'attente")
	ErrEventFull              = errors.New("l'événement est complet")
	ErrUnauthorized           = errors.New("action réservée à l'organisateur de l'événement")
	ErrNotInPendingList       = errors.New("utilisateur absent de la liste des demandes en attente")
	ErrNotRegistered          = errors.New("vous n'êtes pas inscrit à cet événement")
	ErrRegistrationNotFound   = errors.New("inscription introuvable pour ce QR code")
	ErrAlreadyMarked          = errors.New("QR code déjà validé")
	ErrInvalidRegistrationID  = errors.New("identifiant d'inscription invalide")
	ErrCapacityBelowAttendees = errors.New("la capacité ne peut pas être inférieure au nombre d'inscrits")
	ErrConflict               = errors.New("conflit de mise à jour, veuillez réessayer")
	ErrServiceUnavailable     = errors.New("service temporairement indisponible")
)
