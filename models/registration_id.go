package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const registrationIDSeparator = "-"

// RegistrationKey est l'identifiant d'inscription encodé dans les QR codes.
// Chaque segment est un ObjectID hexadécimal de 24 caractères, le séparateur
// ne peut donc jamais apparaître dans un segment.
type RegistrationKey struct {
	OrganizerID primitive.ObjectID
	UserID      primitive.ObjectID
	EventID     primitive.ObjectID
}

// String encode la clé au format organisateur-utilisateur-événement
func (k RegistrationKey) String() string {
	return k.OrganizerID.Hex() + registrationIDSeparator + k.UserID.Hex() + registrationIDSeparator + k.EventID.Hex()
}

// NewRegistrationID construit l'identifiant d'inscription d'un utilisateur
func NewRegistrationID(organizerID, userID, eventID primitive.ObjectID) string {
	return RegistrationKey{OrganizerID: organizerID, UserID: userID, EventID: eventID}.String()
}

// ParseRegistrationID décode un identifiant d'inscription et valide chaque segment
func ParseRegistrationID(s string) (RegistrationKey, error) {
	parts := strings.Split(strings.TrimSpace(s), registrationIDSeparator)
	if len(parts) != 3 {
		return RegistrationKey{}, ErrInvalidRegistrationID
	}

	ids := make([]primitive.ObjectID, 3)
	for i, part := range parts {
		id, err := primitive.ObjectIDFromHex(part)
		if err != nil {
			return RegistrationKey{}, ErrInvalidRegistrationID
		}
		ids[i] = id
	}

	return RegistrationKey{OrganizerID: ids[0], UserID: ids[1], EventID: ids[2]}, nil
}
