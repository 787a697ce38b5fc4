package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignore tout ce qui dépasse 72 octets
const maxPasswordBytes = 72

// ErrPasswordTooLong est retournée au-delà de la limite de bcrypt
var ErrPasswordTooLong = errors.New("le mot de passe ne doit pas dépasser 72 octets")

// HashPassword hache un mot de passe en utilisant bcrypt
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("erreur lors du hachage du mot de passe: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword vérifie si un mot de passe correspond à son hash
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
