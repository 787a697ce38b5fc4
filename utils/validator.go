package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// ValidationError représente une erreur de validation
type ValidationError struct {
	Field   string
	Message string
}

// Error implémente l'interface error
func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Les erreurs citent le nom JSON du champ
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct vérifie les tags `validate` d'une requête et retourne la
// première erreur sous forme de ValidationError
func ValidateStruct(s interface{}) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ValidationError{Field: "body", Message: "requête invalide"}
	}

	fe := fieldErrs[0]
	return ValidationError{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("le champ %s est requis", fe.Field())
	case "email":
		return "format d'email invalide"
	case "url":
		return "URL invalide"
	case "min":
		return fmt.Sprintf("doit contenir au moins %s caractères", fe.Param())
	case "max":
		return fmt.Sprintf("ne doit pas dépasser %s caractères", fe.Param())
	case "gte":
		return fmt.Sprintf("doit être supérieur ou égal à %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("doit valoir l'une des valeurs: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("format attendu: %s", fe.Param())
	default:
		return "valeur invalide"
	}
}

// ValidateEmail valide un email
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "l'email est requis"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "format d'email invalide"}
	}
	return nil
}

// ValidatePassword valide un mot de passe
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "le mot de passe est requis"}
	}
	if len(password) < 6 {
		return ValidationError{Field: "password", Message: "le mot de passe doit contenir au moins 6 caractères"}
	}
	return nil
}

// ValidateRequired valide qu'un champ n'est pas vide
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: fmt.Sprintf("le champ %s est requis", field)}
	}
	return nil
}
