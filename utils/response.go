package utils

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"eventhub-backend/models"
)

// RespondJSON encode data puis envoie la réponse. L'encodage a lieu avant
// l'écriture des en-têtes pour pouvoir répondre 500 en cas d'échec.
func RespondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}

	var buf bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&buf).Encode(data); err != nil {
			log.Printf("❌ Erreur d'encodage JSON: %v", err)
			statusCode = http.StatusInternalServerError
			buf.Reset()
			buf.WriteString(`{"error":"Internal Server Error","message":"Erreur lors de l'encodage JSON"}`)
		}
	}

	RespondRaw(w, statusCode, buf.Bytes())
}

// RespondRaw envoie un corps JSON déjà encodé (réponse mise en cache)
func RespondRaw(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// RespondError envoie une réponse d'erreur JSON
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// RespondSuccess envoie une réponse de succès JSON
func RespondSuccess(w http.ResponseWriter, message string, data interface{}) {
	RespondJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondCreated envoie une réponse 201 pour une ressource créée
func RespondCreated(w http.ResponseWriter, message string, data interface{}) {
	RespondJSON(w, http.StatusCreated, models.SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}
