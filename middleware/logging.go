package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"eventhub-backend/services"

	"github.com/google/uuid"
)

// responseWriter capture le code de statut
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// isCriticalError indique si l'erreur doit remonter sur Slack: erreurs
// serveur (5xx) et refus 403 (CORS ou rôle), jamais les erreurs client ordinaires
func isCriticalError(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError || statusCode == http.StatusForbidden
}

// Logging journalise les requêtes en erreur, pose un X-Request-ID et alerte
// Slack pour les erreurs critiques
func Logging(slack *services.SlackService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)
			r = r.WithContext(context.WithValue(r.Context(), RequestIDContextKey, requestID))

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			statusCode := rw.statusCode
			if statusCode < http.StatusBadRequest {
				return
			}

			log.Printf("⚠️ [%s] %s %s -> %d (%s)", requestID, r.Method, r.RequestURI, statusCode, time.Since(start))

			if !isCriticalError(statusCode) {
				return
			}

			kind := "Erreur Critique"
			if statusCode == http.StatusForbidden {
				kind = "Accès refusé"
				if r.Method == http.MethodOptions {
					kind = "Erreur CORS"
				}
			}
			slack.Notify(services.HTTPAlert{
				Kind:      kind,
				Method:    r.Method,
				Path:      r.RequestURI,
				Status:    statusCode,
				Message:   http.StatusText(statusCode),
				Origin:    r.Header.Get("Origin"),
				UserAgent: r.Header.Get("User-Agent"),
				RequestID: requestID,
			})
		})
	}
}
