package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub-backend/services"

	"github.com/google/uuid"
)

func TestLogging_requestID(t *testing.T) {
	var seen string
	handler := Logging(services.NewSlackService(""))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	t.Run("identifiant généré", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/events/x", nil))

		id := rr.Header().Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("X-Request-ID invalide: %q", id)
		}
		if seen != id {
			t.Errorf("contexte = %q, en-tête = %q", seen, id)
		}
		if rr.Code != http.StatusNotFound {
			t.Errorf("Code = %v, attendu 404", rr.Code)
		}
	})

	t.Run("identifiant client conservé", func(t *testing.T) {
		clientID := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", clientID)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if got := rr.Header().Get("X-Request-ID"); got != clientID {
			t.Errorf("X-Request-ID = %q, attendu %q", got, clientID)
		}
	})
}

func TestIsCriticalError(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, true},
		{http.StatusNotFound, false},
		{http.StatusConflict, false},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		if got := isCriticalError(tt.code); got != tt.want {
			t.Errorf("isCriticalError(%d) = %v, attendu %v", tt.code, got, tt.want)
		}
	}
}

func TestResponseWriter_codeParDefaut(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	_, _ = rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, attendu 200", rw.statusCode)
	}
}
