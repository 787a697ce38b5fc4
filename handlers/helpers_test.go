package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventhub-backend/models"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrEventNotFound, http.StatusNotFound},
		{models.ErrRegistrationNotFound, http.StatusNotFound},
		{models.ErrEventNotAvailable, http.StatusBadRequest},
		{models.ErrAlreadyInProcess, http.StatusBadRequest},
		{models.ErrEventFull, http.StatusBadRequest},
		{models.ErrNotRegistered, http.StatusBadRequest},
		{models.ErrNotInPendingList, http.StatusBadRequest},
		{models.ErrAlreadyMarked, http.StatusBadRequest},
		{models.ErrInvalidRegistrationID, http.StatusBadRequest},
		{models.ErrCapacityBelowAttendees, http.StatusBadRequest},
		{models.ErrUnauthorized, http.StatusForbidden},
		{models.ErrConflict, http.StatusConflict},
		{fmt.Errorf("%w: socket closed", models.ErrServiceUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondWorkflowErrorHidesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWorkflowError(rr, fmt.Errorf("%w: mongodb://secret-host:27017", models.ErrServiceUnavailable))
	if strings.Contains(rr.Body.String(), "secret-host") {
		t.Errorf("le détail technique ne doit pas fuiter: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	respondWorkflowError(rr, errors.New("panic in decoder"))
	if rr.Code != http.StatusInternalServerError || strings.Contains(rr.Body.String(), "decoder") {
		t.Errorf("erreur inattendue mal traitée: %d %s", rr.Code, rr.Body.String())
	}
}

func TestDecodeAndValidate(t *testing.T) {
	var dst QRGenerateRequest

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	if DecodeAndValidate(rr, req, &dst) || rr.Code != http.StatusBadRequest {
		t.Errorf("JSON invalide accepté (code %d)", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"event_id":""}`))
	if DecodeAndValidate(rr, req, &dst) || !strings.Contains(rr.Body.String(), "event_id") {
		t.Errorf("champ requis non signalé: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"event_id":"65a1b2c3d4e5f60718293a4b"}`))
	if !DecodeAndValidate(rr, req, &dst) {
		t.Errorf("requête valide refusée: %s", rr.Body.String())
	}
}
