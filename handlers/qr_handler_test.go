package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventhub-backend/models"
	"eventhub-backend/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newQRFixture(events ...*models.Event) (*QRHandler, *memEvents) {
	store := newMemEvents(events...)
	registrations := services.NewRegistrationService(store, nil, nil)
	return NewQRHandler(store, registrations, services.NewQRService()), store
}

func TestQRGenerate(t *testing.T) {
	event := futureEvent(5, false, true)
	attendee, waiting := primitive.NewObjectID(), primitive.NewObjectID()
	if _, err := event.Register(attendee, time.Now()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	event.MaxAttendees = 1
	if _, err := event.Register(waiting, time.Now()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	h, _ := newQRFixture(event)

	req := httptest.NewRequest(http.MethodPost, "/api/qr/generate", jsonBody(t, QRGenerateRequest{EventID: event.ID.Hex()}))
	rr := httptest.NewRecorder()
	h.Generate(rr, authed(req, attendee))
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["registration_id"] != event.FindRegistration(attendee).RegistrationID {
		t.Errorf("registration_id = %v", body["registration_id"])
	}
	if qr, _ := body["qr_code"].(string); !strings.HasPrefix(qr, "data:image/png;base64,") {
		t.Errorf("qr_code = %.40q, want data URL PNG", qr)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/qr/generate", jsonBody(t, QRGenerateRequest{EventID: event.ID.Hex()}))
	rr = httptest.NewRecorder()
	h.Generate(rr, authed(req, waiting))
	if rr.Code != http.StatusForbidden {
		t.Errorf("liste d'attente: code = %d, want 403", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/qr/generate", jsonBody(t, QRGenerateRequest{EventID: "not-an-id"}))
	rr = httptest.NewRecorder()
	h.Generate(rr, authed(req, attendee))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("event_id invalide: code = %d, want 400", rr.Code)
	}
}

func TestQRVerifyOnce(t *testing.T) {
	event := futureEvent(5, false, false)
	attendee := primitive.NewObjectID()
	if _, err := event.Register(attendee, time.Now()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	code := event.FindRegistration(attendee).RegistrationID
	h, store := newQRFixture(event)

	verify := func(as primitive.ObjectID, registrationID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/qr/verify", jsonBody(t, QRVerifyRequest{
			EventID:        event.ID.Hex(),
			RegistrationID: registrationID,
		}))
		rr := httptest.NewRecorder()
		h.Verify(rr, authed(req, as))
		return rr
	}

	if rr := verify(attendee, code); rr.Code != http.StatusForbidden {
		t.Errorf("vérification par un participant: code = %d, want 403", rr.Code)
	}

	rr := verify(event.OrganizerID, code)
	if rr.Code != http.StatusOK {
		t.Fatalf("première vérification: code = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["user_id"] != attendee.Hex() {
		t.Errorf("user_id = %v, want %s", body["user_id"], attendee.Hex())
	}
	if !store.get(event.ID).FindRegistration(attendee).Marked {
		t.Errorf("l'inscription n'est pas marquée en base")
	}

	if rr := verify(event.OrganizerID, code); rr.Code != http.StatusBadRequest {
		t.Errorf("seconde vérification: code = %d, want 400", rr.Code)
	}

	if rr := verify(event.OrganizerID, "garbage"); rr.Code != http.StatusBadRequest {
		t.Errorf("identifiant illisible: code = %d, want 400", rr.Code)
	}
	// Le contrôle de l'organisateur passe avant la lecture de l'identifiant
	if rr := verify(attendee, "garbage"); rr.Code != http.StatusForbidden {
		t.Errorf("identifiant illisible par un participant: code = %d, want 403", rr.Code)
	}

	// Identifiant bien formé mais d'un autre événement
	foreign := models.NewRegistrationID(event.OrganizerID, attendee, primitive.NewObjectID())
	if rr := verify(event.OrganizerID, foreign); rr.Code != http.StatusNotFound {
		t.Errorf("identifiant étranger: code = %d, want 404", rr.Code)
	}
}
