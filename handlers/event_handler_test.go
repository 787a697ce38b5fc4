package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventhub-backend/constants"
	"eventhub-backend/models"
	"eventhub-backend/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newEventHandlerFixture(events ...*models.Event) (*EventHandler, *memEvents, *mapCache) {
	store := newMemEvents(events...)
	cache := newMapCache()
	registrations := services.NewRegistrationService(store, nil, cache)
	return NewEventHandler(store, registrations, cache), store, cache
}

func TestGetPublicEventsCache(t *testing.T) {
	h, store, _ := newEventHandlerFixture(futureEvent(10, false, false))

	rr := httptest.NewRecorder()
	h.GetPublicEvents(rr, httptest.NewRequest(http.MethodGet, "/api/events?status=active", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get(constants.HeaderCache); got != "MISS" {
		t.Errorf("premier appel X-Cache = %q, want MISS", got)
	}
	first := rr.Body.String()

	rr = httptest.NewRecorder()
	h.GetPublicEvents(rr, httptest.NewRequest(http.MethodGet, "/api/events?status=active", nil))
	if got := rr.Header().Get(constants.HeaderCache); got != "HIT" {
		t.Errorf("second appel X-Cache = %q, want HIT", got)
	}
	if rr.Body.String() != first {
		t.Errorf("le corps servi depuis le cache diffère")
	}
	if store.reads != 1 {
		t.Errorf("lectures en base = %d, want 1", store.reads)
	}
}

func TestGetPublicEventsFilters(t *testing.T) {
	music := futureEvent(10, false, false)
	sport := futureEvent(10, false, false)
	sport.Category = "sport"
	over := futureEvent(10, false, false)
	over.Date = time.Now().AddDate(0, 0, -3)
	over.EndTime = "23:00"

	h, _, _ := newEventHandlerFixture(music, sport, over)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"tous", "", 3},
		{"actifs", "?status=active", 2},
		{"passés calculés", "?status=past", 1},
		{"catégorie", "?category=sport", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.GetPublicEvents(rr, httptest.NewRequest(http.MethodGet, "/api/events"+tt.query, nil))
			body := decodeBody(t, rr)
			if total := int(body["total"].(float64)); total != tt.want {
				t.Errorf("total = %d, want %d", total, tt.want)
			}
		})
	}

	rr := httptest.NewRecorder()
	h.GetPublicEvents(rr, httptest.NewRequest(http.MethodGet, "/api/events?status=open", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("statut invalide: code = %d, want 400", rr.Code)
	}
}

func TestPublicReadsHideRegistrationIDs(t *testing.T) {
	event := futureEvent(10, false, false)
	userID := primitive.NewObjectID()
	if _, err := event.Register(userID, time.Now()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	code := event.FindRegistration(userID).RegistrationID

	h, _, _ := newEventHandlerFixture(event)

	rr := httptest.NewRecorder()
	h.GetPublicEvents(rr, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if strings.Contains(rr.Body.String(), code) {
		t.Errorf("la liste publique expose un identifiant d'inscription")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events/"+event.ID.Hex(), nil)
	rr = serve("/api/events/{event_id}", h.GetPublicEvent, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("détail: code = %d, want 200", rr.Code)
	}
	if strings.Contains(rr.Body.String(), code) {
		t.Errorf("le détail public expose un identifiant d'inscription")
	}
	if !strings.Contains(rr.Body.String(), `"attendees_count":1`) {
		t.Errorf("attendees_count absent: %s", rr.Body.String())
	}
}

func TestGetPublicEventErrors(t *testing.T) {
	h, store, _ := newEventHandlerFixture()

	rr := serve("/api/events/{event_id}", h.GetPublicEvent, httptest.NewRequest(http.MethodGet, "/api/events/nope", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("id invalide: code = %d, want 400", rr.Code)
	}

	missing := primitive.NewObjectID().Hex()
	rr = serve("/api/events/{event_id}", h.GetPublicEvent, httptest.NewRequest(http.MethodGet, "/api/events/"+missing, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("inconnu: code = %d, want 404", rr.Code)
	}

	store.err = errors.New("connection reset")
	rr = serve("/api/events/{event_id}", h.GetPublicEvent, httptest.NewRequest(http.MethodGet, "/api/events/"+missing, nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("base indisponible: code = %d, want 503", rr.Code)
	}
}

func TestCreateEvent(t *testing.T) {
	h, store, cache := newEventHandlerFixture()
	cache.Set(context.Background(), "stale", []byte("{}"))
	organizerID := primitive.NewObjectID()

	req := httptest.NewRequest(http.MethodPost, "/api/events", jsonBody(t, map[string]interface{}{
		"title":         "Meetup Go",
		"date":          time.Now().AddDate(0, 2, 0).Format("2006-01-02"),
		"start_time":    "19:00",
		"max_attendees": 30,
	}))
	rr := httptest.NewRecorder()
	h.CreateEvent(rr, authed(req, organizerID))

	if rr.Code != http.StatusCreated {
		t.Fatalf("code = %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if len(store.order) != 1 {
		t.Fatalf("événements stockés = %d, want 1", len(store.order))
	}
	created := store.get(store.order[0])
	if created.OrganizerID != organizerID || created.Status != models.StatusActive {
		t.Errorf("événement créé incorrect: %+v", created)
	}
	if cache.purges != 1 {
		t.Errorf("purges du cache = %d, want 1", cache.purges)
	}
}

func TestCreateEventValidation(t *testing.T) {
	h, _, _ := newEventHandlerFixture()
	organizerID := primitive.NewObjectID()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"sans titre", map[string]interface{}{"date": "2030-01-01"}},
		{"sans date", map[string]interface{}{"title": "Soirée"}},
		{"fin avant début", map[string]interface{}{"title": "Soirée", "date": "2030-01-02", "end_date": "2030-01-01"}},
		{"heure invalide", map[string]interface{}{"title": "Soirée", "date": "2030-01-02", "start_time": "25:99"}},
		{"capacité négative", map[string]interface{}{"title": "Soirée", "date": "2030-01-02", "max_attendees": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/events", jsonBody(t, tt.body))
			rr := httptest.NewRecorder()
			h.CreateEvent(rr, authed(req, organizerID))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400 (%s)", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCancelEventOwnership(t *testing.T) {
	event := futureEvent(10, false, false)
	h, store, _ := newEventHandlerFixture(event)

	req := httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID.Hex()+"/cancel", nil)
	rr := serve("/api/events/{event_id}/cancel", h.CancelEvent, authed(req, primitive.NewObjectID()))
	if rr.Code != http.StatusForbidden {
		t.Errorf("non organisateur: code = %d, want 403", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID.Hex()+"/cancel", nil)
	rr = serve("/api/events/{event_id}/cancel", h.CancelEvent, authed(req, event.OrganizerID))
	if rr.Code != http.StatusOK {
		t.Fatalf("organisateur: code = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if got := store.get(event.ID).Status; got != models.StatusCancelled {
		t.Errorf("statut = %s, want cancelled", got)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID.Hex()+"/cancel", nil)
	rr = serve("/api/events/{event_id}/cancel", h.CancelEvent, authed(req, event.OrganizerID))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("double annulation: code = %d, want 400", rr.Code)
	}
}

func TestUpdateEventCapacity(t *testing.T) {
	event := futureEvent(3, false, false)
	for i := 0; i < 2; i++ {
		if _, err := event.Register(primitive.NewObjectID(), time.Now()); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	h, _, _ := newEventHandlerFixture(event)

	req := httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID.Hex(), jsonBody(t, map[string]int{"max_attendees": 1}))
	rr := serve("/api/events/{event_id}", h.UpdateEvent, authed(req, event.OrganizerID))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("capacité sous les inscrits: code = %d, want 400", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID.Hex(), jsonBody(t, map[string]int{"max_attendees": 5}))
	rr = serve("/api/events/{event_id}", h.UpdateEvent, authed(req, event.OrganizerID))
	if rr.Code != http.StatusOK {
		t.Errorf("capacité valide: code = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
}
