package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"eventhub-backend/middleware"
	"eventhub-backend/models"
	"eventhub-backend/services"
	"eventhub-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memEvents sert à la fois d'EventReader et de services.EventStore
type memEvents struct {
	mu     sync.Mutex
	events map[primitive.ObjectID]models.Event
	order  []primitive.ObjectID
	err    error
	reads  int
}

func newMemEvents(events ...*models.Event) *memEvents {
	s := &memEvents{events: make(map[primitive.ObjectID]models.Event)}
	for _, e := range events {
		s.put(*e)
	}
	return s
}

func (s *memEvents) put(e models.Event) {
	if _, ok := s.events[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	e.Registrations = append([]models.Registration(nil), e.Registrations...)
	s.events[e.ID] = e
}

func (s *memEvents) Create(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	e.ID = primitive.NewObjectID()
	s.put(*e)
	return nil
}

func (s *memEvents) filter(keep func(models.Event) bool) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	out := []models.Event{}
	for _, id := range s.order {
		e := s.events[id]
		if keep(e) {
			e.Registrations = append([]models.Registration(nil), e.Registrations...)
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memEvents) FindAll(_ context.Context, category string) ([]models.Event, error) {
	return s.filter(func(e models.Event) bool { return category == "" || e.Category == category })
}

func (s *memEvents) FindByOrganizer(_ context.Context, organizerID primitive.ObjectID) ([]models.Event, error) {
	return s.filter(func(e models.Event) bool { return e.OrganizerID == organizerID })
}

func (s *memEvents) FindByMember(_ context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	return s.filter(func(e models.Event) bool { return e.FindRegistration(userID) != nil })
}

func (s *memEvents) FindByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	e.Registrations = append([]models.Registration(nil), e.Registrations...)
	return &e, nil
}

func (s *memEvents) SaveIfVersion(_ context.Context, e *models.Event, expected int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	stored, ok := s.events[e.ID]
	if !ok || stored.Version != expected {
		return false, nil
	}
	e.Version = expected + 1
	s.put(*e)
	return true, nil
}

func (s *memEvents) CountByStatus(_ context.Context, status models.EventStatus) (int64, error) {
	events, err := s.filter(func(e models.Event) bool { return e.Status == status })
	return int64(len(events)), err
}

func (s *memEvents) get(id primitive.ObjectID) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.events[id]
	e.Registrations = append([]models.Registration(nil), e.Registrations...)
	return &e
}

// memUsers est un UserStore en mémoire
type memUsers struct {
	mu        sync.Mutex
	users     []models.User
	err       error
	createErr error
}

func (s *memUsers) add(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users = append(s.users, u)
	return u
}

func (s *memUsers) Create(_ context.Context, u *models.User) error {
	if s.err != nil {
		return s.err
	}
	if s.createErr != nil {
		return s.createErr
	}
	*u = s.add(*u)
	return nil
}

func (s *memUsers) findOne(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memUsers) find(match func(models.User) bool) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.User{}
	for _, u := range s.users {
		if match(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findOne(func(u models.User) bool { return u.Email == email })
}

func (s *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(func(u models.User) bool { return u.ID == id })
}

func (s *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := s.FindByEmail(ctx, email)
	return u != nil, err
}

func (s *memUsers) FindAll(context.Context) ([]models.User, error) {
	return s.find(func(models.User) bool { return true })
}

func (s *memUsers) FindByRole(_ context.Context, role models.Role) ([]models.User, error) {
	return s.find(func(u models.User) bool { return u.Role == role })
}

func (s *memUsers) FindPendingOrganizers(context.Context) ([]models.User, error) {
	return s.find(func(u models.User) bool { return u.OrganizerRequested && u.Role == models.RoleAttendee })
}

func (s *memUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return s.find(func(u models.User) bool { return wanted[u.ID] })
}

func (s *memUsers) update(id primitive.ObjectID, apply func(u *models.User) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	for i := range s.users {
		if s.users[i].ID == id {
			return apply(&s.users[i]), nil
		}
	}
	return false, nil
}

func (s *memUsers) RequestOrganizer(_ context.Context, id primitive.ObjectID) (bool, error) {
	return s.update(id, func(u *models.User) bool {
		if u.OrganizerRequested || u.Role != models.RoleAttendee {
			return false
		}
		u.OrganizerRequested = true
		return true
	})
}

func (s *memUsers) ResolveOrganizerRequest(_ context.Context, id primitive.ObjectID, approve bool) (bool, error) {
	return s.update(id, func(u *models.User) bool {
		if !u.OrganizerRequested {
			return false
		}
		u.OrganizerRequested = false
		if approve {
			u.Role = models.RoleOrganizer
		}
		return true
	})
}

func (s *memUsers) CountByRole(_ context.Context, role models.Role) (int64, error) {
	users, err := s.find(func(u models.User) bool { return u.Role == role })
	return int64(len(users)), err
}

// mapCache est un EventCache en mémoire
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	purges  int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, query string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.entries[query]
	return body, ok
}

func (c *mapCache) Set(_ context.Context, query string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = body
}

func (c *mapCache) Purge(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.purges++
}

var _ services.EventCache = (*mapCache)(nil)

// futureEvent crée un événement actif dans un mois
func futureEvent(maxAttendees int, requireApproval, enableWaitlist bool) *models.Event {
	return &models.Event{
		ID:              primitive.NewObjectID(),
		OrganizerID:     primitive.NewObjectID(),
		Title:           "Festival test",
		Category:        "music",
		Date:            time.Now().AddDate(0, 1, 0),
		StartTime:       "20:00",
		MaxAttendees:    maxAttendees,
		RequireApproval: requireApproval,
		EnableWaitlist:  enableWaitlist,
		Status:          models.StatusActive,
	}
}

// authed place les claims de userID dans le contexte, comme le middleware Auth
func authed(r *http.Request, userID primitive.ObjectID) *http.Request {
	claims := &utils.Claims{UserID: userID.Hex(), Email: userID.Hex() + "@example.com"}
	return r.WithContext(context.WithValue(r.Context(), middleware.UserContextKey, claims))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("réponse non JSON (%d): %s", rr.Code, rr.Body.String())
	}
	return out
}

// serve passe la requête par un routeur mux pour que les vars soient renseignées
func serve(pattern string, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc(pattern, h)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, r)
	return rr
}
