package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub-backend/models"
	"eventhub-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUsers struct {
	users map[primitive.ObjectID]*models.User
	err   error
}

func (f fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func TestRequireRole(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), Email: "admin@example.com", Role: models.RoleAdmin}
	attendee := &models.User{ID: primitive.NewObjectID(), Email: "user@example.com", Role: models.RoleAttendee}
	users := fakeUsers{users: map[primitive.ObjectID]*models.User{admin.ID: admin, attendee.ID: attendee}}

	tests := []struct {
		name   string
		users  UserLookup
		claims *utils.Claims
		want   int
	}{
		{"admin autorisé", users, &utils.Claims{UserID: admin.ID.Hex()}, http.StatusOK},
		// le rôle du token est ignoré, seule la base fait foi
		{"participant refusé", users, &utils.Claims{UserID: attendee.ID.Hex(), Role: "admin"}, http.StatusForbidden},
		{"non authentifié", users, nil, http.StatusUnauthorized},
		{"identifiant invalide", users, &utils.Claims{UserID: "abc"}, http.StatusUnauthorized},
		{"utilisateur supprimé", users, &utils.Claims{UserID: primitive.NewObjectID().Hex()}, http.StatusUnauthorized},
		{"base indisponible", fakeUsers{err: errors.New("timeout")}, &utils.Claims{UserID: admin.ID.Hex()}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.users, models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), UserContextKey, tt.claims))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("Code = %v, attendu %v", rr.Code, tt.want)
			}
		})
	}
}
