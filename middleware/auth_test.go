package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"eventhub-backend/utils"
)

const testAuthSecret = "test-secret"

func TestAuthMissingToken(t *testing.T) {
	handler := Auth(testAuthSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %v, attendu 401", rr.Code)
	}
}

func TestAuthInvalidFormat(t *testing.T) {
	handler := Auth(testAuthSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %v, attendu 401", rr.Code)
	}
}

func TestAuthValidToken(t *testing.T) {
	token, err := utils.GenerateToken("user1", "test@example.com", "organizer", testAuthSecret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	handler := Auth(testAuthSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r.Context())
		if claims == nil {
			t.Error("GetUserFromContext retourne nil")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if claims.UserID != "user1" || claims.Email != "test@example.com" || claims.Role != "organizer" {
			t.Errorf("claims = %+v", claims)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Code = %v, attendu 200", rr.Code)
	}
}

func TestAuthTokenInvalide(t *testing.T) {
	handler := Auth(testAuthSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("le handler ne doit pas être appelé")
	}))

	token, _ := utils.GenerateToken("user1", "test@example.com", "attendee", "autre-secret")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Code = %v, attendu 401", rr.Code)
	}
}

func TestGuest(t *testing.T) {
	handler := Guest(testAuthSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	valid, _ := utils.GenerateToken("user1", "test@example.com", "attendee", testAuthSecret)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"sans token", "", http.StatusOK},
		{"token mal formé", "Token abc", http.StatusOK},
		{"token invalide", "Bearer abc", http.StatusOK},
		{"déjà connecté", "Bearer " + valid, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("Code = %v, attendu %v", rr.Code, tt.want)
			}
		})
	}
}
