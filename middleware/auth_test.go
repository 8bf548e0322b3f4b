package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hostel-meals/models"
	"hostel-meals/services"
	"hostel-meals/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*Auth, *services.TokenService) {
	t.Helper()
	st := store.NewMemory()
	for _, u := range []models.User{
		{Email: "admin@x.com", Role: models.RoleAdmin, Badge: models.BadgeGold},
		{Email: "user@x.com", Role: models.RoleUser, Badge: models.BadgeBronze},
	} {
		u := u
		_, err := st.InsertUser(context.Background(), &u)
		require.NoError(t, err)
	}
	tokens := services.NewTokenService([]byte("secret"), "test", time.Hour)
	return NewAuth(tokens, services.NewAuthorizer(st)), tokens
}

func bearer(t *testing.T, tokens *services.TokenService, email string) string {
	t.Helper()
	token, err := tokens.Issue(email, models.RoleUser)
	require.NoError(t, err)
	return "Bearer " + token
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["message"]
}

func TestAuthenticate(t *testing.T) {
	auth, tokens := newTestAuth(t)
	var seen string
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		require.True(t, ok)
		seen = p.Email
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{name: "missing header", status: http.StatusUnauthorized, msg: "Authorization header missing"},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, msg: "Invalid Authorization header format"},
		{name: "bad token", header: "Bearer nope", status: http.StatusUnauthorized, msg: "Invalid token"},
		{name: "valid", header: bearer(t, tokens, "user@x.com"), status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, message(t, rec))
			}
		})
	}
	assert.Equal(t, "user@x.com", seen)
}

func TestRequireAdmin(t *testing.T) {
	auth, tokens := newTestAuth(t)
	handler := auth.Authenticate(auth.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "user@x.com"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: Admins only", message(t, rec))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "admin@x.com"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireWithoutAuthenticate(t *testing.T) {
	auth, _ := newTestAuth(t)
	handler := auth.Require(services.PremiumOnly)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
