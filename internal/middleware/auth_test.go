package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Generate(&domain.User{ID: "user-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Generate(&domain.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Generate(&domain.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.Error(t, err)
}

func TestRequireAuthPopulatesContext(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	token, err := tm.Generate(&domain.User{ID: "user-1", Role: domain.RoleUser})
	require.NoError(t, err)

	var gotUserID string
	handler := RequireAuth(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserID(r.Context())
	}))

	cases := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: token}) }},
		{"query param", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", token)
			r.URL.RawQuery = q.Encode()
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "user-1", gotUserID)
		})
	}
}

func TestRequireAuthRejectsMissingOrBadToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	handler := RequireAuth(tm)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminGatesOnRole(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	var called bool
	handler := RequireAuth(tm)(RequireAdmin(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	})))

	serve := func(role domain.Role) *httptest.ResponseRecorder {
		token, err := tm.Generate(&domain.User{ID: "user-1", Role: role})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(domain.RoleUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	rec = serve(domain.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
