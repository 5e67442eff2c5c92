package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
)

func TestAuthHandler_LoginStatusLogout(t *testing.T) {
	env := newTestEnv(t)
	account, cookies := env.login(t, "alice", domain.RoleUser)

	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}
	assert.ElementsMatch(t, []string{auth.CookieUserID, auth.CookieUsername, auth.CookieRole}, names)

	rec := env.do(t, http.MethodGet, "/api/admin", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[auth.Status](t, rec)
	assert.True(t, status.Authenticated)
	assert.Equal(t, account.ID, status.UserID)
	assert.Equal(t, "alice", status.Username)
	assert.Equal(t, domain.RoleUser, status.Role)

	rec = env.do(t, http.MethodDelete, "/api/admin", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value, c.Name)
		assert.True(t, c.MaxAge < 0, c.Name)
	}
}

func TestAuthHandler_StatusWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[auth.Status](t, rec).Authenticated)
}

func TestAuthHandler_LogoutWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/api/admin", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.provision(t, "alice", domain.RoleUser)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"wrong password", map[string]string{"username": "alice", "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "mallory", "password": testPassword}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "alice"}, http.StatusBadRequest},
		{"malformed body", "{", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/admin", tt.body, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
			assert.NotEmpty(t, errorMessage(t, rec))
		})
	}
}

func TestAuthHandler_TamperedCookieIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	_, cookies := env.login(t, "alice", domain.RoleUser)

	for _, c := range cookies {
		if c.Name == auth.CookieRole {
			c.Value = "ADMIN"
		}
	}

	rec := env.do(t, http.MethodGet, "/api/users", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
