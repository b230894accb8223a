package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ktvadmin/config"
	"ktvadmin/logger"
	"ktvadmin/middleware"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewHandler(config.AuthConfig{
		JWTSecret:         "signing-key",
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
		TokenTTL:          time.Hour,
	}, logger.New(io.Discard))
}

func login(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)), nil)
	return rec
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	rec := login(newTestHandler(t), `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data tokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	claims, err := middleware.ValidateJWT([]byte("signing-key"), env.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), env.Data.ExpiresAt, time.Minute)
}

func TestLoginRejects(t *testing.T) {
	h := newTestHandler(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"wrong user", `{"username":"root","password":"s3cret"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, login(h, tt.body).Code)
		})
	}
}

func TestLoginWithoutHashRejects(t *testing.T) {
	h := NewHandler(config.AuthConfig{JWTSecret: "k", AdminUsername: "admin"}, logger.New(io.Discard))
	assert.Equal(t, http.StatusUnauthorized, login(h, `{"username":"admin","password":"anything"}`).Code)
}

func TestIssueTokenExpiry(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	token, _, err := IssueToken([]byte("k"), "admin", time.Hour, past)
	require.NoError(t, err)
	_, err = middleware.ValidateJWT([]byte("k"), token)
	assert.Error(t, err)
}
